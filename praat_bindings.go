package parselmouth

import (
	"github.com/feather-lang/parselmouth/binding"
	"github.com/feather-lang/parselmouth/interp"
	"github.com/feather-lang/parselmouth/praat"
)

// thingLifetime hands the creator's reference to the holder and drops it on
// release.
func thingLifetime[T praat.Object]() binding.Lifetime[T] {
	return binding.Lifetime[T]{
		Release: func(o T) error { return o.Release() },
	}
}

func praatClasses() []binding.Descriptor {
	return []binding.Descriptor{
		binding.NewClass(binding.ClassDef[*praat.Thing]{
			Name:     "Thing",
			Lifetime: thingLifetime[*praat.Thing](),
			Init:     initThing,
		}),
		binding.NewClass(binding.ClassDef[*praat.Data]{
			Name:     "Data",
			Parent:   binding.TypeOf[*praat.Thing](),
			Lifetime: thingLifetime[*praat.Data](),
			Init:     initData,
		}),
		binding.NewClass(binding.ClassDef[*praat.Vector]{
			Name:     "Vector",
			Parent:   binding.TypeOf[*praat.Data](),
			Lifetime: thingLifetime[*praat.Vector](),
			Init:     initVector,
		}),
		binding.NewClass(binding.ClassDef[*praat.Sound]{
			Name:     "Sound",
			Parent:   binding.TypeOf[*praat.Vector](),
			Lifetime: thingLifetime[*praat.Sound](),
			Init:     initSound,
		}),
		binding.NewClass(binding.ClassDef[*praat.Spectrum]{
			Name:     "Spectrum",
			Parent:   binding.TypeOf[*praat.Data](),
			Lifetime: thingLifetime[*praat.Spectrum](),
			Init:     binding.NoInit[*praat.Spectrum],
		}),
		binding.NewClass(binding.ClassDef[*praat.Spectrogram]{
			Name:     "Spectrogram",
			Parent:   binding.TypeOf[*praat.Data](),
			Lifetime: thingLifetime[*praat.Spectrogram](),
			Init:     binding.NoInit[*praat.Spectrogram],
		}),
		binding.NewClass(binding.ClassDef[*praat.Pitch]{
			Name:     "Pitch",
			Parent:   binding.TypeOf[*praat.Data](),
			Lifetime: thingLifetime[*praat.Pitch](),
			Init:     binding.NoInit[*praat.Pitch],
		}),
		binding.NewClass(binding.ClassDef[*praat.Intensity]{
			Name:     "Intensity",
			Parent:   binding.TypeOf[*praat.Vector](),
			Lifetime: thingLifetime[*praat.Intensity](),
			Init:     binding.NoInit[*praat.Intensity],
		}),
		binding.NewClass(binding.ClassDef[*praat.Harmonicity]{
			Name:     "Harmonicity",
			Parent:   binding.TypeOf[*praat.Vector](),
			Lifetime: thingLifetime[*praat.Harmonicity](),
			Init:     binding.NoInit[*praat.Harmonicity],
		}),
		binding.NewClass(binding.ClassDef[*praat.Formant]{
			Name:     "Formant",
			Parent:   binding.TypeOf[*praat.Data](),
			Lifetime: thingLifetime[*praat.Formant](),
			Init:     binding.NoInit[*praat.Formant],
		}),
		binding.NewClass(binding.ClassDef[*praat.MFCC]{
			Name:     "MFCC",
			Parent:   binding.TypeOf[*praat.Data](),
			Lifetime: thingLifetime[*praat.MFCC](),
			Init:     binding.NoInit[*praat.MFCC],
		}),
	}
}

func praatEnums() []binding.Descriptor {
	return []binding.Descriptor{
		binding.NewEnum(binding.EnumDef[praat.Interpolation]{
			Name:            "Interpolation",
			Members:         binding.MembersOf(praat.Interpolations()...),
			CaseInsensitive: true,
		}),
		binding.NewEnum(binding.EnumDef[praat.WindowShape]{
			Name:            "WindowShape",
			Members:         binding.MembersOf(praat.WindowShapes()...),
			CaseInsensitive: true,
		}),
		binding.NewEnum(binding.EnumDef[praat.AmplitudeScaling]{
			Name:            "AmplitudeScaling",
			Members:         binding.MembersOf(praat.AmplitudeScalings()...),
			CaseInsensitive: true,
		}),
		binding.NewEnum(binding.EnumDef[praat.SignalOutsideTimeDomain]{
			Name:            "SignalOutsideTimeDomain",
			Members:         binding.MembersOf(praat.SignalOutsideTimeDomains()...),
			CaseInsensitive: true,
		}),
	}
}

func initThing(b *binding.ClassBuilder[*praat.Thing]) {
	b.Property("name", (*praat.Thing).Name, (*praat.Thing).SetName).
		ReadOnly("class_name", (*praat.Thing).ClassName).
		Def("info", (*praat.Thing).Info)
}

func initData(b *binding.ClassBuilder[*praat.Data]) {
	b.Def("copy", (*praat.Data).Copy).
		Def("equals", (*praat.Data).Equal)
}

func initVector(b *binding.ClassBuilder[*praat.Vector]) {
	b.Buffer(func(v *praat.Vector) *interp.Buffer {
		return interp.NewBuffer(v.Values(), v.Frozen(), v.NChannels(), v.Nx())
	}).
		ReadOnly("xmin", (*praat.Vector).Xmin).
		ReadOnly("xmax", (*praat.Vector).Xmax).
		ReadOnly("nx", (*praat.Vector).Nx).
		ReadOnly("dx", (*praat.Vector).Dx).
		ReadOnly("x1", (*praat.Vector).X1).
		ReadOnly("n_channels", (*praat.Vector).NChannels).
		Def("get_value", (*praat.Vector).GetValue).
		Def("values", (*praat.Vector).Values).
		Def("xs", (*praat.Vector).Xs)
}

func initSound(b *binding.ClassBuilder[*praat.Sound]) {
	b.Constructor(praat.NewSound).
		Property("sampling_frequency", (*praat.Sound).SamplingFrequency, (*praat.Sound).SetSamplingFrequency).
		Def("duration", (*praat.Sound).Duration).
		Def("amplitudes", (*praat.Sound).Amplitudes).
		Def("extract_channel", (*praat.Sound).ExtractChannel).
		Def("convert_to_mono", (*praat.Sound).ConvertToMono).
		Def("extract_part", (*praat.Sound).ExtractPart).
		Def("convolve", (*praat.Sound).Convolve)
}
