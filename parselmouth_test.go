package parselmouth_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feather-lang/parselmouth"
	"github.com/feather-lang/parselmouth/binding"
	perrors "github.com/feather-lang/parselmouth/errors"
	"github.com/feather-lang/parselmouth/interp"
	"github.com/feather-lang/parselmouth/praat"
)

func newInterp(t *testing.T, opts ...parselmouth.Option) *interp.Interp {
	t.Helper()
	in, err := parselmouth.New(opts...)
	require.NoError(t, err)
	t.Cleanup(in.Close)
	return in
}

func eval(t *testing.T, in *interp.Interp, script string) string {
	t.Helper()
	res, err := in.Eval(script)
	require.NoError(t, err, script)
	return res.String()
}

func TestRegisterAllHierarchy(t *testing.T) {
	in := newInterp(t)

	assert.Equal(t,
		[]string{"Data", "Formant", "Harmonicity", "Intensity", "MFCC", "Pitch", "Sound", "Spectrogram", "Spectrum", "Thing", "Vector"},
		in.Classes())
	assert.Equal(t,
		[]string{"AmplitudeScaling", "Interpolation", "SignalOutsideTimeDomain", "WindowShape"},
		in.Enums())

	tests := []struct {
		child, parent string
		want          string
	}{
		{"Sound", "Vector", "1"},
		{"Sound", "Thing", "1"},
		{"Vector", "Data", "1"},
		{"Intensity", "Vector", "1"},
		{"Harmonicity", "Data", "1"},
		{"Pitch", "Vector", "0"},
		{"Data", "Sound", "0"},
		{"MFCC", "Data", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.child+"_"+tt.parent, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, in, fmt.Sprintf("issubclass %s %s", tt.child, tt.parent)))
		})
	}
	assert.Equal(t, "Vector", eval(t, in, "Sound parent"))
}

func TestChildListedBeforeParent(t *testing.T) {
	in := interp.New()
	defer in.Close()

	table := &parselmouth.Bindings{
		Classes: []binding.Descriptor{
			binding.NewClass(binding.ClassDef[*praat.Vector]{
				Name:   "Vector",
				Parent: binding.TypeOf[*praat.Data](),
				Init:   binding.NoInit[*praat.Vector],
			}),
			binding.NewClass(binding.ClassDef[*praat.Data]{
				Name: "Data",
				Init: binding.NoInit[*praat.Data],
			}),
		},
	}
	require.NoError(t, table.RegisterAll(in))

	vector, ok := in.Class("Vector")
	require.True(t, ok)
	data, ok := in.Class("Data")
	require.True(t, ok)
	assert.True(t, vector.IsSubclass(data))
	assert.False(t, data.IsSubclass(vector))
}

func TestRegisterAllNotRepeatable(t *testing.T) {
	in := interp.New()
	defer in.Close()

	table := parselmouth.PraatBindings()
	r := table.Registrar(in)
	require.NoError(t, r.RegisterAll())
	assert.ErrorIs(t, r.RegisterAll(), perrors.ErrInvalidTransition)

	// A fresh table cannot redeclare names already in the interpreter.
	assert.ErrorIs(t, parselmouth.RegisterAll(in), perrors.ErrDuplicateType)
}

func TestPraatEnumConversion(t *testing.T) {
	table := parselmouth.PraatBindings()
	in := interp.New()
	defer in.Close()
	require.NoError(t, table.RegisterAll(in))

	var window *binding.Converter[praat.WindowShape]
	for _, d := range table.Enums {
		if c, ok := binding.ConverterOf[praat.WindowShape](d); ok {
			window = c
		}
	}
	require.NotNil(t, window)
	assert.True(t, window.CaseInsensitive())

	v, err := window.Convert("hanning")
	require.NoError(t, err)
	assert.Equal(t, praat.WindowHanning, v)

	_, err = window.Convert("triangle")
	var verr *perrors.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "WindowShape", verr.Enum)
	assert.EqualError(t, err, `"triangle" is not a valid value for enum type WindowShape`)

	assert.Equal(t, "PEAK_0_99", eval(t, in, "AmplitudeScaling peak_0_99"))
	assert.Equal(t, "GAUSSIAN3", eval(t, in, "WindowShape Gaussian3"))
	assert.Equal(t, "NEAREST LINEAR CUBIC SINC70 SINC700", eval(t, in, "members Interpolation"))
}

func TestSoundScript(t *testing.T) {
	in := newInterp(t)

	eval(t, in, `set s [Sound new {{0 1 0 -1} {1 1 1 1}} 4]`)
	assert.Equal(t, "Sound", eval(t, in, "typeof $s"))
	assert.Equal(t, "1", eval(t, in, "isinstance $s Vector"))
	assert.Equal(t, "1", eval(t, in, "isinstance $s Thing"))
	assert.Equal(t, "0", eval(t, in, "isinstance $s Pitch"))
	assert.Equal(t, "4.0", eval(t, in, "$s cget sampling_frequency"))
	assert.Equal(t, "2", eval(t, in, "$s cget n_channels"))
	assert.Equal(t, "1.0", eval(t, in, "$s duration"))
	assert.Equal(t, "Sound", eval(t, in, "$s cget class_name"))
	assert.Equal(t, "{0.0 1.0 0.0 -1.0} {1.0 1.0 1.0 1.0}", eval(t, in, "$s amplitudes"))

	eval(t, in, "$s configure name hello sampling_frequency 8")
	assert.Equal(t, "hello", eval(t, in, "$s cget name"))
	assert.Equal(t, "0.5", eval(t, in, "$s duration"))
	assert.Contains(t, eval(t, in, "$s info"), "Object name: hello")

	_, err := in.Eval("$s configure nx 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestSoundMethodsTakeEnumStrings(t *testing.T) {
	in := newInterp(t)
	eval(t, in, `set s [Sound new {{1 1 1 1 1 1 1 1 1 1}} 10]`)

	eval(t, in, `set part [$s extract_part 0 0 hanning 1 true]`)
	assert.Equal(t, "Sound", eval(t, in, "typeof $part"))
	assert.Equal(t, "10", eval(t, in, "$part cget nx"))

	eval(t, in, `set part2 [$s extract_part 0 0 [WindowShape HAMMING] 1 true]`)
	assert.Equal(t, "10", eval(t, in, "$part2 cget nx"))

	eval(t, in, `set c [$s convolve $s sum zero]`)
	assert.Equal(t, "19", eval(t, in, "$c cget nx"))
	assert.Equal(t, "10.0", eval(t, in, "lindex [$c values] 9"))

	_, err := in.Eval(`$s extract_part 0 0 triangle 1 true`)
	assert.ErrorIs(t, err, perrors.ErrInvalidEnumValue)
	assert.Contains(t, err.Error(), "WindowShape")

	// An Interpolation value is not a WindowShape.
	_, err = in.Eval(`$s extract_part 0 0 [Interpolation LINEAR] 1 true`)
	assert.ErrorIs(t, err, perrors.ErrEnumTypeMismatch)

	assert.Equal(t, "1.0", eval(t, in, "$s get_value 0.5 1 linear"))
	assert.Equal(t, "1.0", eval(t, in, "$s get_value 0.5 0 Nearest"))
}

func TestSoundErrorsSurface(t *testing.T) {
	in := newInterp(t)

	_, err := in.Eval(`Sound new {{1 2} {3}} 100`)
	assert.ErrorIs(t, err, praat.ErrShape)

	_, err = in.Eval(`Sound new {{1 2}} 0`)
	assert.ErrorIs(t, err, praat.ErrFrequency)

	eval(t, in, `set s [Sound new {{1 2}} 100]`)
	_, err = in.Eval(`$s extract_channel 2`)
	assert.ErrorIs(t, err, praat.ErrChannel)

	_, err = in.Eval(`Pitch new`)
	assert.ErrorIs(t, err, perrors.ErrNotConstructible)
}

func TestCopyAndEquals(t *testing.T) {
	in := newInterp(t)
	eval(t, in, `set s [Sound new {{1 2 3}} 10]`)
	eval(t, in, `set c [$s copy]`)
	assert.Equal(t, "Sound", eval(t, in, "typeof $c"))
	assert.NotEqual(t, eval(t, in, "set s"), eval(t, in, "set c"))
	assert.Equal(t, "1", eval(t, in, "$s equals $c"))

	eval(t, in, `set m [$s convert_to_mono]`)
	assert.Equal(t, "1", eval(t, in, "$s equals $m"))
	eval(t, in, `set e [$s extract_channel 1]`)
	assert.Equal(t, "1", eval(t, in, "$e equals $s"))
}

func TestVectorBuffer(t *testing.T) {
	in := newInterp(t)
	eval(t, in, `set s [Sound new {{1 2 3} {4 5 6}} 10]`)

	assert.Equal(t, "2 3", eval(t, in, "buffer $s shape"))
	assert.Equal(t, "0", eval(t, in, "buffer $s readonly"))
	assert.Equal(t, "5.0", eval(t, in, "buffer $s get 1 1"))
	eval(t, in, "buffer $s set 9 0 2")
	assert.Equal(t, "9.0", eval(t, in, "$s get_value 0.25 1 nearest"))

	obj := in.Var("s")
	buf, err := in.BufferOf(obj)
	require.NoError(t, err)
	inst, ok := obj.Instance()
	require.True(t, ok)
	snd := inst.Value().(*praat.Sound)
	assert.Equal(t, snd.Values(), buf.Data)
}

func TestFrozenVectorBufferIsReadOnly(t *testing.T) {
	in := newInterp(t)

	obj, err := in.Wrap(praat.NewIntensity([]float64{60, 70, 80}, 0.05, 0.1))
	require.NoError(t, err)
	in.SetVar("i", obj)

	assert.Equal(t, "Intensity", eval(t, in, "typeof $i"))
	assert.Equal(t, "1", eval(t, in, "buffer $i readonly"))
	assert.Equal(t, "70.0", eval(t, in, "buffer $i get 0 1"))
	_, err = in.Eval("buffer $i set 1 0 1")
	assert.ErrorIs(t, err, perrors.ErrReadOnlyBuffer)
}

func TestDestroyReleasesNativeReference(t *testing.T) {
	in := newInterp(t)
	obj, err := in.Eval(`Sound new {{1 2}} 10`)
	require.NoError(t, err)
	inst, ok := obj.Instance()
	require.True(t, ok)
	snd := inst.Value().(*praat.Sound)
	assert.EqualValues(t, 1, snd.RefCount())

	in.SetVar("s", obj)
	eval(t, in, "$s destroy")
	assert.True(t, snd.Destroyed())
	assert.False(t, binding.Owned(snd))
}

func TestCloseReleasesEverything(t *testing.T) {
	in, err := parselmouth.New()
	require.NoError(t, err)

	var sounds []*praat.Sound
	for range 3 {
		obj, err := in.Eval(`Sound new {{1 2}} 10`)
		require.NoError(t, err)
		inst, _ := obj.Instance()
		sounds = append(sounds, inst.Value().(*praat.Sound))
	}
	in.Close()
	for _, s := range sounds {
		assert.True(t, s.Destroyed())
	}
}

func TestSharedSoundAcrossInterpreters(t *testing.T) {
	first, err := parselmouth.New()
	require.NoError(t, err)
	second, err := parselmouth.New()
	require.NoError(t, err)

	snd, err := praat.NewSound([][]float64{{1, 2}}, 10)
	require.NoError(t, err)

	owner, err := first.Wrap(snd)
	require.NoError(t, err)
	first.SetVar("s", owner)
	obj, err := second.Wrap(snd)
	require.NoError(t, err)
	second.SetVar("s", obj)
	assert.Equal(t, "2", eval(t, second, "$s cget nx"))

	second.Close()
	assert.False(t, snd.Destroyed())
	assert.True(t, binding.Owned(snd))

	first.Close()
	assert.True(t, snd.Destroyed())
	assert.False(t, binding.Owned(snd))
}

func TestLapackVersion(t *testing.T) {
	in := newInterp(t)
	assert.Equal(t, "3 1 1", eval(t, in, "lapack_version"))
}

func TestNewWithConfig(t *testing.T) {
	cfg, err := parselmouth.ParseConfig([]byte(`
enums:
  overrides:
    WindowShape: false
log:
  level: debug
`))
	require.NoError(t, err)

	var logs bytes.Buffer
	in := newInterp(t,
		parselmouth.WithConfig(cfg),
		parselmouth.WithLogger(cfg.Log.Logger(&logs)),
	)

	_, err = in.Eval("WindowShape hanning")
	assert.ErrorIs(t, err, perrors.ErrInvalidEnumValue)
	assert.Equal(t, "HANNING", eval(t, in, "WindowShape HANNING"))
	assert.Equal(t, "SUM", eval(t, in, "AmplitudeScaling sum"))

	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "name=WindowShape")
}

func TestWithOutput(t *testing.T) {
	var out bytes.Buffer
	in := newInterp(t,
		parselmouth.WithOutput(&out),
		parselmouth.WithLogger(slog.New(slog.DiscardHandler)),
	)
	eval(t, in, `puts [[Sound new {{1 2}} 10] cget nx]`)
	assert.Equal(t, "2\n", out.String())
}

func ExampleNew() {
	in, err := parselmouth.New(parselmouth.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		panic(err)
	}
	defer in.Close()

	in.Eval(`set s [Sound new {{0 1 0 -1}} 4]`)
	part, _ := in.Eval(`[$s extract_part 0.25 0.75 rectangular 1 false] values`)
	fmt.Println(part)
	// Output: 1.0 0.0
}
