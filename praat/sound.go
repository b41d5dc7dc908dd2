package praat

import (
	"fmt"
	"math"

	"github.com/ygrebnov/errorc"
)

// Sound is a multichannel sampled signal. x is time in seconds.
type Sound struct {
	Vector
}

// NewSound creates a sound from channels × samples values. The optional
// start time defaults to 0.
func NewSound(values [][]float64, samplingFrequency float64, startTime ...float64) (*Sound, error) {
	if samplingFrequency <= 0 || math.IsNaN(samplingFrequency) || math.IsInf(samplingFrequency, 0) {
		return nil, errorc.With(ErrFrequency, errorc.Field("sampling_frequency", fmt.Sprint(samplingFrequency)))
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, errorc.With(ErrShape, errorc.Field("channels", fmt.Sprint(len(values))))
	}
	nx := len(values[0])
	z := make([]float64, 0, len(values)*nx)
	for c, row := range values {
		if len(row) != nx {
			return nil, errorc.With(ErrShape, errorc.Field("channel", fmt.Sprint(c+1)))
		}
		z = append(z, row...)
	}
	start := 0.0
	if len(startTime) > 0 {
		start = startTime[0]
	}
	return newSound(len(values), nx, samplingFrequency, start, z), nil
}

func newSound(ny, nx int, fs, start float64, z []float64) *Sound {
	dx := 1 / fs
	s := &Sound{}
	s.setup(s, "Sound", start, start+float64(nx)*dx, nx, dx, start+0.5*dx, ny, z)
	return s
}

func (s *Sound) SamplingFrequency() float64 { return 1 / s.dx }

// SetSamplingFrequency changes the sampling frequency, keeping the start
// time and the samples.
func (s *Sound) SetSamplingFrequency(fs float64) error {
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return errorc.With(ErrFrequency, errorc.Field("sampling_frequency", fmt.Sprint(fs)))
	}
	s.dx = 1 / fs
	s.x1 = s.xmin + 0.5*s.dx
	s.xmax = s.xmin + float64(s.nx)*s.dx
	return nil
}

func (s *Sound) Duration() float64 { return s.xmax - s.xmin }

// Amplitudes returns a copy of the samples, one slice per channel.
func (s *Sound) Amplitudes() [][]float64 {
	out := make([][]float64, s.ny)
	for c := range out {
		out[c] = append([]float64(nil), s.Row(c)...)
	}
	return out
}

// ExtractChannel returns channel c (1-based) as a mono sound.
func (s *Sound) ExtractChannel(c int) (*Sound, error) {
	if c < 1 || c > s.ny {
		return nil, errorc.With(ErrChannel, errorc.Field("channel", fmt.Sprint(c)))
	}
	z := append([]float64(nil), s.Row(c-1)...)
	out := newSound(1, s.nx, s.SamplingFrequency(), s.xmin, z)
	out.name = s.name
	return out, nil
}

// ConvertToMono averages all channels.
func (s *Sound) ConvertToMono() *Sound {
	z := make([]float64, s.nx)
	for c := range s.ny {
		for i, x := range s.Row(c) {
			z[i] += x
		}
	}
	for i := range z {
		z[i] /= float64(s.ny)
	}
	out := newSound(1, s.nx, s.SamplingFrequency(), s.xmin, z)
	out.name = s.name
	return out
}

// ExtractPart returns the part between from and to, multiplied by a window.
// relativeWidth widens (>1) or narrows (<1) the part around its centre.
// When to <= from the whole domain is used. Samples outside the domain are
// zero. Without preserveTimes the result starts at time 0.
func (s *Sound) ExtractPart(from, to float64, window WindowShape, relativeWidth float64, preserveTimes bool) (*Sound, error) {
	if to <= from {
		from, to = s.xmin, s.xmax
	}
	if relativeWidth <= 0 {
		return nil, errorc.With(ErrIncompatible, errorc.Field("relative_width", fmt.Sprint(relativeWidth)))
	}
	mid, half := (from+to)/2, relativeWidth*(to-from)/2
	from, to = mid-half, mid+half

	first := int(math.Ceil(s.XToIndex(from)))
	last := int(math.Floor(s.XToIndex(to)))
	if last < first {
		return nil, errorc.With(ErrShape, errorc.Field("part", fmt.Sprintf("%g-%g", from, to)))
	}
	nx := last - first + 1
	z := make([]float64, s.ny*nx)
	for c := range s.ny {
		row := s.Row(c)
		for i := range nx {
			src := first + i
			if src < 0 || src >= s.nx {
				continue
			}
			t := s.IndexToX(src)
			z[c*nx+i] = row[src] * window.at((t-from)/(to-from))
		}
	}

	out := &Sound{}
	x1 := s.IndexToX(first)
	xmin, xmax := from, to
	if !preserveTimes {
		x1 -= from
		xmin, xmax = 0, to-from
	}
	out.setup(out, "Sound", xmin, xmax, nx, s.dx, x1, s.ny, z)
	out.name = s.name
	return out, nil
}

// Convolve convolves s with other. Both sounds must have the same sampling
// frequency; a mono sound is convolved with every channel of the other.
//
// With OutsideZero the result is the full linear convolution. With
// OutsideSimilar both signals are taken as periodic with the length of the
// longer one, and the result is their circular convolution over that period.
func (s *Sound) Convolve(other *Sound, scaling AmplitudeScaling, outside SignalOutsideTimeDomain) (*Sound, error) {
	if math.Abs(s.dx-other.dx) > 1e-12*s.dx {
		return nil, errorc.With(ErrIncompatible, errorc.Field("sampling_frequency",
			fmt.Sprintf("%g != %g", s.SamplingFrequency(), other.SamplingFrequency())))
	}
	ny := max(s.ny, other.ny)
	if s.ny != other.ny && s.ny != 1 && other.ny != 1 {
		return nil, errorc.With(ErrIncompatible, errorc.Field("channels", fmt.Sprintf("%d != %d", s.ny, other.ny)))
	}
	row := func(snd *Sound, c int) []float64 { return snd.Row(min(c, snd.ny-1)) }

	var nx int
	var xmin, xmax, x1 float64
	switch outside {
	case OutsideSimilar:
		nx = max(s.nx, other.nx)
		longer := s
		if other.nx > s.nx {
			longer = other
		}
		xmin, xmax, x1 = longer.xmin, longer.xmin+float64(nx)*s.dx, longer.x1
	default:
		nx = s.nx + other.nx - 1
		xmin, xmax = s.xmin+other.xmin, s.xmax+other.xmax
		x1 = s.x1 + other.x1
	}

	z := make([]float64, ny*nx)
	for c := range ny {
		a, b := row(s, c), row(other, c)
		out := z[c*nx : (c+1)*nx]
		for i, av := range a {
			for j, bv := range b {
				k := i + j
				if outside == OutsideSimilar {
					k %= nx
				}
				out[k] += av * bv
			}
		}
		scale(out, a, b, scaling, s.dx)
	}

	res := &Sound{}
	res.setup(res, "Sound", xmin, xmax, nx, s.dx, x1, ny, z)
	return res, nil
}

func scale(out, a, b []float64, scaling AmplitudeScaling, dx float64) {
	factor := 1.0
	switch scaling {
	case ScalingIntegral:
		factor = dx
	case ScalingNormalize:
		var ea, eb float64
		for _, x := range a {
			ea += x * x
		}
		for _, x := range b {
			eb += x * x
		}
		if e := math.Sqrt(ea * eb); e > 0 {
			factor = 1 / e
		}
	case ScalingPeak099:
		peak := 0.0
		for _, x := range out {
			peak = max(peak, math.Abs(x))
		}
		if peak > 0 {
			factor = 0.99 / peak
		}
	}
	for i := range out {
		out[i] *= factor
	}
}

func (s *Sound) infoLines() []string {
	return append(s.Vector.infoLines(),
		fmt.Sprintf("Sampling frequency: %g Hz", s.SamplingFrequency()),
		fmt.Sprintf("Duration: %g seconds", s.Duration()),
	)
}

func (s *Sound) clone() Object {
	cp := &Sound{}
	s.copyInto(&cp.Vector, cp)
	return cp
}
