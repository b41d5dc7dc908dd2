package praat_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feather-lang/parselmouth/praat"
)

func TestNewSound(t *testing.T) {
	s, err := praat.NewSound([][]float64{{0, 1, 0, -1}, {1, 1, 1, 1}}, 4)
	require.NoError(t, err)

	assert.Equal(t, 2, s.NChannels())
	assert.Equal(t, 4, s.Nx())
	assert.InDelta(t, 4.0, s.SamplingFrequency(), 1e-12)
	assert.InDelta(t, 1.0, s.Duration(), 1e-12)
	assert.InDelta(t, 0.125, s.X1(), 1e-12)
	assert.Equal(t, []float64{0, 1, 0, -1, 1, 1, 1, 1}, s.Values())
	assert.Equal(t, "Sound", s.ClassName())
	assert.EqualValues(t, 1, s.RefCount())

	shifted, err := praat.NewSound([][]float64{{1, 2}}, 10, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, shifted.Xmin(), 1e-12)
	assert.InDelta(t, 0.7, shifted.Xmax(), 1e-12)
}

func TestNewSoundErrors(t *testing.T) {
	_, err := praat.NewSound([][]float64{{1}}, 0)
	assert.ErrorIs(t, err, praat.ErrFrequency)

	_, err = praat.NewSound(nil, 100)
	assert.ErrorIs(t, err, praat.ErrShape)

	_, err = praat.NewSound([][]float64{{1, 2}, {3}}, 100)
	assert.ErrorIs(t, err, praat.ErrShape)
}

func TestSetSamplingFrequency(t *testing.T) {
	s, err := praat.NewSound([][]float64{{1, 2, 3, 4}}, 4)
	require.NoError(t, err)
	require.NoError(t, s.SetSamplingFrequency(8))
	assert.InDelta(t, 0.5, s.Duration(), 1e-12)
	assert.InDelta(t, 1.0/16, s.X1(), 1e-12)
	assert.ErrorIs(t, s.SetSamplingFrequency(-1), praat.ErrFrequency)
}

func TestGetValue(t *testing.T) {
	// Samples at 0.125, 0.375, 0.625, 0.875.
	s, err := praat.NewSound([][]float64{{0, 1, 0, -1}, {2, 2, 2, 2}}, 4)
	require.NoError(t, err)

	tests := []struct {
		name    string
		x       float64
		channel int
		interp  praat.Interpolation
		want    float64
	}{
		{"nearest on sample", 0.375, 1, praat.InterpolationNearest, 1},
		{"nearest between", 0.45, 1, praat.InterpolationNearest, 1},
		{"linear midpoint", 0.5, 1, praat.InterpolationLinear, 0.5},
		{"linear before first sample", 0.05, 1, praat.InterpolationLinear, 0},
		{"second channel", 0.5, 2, praat.InterpolationLinear, 2},
		{"average", 0.375, 0, praat.InterpolationNearest, 1.5},
		{"sinc falls back to linear", 0.5, 1, praat.InterpolationSinc70, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetValue(tt.x, tt.channel, tt.interp)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	v, err := s.GetValue(2, 1, praat.InterpolationLinear)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = s.GetValue(0.5, 3, praat.InterpolationLinear)
	assert.ErrorIs(t, err, praat.ErrChannel)
}

func TestExtractChannelAndMono(t *testing.T) {
	s, err := praat.NewSound([][]float64{{1, 2, 3}, {3, 4, 5}}, 100)
	require.NoError(t, err)
	s.SetName("stereo")

	right, err := s.ExtractChannel(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, right.Values())
	assert.Equal(t, "stereo", right.Name())

	_, err = s.ExtractChannel(0)
	assert.ErrorIs(t, err, praat.ErrChannel)

	amps := s.Amplitudes()
	assert.Equal(t, [][]float64{{1, 2, 3}, {3, 4, 5}}, amps)
	amps[0][0] = 7
	assert.Equal(t, 1.0, s.Values()[0])

	mono := s.ConvertToMono()
	assert.Equal(t, 1, mono.NChannels())
	assert.Equal(t, []float64{2, 3, 4}, mono.Values())
}

func TestExtractPart(t *testing.T) {
	// 10 samples at 0.05, 0.15, ..., 0.95.
	values := make([]float64, 10)
	for i := range values {
		values[i] = 1
	}
	s, err := praat.NewSound([][]float64{values}, 10)
	require.NoError(t, err)

	part, err := s.ExtractPart(0.2, 0.6, praat.WindowRectangular, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 4, part.Nx())
	assert.InDelta(t, 0, part.Xmin(), 1e-12)
	assert.InDelta(t, 0.4, part.Xmax(), 1e-12)
	assert.InDelta(t, 0.05, part.X1(), 1e-12)
	assert.Equal(t, []float64{1, 1, 1, 1}, part.Values())

	kept, err := s.ExtractPart(0.2, 0.6, praat.WindowRectangular, 1, true)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, kept.Xmin(), 1e-12)
	assert.InDelta(t, 0.25, kept.X1(), 1e-12)

	hann, err := s.ExtractPart(0, 1, praat.WindowHanning, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 10, hann.Nx())
	assert.Less(t, hann.Values()[0], 0.1)
	assert.Greater(t, hann.Values()[4], 0.9)

	// Widening past the domain pads with zeros.
	wide, err := s.ExtractPart(0, 1, praat.WindowRectangular, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 20, wide.Nx())
	assert.InDelta(t, 0, wide.Values()[0], 0)
	assert.InDelta(t, 1, wide.Values()[5], 0)

	whole, err := s.ExtractPart(0, 0, praat.WindowRectangular, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 10, whole.Nx())
}

func TestWindowShapes(t *testing.T) {
	s, err := praat.NewSound([][]float64{{1, 1, 1, 1, 1, 1, 1, 1, 1}}, 8)
	require.NoError(t, err)
	for _, w := range praat.WindowShapes() {
		t.Run(w.String(), func(t *testing.T) {
			part, err := s.ExtractPart(0, 0, w, 1, true)
			require.NoError(t, err)
			for _, v := range part.Values() {
				assert.GreaterOrEqual(t, v, -1e-12)
				assert.LessOrEqual(t, v, 1+1e-12)
			}
		})
	}
}

func TestConvolve(t *testing.T) {
	a, err := praat.NewSound([][]float64{{1, 2, 3}}, 10)
	require.NoError(t, err)
	b, err := praat.NewSound([][]float64{{1, 1}}, 10)
	require.NoError(t, err)

	sum, err := a.Convolve(b, praat.ScalingSum, praat.OutsideZero)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5, 3}, sum.Values())
	assert.InDelta(t, 0.5, sum.Duration(), 1e-12)

	integral, err := a.Convolve(b, praat.ScalingIntegral, praat.OutsideZero)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.3, 0.5, 0.3}, integral.Values(), 1e-12)

	circular, err := a.Convolve(b, praat.ScalingSum, praat.OutsideSimilar)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 3, 5}, circular.Values())

	peak, err := a.Convolve(b, praat.ScalingPeak099, praat.OutsideZero)
	require.NoError(t, err)
	assert.InDelta(t, 0.99, peak.Values()[2], 1e-12)

	other, err := praat.NewSound([][]float64{{1}}, 20)
	require.NoError(t, err)
	_, err = a.Convolve(other, praat.ScalingSum, praat.OutsideZero)
	assert.ErrorIs(t, err, praat.ErrIncompatible)
}

func TestReferenceCounting(t *testing.T) {
	s, err := praat.NewSound([][]float64{{1, 2}}, 10)
	require.NoError(t, err)

	s.Retain()
	assert.EqualValues(t, 2, s.RefCount())
	require.NoError(t, s.Release())
	assert.False(t, s.Destroyed())
	require.NoError(t, s.Release())
	assert.True(t, s.Destroyed())
	assert.Nil(t, s.Values())

	assert.ErrorIs(t, s.Release(), praat.ErrAlreadyDestroyed)
	assert.Panics(t, s.Retain)
}

func TestCopyAndEqual(t *testing.T) {
	s, err := praat.NewSound([][]float64{{1, 2, 3}}, 10)
	require.NoError(t, err)
	s.SetName("orig")

	cp, ok := s.Copy().(*praat.Sound)
	require.True(t, ok)
	assert.Equal(t, "orig", cp.Name())
	assert.True(t, s.Equal(cp))

	cp.Values()[0] = 9
	assert.Equal(t, 1.0, s.Values()[0])
	assert.False(t, s.Equal(cp))

	in := praat.NewIntensity([]float64{60, 70}, 0.05, 0.1)
	assert.False(t, s.Equal(in))
	assert.True(t, in.Frozen())
	icp, ok := in.Copy().(*praat.Intensity)
	require.True(t, ok)
	assert.True(t, icp.Frozen())
	assert.True(t, in.Equal(icp))
}

func TestInfo(t *testing.T) {
	s, err := praat.NewSound([][]float64{{1, 2, 3, 4}}, 4)
	require.NoError(t, err)
	s.SetName("hello")
	info := s.Info()
	assert.Contains(t, info, "Object type: Sound")
	assert.Contains(t, info, "Object name: hello")
	assert.Contains(t, info, "Sampling frequency: 4 Hz")
	assert.Contains(t, info, "Duration: 1 seconds")

	p := praat.NewPitch(praat.Sampled{Xmin: 0, Xmax: 1, Nx: 2, Dx: 0.5, X1: 0.25}, 600, []float64{100, 0})
	assert.Contains(t, p.Info(), "Ceiling: 600 Hz")
}

func TestEnumLabels(t *testing.T) {
	assert.Equal(t, "HANNING", praat.WindowHanning.String())
	assert.Equal(t, "PEAK_0_99", praat.ScalingPeak099.String())
	assert.Equal(t, "SIMILAR", praat.OutsideSimilar.String())
	assert.Equal(t, "SINC700", praat.InterpolationSinc700.String())
	assert.Equal(t, "42", praat.WindowShape(42).String())
	assert.Len(t, praat.WindowShapes(), 12)
	assert.Len(t, praat.Interpolations(), 5)
	assert.Len(t, praat.AmplitudeScalings(), 4)
	assert.Len(t, praat.SignalOutsideTimeDomains(), 2)
}
