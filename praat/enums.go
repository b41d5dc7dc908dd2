package praat

import "fmt"

// Interpolation selects how values between samples are computed.
type Interpolation int

const (
	InterpolationNearest Interpolation = iota
	InterpolationLinear
	InterpolationCubic
	InterpolationSinc70
	InterpolationSinc700
)

var interpolationLabels = [...]string{"NEAREST", "LINEAR", "CUBIC", "SINC70", "SINC700"}

func (k Interpolation) String() string { return label(interpolationLabels[:], int(k)) }

// Interpolations lists the members in declaration order.
func Interpolations() []Interpolation {
	return []Interpolation{
		InterpolationNearest, InterpolationLinear, InterpolationCubic,
		InterpolationSinc70, InterpolationSinc700,
	}
}

// WindowShape is the window applied when extracting part of a sound.
type WindowShape int

const (
	WindowRectangular WindowShape = iota
	WindowTriangular
	WindowParabolic
	WindowHanning
	WindowHamming
	WindowGaussian1
	WindowGaussian2
	WindowGaussian3
	WindowGaussian4
	WindowGaussian5
	WindowKaiser1
	WindowKaiser2
)

var windowShapeLabels = [...]string{
	"RECTANGULAR", "TRIANGULAR", "PARABOLIC", "HANNING", "HAMMING",
	"GAUSSIAN1", "GAUSSIAN2", "GAUSSIAN3", "GAUSSIAN4", "GAUSSIAN5",
	"KAISER1", "KAISER2",
}

func (w WindowShape) String() string { return label(windowShapeLabels[:], int(w)) }

// WindowShapes lists the members in declaration order.
func WindowShapes() []WindowShape {
	shapes := make([]WindowShape, len(windowShapeLabels))
	for i := range shapes {
		shapes[i] = WindowShape(i)
	}
	return shapes
}

// AmplitudeScaling selects how a convolution result is scaled.
type AmplitudeScaling int

const (
	ScalingIntegral AmplitudeScaling = iota + 1
	ScalingSum
	ScalingNormalize
	ScalingPeak099
)

var amplitudeScalingLabels = [...]string{"", "INTEGRAL", "SUM", "NORMALIZE", "PEAK_0_99"}

func (a AmplitudeScaling) String() string { return label(amplitudeScalingLabels[:], int(a)) }

// AmplitudeScalings lists the members in declaration order.
func AmplitudeScalings() []AmplitudeScaling {
	return []AmplitudeScaling{ScalingIntegral, ScalingSum, ScalingNormalize, ScalingPeak099}
}

// SignalOutsideTimeDomain selects what a signal is assumed to be outside
// its time domain.
type SignalOutsideTimeDomain int

const (
	OutsideZero SignalOutsideTimeDomain = iota + 1
	OutsideSimilar
)

var signalOutsideLabels = [...]string{"", "ZERO", "SIMILAR"}

func (s SignalOutsideTimeDomain) String() string { return label(signalOutsideLabels[:], int(s)) }

// SignalOutsideTimeDomains lists the members in declaration order.
func SignalOutsideTimeDomains() []SignalOutsideTimeDomain {
	return []SignalOutsideTimeDomain{OutsideZero, OutsideSimilar}
}

func label(labels []string, i int) string {
	if i < 0 || i >= len(labels) || labels[i] == "" {
		return fmt.Sprintf("%d", i)
	}
	return labels[i]
}
