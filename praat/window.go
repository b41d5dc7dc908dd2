package praat

import "math"

// at returns the window value at relative position p in [0, 1].
func (w WindowShape) at(p float64) float64 {
	if p < 0 || p > 1 {
		return 0
	}
	switch w {
	case WindowTriangular:
		return 1 - math.Abs(2*p-1)
	case WindowParabolic:
		return 1 - (2*p-1)*(2*p-1)
	case WindowHanning:
		return 0.5 - 0.5*math.Cos(2*math.Pi*p)
	case WindowHamming:
		return 0.54 - 0.46*math.Cos(2*math.Pi*p)
	case WindowGaussian1, WindowGaussian2, WindowGaussian3, WindowGaussian4, WindowGaussian5:
		k := float64(w - WindowGaussian1 + 1)
		edge := math.Exp(-3 * k)
		return (math.Exp(-12*k*(p-0.5)*(p-0.5)) - edge) / (1 - edge)
	case WindowKaiser1, WindowKaiser2:
		alpha := 2 * math.Pi
		if w == WindowKaiser2 {
			alpha = 4 * math.Pi
		}
		r := 2*p - 1
		return besselI0(alpha*math.Sqrt(1-r*r)) / besselI0(alpha)
	}
	return 1
}

// besselI0 is the modified Bessel function of the first kind, order 0.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	for k := 1; k < 50; k++ {
		term *= (x / (2 * float64(k))) * (x / (2 * float64(k)))
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
