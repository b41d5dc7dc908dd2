package praat

import (
	"fmt"
	"math"
	"slices"

	"github.com/ygrebnov/errorc"
)

// Vector is a regularly sampled function of x with one or more channels.
// Samples are stored row-major: channel c, sample i is z[c*nx+i].
type Vector struct {
	Data
	xmin, xmax float64
	nx         int
	dx, x1     float64
	ny         int
	z          []float64
	frozen     bool
}

// setup initializes v in place. self is the outermost value embedding v.
func (v *Vector) setup(self Object, class string, xmin, xmax float64, nx int, dx, x1 float64, ny int, z []float64) {
	v.xmin, v.xmax, v.nx, v.dx, v.x1, v.ny, v.z = xmin, xmax, nx, dx, x1, ny, z
	v.initThing(self, class)
}

func (v *Vector) Xmin() float64  { return v.xmin }
func (v *Vector) Xmax() float64  { return v.xmax }
func (v *Vector) Nx() int        { return v.nx }
func (v *Vector) Dx() float64    { return v.dx }
func (v *Vector) X1() float64    { return v.x1 }
func (v *Vector) NChannels() int { return v.ny }

// Frozen reports whether the samples are read-only.
func (v *Vector) Frozen() bool { return v.frozen }

// Values returns the underlying sample storage, shared with the vector.
func (v *Vector) Values() []float64 { return v.z }

// Row returns channel c (0-based) as a slice of the underlying storage.
func (v *Vector) Row(c int) []float64 { return v.z[c*v.nx : (c+1)*v.nx] }

// Xs returns the x value of every sample.
func (v *Vector) Xs() []float64 {
	xs := make([]float64, v.nx)
	for i := range xs {
		xs[i] = v.IndexToX(i)
	}
	return xs
}

// IndexToX returns the x value of sample i (0-based).
func (v *Vector) IndexToX(i int) float64 { return v.x1 + float64(i)*v.dx }

// XToIndex returns the fractional sample index of x.
func (v *Vector) XToIndex(x float64) float64 { return (x - v.x1) / v.dx }

// GetValue returns the value at x in the given channel. Channel 0 averages
// all channels. Values outside [xmin, xmax] are NaN.
//
// Cubic and sinc interpolation are computed as linear interpolation.
func (v *Vector) GetValue(x float64, channel int, interpolation Interpolation) (float64, error) {
	if channel < 0 || channel > v.ny {
		return 0, errorc.With(ErrChannel, errorc.Field("channel", fmt.Sprint(channel)))
	}
	if x < v.xmin || x > v.xmax || v.nx == 0 {
		return math.NaN(), nil
	}
	if channel == 0 {
		sum := 0.0
		for c := range v.ny {
			sum += v.valueInRow(c, x, interpolation)
		}
		return sum / float64(v.ny), nil
	}
	return v.valueInRow(channel-1, x, interpolation), nil
}

func (v *Vector) valueInRow(c int, x float64, interpolation Interpolation) float64 {
	row := v.Row(c)
	pos := v.XToIndex(x)
	if interpolation == InterpolationNearest || v.nx == 1 {
		i := int(math.Round(pos))
		return row[min(max(i, 0), v.nx-1)]
	}
	if pos <= 0 {
		return row[0]
	}
	if pos >= float64(v.nx-1) {
		return row[v.nx-1]
	}
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	return row[i]*(1-frac) + row[i+1]*frac
}

func (v *Vector) infoLines() []string {
	return []string{
		fmt.Sprintf("Domain: %g to %g", v.xmin, v.xmax),
		fmt.Sprintf("Number of samples: %d", v.nx),
		fmt.Sprintf("Sampling period: %g", v.dx),
		fmt.Sprintf("Number of channels: %d", v.ny),
	}
}

// copyInto fills dst, embedded in self, with a deep copy of v.
func (v *Vector) copyInto(dst *Vector, self Object) {
	dst.setup(self, v.class, v.xmin, v.xmax, v.nx, v.dx, v.x1, v.ny, slices.Clone(v.z))
	dst.frozen = v.frozen
}

func (v *Vector) clone() Object {
	cp := &Vector{}
	v.copyInto(cp, cp)
	return cp
}

func (v *Vector) payload() any {
	return struct {
		Xmin, Xmax, Dx, X1 float64
		Nx, Ny             int
		Z                  []float64
	}{v.xmin, v.xmax, v.dx, v.x1, v.nx, v.ny, v.z}
}

func (v *Vector) destroy() { v.z = nil }
