package praat

import (
	"fmt"
	"slices"
)

// Sampled describes a regular grid along one axis.
type Sampled struct {
	Xmin, Xmax float64
	Nx         int
	Dx, X1     float64
}

func (s Sampled) infoLine(axis string) string {
	return fmt.Sprintf("%s domain: %g to %g (%d samples, step %g)", axis, s.Xmin, s.Xmax, s.Nx, s.Dx)
}

// Spectrum is a complex spectrum over frequency.
type Spectrum struct {
	Data
	Sampled
	Re, Im []float64
}

// NewSpectrum creates a spectrum with bins at 0, dx, ..., up to maxFrequency.
func NewSpectrum(re, im []float64, maxFrequency float64) *Spectrum {
	n := len(re)
	dx := 0.0
	if n > 1 {
		dx = maxFrequency / float64(n-1)
	}
	s := &Spectrum{
		Sampled: Sampled{Xmin: 0, Xmax: maxFrequency, Nx: n, Dx: dx, X1: 0},
		Re:      re,
		Im:      im,
	}
	s.initThing(s, "Spectrum")
	return s
}

func (s *Spectrum) infoLines() []string { return []string{s.infoLine("Frequency")} }
func (s *Spectrum) payload() any        { return []any{s.Sampled, s.Re, s.Im} }

func (s *Spectrum) clone() Object {
	return NewSpectrum(slices.Clone(s.Re), slices.Clone(s.Im), s.Xmax)
}

// Spectrogram is power over time (x) and frequency (y).
type Spectrogram struct {
	Data
	Time, Frequency Sampled
	Power           [][]float64
}

// NewSpectrogram creates a spectrogram. power is indexed [frequency][time].
func NewSpectrogram(time, frequency Sampled, power [][]float64) *Spectrogram {
	s := &Spectrogram{Time: time, Frequency: frequency, Power: power}
	s.initThing(s, "Spectrogram")
	return s
}

func (s *Spectrogram) infoLines() []string {
	return []string{s.Time.infoLine("Time"), s.Frequency.infoLine("Frequency")}
}
func (s *Spectrogram) payload() any { return []any{s.Time, s.Frequency, s.Power} }

func (s *Spectrogram) clone() Object {
	power := make([][]float64, len(s.Power))
	for i, row := range s.Power {
		power[i] = slices.Clone(row)
	}
	return NewSpectrogram(s.Time, s.Frequency, power)
}

// Pitch is a fundamental frequency track. Unvoiced frames are 0.
type Pitch struct {
	Data
	Sampled
	Ceiling     float64
	Frequencies []float64
}

// NewPitch creates a pitch track.
func NewPitch(time Sampled, ceiling float64, frequencies []float64) *Pitch {
	p := &Pitch{Sampled: time, Ceiling: ceiling, Frequencies: frequencies}
	p.initThing(p, "Pitch")
	return p
}

func (p *Pitch) infoLines() []string {
	return []string{p.infoLine("Time"), fmt.Sprintf("Ceiling: %g Hz", p.Ceiling)}
}
func (p *Pitch) payload() any { return []any{p.Sampled, p.Ceiling, p.Frequencies} }

func (p *Pitch) clone() Object {
	return NewPitch(p.Sampled, p.Ceiling, slices.Clone(p.Frequencies))
}

// Formant holds formant frequencies per frame.
type Formant struct {
	Data
	Sampled
	Frames [][]float64
}

// NewFormant creates a formant track. frames[i] lists the formants of frame i.
func NewFormant(time Sampled, frames [][]float64) *Formant {
	f := &Formant{Sampled: time, Frames: frames}
	f.initThing(f, "Formant")
	return f
}

func (f *Formant) infoLines() []string { return []string{f.infoLine("Time")} }
func (f *Formant) payload() any        { return []any{f.Sampled, f.Frames} }

func (f *Formant) clone() Object {
	frames := make([][]float64, len(f.Frames))
	for i, fr := range f.Frames {
		frames[i] = slices.Clone(fr)
	}
	return NewFormant(f.Sampled, frames)
}

// MFCC holds mel-frequency cepstral coefficients per frame.
type MFCC struct {
	Data
	Sampled
	Coefficients [][]float64
}

// NewMFCC creates an MFCC object. coefficients[i] are the values of frame i.
func NewMFCC(time Sampled, coefficients [][]float64) *MFCC {
	m := &MFCC{Sampled: time, Coefficients: coefficients}
	m.initThing(m, "MFCC")
	return m
}

func (m *MFCC) infoLines() []string { return []string{m.infoLine("Time")} }
func (m *MFCC) payload() any        { return []any{m.Sampled, m.Coefficients} }

func (m *MFCC) clone() Object {
	coeffs := make([][]float64, len(m.Coefficients))
	for i, c := range m.Coefficients {
		coeffs[i] = slices.Clone(c)
	}
	return NewMFCC(m.Sampled, coeffs)
}

// Intensity is a read-only intensity contour in dB.
type Intensity struct {
	Vector
}

// NewIntensity creates an intensity contour with frames at x1, x1+dx, ...
func NewIntensity(values []float64, x1, dx float64) *Intensity {
	in := &Intensity{}
	setupFrozen(&in.Vector, in, "Intensity", values, x1, dx)
	return in
}

func (in *Intensity) clone() Object {
	cp := &Intensity{}
	in.copyInto(&cp.Vector, cp)
	return cp
}

// Harmonicity is a read-only harmonics-to-noise ratio contour in dB.
type Harmonicity struct {
	Vector
}

// NewHarmonicity creates a harmonicity contour with frames at x1, x1+dx, ...
func NewHarmonicity(values []float64, x1, dx float64) *Harmonicity {
	h := &Harmonicity{}
	setupFrozen(&h.Vector, h, "Harmonicity", values, x1, dx)
	return h
}

func (h *Harmonicity) clone() Object {
	cp := &Harmonicity{}
	h.copyInto(&cp.Vector, cp)
	return cp
}

func setupFrozen(v *Vector, self Object, class string, values []float64, x1, dx float64) {
	xmin := x1 - 0.5*dx
	v.setup(self, class, xmin, xmin+float64(len(values))*dx, len(values), dx, x1, 1, values)
	v.frozen = true
}
