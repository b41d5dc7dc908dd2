// Package praat is the native object library exposed to the host: a closed
// hierarchy of reference-counted analysis objects.
//
//	Thing
//	└── Data
//	    ├── Vector
//	    │   ├── Sound
//	    │   ├── Intensity
//	    │   └── Harmonicity
//	    ├── Spectrum
//	    ├── Spectrogram
//	    ├── Pitch
//	    ├── Formant
//	    └── MFCC
//
// Every object starts with one reference, owned by its creator. Retain adds
// a reference; Release drops one and destroys the object when none remain.
package praat
