// Package parselmouth exposes the praat object library to an embedded
// script interpreter.
//
// # Overview
//
// The praat types form a closed hierarchy (Thing, Data, Vector, Sound, ...)
// and a handful of enumerations. Each one has a descriptor in the binding
// table returned by [PraatBindings]. Registration runs in two phases: every
// class and enum is declared first, so initializers may refer to any type
// in the table regardless of order, then every descriptor attaches its
// constructors, methods and properties.
//
// # Quick Start
//
//	in, err := parselmouth.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer in.Close()
//
//	in.Eval(`set s [Sound new {{0 1 0 -1}} 4]`)
//	in.Eval(`$s extract_part 0 0 hanning 1 true`)
//
// Enum parameters accept enum values or strings. Strings are matched
// against the labels exactly first and then, for enums registered
// case-insensitively, after uppercasing.
//
// # Ownership
//
// Native objects returned to scripts are owned by their wrapper. The
// native reference is released exactly once: by "$obj destroy", when the
// interpreter is closed, or when the wrapper becomes unreachable.
//
// # Configuration
//
// [LoadConfig] reads a YAML file:
//
//	enums:
//	  case_insensitive: true
//	  overrides:
//	    WindowShape: false
//	log:
//	  level: debug
//	  format: json
//	interp:
//	  recursion_limit: 500
package parselmouth
