package parselmouth

import (
	"github.com/feather-lang/parselmouth/binding"
	"github.com/feather-lang/parselmouth/interp"
)

// Bindings is an ordered table of class and enum descriptors.
//
// Order within the table does not matter for correctness: the registrar
// declares parents before children and every symbol before any
// initialization.
type Bindings struct {
	Classes []binding.Descriptor
	Enums   []binding.Descriptor
}

// PraatBindings returns a fresh descriptor table for the whole praat
// hierarchy. Descriptors are stateful, so every registration needs its own
// table.
func PraatBindings() *Bindings {
	return &Bindings{
		Classes: praatClasses(),
		Enums:   praatEnums(),
	}
}

// Registrar returns a registrar over the table's descriptors.
func (b *Bindings) Registrar(in *interp.Interp, opts ...binding.Option) *binding.Registrar {
	return binding.NewRegistrar(in, b.Classes, b.Enums, opts...)
}

// RegisterAll declares then initializes every descriptor of the table in
// in. A failed registration leaves in partially populated; discard it.
func (b *Bindings) RegisterAll(in *interp.Interp, opts ...binding.Option) error {
	return b.Registrar(in, opts...).RegisterAll()
}

// RegisterAll registers the praat hierarchy in in.
func RegisterAll(in *interp.Interp, opts ...binding.Option) error {
	return PraatBindings().RegisterAll(in, opts...)
}
