package interp

import "fmt"

// Obj is a host value.
// It follows TCL semantics where values have both a string representation
// and an optional internal representation that can be lazily computed.
type Obj struct {
	bytes  string  // string representation ("" = empty string if intrep == nil)
	intrep ObjType // internal representation (nil = pure string)
}

// ObjType defines the core behavior for an internal representation.
type ObjType interface {
	// Name returns the type name (e.g., "int", "list").
	Name() string

	// UpdateString regenerates string representation from this internal rep.
	UpdateString() string

	// Dup creates a copy of this internal representation.
	Dup() ObjType
}

// IntoInt can convert directly to int64.
type IntoInt interface {
	IntoInt() (int64, bool)
}

// IntoDouble can convert directly to float64.
type IntoDouble interface {
	IntoDouble() (float64, bool)
}

// IntoList can convert directly to a list.
type IntoList interface {
	IntoList() ([]*Obj, bool)
}

// IntoDict can convert directly to a dictionary.
type IntoDict interface {
	IntoDict() (map[string]*Obj, []string, bool)
}

// IntoBool can convert directly to a boolean.
type IntoBool interface {
	IntoBool() (bool, bool)
}

// NewString creates a pure string object.
func NewString(s string) *Obj { return &Obj{bytes: s} }

// NewInt creates an integer object.
func NewInt(v int64) *Obj { return &Obj{intrep: IntType(v)} }

// NewDouble creates a floating-point object.
func NewDouble(v float64) *Obj { return &Obj{intrep: DoubleType(v)} }

// NewBool creates a boolean object, stored as int 1 (true) or 0 (false).
func NewBool(v bool) *Obj {
	if v {
		return NewInt(1)
	}
	return NewInt(0)
}

// NewList creates a list object from the given items.
func NewList(items ...*Obj) *Obj { return &Obj{intrep: ListType(items)} }

// NewObj creates an object with a custom ObjType internal representation.
func NewObj(intrep ObjType) *Obj { return &Obj{intrep: intrep} }

// String returns the string representation of the object.
// If the string representation is empty and there's an internal representation,
// it regenerates the string from the internal rep.
func (o *Obj) String() string {
	if o == nil {
		return ""
	}
	if o.bytes == "" && o.intrep != nil {
		o.bytes = o.intrep.UpdateString()
	}
	return o.bytes
}

// Type returns the type name of the object.
// Returns "string" for pure string objects (no internal representation).
func (o *Obj) Type() string {
	if o == nil || o.intrep == nil {
		return "string"
	}
	return o.intrep.Name()
}

// InternalRep returns the internal representation of the object.
// Returns nil for pure string objects.
//
// Use type assertion to access custom ObjType implementations:
//
//	if inst, ok := obj.InternalRep().(*ForeignType); ok {
//	    // use inst
//	}
func (o *Obj) InternalRep() ObjType {
	if o == nil {
		return nil
	}
	return o.intrep
}

// invalidate clears the cached string representation.
// Should be called after mutating the internal representation.
func (o *Obj) invalidate() {
	if o == nil {
		return
	}
	o.bytes = ""
}

// Copy creates a shallow copy of the object.
// If the object has an internal representation, it is duplicated via Dup().
func (o *Obj) Copy() *Obj {
	if o == nil {
		return nil
	}
	if o.intrep == nil {
		return &Obj{bytes: o.bytes}
	}
	return &Obj{bytes: o.bytes, intrep: o.intrep.Dup()}
}

// Int returns the integer value of this object, shimmering if needed.
func (o *Obj) Int() (int64, error) {
	return AsInt(o)
}

// Double returns the float64 value of this object, shimmering if needed.
func (o *Obj) Double() (float64, error) {
	return AsDouble(o)
}

// Bool returns the boolean value of this object using TCL boolean rules.
func (o *Obj) Bool() (bool, error) {
	return AsBool(o)
}

// List returns the list elements of this object, shimmering if needed.
// If the object is a pure string, it will be parsed as a TCL list.
func (o *Obj) List() ([]*Obj, error) {
	return AsList(o)
}

// Dict returns the dict representation of this object, shimmering if needed.
func (o *Obj) Dict() (*DictType, error) {
	if o == nil {
		return nil, fmt.Errorf("cannot convert nil object to dict")
	}
	return AsDict(o)
}

// Instance returns the bound native instance carried by this object, if any.
func (o *Obj) Instance() (*Instance, bool) {
	if o == nil {
		return nil, false
	}
	ft, ok := o.intrep.(*ForeignType)
	if !ok || ft.instance == nil {
		return nil, false
	}
	return ft.instance, true
}
