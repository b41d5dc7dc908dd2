package binding

import (
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
	"github.com/feather-lang/parselmouth/interp"
)

// Scope is the host namespace seen by descriptors during registration. It
// resolves native type identities to the host symbols declared for them.
type Scope struct {
	interp     *interp.Interp
	classes    map[reflect.Type]*interp.Class
	enums      map[reflect.Type]*interp.Enum
	enumCaseFn func(name string, declared bool) bool
}

// NewScope returns an empty scope over in.
func NewScope(in *interp.Interp) *Scope {
	return &Scope{
		interp:  in,
		classes: make(map[reflect.Type]*interp.Class),
		enums:   make(map[reflect.Type]*interp.Enum),
	}
}

// Interp returns the host runtime.
func (s *Scope) Interp() *interp.Interp { return s.interp }

// Class resolves a declared class. Unknown identities fail with
// ErrUnresolvedType naming the type.
func (s *Scope) Class(t reflect.Type) (*interp.Class, error) {
	if c, ok := s.classes[t]; ok {
		return c, nil
	}
	return nil, errorc.With(errors.ErrUnresolvedType, errorc.String(errors.FieldTypeName, typeName(t)))
}

// Enum resolves a declared enum.
func (s *Scope) Enum(t reflect.Type) (*interp.Enum, error) {
	if e, ok := s.enums[t]; ok {
		return e, nil
	}
	return nil, errorc.With(errors.ErrUnresolvedType, errorc.String(errors.FieldTypeName, typeName(t)))
}

// ClassOf resolves the class declared for T.
func ClassOf[T any](s *Scope) (*interp.Class, error) {
	return s.Class(reflect.TypeFor[T]())
}

// EnumOf resolves the enum declared for E.
func EnumOf[E ~int](s *Scope) (*interp.Enum, error) {
	return s.Enum(reflect.TypeFor[E]())
}

func (s *Scope) caseInsensitive(name string, declared bool) bool {
	if s.enumCaseFn == nil {
		return declared
	}
	return s.enumCaseFn(name, declared)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
