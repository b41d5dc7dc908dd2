package praat

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/ygrebnov/errorc"
)

var namespace = errorc.Namespace("praat")

var (
	ErrAlreadyDestroyed = namespace.NewError("object already destroyed")
	ErrChannel          = namespace.NewError("channel out of range")
	ErrShape            = namespace.NewError("inconsistent number of samples")
	ErrFrequency        = namespace.NewError("sampling frequency must be positive")
	ErrIncompatible     = namespace.NewError("objects are incompatible")
)

// Object is implemented by every type of the hierarchy.
type Object interface {
	// Retain adds a reference. It panics on a destroyed object.
	Retain()
	// Release drops a reference, destroying the object when none remain.
	Release() error
	RefCount() int32
	Destroyed() bool
	Name() string
	SetName(name string)
	ClassName() string
	Info() string
	thing() *Thing
}

// Thing is the root of the hierarchy. It carries an intrusive reference
// count starting at one for the creator.
type Thing struct {
	self  Object
	class string
	name  string
	refs  atomic.Int32
	dead  atomic.Bool
}

// initThing must be called by every constructor with the outermost value.
func (t *Thing) initThing(self Object, class string) {
	t.self = self
	t.class = class
	t.refs.Store(1)
}

func (t *Thing) thing() *Thing { return t }

func (t *Thing) Retain() {
	if t.dead.Load() {
		panic(errorc.With(ErrAlreadyDestroyed, errorc.Field("class", t.class)))
	}
	t.refs.Add(1)
}

func (t *Thing) Release() error {
	n := t.refs.Add(-1)
	if n < 0 {
		t.refs.Add(1)
		return errorc.With(ErrAlreadyDestroyed, errorc.Field("class", t.class))
	}
	if n == 0 {
		t.dead.Store(true)
		if d, ok := t.self.(interface{ destroy() }); ok {
			d.destroy()
		}
	}
	return nil
}

func (t *Thing) RefCount() int32     { return t.refs.Load() }
func (t *Thing) Destroyed() bool     { return t.dead.Load() }
func (t *Thing) Name() string        { return t.name }
func (t *Thing) SetName(name string) { t.name = name }
func (t *Thing) ClassName() string   { return t.class }

// Info returns a human-readable description of the object.
func (t *Thing) Info() string {
	lines := []string{
		"Object type: " + t.class,
		"Object name: " + t.name,
	}
	if l, ok := t.self.(interface{ infoLines() []string }); ok {
		lines = append(lines, l.infoLines()...)
	}
	return strings.Join(lines, "\n")
}

// Data is the base of all objects that hold analysable content.
type Data struct {
	Thing
}

// Copy returns a deep copy with a fresh reference count and the same name.
func (d *Data) Copy() Object {
	c, ok := d.self.(interface{ clone() Object })
	if !ok {
		panic(fmt.Sprintf("praat: %s cannot be copied", d.class))
	}
	cp := c.clone()
	cp.SetName(d.name)
	return cp
}

// Equal reports whether other is of the same class with the same content.
// Names are not compared.
func (d *Data) Equal(other Object) bool {
	if other == nil || other.ClassName() != d.class {
		return false
	}
	a, okA := d.self.(interface{ payload() any })
	b, okB := other.(interface{ payload() any })
	if !okA || !okB {
		return d.self == other
	}
	return reflect.DeepEqual(a.payload(), b.payload())
}
