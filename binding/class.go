package binding

import (
	"fmt"
	"reflect"

	"github.com/feather-lang/parselmouth/interp"
)

// ClassDef declares a class binding for the native type T.
type ClassDef[T comparable] struct {
	// Name is the host-visible class name.
	Name string

	// Parent is the native identity of the parent class, or nil. Use
	// TypeOf to obtain it.
	Parent reflect.Type

	// Lifetime is used for instances the host takes ownership of.
	Lifetime Lifetime[T]

	// Init attaches constructors, methods and properties. It runs after
	// every type in the table has been declared. Nil, or NoInit, attaches
	// nothing beyond what is inherited.
	Init func(b *ClassBuilder[T])
}

// TypeOf returns the native identity of T.
func TypeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

// NoInit is the initializer of classes with nothing of their own to attach.
func NoInit[T comparable](*ClassBuilder[T]) {}

// NewClass returns the descriptor for a class binding.
func NewClass[T comparable](def ClassDef[T]) Descriptor {
	return &classDescriptor[T]{def: def}
}

type classDescriptor[T comparable] struct {
	lifecycle
	def ClassDef[T]
}

func (d *classDescriptor[T]) Name() string           { return d.def.Name }
func (d *classDescriptor[T]) Identity() reflect.Type { return reflect.TypeFor[T]() }
func (d *classDescriptor[T]) Parent() reflect.Type   { return d.def.Parent }

// Declare registers the class name, identity and parent handle. Nothing is
// attached yet.
func (d *classDescriptor[T]) Declare(s *Scope) error {
	if err := d.check(Declared, d.def.Name); err != nil {
		return err
	}
	var parent *interp.Class
	if d.def.Parent != nil {
		p, err := s.Class(d.def.Parent)
		if err != nil {
			return err
		}
		parent = p
	}
	c, err := s.interp.DeclareClass(d.def.Name, parent, d.Identity())
	if err != nil {
		return err
	}
	c.SetOwnership(ownership[T]{lifetime: d.def.Lifetime})
	s.classes[d.Identity()] = c
	d.state = Declared
	return nil
}

// Init runs the class initializer and marks the class ready.
func (d *classDescriptor[T]) Init(s *Scope) error {
	if err := d.check(Initialized, d.def.Name); err != nil {
		return err
	}
	c, err := s.Class(d.Identity())
	if err != nil {
		return err
	}
	if d.def.Init != nil {
		b := &ClassBuilder[T]{scope: s, class: c}
		d.def.Init(b)
		if b.err != nil {
			return b.err
		}
	}
	c.MarkReady()
	d.state = Initialized
	return nil
}

// ownership adapts Holder and Borrowed to the host's Ownership interface.
// A value already held elsewhere, such as by another interpreter, is
// borrowed rather than acquired twice.
type ownership[T comparable] struct {
	lifetime Lifetime[T]
}

func (o ownership[T]) Acquire(v any) interp.Owner {
	if h, ok := TryAcquire(v.(T), o.lifetime); ok {
		return h
	}
	logs().Debug("value already owned, borrowing", "type", fmt.Sprintf("%T", v))
	return Borrow(v.(T))
}

func (o ownership[T]) Borrow(v any) interp.Owner { return Borrow(v.(T)) }

// ClassBuilder attaches members to a class during Init. Methods chain; the
// first error is kept and reported by the registrar.
type ClassBuilder[T comparable] struct {
	scope *Scope
	class *interp.Class
	err   error
}

// Scope returns the registration scope, for resolving other declared types.
func (b *ClassBuilder[T]) Scope() *Scope { return b.scope }

// Class returns the host class being initialized.
func (b *ClassBuilder[T]) Class() *interp.Class { return b.class }

// Err returns the first error recorded by the builder.
func (b *ClassBuilder[T]) Err() error { return b.err }

func (b *ClassBuilder[T]) do(fn func() error) *ClassBuilder[T] {
	if b.err == nil {
		b.err = fn()
	}
	return b
}

// Constructor sets the function run by "Name new". fn returns T.
func (b *ClassBuilder[T]) Constructor(fn any) *ClassBuilder[T] {
	return b.do(func() error { return b.class.SetConstructor(fn) })
}

// Def binds a method whose native results are owned by the host.
func (b *ClassBuilder[T]) Def(name string, fn any) *ClassBuilder[T] {
	return b.do(func() error { return b.class.DefMethod(name, fn, interp.TakeOwnership) })
}

// DefRef binds a method whose native results stay owned by the receiver.
func (b *ClassBuilder[T]) DefRef(name string, fn any) *ClassBuilder[T] {
	return b.do(func() error { return b.class.DefMethod(name, fn, interp.Reference) })
}

// Property binds a read-write property.
func (b *ClassBuilder[T]) Property(name string, getter, setter any) *ClassBuilder[T] {
	return b.do(func() error { return b.class.DefProperty(name, getter, setter) })
}

// ReadOnly binds a read-only property.
func (b *ClassBuilder[T]) ReadOnly(name string, getter any) *ClassBuilder[T] {
	return b.do(func() error { return b.class.DefProperty(name, getter, nil) })
}

// Buffer registers a raw-memory view over the native storage.
func (b *ClassBuilder[T]) Buffer(fn func(T) *interp.Buffer) *ClassBuilder[T] {
	return b.do(func() error { return b.class.SetBuffer(fn) })
}
