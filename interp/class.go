package interp

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
)

// Owner manages the native value behind one instance. Release is called
// exactly once, when the instance is destroyed or collected.
type Owner interface {
	Value() any
	Release()
}

// Ownership creates owners for the native values of one class.
// Acquire takes ownership; Borrow returns a view whose Release is a no-op.
type Ownership interface {
	Acquire(v any) Owner
	Borrow(v any) Owner
}

// ReturnPolicy controls how a native value returned to the host is owned.
type ReturnPolicy int

const (
	// TakeOwnership makes the new instance the owner of the returned value.
	TakeOwnership ReturnPolicy = iota
	// Reference wraps the returned value without owning it.
	Reference
)

// Class is a host type symbol bound to a native Go type.
//
// A class is created as a placeholder by [Interp.DeclareClass]: it can be
// referenced by other classes and functions but cannot be constructed until
// [Class.MarkReady] is called.
type Class struct {
	interp    *Interp
	name      string
	parent    *Class
	goType    reflect.Type
	ready     bool
	ctor      *callable
	methods   map[string]*callable
	props     map[string]*property
	order     []string
	buffer    *callable
	ownership Ownership
}

type property struct {
	get *callable
	set *callable
}

// reserved instance subcommands that cannot be overridden by methods.
var reservedMethods = []string{"destroy", "cget", "configure"}

// DeclareClass creates a placeholder class named name for goType with an
// optional parent. The parent must already be declared.
func (i *Interp) DeclareClass(name string, parent *Class, goType reflect.Type) (*Class, error) {
	if _, exists := i.classes[name]; exists {
		return nil, errorc.With(errors.ErrDuplicateType, errorc.String(errors.FieldTypeName, name))
	}
	if _, exists := i.enums[name]; exists {
		return nil, errorc.With(errors.ErrDuplicateType, errorc.String(errors.FieldTypeName, name))
	}
	if _, exists := i.classByType[goType]; exists {
		return nil, errorc.With(
			errors.ErrDuplicateType,
			errorc.String(errors.FieldTypeName, name),
			errorc.String(errors.FieldMember, goType.String()),
		)
	}
	if parent != nil && parent.interp != i {
		return nil, fmt.Errorf("parent class %s belongs to another interpreter", parent.name)
	}
	c := &Class{
		interp:  i,
		name:    name,
		parent:  parent,
		goType:  goType,
		methods: make(map[string]*callable),
		props:   make(map[string]*property),
	}
	i.classes[name] = c
	i.classByType[goType] = c
	return c, nil
}

// Class returns a declared class by name.
func (i *Interp) Class(name string) (*Class, bool) {
	c, ok := i.classes[name]
	return c, ok
}

// ClassOf returns the class bound to a Go type.
func (i *Interp) ClassOf(t reflect.Type) (*Class, bool) {
	c, ok := i.classByType[t]
	return c, ok
}

// Classes returns the names of all declared classes, sorted.
func (i *Interp) Classes() []string {
	names := make([]string, 0, len(i.classes))
	for name := range i.classes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Name returns the host-visible type name.
func (c *Class) Name() string { return c.name }

// Parent returns the base class, or nil for a root class.
func (c *Class) Parent() *Class { return c.parent }

// GoType returns the native type the class is bound to.
func (c *Class) GoType() reflect.Type { return c.goType }

// Ready reports whether [Class.MarkReady] has been called.
func (c *Class) Ready() bool { return c.ready }

// Ownership returns the class's ownership strategy, or nil.
func (c *Class) Ownership() Ownership { return c.ownership }

// SetOwnership sets how native values of the class are acquired and
// borrowed. Without one, instances never release their values.
func (c *Class) SetOwnership(o Ownership) { c.ownership = o }

// MarkReady makes the class constructible and callable.
func (c *Class) MarkReady() { c.ready = true }

// IsSubclass reports whether c is other or derives from it.
func (c *Class) IsSubclass(other *Class) bool {
	for k := c; k != nil; k = k.parent {
		if k == other {
			return true
		}
	}
	return false
}

// SetConstructor installs the function run by "Name new ?args?". fn must
// return a value of the class's Go type, optionally followed by an error.
func (c *Class) SetConstructor(fn any) error {
	cl, err := newCallable(c.name+" new", fn, TakeOwnership)
	if err != nil {
		return err
	}
	if cl.result == nil || !cl.result.AssignableTo(c.goType) {
		return errorc.With(
			errors.ErrInvalidSignature,
			errorc.String(errors.FieldTypeName, c.name),
			errorc.String(errors.FieldMember, "new"),
		)
	}
	if err := c.interp.checkSignature(c.name+".new", cl.fn.Type()); err != nil {
		return err
	}
	c.ctor = cl
	return nil
}

// DefMethod binds a method. The first parameter of fn is the receiver and
// must accept the class's Go type, directly or through embedding.
func (c *Class) DefMethod(name string, fn any, policy ReturnPolicy) error {
	if slices.Contains(reservedMethods, name) {
		return errorc.With(
			errors.ErrInvalidSignature,
			errorc.String(errors.FieldTypeName, c.name),
			errorc.String(errors.FieldMember, name),
		)
	}
	cl, err := c.newMethod(name, fn, policy)
	if err != nil {
		return err
	}
	if _, exists := c.methods[name]; !exists {
		c.order = append(c.order, name)
	}
	c.methods[name] = cl
	return nil
}

// DefProperty binds a property read with "cget" and written with
// "configure". setter may be nil for read-only properties.
func (c *Class) DefProperty(name string, getter, setter any) error {
	get, err := c.newMethod(name, getter, Reference)
	if err != nil {
		return err
	}
	if get.arity() != 0 || get.result == nil {
		return errorc.With(
			errors.ErrInvalidSignature,
			errorc.String(errors.FieldTypeName, c.name),
			errorc.String(errors.FieldMember, name),
		)
	}
	p := &property{get: get}
	if setter != nil {
		set, err := c.newMethod(name, setter, Reference)
		if err != nil {
			return err
		}
		if set.arity() != 1 {
			return errorc.With(
				errors.ErrInvalidSignature,
				errorc.String(errors.FieldTypeName, c.name),
				errorc.String(errors.FieldMember, name),
			)
		}
		p.set = set
	}
	c.props[name] = p
	return nil
}

// SetBuffer registers a raw-memory view. fn takes the receiver and returns
// a *Buffer over the native storage.
func (c *Class) SetBuffer(fn any) error {
	cl, err := c.newMethod("buffer", fn, Reference)
	if err != nil {
		return err
	}
	if cl.arity() != 0 || cl.result != bufferType {
		return errorc.With(
			errors.ErrInvalidSignature,
			errorc.String(errors.FieldTypeName, c.name),
			errorc.String(errors.FieldMember, "buffer"),
		)
	}
	c.buffer = cl
	return nil
}

func (c *Class) newMethod(name string, fn any, policy ReturnPolicy) (*callable, error) {
	cl, err := newCallable(c.name+"."+name, fn, policy)
	if err != nil {
		return nil, err
	}
	if cl.fn.Type().NumIn() == 0 || !canUpcast(c.goType, cl.fn.Type().In(0)) {
		return nil, errorc.With(
			errors.ErrInvalidSignature,
			errorc.String(errors.FieldTypeName, c.name),
			errorc.String(errors.FieldMember, name),
		)
	}
	cl.method = true
	if err := c.interp.checkSignature(c.name+"."+name, cl.fn.Type()); err != nil {
		return nil, err
	}
	return cl, nil
}

// method finds a method on the class or its ancestors.
func (c *Class) method(name string) (*callable, bool) {
	for k := c; k != nil; k = k.parent {
		if m, ok := k.methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) property(name string) (*property, bool) {
	for k := c; k != nil; k = k.parent {
		if p, ok := k.props[name]; ok {
			return p, true
		}
	}
	return nil, false
}

func (c *Class) bufferFunc() *callable {
	for k := c; k != nil; k = k.parent {
		if k.buffer != nil {
			return k.buffer
		}
	}
	return nil
}

// Methods returns the names of all methods callable on instances of the
// class, including inherited ones, sorted.
func (c *Class) Methods() []string {
	seen := make(map[string]bool)
	for k := c; k != nil; k = k.parent {
		for _, name := range k.order {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Properties returns the names of all properties, including inherited ones, sorted.
func (c *Class) Properties() []string {
	seen := make(map[string]bool)
	for k := c; k != nil; k = k.parent {
		for name := range k.props {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// classCommand handles "ClassName subcommand ?args?".
func (i *Interp) classCommand(c *Class, args []*Obj) (*Obj, error) {
	if len(args) == 0 {
		return NewString(c.name), nil
	}
	switch args[0].String() {
	case "new":
		if !c.ready {
			return nil, &EvalError{
				Message: fmt.Sprintf("type %s is declared but not initialized", c.name),
				Err:     errorc.With(errors.ErrNotReady, errorc.String(errors.FieldTypeName, c.name)),
			}
		}
		if c.ctor == nil {
			return nil, &EvalError{
				Message: fmt.Sprintf("type %s cannot be instantiated from the host", c.name),
				Err:     errorc.With(errors.ErrNotConstructible, errorc.String(errors.FieldTypeName, c.name)),
			}
		}
		return i.call(c.ctor, nil, args[1:])
	case "parent":
		if c.parent == nil {
			return NewString(""), nil
		}
		return NewString(c.parent.name), nil
	case "methods":
		return anyToObj(c.Methods()), nil
	case "properties":
		return anyToObj(c.Properties()), nil
	default:
		return nil, &EvalError{Message: fmt.Sprintf(
			"unknown subcommand %q for type %s: must be new, parent, methods, or properties",
			args[0].String(), c.name)}
	}
}

// -----------------------------------------------------------------------------
// Enums
// -----------------------------------------------------------------------------

// Enum is a host enumeration symbol bound to a native integer Go type.
type Enum struct {
	interp   *Interp
	name     string
	goType   reflect.Type
	labels   []string
	ordinals []int64
	convert  func(string) (int64, error)
	ready    bool
}

// DeclareEnum creates a placeholder enum named name for goType.
func (i *Interp) DeclareEnum(name string, goType reflect.Type) (*Enum, error) {
	if _, exists := i.enums[name]; exists {
		return nil, errorc.With(errors.ErrDuplicateType, errorc.String(errors.FieldEnumName, name))
	}
	if _, exists := i.classes[name]; exists {
		return nil, errorc.With(errors.ErrDuplicateType, errorc.String(errors.FieldEnumName, name))
	}
	if _, exists := i.enumByType[goType]; exists {
		return nil, errorc.With(
			errors.ErrDuplicateType,
			errorc.String(errors.FieldEnumName, name),
			errorc.String(errors.FieldMember, goType.String()),
		)
	}
	switch goType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return nil, errorc.With(errors.ErrInvalidSignature, errorc.String(errors.FieldEnumName, name))
	}
	e := &Enum{interp: i, name: name, goType: goType}
	i.enums[name] = e
	i.enumByType[goType] = e
	return e, nil
}

// Enum returns a declared enum by name.
func (i *Interp) Enum(name string) (*Enum, bool) {
	e, ok := i.enums[name]
	return e, ok
}

// Enums returns the names of all declared enums, sorted.
func (i *Interp) Enums() []string {
	names := make([]string, 0, len(i.enums))
	for name := range i.enums {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Name returns the host-visible enum name.
func (e *Enum) Name() string { return e.name }

// GoType returns the native integer type the enum is bound to.
func (e *Enum) GoType() reflect.Type { return e.goType }

// Ready reports whether [Enum.MarkReady] has been called.
func (e *Enum) Ready() bool { return e.ready }

// MarkReady makes the enum usable from scripts.
func (e *Enum) MarkReady() { e.ready = true }

// SetMembers records the enum's labels and ordinals in declaration order.
func (e *Enum) SetMembers(labels []string, ordinals []int64) {
	e.labels = slices.Clone(labels)
	e.ordinals = slices.Clone(ordinals)
}

// Members returns the labels in declaration order.
func (e *Enum) Members() []string { return slices.Clone(e.labels) }

// SetConverter installs the string constructor used for "Enum label" and
// for string arguments passed to parameters of the enum's Go type.
func (e *Enum) SetConverter(fn func(string) (int64, error)) { e.convert = fn }

// Value constructs an enum value from a label.
func (e *Enum) Value(s string) (*Obj, error) {
	if !e.ready || e.convert == nil {
		return nil, errorc.With(errors.ErrNotReady, errorc.String(errors.FieldEnumName, e.name))
	}
	ord, err := e.convert(s)
	if err != nil {
		return nil, err
	}
	return e.valueOf(ord), nil
}

func (e *Enum) valueOf(ord int64) *Obj {
	idx := slices.Index(e.ordinals, ord)
	label := fmt.Sprint(ord)
	if idx >= 0 {
		label = e.labels[idx]
	}
	return NewObj(&EnumValue{Enum: e, Label: label, Ordinal: ord})
}

// enumCommand handles "EnumName label".
func (i *Interp) enumCommand(e *Enum, args []*Obj) (*Obj, error) {
	if len(args) != 1 {
		return nil, &EvalError{Message: fmt.Sprintf("wrong # args: should be \"%s label\"", e.name)}
	}
	v, err := e.Value(args[0].String())
	if err != nil {
		return nil, &EvalError{Message: err.Error(), Err: err}
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// Signature checks
// -----------------------------------------------------------------------------

var (
	objPtrType = reflect.TypeFor[*Obj]()
	bufferType = reflect.TypeFor[*Buffer]()
	errorType  = reflect.TypeFor[error]()
)

// checkSignature verifies every type mentioned by a function signature is
// either a basic type or declared in this interpreter.
func (i *Interp) checkSignature(referrer string, ft reflect.Type) error {
	for j := range ft.NumIn() {
		if err := i.checkType(referrer, ft.In(j)); err != nil {
			return err
		}
	}
	for j := range ft.NumOut() {
		if err := i.checkType(referrer, ft.Out(j)); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interp) checkType(referrer string, t reflect.Type) error {
	if t == objPtrType || t == bufferType || t == errorType {
		return nil
	}
	if _, ok := i.classByType[t]; ok {
		return nil
	}
	if _, ok := i.enumByType[t]; ok {
		return nil
	}
	unresolved := func() error {
		return errorc.With(
			errors.ErrUnresolvedType,
			errorc.String(errors.FieldTypeName, t.String()),
			errorc.String(errors.FieldReferrer, referrer),
		)
	}
	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return unresolved()
		}
		return i.checkType(referrer, t.Elem())
	case reflect.Struct:
		return unresolved()
	case reflect.Slice, reflect.Array:
		return i.checkType(referrer, t.Elem())
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return unresolved()
		}
		return i.checkType(referrer, t.Elem())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// A named integer type in a signature is an enum that was never bound.
		if t.PkgPath() != "" {
			return unresolved()
		}
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return unresolved()
	}
	return nil
}
