package interp

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"weak"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
)

// Instance is a host-side wrapper around one native value.
//
// The instance is a command: "$obj method ?args?" calls a bound method,
// "$obj cget prop" and "$obj configure prop value" access properties and
// "$obj destroy" releases the native value immediately. An instance that
// becomes unreachable is released by the garbage collector.
type Instance struct {
	class     *Class
	handle    string
	cell      *ownerCell
	destroyed bool
	cleanup   runtime.Cleanup
}

// Class returns the instance's most-derived class.
func (inst *Instance) Class() *Class { return inst.class }

// Handle returns the instance's command name.
func (inst *Instance) Handle() string { return inst.handle }

// Value returns the native value, or nil after destroy.
func (inst *Instance) Value() any {
	if inst.destroyed {
		return nil
	}
	return inst.cell.owner.Value()
}

const (
	cellLive int32 = iota
	cellReleased
	cellTransferred
)

// ownerCell is the cleanup argument of an instance. It must not reference
// the instance itself.
type ownerCell struct {
	owner Owner
	owned bool
	state atomic.Int32
}

func (c *ownerCell) release() {
	if c.state.CompareAndSwap(cellLive, cellReleased) {
		c.owner.Release()
	}
}

// transfer hands the owner to a new cell, so that a pending cleanup of the
// old instance does not release it.
func (c *ownerCell) transfer() (*ownerCell, bool) {
	if !c.state.CompareAndSwap(cellLive, cellTransferred) {
		return nil, false
	}
	return &ownerCell{owner: c.owner, owned: c.owned}, true
}

// valueEntry tracks the live instance wrapping a native value.
type valueEntry struct {
	inst weak.Pointer[Instance]
	cell *ownerCell
}

// plainOwner is used for classes without an Ownership: nothing to release.
type plainOwner struct{ v any }

func (o plainOwner) Value() any { return o.v }
func (o plainOwner) Release()   {}

// Wrap returns the instance wrapping v and makes it the owner of v. An
// existing wrapper that only borrowed v takes ownership. The class is the one
// bound to v's dynamic type.
//
// Ownership of a native value is tracked per process: when v is already owned
// through another interpreter, the class's [Ownership] decides whether this
// instance borrows it instead.
func (i *Interp) Wrap(v any) (*Obj, error) {
	return i.wrap(v, TakeOwnership)
}

// WrapRef returns an instance wrapping v without owning it.
func (i *Interp) WrapRef(v any) (*Obj, error) {
	return i.wrap(v, Reference)
}

func (i *Interp) wrap(v any, policy ReturnPolicy) (*Obj, error) {
	if v == nil {
		return NewString(""), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return NewString(""), nil
	}
	c, ok := i.classByType[rv.Type()]
	if !ok {
		return nil, errorc.With(errors.ErrUnresolvedType, errorc.String(errors.FieldTypeName, rv.Type().String()))
	}
	i.sweep()

	var cell *ownerCell
	if e, ok := i.byValue[v]; ok {
		if inst := e.inst.Value(); inst != nil && !inst.destroyed {
			i.adopt(c, inst.cell, v, policy)
			return NewObj(&ForeignType{instance: inst}), nil
		}
		// The previous wrapper is unreachable but its cleanup has not run.
		if cell, _ = e.cell.transfer(); cell != nil {
			i.adopt(c, cell, v, policy)
		}
	}
	if cell == nil {
		cell = &ownerCell{
			owner: i.newOwner(c, v, policy),
			owned: policy == TakeOwnership || c.ownership == nil,
		}
	}

	i.counters[c.name]++
	inst := &Instance{
		class:  c,
		handle: fmt.Sprintf("%s%d", strings.ToLower(c.name), i.counters[c.name]),
		cell:   cell,
	}
	inst.cleanup = runtime.AddCleanup(inst, (*ownerCell).release, cell)
	i.instances[inst.handle] = weak.Make(inst)
	i.byValue[v] = valueEntry{inst: weak.Make(inst), cell: cell}
	i.logger.Debug("instance created", "class", c.name, "handle", inst.handle, "owned", policy == TakeOwnership)
	return NewObj(&ForeignType{instance: inst}), nil
}

// adopt upgrades a borrowing cell when v is now handed over with ownership.
func (i *Interp) adopt(c *Class, cell *ownerCell, v any, policy ReturnPolicy) {
	if cell.owned || policy != TakeOwnership {
		return
	}
	cell.owner = i.newOwner(c, v, TakeOwnership)
	cell.owned = true
	i.logger.Debug("borrowed instance took ownership", "class", c.name)
}

func (i *Interp) newOwner(c *Class, v any, policy ReturnPolicy) Owner {
	if c.ownership == nil {
		return plainOwner{v: v}
	}
	if policy == Reference {
		return c.ownership.Borrow(v)
	}
	return c.ownership.Acquire(v)
}

// sweep drops table entries whose instance has been collected and released.
func (i *Interp) sweep() {
	for k, e := range i.byValue {
		if e.inst.Value() == nil && e.cell.state.Load() != cellLive {
			delete(i.byValue, k)
		}
	}
	for h, p := range i.instances {
		if p.Value() == nil {
			delete(i.instances, h)
		}
	}
}

func (i *Interp) lookupInstance(handle string) *Instance {
	p, ok := i.instances[handle]
	if !ok {
		return nil
	}
	inst := p.Value()
	if inst == nil || inst.destroyed {
		return nil
	}
	return inst
}

// destroy releases the instance's native value now and removes its command.
func (i *Interp) destroy(inst *Instance) {
	if inst.destroyed {
		return
	}
	inst.cleanup.Stop()
	v := inst.cell.owner.Value()
	inst.cell.release()
	inst.destroyed = true
	delete(i.instances, inst.handle)
	if e, ok := i.byValue[v]; ok && e.cell == inst.cell {
		delete(i.byValue, v)
	}
	i.logger.Debug("instance destroyed", "class", inst.class.name, "handle", inst.handle)
}

// releaseAll releases every tracked native value, live or pending collection.
func (i *Interp) releaseAll() {
	for _, e := range i.byValue {
		if inst := e.inst.Value(); inst != nil {
			i.destroy(inst)
			continue
		}
		e.cell.release()
	}
}

// dispatchInstance handles "$obj subcommand ?args?".
func (i *Interp) dispatchInstance(inst *Instance, args []*Obj) (*Obj, error) {
	if inst.destroyed {
		return nil, &EvalError{Message: fmt.Sprintf("invalid command name %q", inst.handle)}
	}
	if len(args) == 0 {
		return nil, &EvalError{Message: fmt.Sprintf("wrong # args: should be \"%s method ?arg ...?\"", inst.handle)}
	}
	name := args[0].String()
	switch name {
	case "destroy":
		i.destroy(inst)
		return NewString(""), nil
	case "cget":
		if len(args) != 2 {
			return nil, &EvalError{Message: fmt.Sprintf("wrong # args: should be \"%s cget property\"", inst.handle)}
		}
		p, ok := inst.class.property(args[1].String())
		if !ok {
			return nil, i.unknownProperty(inst, args[1].String())
		}
		return i.call(p.get, inst, nil)
	case "configure":
		if len(args) < 3 || len(args)%2 == 0 {
			return nil, &EvalError{Message: fmt.Sprintf("wrong # args: should be \"%s configure property value ?property value ...?\"", inst.handle)}
		}
		for j := 1; j < len(args); j += 2 {
			pname := args[j].String()
			p, ok := inst.class.property(pname)
			if !ok {
				return nil, i.unknownProperty(inst, pname)
			}
			if p.set == nil {
				return nil, &EvalError{Message: fmt.Sprintf("property %q of %s is read-only", pname, inst.class.name)}
			}
			if _, err := i.call(p.set, inst, args[j+1:j+2]); err != nil {
				return nil, err
			}
		}
		return NewString(""), nil
	}
	m, ok := inst.class.method(name)
	if !ok {
		methods := append(inst.class.Methods(), reservedMethods...)
		slices.Sort(methods)
		return nil, &EvalError{Message: fmt.Sprintf("unknown method %q for %s: must be %s",
			name, inst.class.name, strings.Join(methods, ", "))}
	}
	return i.call(m, inst, args[1:])
}

func (i *Interp) unknownProperty(inst *Instance, name string) error {
	return &EvalError{Message: fmt.Sprintf("unknown property %q for %s: must be one of %s",
		name, inst.class.name, strings.Join(inst.class.Properties(), ", "))}
}

// -----------------------------------------------------------------------------
// Reflection-based calls
// -----------------------------------------------------------------------------

// callable is a Go function bound as a command, constructor, method or
// property accessor.
type callable struct {
	name   string
	fn     reflect.Value
	result reflect.Type // nil when fn returns nothing but an optional error
	hasErr bool
	method bool
	policy ReturnPolicy
}

func newCallable(name string, fn any, policy ReturnPolicy) (*callable, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, errorc.With(errors.ErrInvalidSignature, errorc.String(errors.FieldMember, name))
	}
	ft := fv.Type()
	c := &callable{name: name, fn: fv, policy: policy}
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			c.hasErr = true
		} else {
			c.result = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, errorc.With(errors.ErrInvalidSignature, errorc.String(errors.FieldMember, name))
		}
		c.result = ft.Out(0)
		c.hasErr = true
	default:
		return nil, errorc.With(errors.ErrInvalidSignature, errorc.String(errors.FieldMember, name))
	}
	return c, nil
}

// arity returns the number of host arguments, excluding the receiver.
func (c *callable) arity() int {
	n := c.fn.Type().NumIn()
	if c.method {
		n--
	}
	return n
}

func (c *callable) usage() string {
	ft := c.fn.Type()
	start := 0
	if c.method {
		start = 1
	}
	var parts []string
	for j := start; j < ft.NumIn(); j++ {
		t := ft.In(j)
		if ft.IsVariadic() && j == ft.NumIn()-1 {
			parts = append(parts, "?"+t.Elem().String()+" ...?")
			continue
		}
		parts = append(parts, t.String())
	}
	if len(parts) == 0 {
		return c.name
	}
	return c.name + " " + strings.Join(parts, " ")
}

// call invokes c with host arguments. recv is the instance for methods.
func (i *Interp) call(c *callable, recv *Instance, args []*Obj) (*Obj, error) {
	ft := c.fn.Type()
	var in []reflect.Value
	start := 0
	if c.method {
		if recv == nil {
			return nil, &EvalError{Message: fmt.Sprintf("%s requires a receiver", c.name)}
		}
		if !recv.class.ready {
			return nil, &EvalError{
				Message: fmt.Sprintf("type %s is declared but not initialized", recv.class.name),
				Err:     errorc.With(errors.ErrNotReady, errorc.String(errors.FieldTypeName, recv.class.name)),
			}
		}
		rv, ok := upcast(reflect.ValueOf(recv.Value()), ft.In(0))
		if !ok {
			return nil, &EvalError{Message: fmt.Sprintf("%s: cannot use %s as receiver", c.name, recv.class.name)}
		}
		in = append(in, rv)
		start = 1
	}

	nparams := ft.NumIn() - start
	if ft.IsVariadic() {
		if len(args) < nparams-1 {
			return nil, &EvalError{Message: fmt.Sprintf("wrong # args: should be %q", c.usage())}
		}
	} else if len(args) != nparams {
		return nil, &EvalError{Message: fmt.Sprintf("wrong # args: should be %q", c.usage())}
	}

	for j, arg := range args {
		pi := start + j
		var pt reflect.Type
		if ft.IsVariadic() && pi >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else {
			pt = ft.In(pi)
		}
		v, err := i.convertArg(arg, pt)
		if err != nil {
			return nil, &EvalError{Message: fmt.Sprintf("%s: argument %d: %v", c.name, j+1, err), Err: err}
		}
		in = append(in, v)
	}

	out := c.fn.Call(in)
	if c.hasErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			err := errv.Interface().(error)
			return nil, &EvalError{Message: err.Error(), Err: err}
		}
	}
	if c.result == nil {
		return NewString(""), nil
	}
	obj, err := i.convertResult(out[0], c.policy)
	if err != nil {
		return nil, &EvalError{Message: fmt.Sprintf("%s: %v", c.name, err), Err: err}
	}
	return obj, nil
}

// convertArg converts a host value to a Go value of type t.
func (i *Interp) convertArg(obj *Obj, t reflect.Type) (reflect.Value, error) {
	if t == objPtrType {
		return reflect.ValueOf(obj), nil
	}
	if e, ok := i.enumByType[t]; ok {
		return i.convertEnumArg(obj, e)
	}
	if _, ok := i.classByType[t]; ok || t.Kind() == reflect.Interface && t.NumMethod() > 0 {
		inst := i.instanceOf(obj)
		if inst == nil {
			return reflect.Value{}, fmt.Errorf("expected %s instance but got %q", typeLabel(i, t), obj.String())
		}
		v, ok := upcast(reflect.ValueOf(inst.Value()), t)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected %s but got %s", typeLabel(i, t), inst.class.name)
		}
		return v, nil
	}

	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(obj.String()).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := AsInt(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := AsInt(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		if n < 0 {
			return reflect.Value{}, fmt.Errorf("expected non-negative integer but got %d", n)
		}
		return reflect.ValueOf(uint64(n)).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := AsDouble(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool:
		b, err := AsBool(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	case reflect.Slice:
		items, err := AsList(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		s := reflect.MakeSlice(t, len(items), len(items))
		for j, item := range items {
			v, err := i.convertArg(item, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", j, err)
			}
			s.Index(j).Set(v)
		}
		return s, nil
	case reflect.Map:
		d, err := AsDict(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		m := reflect.MakeMapWithSize(t, len(d.Order))
		for _, k := range d.Order {
			v, err := i.convertArg(d.Items[k], t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), v)
		}
		return m, nil
	case reflect.Interface:
		if inst := i.instanceOf(obj); inst != nil {
			return reflect.ValueOf(inst.Value()), nil
		}
		return reflect.ValueOf(obj.String()), nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", t)
}

// convertEnumArg accepts a value of the same enum, or a string passed
// through the enum's converter.
func (i *Interp) convertEnumArg(obj *Obj, e *Enum) (reflect.Value, error) {
	if ev, ok := obj.intrep.(*EnumValue); ok {
		if ev.Enum != e {
			return reflect.Value{}, errorc.With(
				errors.ErrEnumTypeMismatch,
				errorc.String(errors.FieldEnumName, e.name),
				errorc.String(errors.FieldTypeName, ev.Enum.name),
			)
		}
		return reflect.ValueOf(ev.Ordinal).Convert(e.goType), nil
	}
	// The argument keeps its string form: the same label may belong to
	// other enums.
	v, err := e.Value(obj.String())
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(v.intrep.(*EnumValue).Ordinal).Convert(e.goType), nil
}

func (i *Interp) instanceOf(obj *Obj) *Instance {
	if inst, ok := obj.Instance(); ok {
		if inst.destroyed {
			return nil
		}
		return inst
	}
	return i.lookupInstance(obj.String())
}

// convertResult converts a Go value returned by a bound function.
func (i *Interp) convertResult(v reflect.Value, policy ReturnPolicy) (*Obj, error) {
	if !v.IsValid() {
		return NewString(""), nil
	}
	t := v.Type()
	if t == objPtrType {
		if v.IsNil() {
			return NewString(""), nil
		}
		return v.Interface().(*Obj), nil
	}
	if e, ok := i.enumByType[t]; ok {
		return e.valueOf(v.Int()), nil
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return NewString(""), nil
		}
		dyn := v
		if t.Kind() == reflect.Interface {
			dyn = v.Elem()
		}
		if _, ok := i.classByType[dyn.Type()]; ok {
			return i.wrap(dyn.Interface(), policy)
		}
		if t.Kind() == reflect.Interface {
			return i.convertResult(dyn, policy)
		}
		return i.convertResult(v.Elem(), policy)
	case reflect.String:
		return NewString(v.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewInt(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NewDouble(v.Float()), nil
	case reflect.Bool:
		return NewBool(v.Bool()), nil
	case reflect.Slice, reflect.Array:
		items := make([]*Obj, v.Len())
		for j := range v.Len() {
			item, err := i.convertResult(v.Index(j), policy)
			if err != nil {
				return nil, err
			}
			items[j] = item
		}
		return NewList(items...), nil
	case reflect.Map:
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) })
		d := &DictType{Items: make(map[string]*Obj, len(keys))}
		for _, k := range keys {
			item, err := i.convertResult(v.MapIndex(k), policy)
			if err != nil {
				return nil, err
			}
			d.Order = append(d.Order, k.String())
			d.Items[k.String()] = item
		}
		return NewObj(d), nil
	}
	return nil, fmt.Errorf("unsupported result type %s", t)
}

func typeLabel(i *Interp, t reflect.Type) string {
	if c, ok := i.classByType[t]; ok {
		return c.name
	}
	return t.String()
}

// canUpcast reports whether a value of type from can be passed where to is
// expected, directly or through anonymous embedded fields.
func canUpcast(from, to reflect.Type) bool {
	if from.AssignableTo(to) {
		return true
	}
	if from.Kind() != reflect.Pointer || from.Elem().Kind() != reflect.Struct {
		return false
	}
	st := from.Elem()
	for j := range st.NumField() {
		f := st.Field(j)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Struct {
			ft = reflect.PointerTo(ft)
		}
		if canUpcast(ft, to) {
			return true
		}
	}
	return false
}

// upcast converts v to type to, following anonymous embedded fields
// (e.g. *Sound to *Vector).
func upcast(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	if v.Type().AssignableTo(to) {
		return v, true
	}
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	sv := v.Elem()
	for j := range sv.NumField() {
		if !sv.Type().Field(j).Anonymous {
			continue
		}
		f := sv.Field(j)
		if f.Kind() == reflect.Struct {
			f = f.Addr()
		}
		if r, ok := upcast(f, to); ok {
			return r, true
		}
	}
	return reflect.Value{}, false
}
