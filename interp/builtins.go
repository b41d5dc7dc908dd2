package interp

import (
	"fmt"
	"io"
	"slices"
)

func registerBuiltins(i *Interp) {
	i.RegisterCommand("set", cmdSet)
	i.RegisterCommand("unset", cmdUnset)
	i.RegisterCommand("puts", cmdPuts)
	i.RegisterCommand("list", cmdList)
	i.RegisterCommand("llength", cmdLlength)
	i.RegisterCommand("lindex", cmdLindex)
	i.RegisterCommand("catch", cmdCatch)
	i.RegisterCommand("isinstance", cmdIsinstance)
	i.RegisterCommand("issubclass", cmdIssubclass)
	i.RegisterCommand("typeof", cmdTypeof)
	i.RegisterCommand("members", cmdMembers)
	i.RegisterCommand("buffer", cmdBuffer)
	i.RegisterCommand("info", cmdInfo)
}

func cmdSet(i *Interp, cmd *Obj, args []*Obj) Result {
	switch len(args) {
	case 1:
		v, ok := i.vars[args[0].String()]
		if !ok {
			return Errorf("can't read %q: no such variable", args[0].String())
		}
		return OK(v)
	case 2:
		i.vars[args[0].String()] = args[1]
		return OK(args[1])
	default:
		return Errorf("wrong # args: should be \"set varName ?newValue?\"")
	}
}

func cmdUnset(i *Interp, cmd *Obj, args []*Obj) Result {
	for _, a := range args {
		i.UnsetVar(a.String())
	}
	return OK("")
}

func cmdPuts(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return Errorf("wrong # args: should be \"puts string\"")
	}
	if _, err := io.WriteString(i.out, args[0].String()+"\n"); err != nil {
		return Error(err)
	}
	return OK("")
}

func cmdList(i *Interp, cmd *Obj, args []*Obj) Result {
	return OK(NewList(slices.Clone(args)...))
}

func cmdLlength(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return Errorf("wrong # args: should be \"llength list\"")
	}
	items, err := AsList(args[0])
	if err != nil {
		return Error(err)
	}
	return OK(len(items))
}

func cmdLindex(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 {
		return Errorf("wrong # args: should be \"lindex list index\"")
	}
	items, err := AsList(args[0])
	if err != nil {
		return Error(err)
	}
	idx, err := AsInt(args[1])
	if err != nil {
		return Error(err)
	}
	if idx < 0 || idx >= int64(len(items)) {
		return OK("")
	}
	return OK(items[idx])
}

// cmdCatch evaluates a script and returns 1 if it failed, 0 otherwise. The
// optional variable receives the result or error message.
func cmdCatch(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 || len(args) > 2 {
		return Errorf("wrong # args: should be \"catch script ?resultVarName?\"")
	}
	result, err := i.Eval(args[0].String())
	code := 0
	if err != nil {
		code = 1
		result = NewString(err.Error())
	}
	if len(args) == 2 {
		i.vars[args[1].String()] = result
	}
	return OK(code)
}

// cmdIsinstance reports whether a value is an instance of a class (or a
// subclass) or a member of an enum.
func cmdIsinstance(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 {
		return Errorf("wrong # args: should be \"isinstance value type\"")
	}
	name := args[1].String()
	if e, ok := i.enums[name]; ok {
		ev, isEnum := args[0].InternalRep().(*EnumValue)
		return OK(isEnum && ev.Enum == e)
	}
	c, ok := i.classes[name]
	if !ok {
		return Errorf("unknown type %q", name)
	}
	inst := i.instanceOf(args[0])
	return OK(inst != nil && inst.class.IsSubclass(c))
}

func cmdIssubclass(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 {
		return Errorf("wrong # args: should be \"issubclass type type\"")
	}
	a, ok := i.classes[args[0].String()]
	if !ok {
		return Errorf("unknown type %q", args[0].String())
	}
	b, ok := i.classes[args[1].String()]
	if !ok {
		return Errorf("unknown type %q", args[1].String())
	}
	return OK(a.IsSubclass(b))
}

func cmdTypeof(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return Errorf("wrong # args: should be \"typeof value\"")
	}
	if inst := i.instanceOf(args[0]); inst != nil {
		return OK(inst.class.name)
	}
	return OK(args[0].Type())
}

func cmdMembers(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return Errorf("wrong # args: should be \"members enum\"")
	}
	e, ok := i.enums[args[0].String()]
	if !ok {
		return Errorf("unknown enum %q", args[0].String())
	}
	return OK(e.Members())
}

// cmdBuffer exposes the buffer protocol:
//
//	buffer obj shape|strides|format|readonly
//	buffer obj get index ?index ...?
//	buffer obj set value index ?index ...?
func cmdBuffer(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return Errorf("wrong # args: should be \"buffer obj subcommand ?arg ...?\"")
	}
	b, err := i.BufferOf(args[0])
	if err != nil {
		return Error(err)
	}
	switch args[1].String() {
	case "shape":
		return OK(intsToList(b.Shape))
	case "strides":
		return OK(intsToList(b.Strides))
	case "format":
		return OK(b.Format)
	case "readonly":
		return OK(b.ReadOnly)
	case "get":
		idx, err := objsToInts(args[2:])
		if err != nil {
			return Error(err)
		}
		v, err := b.At(idx...)
		if err != nil {
			return Error(err)
		}
		return OK(v)
	case "set":
		if len(args) < 3 {
			return Errorf("wrong # args: should be \"buffer obj set value index ?index ...?\"")
		}
		v, err := AsDouble(args[2])
		if err != nil {
			return Error(err)
		}
		idx, err := objsToInts(args[3:])
		if err != nil {
			return Error(err)
		}
		if err := b.Set(v, idx...); err != nil {
			return Error(err)
		}
		return OK("")
	default:
		return Errorf("unknown buffer subcommand %q: must be format, get, readonly, set, shape, or strides", args[1].String())
	}
}

func cmdInfo(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return Errorf("wrong # args: should be \"info commands|classes|enums|vars\"")
	}
	switch args[0].String() {
	case "commands":
		names := make([]string, 0, len(i.commands))
		for name := range i.commands {
			names = append(names, name)
		}
		slices.Sort(names)
		return OK(names)
	case "classes":
		return OK(i.Classes())
	case "enums":
		return OK(i.Enums())
	case "vars":
		names := make([]string, 0, len(i.vars))
		for name := range i.vars {
			names = append(names, name)
		}
		slices.Sort(names)
		return OK(names)
	default:
		return Errorf("unknown info subcommand %q", args[0].String())
	}
}

func intsToList(xs []int) *Obj {
	items := make([]*Obj, len(xs))
	for j, x := range xs {
		items[j] = NewInt(int64(x))
	}
	return NewList(items...)
}

func objsToInts(objs []*Obj) ([]int, error) {
	out := make([]int, len(objs))
	for j, o := range objs {
		n, err := AsInt(o)
		if err != nil {
			return nil, fmt.Errorf("bad index %q: %w", o.String(), err)
		}
		out[j] = int(n)
	}
	return out, nil
}
