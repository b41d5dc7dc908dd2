// Package interp is the host runtime that native types are bound into.
//
// An [Interp] evaluates small command scripts in the style of TCL: words
// separated by whitespace, braces for literal grouping, $var and [cmd]
// substitution. Values are [*Obj]s with a string representation and a
// lazily computed internal representation.
//
// # Classes
//
// Native Go types are exposed as classes. A class is first declared as a
// placeholder, then initialized with constructors, methods and properties,
// then marked ready:
//
//	vec, _ := i.DeclareClass("Vector", nil, reflect.TypeFor[*Vector]())
//	snd, _ := i.DeclareClass("Sound", vec, reflect.TypeFor[*Sound]())
//	_ = snd.SetConstructor(NewSound)
//	_ = vec.DefMethod("get_value", (*Vector).GetValue, interp.TakeOwnership)
//	vec.MarkReady()
//	snd.MarkReady()
//
// Scripts then create and use instances:
//
//	set s [Sound new {{0 1 0}} 100]
//	$s get_value 0.01
//	isinstance $s Vector   ;# 1
//	$s destroy
//
// Each instance owns its native value through an [Owner]. The value is
// released when the instance is destroyed, when the interpreter is closed,
// or when the instance becomes unreachable and is collected.
//
// # Enums
//
// Native integer types are exposed as enums. "Enum LABEL" constructs a
// value; parameters of the enum's Go type also accept plain strings, which
// go through the converter installed with [Enum.SetConverter].
package interp
