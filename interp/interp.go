package interp

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"weak"
)

// defaultRecursionLimit bounds nested evaluation depth.
const defaultRecursionLimit = 1000

// Interp is a host runtime instance: a namespace of commands, classes and
// enums, plus the variables and live instances of one session.
//
// Create an interpreter with [New] and call [Interp.Close] when done.
// An interpreter is not safe for concurrent use from multiple goroutines.
//
//	i := interp.New()
//	defer i.Close()
//	result, err := i.Eval("set x 42")
type Interp struct {
	vars        map[string]*Obj
	commands    map[string]CommandFunc
	classes     map[string]*Class
	enums       map[string]*Enum
	classByType map[reflect.Type]*Class
	enumByType  map[reflect.Type]*Enum

	instances map[string]weak.Pointer[Instance] // handle name -> live instance
	byValue   map[any]valueEntry                // native value -> live instance
	counters  map[string]int                    // class name -> next handle counter

	result         *Obj
	depth          int
	recursionLimit int
	logger         *slog.Logger
	out            io.Writer
}

// Option configures an interpreter.
type Option func(*Interp)

// WithLogger sets the logger used for instance lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interp) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithRecursionLimit bounds nested evaluation depth. Values <= 0 keep the default.
func WithRecursionLimit(n int) Option {
	return func(i *Interp) {
		if n > 0 {
			i.recursionLimit = n
		}
	}
}

// WithOutput sets the writer used by the puts command.
func WithOutput(w io.Writer) Option {
	return func(i *Interp) {
		if w != nil {
			i.out = w
		}
	}
}

// New creates an interpreter with the built-in commands registered.
func New(opts ...Option) *Interp {
	i := &Interp{
		vars:           make(map[string]*Obj),
		commands:       make(map[string]CommandFunc),
		classes:        make(map[string]*Class),
		enums:          make(map[string]*Enum),
		classByType:    make(map[reflect.Type]*Class),
		enumByType:     make(map[reflect.Type]*Enum),
		instances:      make(map[string]weak.Pointer[Instance]),
		byValue:        make(map[any]valueEntry),
		counters:       make(map[string]int),
		recursionLimit: defaultRecursionLimit,
		logger:         slog.Default(),
		out:            os.Stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	registerBuiltins(i)
	return i
}

// Close destroys every live instance, releasing the native values they own.
// The interpreter must not be used afterwards.
func (i *Interp) Close() {
	i.releaseAll()
	clear(i.instances)
	clear(i.byValue)
	i.vars = nil
	i.result = nil
}

// Logger returns the interpreter's logger.
func (i *Interp) Logger() *slog.Logger { return i.logger }

// -----------------------------------------------------------------------------
// Script Evaluation
// -----------------------------------------------------------------------------

// EvalError is returned by [Interp.Eval] when a command fails. Message is the
// host-visible error text; Err, when set, is the Go error behind it and can
// be matched with errors.Is / errors.As.
type EvalError struct {
	Message string
	Err     error
}

func (e *EvalError) Error() string { return e.Message }
func (e *EvalError) Unwrap() error { return e.Err }

// Eval evaluates a script and returns the result of its last command.
//
// Commands are separated by newlines or semicolons. Words support braces,
// double quotes, $variable and [command] substitution.
//
//	result, err := i.Eval("set s [Sound new {{0 1 0}} 100]; $s cget sampling_frequency")
func (i *Interp) Eval(script string) (*Obj, error) {
	if i.depth >= i.recursionLimit {
		return nil, &EvalError{Message: "too many nested evaluations (infinite loop?)"}
	}
	i.depth++
	defer func() { i.depth-- }()

	cmds, err := parseScript(script)
	if err != nil {
		return nil, &EvalError{Message: err.Error(), Err: err}
	}
	result := NewString("")
	for _, c := range cmds {
		words := make([]*Obj, len(c.words))
		for j, w := range c.words {
			obj, err := i.substWord(w)
			if err != nil {
				return nil, err
			}
			words[j] = obj
		}
		result, err = i.invoke(words[0], words[1:])
		if err != nil {
			return nil, err
		}
	}
	i.result = result
	return result, nil
}

// substWord performs substitutions on one word. A word consisting of a
// single substitution yields the substituted object itself, preserving its
// internal representation.
func (i *Interp) substWord(w word) (*Obj, error) {
	if len(w.parts) == 1 {
		return i.substPart(w.parts[0])
	}
	var s []byte
	for _, p := range w.parts {
		obj, err := i.substPart(p)
		if err != nil {
			return nil, err
		}
		s = append(s, obj.String()...)
	}
	return NewString(string(s)), nil
}

func (i *Interp) substPart(p part) (*Obj, error) {
	switch p.kind {
	case partVar:
		v, ok := i.vars[p.text]
		if !ok {
			return nil, &EvalError{Message: fmt.Sprintf("can't read %q: no such variable", p.text)}
		}
		return v, nil
	case partScript:
		return i.Eval(p.text)
	default:
		return NewString(p.text), nil
	}
}

// Call invokes a single command with the given arguments, without parsing.
//
// Arguments are converted with the same rules as [Interp.SetVar]; *Obj values
// are passed as-is.
//
//	result, err := i.Call("isinstance", soundObj, "Vector")
func (i *Interp) Call(cmd string, args ...any) (*Obj, error) {
	objs := make([]*Obj, len(args))
	for j, a := range args {
		objs[j] = anyToObj(a)
	}
	result, err := i.invoke(NewString(cmd), objs)
	if err != nil {
		return nil, err
	}
	i.result = result
	return result, nil
}

// invoke dispatches one command. Lookup order: registered commands, classes,
// enums, then instance handles.
func (i *Interp) invoke(cmd *Obj, args []*Obj) (*Obj, error) {
	if inst, ok := cmd.Instance(); ok {
		return i.dispatchInstance(inst, args)
	}
	name := cmd.String()
	if fn, ok := i.commands[name]; ok {
		return fn(i, cmd, args).unpack()
	}
	if c, ok := i.classes[name]; ok {
		return i.classCommand(c, args)
	}
	if e, ok := i.enums[name]; ok {
		return i.enumCommand(e, args)
	}
	if inst := i.lookupInstance(name); inst != nil {
		return i.dispatchInstance(inst, args)
	}
	return nil, &EvalError{Message: fmt.Sprintf("invalid command name %q", name)}
}

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

// Var returns the value of a variable, or an empty string object if the
// variable does not exist. The returned object preserves its internal type.
func (i *Interp) Var(name string) *Obj {
	if v, ok := i.vars[name]; ok {
		return v
	}
	return NewString("")
}

// SetVar sets a variable to a value.
//
// The value is converted from Go types: string, int, int64, float64 and bool
// directly, []string and []any to lists, *Obj as-is, anything else via
// fmt.Sprintf("%v").
func (i *Interp) SetVar(name string, val any) {
	i.vars[name] = anyToObj(val)
}

// UnsetVar removes a variable. Instances referenced only by that variable
// become unreachable and are released by the garbage collector.
func (i *Interp) UnsetVar(name string) {
	delete(i.vars, name)
}

// anyToObj converts any Go value to a *Obj.
func anyToObj(v any) *Obj {
	switch val := v.(type) {
	case nil:
		return NewString("")
	case *Obj:
		return val
	case string:
		return NewString(val)
	case int:
		return NewInt(int64(val))
	case int64:
		return NewInt(val)
	case float64:
		return NewDouble(val)
	case bool:
		return NewBool(val)
	case []string:
		items := make([]*Obj, len(val))
		for j, s := range val {
			items[j] = NewString(s)
		}
		return NewList(items...)
	case []any:
		items := make([]*Obj, len(val))
		for j, s := range val {
			items[j] = anyToObj(s)
		}
		return NewList(items...)
	default:
		return NewString(fmt.Sprintf("%v", v))
	}
}

// -----------------------------------------------------------------------------
// Command Registration
// -----------------------------------------------------------------------------

// CommandFunc is the signature for commands registered with [Interp.RegisterCommand].
//
// The function receives the interpreter, the command name as invoked and the
// arguments. Return [OK] for success or [Error]/[Errorf] for failure.
type CommandFunc func(i *Interp, cmd *Obj, args []*Obj) Result

// RegisterCommand adds a command using the low-level CommandFunc interface.
func (i *Interp) RegisterCommand(name string, fn CommandFunc) {
	i.commands[name] = fn
}

// UnregisterCommand removes a previously registered command.
func (i *Interp) UnregisterCommand(name string) {
	delete(i.commands, name)
}

// Register adds a command with automatic argument conversion.
//
// The function's signature determines how arguments are converted; a
// trailing error result fails the command. Bound native values returned by
// fn become instances of their class.
//
//	i.Register("greet", func(name string) string { return "Hello, " + name })
func (i *Interp) Register(name string, fn any) error {
	c, err := newCallable(name, fn, TakeOwnership)
	if err != nil {
		return err
	}
	i.commands[name] = func(ii *Interp, cmd *Obj, args []*Obj) Result {
		obj, err := ii.call(c, nil, args)
		if err != nil {
			return Error(err)
		}
		return OK(obj)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Command Results
// -----------------------------------------------------------------------------

type resultCode int

const (
	codeOK resultCode = iota
	codeError
)

// Result represents the result of a command execution.
//
// Create results using [OK], [Error], or [Errorf].
type Result struct {
	code resultCode
	obj  *Obj
	msg  string
	err  error
}

// OK returns a successful result with a value.
// Pass a [*Obj] directly to preserve its internal type.
func OK(v any) Result {
	return Result{code: codeOK, obj: anyToObj(v)}
}

// Error returns an error result. Pass an error to keep it matchable by
// callers of [Interp.Eval].
func Error(v any) Result {
	switch val := v.(type) {
	case *EvalError:
		return Result{code: codeError, msg: val.Message, err: val.Err}
	case error:
		return Result{code: codeError, msg: val.Error(), err: val}
	case string:
		return Result{code: codeError, msg: val}
	default:
		return Result{code: codeError, msg: anyToObj(v).String()}
	}
}

// Errorf returns a formatted error result.
func Errorf(format string, args ...any) Result {
	return Result{code: codeError, msg: fmt.Sprintf(format, args...)}
}

func (r Result) unpack() (*Obj, error) {
	if r.code == codeError {
		return nil, &EvalError{Message: r.msg, Err: r.err}
	}
	if r.obj == nil {
		return NewString(""), nil
	}
	return r.obj, nil
}
