package binding

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
	"github.com/feather-lang/parselmouth/interp"
)

// State is the registration state of a descriptor. It only moves forward,
// one step at a time.
type State int

const (
	Undeclared State = iota
	Declared
	Initialized
)

func (s State) String() string {
	switch s {
	case Undeclared:
		return "undeclared"
	case Declared:
		return "declared"
	case Initialized:
		return "initialized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Descriptor binds one native type (class or enum) into the host.
type Descriptor interface {
	// Name is the host-visible name.
	Name() string
	// Identity is the native type the descriptor binds.
	Identity() reflect.Type
	// Parent is the parent's native identity, or nil.
	Parent() reflect.Type
	State() State
	// Declare creates the host symbol without attaching members.
	Declare(s *Scope) error
	// Init attaches members. Any declared type may be referenced.
	Init(s *Scope) error
}

type lifecycle struct {
	state State
}

func (l *lifecycle) State() State { return l.state }

// check reports whether moving to next is a single forward step.
func (l *lifecycle) check(next State, name string) error {
	if next != l.state+1 {
		return errorc.With(
			errors.ErrInvalidTransition,
			errorc.String(errors.FieldTypeName, name),
			errorc.String(errors.FieldState, fmt.Sprintf("%s -> %s", l.state, next)),
		)
	}
	return nil
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the registrar's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registrar) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEnumCase overrides the case-insensitivity of enums. fn receives the
// enum name and its declared setting and returns the setting to use.
func WithEnumCase(fn func(name string, declared bool) bool) Option {
	return func(r *Registrar) { r.scope.enumCaseFn = fn }
}

// Registrar runs the two registration phases over a fixed descriptor table:
// DeclareAll creates every host symbol, then InitAll attaches members.
type Registrar struct {
	classes    []Descriptor
	enums      []Descriptor
	byIdentity map[reflect.Type]Descriptor
	scope      *Scope
	logger     *slog.Logger
	failed     error
}

// NewRegistrar returns a registrar for the given class and enum descriptors.
func NewRegistrar(in *interp.Interp, classes, enums []Descriptor, opts ...Option) *Registrar {
	r := &Registrar{
		classes:    classes,
		enums:      enums,
		byIdentity: make(map[reflect.Type]Descriptor, len(classes)+len(enums)),
		scope:      NewScope(in),
		logger:     logs(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scope returns the registration scope.
func (r *Registrar) Scope() *Scope { return r.scope }

func (r *Registrar) all() []Descriptor {
	return append(append([]Descriptor(nil), r.classes...), r.enums...)
}

func (r *Registrar) fail(err error) error {
	r.failed = err
	return err
}

func (r *Registrar) checkFailed() error {
	if r.failed != nil {
		return fmt.Errorf("%w: %w", errors.ErrRegistrationFailed, r.failed)
	}
	return nil
}

// DeclareAll declares every descriptor exactly once. Parents are declared
// before their children whatever the table order.
func (r *Registrar) DeclareAll() error {
	if err := r.checkFailed(); err != nil {
		return err
	}
	names := make(map[string]bool)
	for _, d := range r.all() {
		if d.State() != Undeclared {
			return r.fail(errorc.With(
				errors.ErrInvalidTransition,
				errorc.String(errors.FieldTypeName, d.Name()),
				errorc.String(errors.FieldState, fmt.Sprintf("%s -> %s", d.State(), Declared)),
			))
		}
		if _, dup := r.byIdentity[d.Identity()]; dup || names[d.Name()] {
			return r.fail(errorc.With(
				errors.ErrDuplicateType,
				errorc.String(errors.FieldTypeName, d.Name()),
				errorc.String(errors.FieldMember, typeName(d.Identity())),
			))
		}
		r.byIdentity[d.Identity()] = d
		names[d.Name()] = true
	}

	visiting := make(map[Descriptor]bool)
	for _, d := range r.all() {
		if err := r.declare(d, visiting); err != nil {
			return r.fail(err)
		}
	}
	return nil
}

func (r *Registrar) declare(d Descriptor, visiting map[Descriptor]bool) error {
	if d.State() != Undeclared {
		return nil
	}
	if visiting[d] {
		return errorc.With(errors.ErrInheritanceCycle, errorc.String(errors.FieldTypeName, d.Name()))
	}
	visiting[d] = true
	if p := d.Parent(); p != nil {
		pd, ok := r.byIdentity[p]
		if !ok {
			return errorc.With(
				errors.ErrUnresolvedType,
				errorc.String(errors.FieldTypeName, typeName(p)),
				errorc.String(errors.FieldReferrer, d.Name()),
			)
		}
		if err := r.declare(pd, visiting); err != nil {
			return err
		}
	}
	if err := d.Declare(r.scope); err != nil {
		return err
	}
	r.logger.Debug("declared", "name", d.Name(), "type", typeName(d.Identity()))
	return nil
}

// InitAll initializes every descriptor exactly once. Every descriptor must
// be declared first.
func (r *Registrar) InitAll() error {
	if err := r.checkFailed(); err != nil {
		return err
	}
	all := r.all()
	for _, d := range all {
		if d.State() != Declared {
			return r.fail(errorc.With(
				errors.ErrInvalidTransition,
				errorc.String(errors.FieldTypeName, d.Name()),
				errorc.String(errors.FieldState, fmt.Sprintf("%s -> %s", d.State(), Initialized)),
			))
		}
	}
	for _, d := range all {
		if err := d.Init(r.scope); err != nil {
			return r.fail(err)
		}
		r.logger.Debug("initialized", "name", d.Name())
	}
	return nil
}

// RegisterAll runs DeclareAll then InitAll. A registrar that failed cannot
// be retried.
func (r *Registrar) RegisterAll() error {
	if err := r.DeclareAll(); err != nil {
		return err
	}
	if err := r.InitAll(); err != nil {
		return err
	}
	r.logger.Info("bindings registered", "classes", len(r.classes), "enums", len(r.enums))
	return nil
}
