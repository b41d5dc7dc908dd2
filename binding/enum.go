package binding

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
)

// Member is one (label, value) pair of a bound enum.
type Member[E ~int] struct {
	Label string
	Value E
}

// MembersOf builds members labelled by each value's String method, in the
// order given.
func MembersOf[E interface {
	~int
	fmt.Stringer
}](values ...E) []Member[E] {
	members := make([]Member[E], len(values))
	for i, v := range values {
		members[i] = Member[E]{Label: v.String(), Value: v}
	}
	return members
}

// EnumDef declares an enum binding. Name is the host-visible name and may
// differ from the Go type name.
type EnumDef[E ~int] struct {
	Name            string
	Members         []Member[E]
	CaseInsensitive bool
}

func (d EnumDef[E]) validate() error {
	if len(d.Members) == 0 {
		return errorc.With(errors.ErrEmptyEnum, errorc.String(errors.FieldEnumName, d.Name))
	}
	seen := make(map[string]bool, len(d.Members))
	for _, m := range d.Members {
		if seen[m.Label] {
			return errorc.With(
				errors.ErrDuplicateLabel,
				errorc.String(errors.FieldEnumName, d.Name),
				errorc.String(errors.FieldEnumLabel, m.Label),
			)
		}
		seen[m.Label] = true
	}
	return nil
}

// Converter constructs enum values from strings.
type Converter[E ~int] struct {
	name            string
	members         []Member[E]
	upper           []string
	index           map[string]E
	caseInsensitive bool
}

// BindEnum returns the string constructor for an enum. An exact label match
// always wins; with caseInsensitive set, the input is then uppercased and
// compared against the uppercased labels in declaration order.
func BindEnum[E ~int](def EnumDef[E], caseInsensitive bool) (*Converter[E], error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	c := &Converter[E]{
		name:            def.Name,
		members:         def.Members,
		upper:           make([]string, len(def.Members)),
		index:           make(map[string]E, len(def.Members)),
		caseInsensitive: caseInsensitive,
	}
	for i, m := range def.Members {
		c.upper[i] = strings.ToUpper(m.Label)
		c.index[m.Label] = m.Value
	}
	return c, nil
}

// Name returns the enum's host-visible name.
func (c *Converter[E]) Name() string { return c.name }

// CaseInsensitive reports whether the uppercase fallback is enabled.
func (c *Converter[E]) CaseInsensitive() bool { return c.caseInsensitive }

// Convert returns the member matching s. A failed match returns a
// *errors.ValueError.
func (c *Converter[E]) Convert(s string) (E, error) {
	if v, ok := c.index[s]; ok {
		return v, nil
	}
	if c.caseInsensitive {
		upper := strings.ToUpper(s)
		for i, label := range c.upper {
			if label == upper {
				return c.members[i].Value, nil
			}
		}
	}
	return 0, &errors.ValueError{Value: s, Enum: c.name}
}

// Label returns the label of v, or false if v is not a member.
func (c *Converter[E]) Label(v E) (string, bool) {
	for _, m := range c.members {
		if m.Value == v {
			return m.Label, true
		}
	}
	return "", false
}

// NewEnum returns the descriptor for an enum binding.
func NewEnum[E ~int](def EnumDef[E]) Descriptor {
	return &enumDescriptor[E]{def: def}
}

type enumDescriptor[E ~int] struct {
	lifecycle
	def  EnumDef[E]
	conv *Converter[E]
}

func (d *enumDescriptor[E]) Name() string           { return d.def.Name }
func (d *enumDescriptor[E]) Identity() reflect.Type { return reflect.TypeFor[E]() }
func (d *enumDescriptor[E]) Parent() reflect.Type   { return nil }

// Declare validates the members and creates the host enum placeholder.
func (d *enumDescriptor[E]) Declare(s *Scope) error {
	if err := d.check(Declared, d.def.Name); err != nil {
		return err
	}
	if err := d.def.validate(); err != nil {
		return err
	}
	e, err := s.interp.DeclareEnum(d.def.Name, d.Identity())
	if err != nil {
		return err
	}
	labels := make([]string, len(d.def.Members))
	ordinals := make([]int64, len(d.def.Members))
	for i, m := range d.def.Members {
		labels[i] = m.Label
		ordinals[i] = int64(m.Value)
	}
	e.SetMembers(labels, ordinals)
	s.enums[d.Identity()] = e
	d.state = Declared
	return nil
}

// Init installs the string constructor and makes the enum usable.
func (d *enumDescriptor[E]) Init(s *Scope) error {
	if err := d.check(Initialized, d.def.Name); err != nil {
		return err
	}
	conv, err := BindEnum(d.def, s.caseInsensitive(d.def.Name, d.def.CaseInsensitive))
	if err != nil {
		return err
	}
	e, err := s.Enum(d.Identity())
	if err != nil {
		return err
	}
	e.SetConverter(func(str string) (int64, error) {
		v, err := conv.Convert(str)
		return int64(v), err
	})
	e.MarkReady()
	d.conv = conv
	d.state = Initialized
	return nil
}

// ConverterOf returns the converter installed by an initialized enum
// descriptor created with NewEnum.
func ConverterOf[E ~int](d Descriptor) (*Converter[E], bool) {
	ed, ok := d.(*enumDescriptor[E])
	if !ok || ed.conv == nil {
		return nil, false
	}
	return ed.conv, true
}
