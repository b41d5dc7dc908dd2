package binding_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feather-lang/parselmouth/binding"
	perrors "github.com/feather-lang/parselmouth/errors"
	"github.com/feather-lang/parselmouth/interp"
)

type Data struct {
	name string
}

func (d *Data) Name() string { return d.name }

type Vector struct {
	Data
	values []float64
}

func (v *Vector) Len() int { return len(v.values) }

type Sound struct {
	Vector
	fs float64
}

type Pitch struct {
	Data
}

// recorder logs declaration order through a custom descriptor.
type recorder struct {
	binding.Descriptor
	log *[]string
}

func (r recorder) Declare(s *binding.Scope) error {
	*r.log = append(*r.log, "declare "+r.Name())
	return r.Descriptor.Declare(s)
}

func (r recorder) Init(s *binding.Scope) error {
	*r.log = append(*r.log, "init "+r.Name())
	return r.Descriptor.Init(s)
}

func dataClass() binding.Descriptor {
	return binding.NewClass(binding.ClassDef[*Data]{
		Name: "Data",
		Init: func(b *binding.ClassBuilder[*Data]) {
			b.ReadOnly("name", (*Data).Name)
		},
	})
}

func vectorClass() binding.Descriptor {
	return binding.NewClass(binding.ClassDef[*Vector]{
		Name:   "Vector",
		Parent: binding.TypeOf[*Data](),
		Init: func(b *binding.ClassBuilder[*Vector]) {
			b.Def("len", (*Vector).Len).
				Buffer(func(v *Vector) *interp.Buffer {
					return interp.NewBuffer(v.values, true, len(v.values))
				})
		},
	})
}

func TestChildBeforeParent(t *testing.T) {
	i := interp.New()
	defer i.Close()

	var log []string
	vector := recorder{vectorClass(), &log}
	data := recorder{dataClass(), &log}

	r := binding.NewRegistrar(i, []binding.Descriptor{vector, data}, nil)
	require.NoError(t, r.RegisterAll())

	assert.Equal(t, []string{"declare Data", "declare Vector", "init Vector", "init Data"}, log)
	assert.Equal(t, binding.Initialized, vector.State())
	assert.Equal(t, binding.Initialized, data.State())

	result, err := i.Eval("issubclass Vector Data")
	require.NoError(t, err)
	assert.Equal(t, "1", result.String())

	v := &Vector{Data: Data{name: "v"}, values: []float64{1, 2, 3}}
	obj, err := i.Wrap(v)
	require.NoError(t, err)
	i.SetVar("v", obj)

	for script, want := range map[string]string{
		"isinstance $v Data":   "1",
		"isinstance $v Vector": "1",
		"$v cget name":         "v",
		"$v len":               "3",
		"buffer $v readonly":   "1",
	} {
		result, err := i.Eval(script)
		require.NoError(t, err, script)
		assert.Equal(t, want, result.String(), script)
	}

	_, err = i.Eval("buffer $v set 5 0")
	assert.ErrorIs(t, err, perrors.ErrReadOnlyBuffer)
	assert.Equal(t, []float64{1, 2, 3}, v.values)
}

// A method on one class may reference a class that appears later in the table.
func TestForwardReference(t *testing.T) {
	i := interp.New()
	defer i.Close()

	data := binding.NewClass(binding.ClassDef[*Data]{
		Name: "Data",
		Init: func(b *binding.ClassBuilder[*Data]) {
			b.ReadOnly("name", (*Data).Name).
				Def("to_pitch", func(d *Data) *Pitch { return &Pitch{Data: Data{name: d.name + "-pitch"}} })
		},
	})
	pitch := binding.NewClass(binding.ClassDef[*Pitch]{
		Name:   "Pitch",
		Parent: binding.TypeOf[*Data](),
		Init:   binding.NoInit[*Pitch],
	})

	r := binding.NewRegistrar(i, []binding.Descriptor{data, pitch}, nil)
	require.NoError(t, r.RegisterAll())

	d, err := i.Wrap(&Data{name: "d"})
	require.NoError(t, err)
	i.SetVar("d", d)
	assert.Equal(t, "data1", d.String())

	result, err := i.Eval("[$d to_pitch] cget name")
	require.NoError(t, err)
	assert.Equal(t, "d-pitch", result.String())

	result, err = i.Eval("typeof [$d to_pitch]")
	require.NoError(t, err)
	assert.Equal(t, "Pitch", result.String())
}

func TestUnresolvedTypeFailsFast(t *testing.T) {
	i := interp.New()
	defer i.Close()

	data := binding.NewClass(binding.ClassDef[*Data]{
		Name: "Data",
		Init: func(b *binding.ClassBuilder[*Data]) {
			// *Sound is never declared.
			b.Def("to_sound", func(d *Data) *Sound { return nil })
		},
	})
	r := binding.NewRegistrar(i, []binding.Descriptor{data}, nil)
	err := r.RegisterAll()
	require.ErrorIs(t, err, perrors.ErrUnresolvedType)
	assert.Contains(t, err.Error(), "binding_test.Sound")

	err = r.RegisterAll()
	assert.ErrorIs(t, err, perrors.ErrRegistrationFailed)
}

func TestMissingParent(t *testing.T) {
	i := interp.New()
	defer i.Close()

	r := binding.NewRegistrar(i, []binding.Descriptor{vectorClass()}, nil)
	err := r.DeclareAll()
	require.ErrorIs(t, err, perrors.ErrUnresolvedType)
	assert.Contains(t, err.Error(), "*binding_test.Data")
}

func TestInheritanceCycle(t *testing.T) {
	i := interp.New()
	defer i.Close()

	a := binding.NewClass(binding.ClassDef[*Data]{Name: "A", Parent: binding.TypeOf[*Vector]()})
	b := binding.NewClass(binding.ClassDef[*Vector]{Name: "B", Parent: binding.TypeOf[*Data]()})
	r := binding.NewRegistrar(i, []binding.Descriptor{a, b}, nil)
	assert.ErrorIs(t, r.DeclareAll(), perrors.ErrInheritanceCycle)
}

func TestDuplicateDescriptors(t *testing.T) {
	i := interp.New()
	defer i.Close()

	r := binding.NewRegistrar(i, []binding.Descriptor{dataClass(), dataClass()}, nil)
	assert.ErrorIs(t, r.DeclareAll(), perrors.ErrDuplicateType)

	i2 := interp.New()
	defer i2.Close()
	other := binding.NewClass(binding.ClassDef[*Vector]{Name: "Data"})
	r = binding.NewRegistrar(i2, []binding.Descriptor{dataClass(), other}, nil)
	assert.ErrorIs(t, r.DeclareAll(), perrors.ErrDuplicateType)
}

func TestInitBeforeDeclare(t *testing.T) {
	i := interp.New()
	defer i.Close()

	d := dataClass()
	r := binding.NewRegistrar(i, []binding.Descriptor{d}, nil)
	err := r.InitAll()
	require.ErrorIs(t, err, perrors.ErrInvalidTransition)
	assert.Equal(t, binding.Undeclared, d.State())
}

func TestDescriptorTransitionsOnce(t *testing.T) {
	i := interp.New()
	defer i.Close()

	d := dataClass()
	s := binding.NewScope(i)
	require.NoError(t, d.Declare(s))
	assert.ErrorIs(t, d.Declare(s), perrors.ErrInvalidTransition)
	require.NoError(t, d.Init(s))
	assert.ErrorIs(t, d.Init(s), perrors.ErrInvalidTransition)
	assert.Equal(t, binding.Initialized, d.State())

	c, err := binding.ClassOf[*Data](s)
	require.NoError(t, err)
	assert.True(t, c.Ready())
	_, err = binding.ClassOf[*Sound](s)
	assert.ErrorIs(t, err, perrors.ErrUnresolvedType)
}

func TestRegistrationIsNotRepeatable(t *testing.T) {
	i := interp.New()
	defer i.Close()

	r := binding.NewRegistrar(i, []binding.Descriptor{dataClass()}, nil)
	require.NoError(t, r.RegisterAll())
	assert.ErrorIs(t, r.RegisterAll(), perrors.ErrInvalidTransition)
}

func TestPlaceholderNotConstructible(t *testing.T) {
	i := interp.New()
	defer i.Close()

	sound := binding.NewClass(binding.ClassDef[*Sound]{
		Name: "Sound",
		Init: func(b *binding.ClassBuilder[*Sound]) {
			b.Constructor(func(fs float64) *Sound { return &Sound{fs: fs} })
		},
	})
	r := binding.NewRegistrar(i, []binding.Descriptor{sound}, nil)
	require.NoError(t, r.DeclareAll())

	_, err := i.Eval("Sound new 100")
	assert.ErrorIs(t, err, perrors.ErrNotReady)

	require.NoError(t, r.InitAll())
	result, err := i.Eval("Sound new 100")
	require.NoError(t, err)
	assert.Equal(t, "sound1", result.String())
}

func TestBuilderKeepsFirstError(t *testing.T) {
	i := interp.New()
	defer i.Close()

	var builder *binding.ClassBuilder[*Data]
	data := binding.NewClass(binding.ClassDef[*Data]{
		Name: "Data",
		Init: func(b *binding.ClassBuilder[*Data]) {
			builder = b
			b.Def("destroy", func(*Data) {}).
				Def("ok", func(*Data) {})
		},
	})
	r := binding.NewRegistrar(i, []binding.Descriptor{data}, nil)
	err := r.RegisterAll()
	require.ErrorIs(t, err, perrors.ErrInvalidSignature)
	assert.Equal(t, err, builder.Err())
	c, ok := i.Class("Data")
	require.True(t, ok)
	assert.False(t, c.Ready())
	assert.Empty(t, c.Methods())
}

func TestHostOwnershipThroughRegistrar(t *testing.T) {
	i := interp.New()

	released := 0
	sound := binding.NewClass(binding.ClassDef[*Sound]{
		Name: "Sound",
		Lifetime: binding.Lifetime[*Sound]{
			Release: func(*Sound) error { released++; return nil },
		},
		Init: func(b *binding.ClassBuilder[*Sound]) {
			b.Constructor(func() *Sound { return &Sound{} })
		},
	})
	r := binding.NewRegistrar(i, []binding.Descriptor{sound}, nil)
	require.NoError(t, r.RegisterAll())

	_, err := i.Eval("set a [Sound new]; set b [Sound new]; $a destroy")
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	inst, ok := i.Var("b").Instance()
	require.True(t, ok)
	assert.True(t, binding.Owned(inst.Value()))

	i.Close()
	assert.Equal(t, 2, released)
}

func TestRegistrarLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	i := interp.New()
	defer i.Close()
	r := binding.NewRegistrar(i, []binding.Descriptor{dataClass()}, nil, binding.WithLogger(logger))
	require.NoError(t, r.RegisterAll())

	out := buf.String()
	assert.Contains(t, out, "msg=declared name=Data")
	assert.Contains(t, out, "msg=initialized name=Data")
}

func TestStateString(t *testing.T) {
	for s, want := range map[binding.State]string{
		binding.Undeclared:  "undeclared",
		binding.Declared:    "declared",
		binding.Initialized: "initialized",
		binding.State(7):    "State(7)",
	} {
		assert.Equal(t, want, s.String())
	}
}

func ExampleRegistrar() {
	i := interp.New()
	defer i.Close()

	// Children may precede their parents in the table.
	r := binding.NewRegistrar(i, []binding.Descriptor{vectorClass(), dataClass()}, nil)
	if err := r.RegisterAll(); err != nil {
		fmt.Println(err)
		return
	}
	vec, _ := i.ClassOf(reflect.TypeFor[*Vector]())
	fmt.Println(vec.Name(), "->", vec.Parent().Name())
	fmt.Println(vec.Methods())
	// Output:
	// Vector -> Data
	// [len]
}
