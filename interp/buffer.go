package interp

import (
	"fmt"
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
)

// Buffer is a raw-memory view of native numeric storage. Data is shared with
// the native value, never copied. Shape and Strides are in elements.
type Buffer struct {
	Data     []float64
	Shape    []int
	Strides  []int
	Format   string // element format, "d" for float64
	ReadOnly bool
	owner    string
}

// NewBuffer returns a row-major buffer over data with the given shape.
func NewBuffer(data []float64, readOnly bool, shape ...int) *Buffer {
	strides := make([]int, len(shape))
	step := 1
	for j := len(shape) - 1; j >= 0; j-- {
		strides[j] = step
		step *= shape[j]
	}
	return &Buffer{Data: data, Shape: shape, Strides: strides, Format: "d", ReadOnly: readOnly}
}

func (b *Buffer) offset(idx []int) (int, error) {
	if len(idx) != len(b.Shape) {
		return 0, fmt.Errorf("expected %d indices but got %d", len(b.Shape), len(idx))
	}
	off := 0
	for j, k := range idx {
		if k < 0 || k >= b.Shape[j] {
			return 0, fmt.Errorf("index %d out of range [0, %d) in dimension %d", k, b.Shape[j], j)
		}
		off += k * b.Strides[j]
	}
	return off, nil
}

// At returns the element at the given indices.
func (b *Buffer) At(idx ...int) (float64, error) {
	off, err := b.offset(idx)
	if err != nil {
		return 0, err
	}
	return b.Data[off], nil
}

// Set writes the element at the given indices. Writes to a read-only
// buffer fail with ErrReadOnlyBuffer.
func (b *Buffer) Set(v float64, idx ...int) error {
	if b.ReadOnly {
		return errorc.With(errors.ErrReadOnlyBuffer, errorc.String(errors.FieldTypeName, b.owner))
	}
	off, err := b.offset(idx)
	if err != nil {
		return err
	}
	b.Data[off] = v
	return nil
}

// BufferOf returns the buffer view of an instance whose class (or an
// ancestor) registered one.
func (i *Interp) BufferOf(obj *Obj) (*Buffer, error) {
	inst := i.instanceOf(obj)
	if inst == nil {
		return nil, fmt.Errorf("expected instance but got %q", obj.String())
	}
	fn := inst.class.bufferFunc()
	if fn == nil {
		return nil, fmt.Errorf("%s does not support the buffer protocol", inst.class.name)
	}
	recv, ok := upcast(reflect.ValueOf(inst.Value()), fn.fn.Type().In(0))
	if !ok {
		return nil, fmt.Errorf("%s: cannot use %s as receiver", fn.name, inst.class.name)
	}
	b := fn.fn.Call([]reflect.Value{recv})[0].Interface().(*Buffer)
	if b == nil {
		return nil, fmt.Errorf("%s returned no buffer", fn.name)
	}
	b.owner = inst.class.name
	return b, nil
}
