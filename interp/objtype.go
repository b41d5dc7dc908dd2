package interp

import (
	"slices"
	"strconv"
	"strings"
)

// IntType is the internal representation for integer values.
type IntType int64

func (t IntType) Name() string         { return "int" }
func (t IntType) Dup() ObjType         { return t }
func (t IntType) UpdateString() string { return strconv.FormatInt(int64(t), 10) }

func (t IntType) IntoInt() (int64, bool)      { return int64(t), true }
func (t IntType) IntoDouble() (float64, bool) { return float64(t), true }
func (t IntType) IntoBool() (bool, bool)      { return t != 0, true }

// DoubleType is the internal representation for floating-point values.
type DoubleType float64

func (t DoubleType) Name() string { return "double" }
func (t DoubleType) Dup() ObjType { return t }
func (t DoubleType) UpdateString() string {
	s := strconv.FormatFloat(float64(t), 'g', -1, 64)
	// Go uses +Inf/-Inf, but TCL uses Inf/-Inf
	if s == "+Inf" {
		s = "Inf"
	}
	// Add .0 for round numbers, but not for NaN/Inf
	if !strings.Contains(s, ".") && !strings.Contains(s, "e") &&
		!strings.Contains(s, "NaN") && !strings.Contains(s, "Inf") {
		s += ".0"
	}
	return s
}

func (t DoubleType) IntoDouble() (float64, bool) { return float64(t), true }

// ListType is the internal representation for list values.
type ListType []*Obj

func (t ListType) Name() string { return "list" }
func (t ListType) Dup() ObjType { return ListType(slices.Clone(t)) }
func (t ListType) UpdateString() string {
	var result strings.Builder
	for i, item := range t {
		if i > 0 {
			result.WriteByte(' ')
		}
		result.WriteString(quote(item.String()))
	}
	return result.String()
}

func (t ListType) IntoList() ([]*Obj, bool) { return t, true }

func (t ListType) IntoDict() (map[string]*Obj, []string, bool) {
	if len(t)%2 != 0 {
		return nil, nil, false
	}
	items := make(map[string]*Obj)
	var order []string
	for i := 0; i < len(t); i += 2 {
		key := t[i].String()
		if _, exists := items[key]; !exists {
			order = append(order, key)
		}
		items[key] = t[i+1]
	}
	return items, order, true
}

// DictType is the internal representation for dictionary values.
type DictType struct {
	Items map[string]*Obj
	Order []string
}

func (t *DictType) Name() string { return "dict" }

func (t *DictType) Dup() ObjType {
	newItems := make(map[string]*Obj, len(t.Items))
	for k, v := range t.Items {
		newItems[k] = v
	}
	return &DictType{Items: newItems, Order: slices.Clone(t.Order)}
}

func (t *DictType) UpdateString() string {
	var result strings.Builder
	for i, key := range t.Order {
		if i > 0 {
			result.WriteByte(' ')
		}
		result.WriteString(quote(key))
		result.WriteByte(' ')
		result.WriteString(quote(t.Items[key].String()))
	}
	return result.String()
}

func (t *DictType) IntoDict() (map[string]*Obj, []string, bool) {
	return t.Items, t.Order, true
}

func (t *DictType) IntoList() ([]*Obj, bool) {
	list := make([]*Obj, 0, len(t.Order)*2)
	for _, k := range t.Order {
		list = append(list, NewString(k), t.Items[k])
	}
	return list, true
}

// ForeignType is the internal representation for bound native instances.
// The string representation is the instance's handle name, which is also
// the command used to call its methods.
type ForeignType struct {
	instance *Instance
}

func (t *ForeignType) Name() string         { return t.instance.class.name }
func (t *ForeignType) Dup() ObjType         { return t }
func (t *ForeignType) UpdateString() string { return t.instance.handle }

// EnumValue is the internal representation for a member of a bound enum.
// It does not convert to a number: numeric parameters see only its label.
type EnumValue struct {
	Enum    *Enum
	Label   string
	Ordinal int64
}

func (t *EnumValue) Name() string         { return t.Enum.name }
func (t *EnumValue) Dup() ObjType         { return t }
func (t *EnumValue) UpdateString() string { return t.Label }
