package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// AsInt converts o to int64, shimmering if needed.
func AsInt(o *Obj) (int64, error) {
	if o == nil {
		return 0, nil
	}
	if c, ok := o.intrep.(IntoInt); ok {
		if v, ok := c.IntoInt(); ok {
			return v, nil
		}
	}
	v, err := strconv.ParseInt(strings.TrimSpace(o.String()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer but got %q", o.String())
	}
	if o.intrep == nil {
		o.intrep = IntType(v)
	}
	return v, nil
}

// AsDouble converts o to float64, shimmering if needed.
func AsDouble(o *Obj) (float64, error) {
	if o == nil {
		return 0, nil
	}
	if c, ok := o.intrep.(IntoDouble); ok {
		if v, ok := c.IntoDouble(); ok {
			return v, nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(o.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("expected floating-point number but got %q", o.String())
	}
	if o.intrep == nil {
		o.intrep = DoubleType(v)
	}
	return v, nil
}

// AsBool converts o to a boolean, shimmering if needed.
func AsBool(o *Obj) (bool, error) {
	if o == nil {
		return false, nil
	}
	if c, ok := o.intrep.(IntoBool); ok {
		if v, ok := c.IntoBool(); ok {
			return v, nil
		}
	}
	if v, err := strconv.ParseInt(o.String(), 10, 64); err == nil {
		return v != 0, nil
	}
	switch strings.ToLower(o.String()) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected boolean but got %q", o.String())
}

// AsList converts o to a list, parsing its string representation if it has
// no list-compatible internal representation.
func AsList(o *Obj) ([]*Obj, error) {
	if o == nil {
		return nil, nil
	}
	if c, ok := o.intrep.(IntoList); ok {
		if v, ok := c.IntoList(); ok {
			return v, nil
		}
	}
	words, err := parseList(o.String())
	if err != nil {
		return nil, err
	}
	items := make([]*Obj, len(words))
	for i, w := range words {
		items[i] = NewString(w)
	}
	if o.intrep == nil {
		o.intrep = ListType(items)
	}
	return items, nil
}

// AsDict converts o to a dictionary, parsing its string representation if
// needed.
func AsDict(o *Obj) (*DictType, error) {
	if o == nil {
		return &DictType{Items: make(map[string]*Obj)}, nil
	}
	if d, ok := o.intrep.(*DictType); ok {
		return d, nil
	}
	if c, ok := o.intrep.(IntoDict); ok {
		if items, order, ok := c.IntoDict(); ok {
			return &DictType{Items: items, Order: order}, nil
		}
	}
	list, err := AsList(o)
	if err != nil {
		return nil, err
	}
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("missing value to go with key")
	}
	d := &DictType{Items: make(map[string]*Obj, len(list)/2)}
	for i := 0; i < len(list); i += 2 {
		key := list[i].String()
		if _, exists := d.Items[key]; !exists {
			d.Order = append(d.Order, key)
		}
		d.Items[key] = list[i+1]
	}
	return d, nil
}

// quote adds braces around a string if it contains special characters.
func quote(s string) string {
	if s == "" {
		return "{}"
	}
	if strings.ContainsAny(s, " \t\n{}\"\\$[];") {
		return "{" + s + "}"
	}
	return s
}
