// pantry/merge/value.go
package merge

import (
	"maps"
	"slices"
)

// Kind tags the shape of a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one field of a Mapping. The set of implementations is closed:
// Scalar, *List and Mapping.
type Value interface {
	Kind() Kind
	isValue()
}

// Scalar holds a nil, bool, number or string.
type Scalar struct {
	Raw any
}

// S wraps raw as a Scalar.
func S(raw any) Scalar { return Scalar{Raw: raw} }

func (Scalar) Kind() Kind { return KindScalar }
func (Scalar) isValue()   {}

// List is an ordered sequence of values. It is always used through a
// pointer so Extend can append to it in place.
type List struct {
	Items []Value
}

// NewList returns a list holding items.
func NewList(items ...Value) *List {
	return &List{Items: items}
}

// Strings is a shorthand for a list of string scalars.
func Strings(items ...string) *List {
	l := &List{Items: make([]Value, 0, len(items))}
	for _, s := range items {
		l.Items = append(l.Items, S(s))
	}
	return l
}

func (*List) Kind() Kind { return KindList }
func (*List) isValue()   {}

// Len returns the number of items; a nil list has none.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Mapping is an unordered collection of string keys to values.
type Mapping map[string]Value

func (Mapping) Kind() Kind { return KindMapping }
func (Mapping) isValue()   {}

// Keys returns the mapping's keys in sorted order.
func (m Mapping) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}
