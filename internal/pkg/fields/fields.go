// Package fields describes the settable fields of a tracked type as a table of
// typed getter/setter closures, resolved per concrete type at compile time.
package fields

import "fmt"

// Access tells who may invoke a field's setter.
type Access int

const (
	// Public fields can be set by anyone holding the table.
	Public Access = iota
	// PrivateSetter fields are readable but only the owning type sets them.
	PrivateSetter
	// ReadOnly fields have no setter at all.
	ReadOnly
	// Hidden fields are not visible outside the owning type.
	Hidden
)

// String implements fmt.Stringer.
func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case PrivateSetter:
		return "private-setter"
	case ReadOnly:
		return "read-only"
	case Hidden:
		return "hidden"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Settable is implemented by types that publish a field table.
type Settable interface {
	FieldSet() *Set
}

// Field is one entry in a field table.
type Field struct {
	name    string
	access  Access
	get     func() any
	set     func(any)
	accepts func(any) bool
}

// Define builds a publicly settable field of type T.
func Define[T any](name string, get func() T, set func(T)) Field {
	f := ReadOnlyField(name, get)
	if set != nil {
		f.access = Public
		f.set = func(v any) {
			if v == nil {
				var zero T
				set(zero)
				return
			}
			set(v.(T))
		}
	}
	return f
}

// ReadOnlyField builds a field of type T without a setter.
func ReadOnlyField[T any](name string, get func() T) Field {
	return Field{
		name:   name,
		access: ReadOnly,
		get: func() any {
			if get == nil {
				return nil
			}
			return get()
		},
		accepts: func(v any) bool {
			if v == nil {
				return true
			}
			_, ok := v.(T)
			return ok
		},
	}
}

// WithAccess returns a copy of f with the given access level.
func (f Field) WithAccess(a Access) Field {
	f.access = a
	return f
}

// Name returns the field identifier.
func (f Field) Name() string { return f.name }

// Access returns the field's access level.
func (f Field) Access() Access { return f.access }

// Get returns the current value.
func (f Field) Get() any { return f.get() }

// HasSetter reports whether the field carries a setter closure.
func (f Field) HasSetter() bool { return f.set != nil }

// Accepts reports whether v can be written to the field. Nil stands for the
// zero value.
func (f Field) Accepts(v any) bool { return f.accepts(v) }

// Set writes v through the setter. It panics if the field has no setter or v
// has the wrong type; callers validate with HasSetter and Accepts first.
func (f Field) Set(v any) {
	if f.set == nil {
		panic(fmt.Sprintf("fields: %s has no setter", f.name))
	}
	f.set(v)
}

// Set is an ordered field table.
type Set struct {
	order  []string
	byName map[string]Field
}

// NewSet builds a table from fs. Duplicate or empty names are programming
// errors and panic.
func NewSet(fs ...Field) *Set {
	s := &Set{
		order:  make([]string, 0, len(fs)),
		byName: make(map[string]Field, len(fs)),
	}
	for _, f := range fs {
		if f.name == "" {
			panic("fields: empty field name")
		}
		if _, dup := s.byName[f.name]; dup {
			panic(fmt.Sprintf("fields: duplicate field %q", f.name))
		}
		s.order = append(s.order, f.name)
		s.byName[f.name] = f
	}
	return s
}

// Lookup finds a field by name.
func (s *Set) Lookup(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	f, ok := s.byName[name]
	return f, ok
}

// Names returns the field names in declaration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
