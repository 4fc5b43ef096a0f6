// Package reset holds single-field undo records.
package reset

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/light-bringer/syncable/internal/pkg/fields"
)

// ErrInvalidArgument is returned when an Action cannot be built for the
// requested target and field.
var ErrInvalidArgument = errors.New("invalid argument")

// Action restores one field of a target to a captured value.
// The target is referenced, not owned.
type Action struct {
	target  fields.Settable
	field   fields.Field
	restore any
}

// New builds an Action that writes restore into field on target.
// Every misconfiguration is reported here so that Apply cannot fail
// silently later.
func New(target fields.Settable, field string, restore any) (*Action, error) {
	if isNil(target) {
		return nil, fmt.Errorf("%w: target is nil", ErrInvalidArgument)
	}
	if field == "" {
		return nil, fmt.Errorf("%w: field name is empty", ErrInvalidArgument)
	}

	f, ok := target.FieldSet().Lookup(field)
	if !ok || f.Access() == fields.Hidden {
		return nil, fmt.Errorf("%w: public field %q does not exist on %T", ErrInvalidArgument, field, target)
	}
	if !f.HasSetter() || f.Access() == fields.ReadOnly {
		return nil, fmt.Errorf("%w: field %q on %T has no setter", ErrInvalidArgument, field, target)
	}
	if f.Access() != fields.Public {
		return nil, fmt.Errorf("%w: setter of field %q on %T is not public", ErrInvalidArgument, field, target)
	}
	if !f.Accepts(restore) {
		return nil, fmt.Errorf("%w: value of type %T cannot be assigned to field %q", ErrInvalidArgument, restore, field)
	}

	return &Action{target: target, field: f, restore: restore}, nil
}

// Apply writes the captured value back. Panics raised by the setter are not
// recovered.
func (a *Action) Apply() {
	a.field.Set(a.restore)
}

// Field returns the name of the field this action restores.
func (a *Action) Field() string { return a.field.Name() }

// Value returns the value Apply writes.
func (a *Action) Value() any { return a.restore }

// Target returns the object this action restores.
func (a *Action) Target() fields.Settable { return a.target }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
