// Package validation records the outcome of a single validation pass over a
// submitted object.
//
// A FailureSet collects field and object failures in the order they were
// reported. Each failure carries candidate message codes, most specific first,
// built by a CodesResolver, plus positional arguments and an optional default
// message for when no code is found in the message catalog.
package validation

import (
	"fmt"
	"strings"
)

// Failure is either a *FieldFailure or an *ObjectFailure.
type Failure interface {
	error
	ObjectName() string
	Codes() []string
	Arguments() []any
	DefaultMessage() string

	failure()
}

// ObjectFailure is a failure of the object as a whole, e.g. a cross-field rule.
type ObjectFailure struct {
	object         string
	codes          []string
	args           []any
	defaultMessage string
}

// ObjectName returns the name of the validated object.
func (f *ObjectFailure) ObjectName() string { return f.object }

// Codes returns the candidate message codes, most specific first.
func (f *ObjectFailure) Codes() []string { return f.codes }

// Arguments returns the positional message arguments.
func (f *ObjectFailure) Arguments() []any { return f.args }

// DefaultMessage returns the literal fallback message, possibly empty.
func (f *ObjectFailure) DefaultMessage() string { return f.defaultMessage }

func (f *ObjectFailure) Error() string {
	return fmt.Sprintf("object %q: codes [%s]; arguments %v; default message [%s]",
		f.object, strings.Join(f.codes, ","), f.args, f.defaultMessage)
}

func (*ObjectFailure) failure() {}

// FieldFailure is a failure attributable to one named field.
type FieldFailure struct {
	ObjectFailure
	field    string
	rejected any
	binding  bool
}

// Field returns the field name.
func (f *FieldFailure) Field() string { return f.field }

// RejectedValue returns the value the user submitted for the field. It may be nil.
func (f *FieldFailure) RejectedValue() any { return f.rejected }

// IsBindingFailure reports whether the raw input could not be converted to the
// field's type, as opposed to a rule violation.
func (f *FieldFailure) IsBindingFailure() bool { return f.binding }

func (f *FieldFailure) Error() string {
	return fmt.Sprintf("field %q on object %q: rejected value [%v]; codes [%s]; arguments %v; default message [%s]",
		f.field, f.object, f.rejected, strings.Join(f.codes, ","), f.args, f.defaultMessage)
}

func newObjectFailure(object string, codes []string, args []any, defaultMessage string) ObjectFailure {
	if len(codes) == 0 && defaultMessage == "" {
		panic(fmt.Sprintf("validation: failure on %q needs at least one code or a default message", object))
	}
	return ObjectFailure{
		object:         object,
		codes:          append([]string(nil), codes...),
		args:           append([]any(nil), args...),
		defaultMessage: defaultMessage,
	}
}

// Resolvable is a message argument that is itself looked up in the message
// catalog, typically a localized field name.
type Resolvable struct {
	Codes   []string
	Default string
}

func (r Resolvable) String() string {
	if r.Default != "" {
		return r.Default
	}
	if len(r.Codes) > 0 {
		return r.Codes[len(r.Codes)-1]
	}
	return ""
}
