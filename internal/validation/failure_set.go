package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// FieldAccessor is implemented by validation targets that can report the
// current value and the type name of their fields.
type FieldAccessor interface {
	FieldValue(field string) any
	FieldType(field string) string
}

// Option configures a FailureSet.
type Option func(*FailureSet)

// WithResolver overrides the CodesResolver used by RejectValue and Reject.
func WithResolver(resolver CodesResolver) Option {
	return func(s *FailureSet) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithFieldTypes sets field type names, taking precedence over the target's
// FieldAccessor.
func WithFieldTypes(types map[string]string) Option {
	return func(s *FailureSet) {
		for field, typ := range types {
			s.fieldTypes[field] = typ
		}
	}
}

// FailureSet holds the failures of one validation pass over one target.
// Field failures and object failures keep their own insertion order.
//
// A FailureSet belongs to a single request and is not safe for concurrent use.
type FailureSet struct {
	objectName string
	target     any
	resolver   CodesResolver
	fieldTypes map[string]string

	fields  []*FieldFailure
	objects []*ObjectFailure
}

// NewFailureSet returns an empty set for target, reported under objectName.
func NewFailureSet(target any, objectName string, opts ...Option) *FailureSet {
	s := &FailureSet{
		objectName: objectName,
		target:     target,
		resolver:   defaultResolver,
		fieldTypes: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ObjectName returns the name failures are reported under.
func (s *FailureSet) ObjectName() string { return s.objectName }

// Target returns the validated object. Callers must treat it as read-only.
func (s *FailureSet) Target() any { return s.target }

// AddFieldFailure appends a failure for field. It panics when codes is empty
// and defaultMessage is blank since such a failure cannot be displayed.
func (s *FailureSet) AddFieldFailure(field string, rejected any, binding bool, codes []string, args []any, defaultMessage string) {
	s.fields = append(s.fields, &FieldFailure{
		ObjectFailure: newObjectFailure(s.objectName, codes, args, defaultMessage),
		field:         field,
		rejected:      rejected,
		binding:       binding,
	})
}

// AddObjectFailure appends a failure for the whole object. It panics under the
// same condition as AddFieldFailure.
func (s *FailureSet) AddObjectFailure(codes []string, args []any, defaultMessage string) {
	f := newObjectFailure(s.objectName, codes, args, defaultMessage)
	s.objects = append(s.objects, &f)
}

// RejectValue records a rule violation on field. errorCode is expanded into
// field codes using the object name and the field's type, and the rejected
// value is read from the target.
func (s *FailureSet) RejectValue(field, errorCode string, args []any, defaultMessage string) {
	s.AddFieldFailure(field, s.targetValue(field), false, s.FieldCodes(errorCode, field), args, defaultMessage)
}

// Reject records a violation on the whole object.
func (s *FailureSet) Reject(errorCode string, args []any, defaultMessage string) {
	s.AddObjectFailure(s.resolver.ResolveObjectCodes(errorCode, s.objectName), args, defaultMessage)
}

// FieldCodes expands errorCode for field with the set's resolver.
func (s *FailureSet) FieldCodes(errorCode, field string) []string {
	return s.resolver.ResolveFieldCodes(errorCode, s.objectName, field, s.FieldType(field))
}

// FieldType returns the type name of field, or "" when unknown.
func (s *FailureSet) FieldType(field string) string {
	if typ, ok := s.fieldTypes[field]; ok {
		return typ
	}
	if accessor, ok := s.target.(FieldAccessor); ok {
		return accessor.FieldType(field)
	}
	return ""
}

// FieldValue returns the value to show for field when the form is rendered
// again: the rejected value of its first failure, otherwise the target's value.
func (s *FailureSet) FieldValue(field string) any {
	if failures := s.FailuresFor(field); len(failures) > 0 {
		return failures[0].RejectedValue()
	}
	return s.targetValue(field)
}

func (s *FailureSet) targetValue(field string) any {
	if accessor, ok := s.target.(FieldAccessor); ok {
		return accessor.FieldValue(field)
	}
	return nil
}

// HasFailures reports whether any failure was recorded.
func (s *FailureSet) HasFailures() bool {
	return s != nil && (len(s.fields) > 0 || len(s.objects) > 0)
}

// HasFieldFailures reports whether field has at least one failure.
func (s *FailureSet) HasFieldFailures(field string) bool {
	return s != nil && lo.ContainsBy(s.fields, func(f *FieldFailure) bool { return f.field == field })
}

// HasBindingFailure reports whether field could not be converted from its raw input.
func (s *FailureSet) HasBindingFailure(field string) bool {
	return s != nil && lo.ContainsBy(s.fields, func(f *FieldFailure) bool {
		return f.field == field && f.binding
	})
}

// FailuresFor returns the failures of field in insertion order.
func (s *FailureSet) FailuresFor(field string) []*FieldFailure {
	if s == nil {
		return nil
	}
	return lo.Filter(s.fields, func(f *FieldFailure, _ int) bool { return f.field == field })
}

// FieldFailures returns all field failures in insertion order.
func (s *FailureSet) FieldFailures() []*FieldFailure {
	if s == nil {
		return nil
	}
	return append([]*FieldFailure(nil), s.fields...)
}

// ObjectFailures returns all object failures in insertion order.
func (s *FailureSet) ObjectFailures() []*ObjectFailure {
	if s == nil {
		return nil
	}
	return append([]*ObjectFailure(nil), s.objects...)
}

// AllFailures returns field failures followed by object failures.
func (s *FailureSet) AllFailures() []Failure {
	if s == nil {
		return nil
	}
	all := make([]Failure, 0, s.Len())
	for _, f := range s.fields {
		all = append(all, f)
	}
	for _, f := range s.objects {
		all = append(all, f)
	}
	return all
}

// Len returns the number of recorded failures.
func (s *FailureSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields) + len(s.objects)
}

// Error summarises the set for diagnostics.
func (s *FailureSet) Error() string {
	if s == nil {
		return "validation: no failures"
	}
	if !s.HasFailures() {
		return fmt.Sprintf("validation of %q: no failures", s.objectName)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "validation of %q: %d failure(s)", s.objectName, s.Len())
	for _, f := range s.AllFailures() {
		b.WriteString("\n")
		b.WriteString(f.Error())
	}
	return b.String()
}

// LogValue implements slog.LogValuer.
func (s *FailureSet) LogValue() slog.Value {
	if s == nil {
		return slog.GroupValue()
	}
	entries := lo.Map(s.AllFailures(), func(f Failure, _ int) string { return f.Error() })
	return slog.GroupValue(
		slog.String("object", s.objectName),
		slog.Int("count", s.Len()),
		slog.Any("entries", entries),
	)
}
