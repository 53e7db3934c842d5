package validation

// Validator checks a candidate and reports what is wrong with it.
type Validator[T any] interface {
	// Validate runs every rule against candidate in a fresh FailureSet.
	Validate(candidate T) *FailureSet
	// ValidateInto runs every rule against candidate, appending to failures.
	// Failures already present, such as binding failures, are kept.
	ValidateInto(candidate T, failures *FailureSet)
}

// Rule inspects a candidate and records violations in failures.
type Rule[T any] func(candidate T, failures *FailureSet)

// FieldRule is a Rule scoped to one field. It is skipped when the field
// already failed to bind, so the user only sees the conversion error.
func FieldRule[T any](field string, check Rule[T]) Rule[T] {
	return func(candidate T, failures *FailureSet) {
		if failures.HasBindingFailure(field) {
			return
		}
		check(candidate, failures)
	}
}

// Rules is an ordered list of rules validating objects named ObjectName.
type Rules[T any] struct {
	ObjectName string
	Options    []Option
	List       []Rule[T]
}

// Validate implements Validator.
func (r Rules[T]) Validate(candidate T) *FailureSet {
	failures := NewFailureSet(candidate, r.ObjectName, r.Options...)
	r.ValidateInto(candidate, failures)
	return failures
}

// ValidateInto implements Validator.
func (r Rules[T]) ValidateInto(candidate T, failures *FailureSet) {
	for _, rule := range r.List {
		if rule != nil {
			rule(candidate, failures)
		}
	}
}
