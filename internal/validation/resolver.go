package validation

import "strings"

const codeSeparator = "."

// CodeFormat controls where the error code is placed inside a generated message code.
type CodeFormat int

const (
	// PrefixErrorCode places the error code first: "required.item.itemName".
	PrefixErrorCode CodeFormat = iota
	// PostfixErrorCode places the error code last: "item.itemName.required".
	PostfixErrorCode
)

// CodesResolver builds the candidate message codes for a failure, most specific first.
type CodesResolver interface {
	ResolveObjectCodes(errorCode, objectName string) []string
	ResolveFieldCodes(errorCode, objectName, field, fieldType string) []string
}

// DefaultCodesResolver is the stock CodesResolver. Its zero value produces
//
//	object: <code>.<object>, <code>
//	field:  <code>.<object>.<field>, <code>.<field>, <code>.<type>, <code>
//
// The type candidate is left out when the field type is unknown. Candidates are
// never deduplicated, so indexes stay stable for every input.
type DefaultCodesResolver struct {
	// Prefix is prepended to every error code, e.g. "validation.".
	Prefix string
	Format CodeFormat
}

var defaultResolver CodesResolver = DefaultCodesResolver{}

// ResolveObjectCodes resolves object codes with the default resolver.
func ResolveObjectCodes(errorCode, objectName string) []string {
	return defaultResolver.ResolveObjectCodes(errorCode, objectName)
}

// ResolveFieldCodes resolves field codes with the default resolver.
func ResolveFieldCodes(errorCode, objectName, field, fieldType string) []string {
	return defaultResolver.ResolveFieldCodes(errorCode, objectName, field, fieldType)
}

// ResolveObjectCodes implements CodesResolver.
func (r DefaultCodesResolver) ResolveObjectCodes(errorCode, objectName string) []string {
	code := r.Prefix + errorCode
	return []string{
		r.join(code, objectName),
		code,
	}
}

// ResolveFieldCodes implements CodesResolver.
func (r DefaultCodesResolver) ResolveFieldCodes(errorCode, objectName, field, fieldType string) []string {
	code := r.Prefix + errorCode
	codes := make([]string, 0, 4)
	codes = append(codes,
		r.join(code, objectName, field),
		r.join(code, field),
	)
	if fieldType != "" {
		codes = append(codes, r.join(code, fieldType))
	}
	return append(codes, code)
}

func (r DefaultCodesResolver) join(code string, parts ...string) string {
	elems := make([]string, 0, len(parts)+1)
	if r.Format == PostfixErrorCode {
		elems = append(elems, parts...)
		elems = append(elems, code)
	} else {
		elems = append(elems, code)
		elems = append(elems, parts...)
	}
	return strings.Join(elems, codeSeparator)
}
