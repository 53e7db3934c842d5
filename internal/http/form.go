package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/example/item-validation/internal/application"
	"github.com/example/item-validation/internal/validation"
)

// itemFields lists the form fields in display order.
var itemFields = []string{application.FieldItemName, application.FieldPrice, application.FieldQuantity}

type bindingError struct {
	field string
	raw   string
	err   error
}

// bindItemForm decodes the submitted form. Numeric fields that cannot be
// converted stay nil in the form and are recorded as binding failures, with
// the raw input as the rejected value.
func bindItemForm(r *http.Request) (application.ItemForm, *validation.FailureSet, error) {
	if err := r.ParseForm(); err != nil {
		return application.ItemForm{}, nil, err
	}
	return bindItemValues(r.PostForm)
}

func bindItemValues(values url.Values) (application.ItemForm, *validation.FailureSet, error) {
	var (
		form    application.ItemForm
		pending []bindingError
	)

	if values.Has(application.FieldItemName) {
		name := values.Get(application.FieldItemName)
		form.ItemName = &name
	}

	for _, field := range []string{application.FieldPrice, application.FieldQuantity} {
		n, raw, err := bindInt(values, field)
		if err != nil {
			pending = append(pending, bindingError{field: field, raw: raw, err: err})
			continue
		}
		switch field {
		case application.FieldPrice:
			form.Price = n
		case application.FieldQuantity:
			form.Quantity = n
		}
	}

	failures := validation.NewFailureSet(form, application.ItemObjectName)
	for _, b := range pending {
		failures.AddFieldFailure(
			b.field,
			b.raw,
			true,
			failures.FieldCodes("typeMismatch", b.field),
			[]any{validation.Resolvable{
				Codes:   []string{application.ItemObjectName + "." + b.field, b.field},
				Default: b.field,
			}},
			b.err.Error(),
		)
	}

	return form, failures, nil
}

// bindInt returns nil for an absent or blank value. Input is always read as
// decimal, so "010" is 10 and "0x10" fails to bind.
func bindInt(values url.Values, field string) (*int, string, error) {
	raw := values.Get(field)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, raw, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, raw, fmt.Errorf("failed to convert %q to int for field %s", raw, field)
	}
	return &n, raw, nil
}

// displayValue renders a field value for an input element.
func displayValue(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
