package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_ValidateRunsRulesInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	rules := Rules[product]{
		ObjectName: "product",
		List: []Rule[product]{
			func(p product, failures *FailureSet) {
				order = append(order, "name")
				if strings.TrimSpace(p.name) == "" {
					failures.RejectValue("name", "required", nil, "")
				}
			},
			nil,
			func(p product, failures *FailureSet) {
				order = append(order, "price")
				if p.price == nil {
					failures.RejectValue("price", "required", nil, "")
				}
			},
		},
	}

	failures := rules.Validate(product{})
	assert.Equal(t, []string{"name", "price"}, order)
	require.Equal(t, 2, failures.Len())
	assert.Equal(t, "product", failures.ObjectName())
	assert.Equal(t, product{}, failures.Target())
}

func TestFieldRule_SkipsBindingFailures(t *testing.T) {
	t.Parallel()

	called := false
	rules := Rules[product]{
		ObjectName: "product",
		List: []Rule[product]{
			FieldRule("price", func(p product, failures *FailureSet) {
				called = true
				failures.RejectValue("price", "required", nil, "")
			}),
		},
	}

	target := product{}
	failures := NewFailureSet(target, "product")
	failures.AddFieldFailure("price", "abc", true, failures.FieldCodes("typeMismatch", "price"), nil, "")

	rules.ValidateInto(target, failures)
	assert.False(t, called)
	require.Len(t, failures.FailuresFor("price"), 1)
	assert.Equal(t, "typeMismatch.product.price", failures.FailuresFor("price")[0].Codes()[0])

	clean := rules.Validate(target)
	assert.True(t, called)
	assert.True(t, clean.HasFieldFailures("price"))
}
