package application

import (
	"strings"

	"github.com/example/item-validation/internal/validation"
)

// Business limits applied to submitted items.
const (
	MinPrice = 1000
	MaxPrice = 1000000
	// QuantityLimit rejects quantities at or above it, while messages show
	// MaxQuantity as the allowed maximum.
	QuantityLimit = 9000
	MaxQuantity   = 9999
	MinTotalPrice = 10000
)

// NewItemValidator returns the ordered rules checked on every add and edit.
func NewItemValidator() validation.Rules[ItemForm] {
	return validation.Rules[ItemForm]{
		ObjectName: ItemObjectName,
		List: []validation.Rule[ItemForm]{
			validation.FieldRule(FieldItemName, checkItemName),
			validation.FieldRule(FieldPrice, checkPrice),
			validation.FieldRule(FieldQuantity, checkQuantity),
			checkTotalPrice,
		},
	}
}

func checkItemName(form ItemForm, failures *validation.FailureSet) {
	if strings.TrimSpace(stringValue(form.ItemName)) == "" {
		failures.RejectValue(FieldItemName, "required", nil, "")
	}
}

func checkPrice(form ItemForm, failures *validation.FailureSet) {
	if form.Price == nil || *form.Price < MinPrice || *form.Price > MaxPrice {
		failures.RejectValue(FieldPrice, "range", []any{MinPrice, MaxPrice}, "")
	}
}

func checkQuantity(form ItemForm, failures *validation.FailureSet) {
	// TODO: align QuantityLimit with MaxQuantity once product confirms which bound is intended.
	if form.Quantity == nil || *form.Quantity >= QuantityLimit {
		failures.RejectValue(FieldQuantity, "max", []any{MaxQuantity}, "")
	}
}

// checkTotalPrice only runs once price and quantity are individually valid.
// This is narrower than checking whenever both values are present: a form
// whose price is already out of range gets no total price failure on top of
// the field failure.
func checkTotalPrice(form ItemForm, failures *validation.FailureSet) {
	if form.Price == nil || form.Quantity == nil {
		return
	}
	if failures.HasFieldFailures(FieldPrice) || failures.HasFieldFailures(FieldQuantity) {
		return
	}
	total := *form.Price * *form.Quantity
	if total < MinTotalPrice {
		failures.Reject("totalPriceMin", []any{MinTotalPrice, total}, "")
	}
}
