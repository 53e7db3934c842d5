package application

import (
	"time"
)

// Field keys shared by the form, the failures and the message codes.
const (
	ItemObjectName = "item"
	FieldItemName  = "itemName"
	FieldPrice     = "price"
	FieldQuantity  = "quantity"
)

// Item represents a persisted catalog item.
type Item struct {
	ID        int64
	ItemName  string
	Price     *int
	Quantity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemForm captures caller provided item fields. A nil field was absent or
// could not be converted.
type ItemForm struct {
	ItemName *string
	Price    *int
	Quantity *int
}

// FieldValue returns the dereferenced value of field, or nil when it is absent.
func (f ItemForm) FieldValue(field string) any {
	switch field {
	case FieldItemName:
		if f.ItemName != nil {
			return *f.ItemName
		}
	case FieldPrice:
		if f.Price != nil {
			return *f.Price
		}
	case FieldQuantity:
		if f.Quantity != nil {
			return *f.Quantity
		}
	}
	return nil
}

// FieldType returns the type name used in message codes.
func (f ItemForm) FieldType(field string) string {
	switch field {
	case FieldItemName:
		return "string"
	case FieldPrice, FieldQuantity:
		return "int"
	}
	return ""
}

// FormFromItem fills a form with the current values of item, for editing.
func FormFromItem(item Item) ItemForm {
	name := item.ItemName
	return ItemForm{
		ItemName: &name,
		Price:    cloneInt(item.Price),
		Quantity: cloneInt(item.Quantity),
	}
}

// NewItemForm builds a fully populated form.
func NewItemForm(name string, price, quantity int) ItemForm {
	return ItemForm{ItemName: &name, Price: &price, Quantity: &quantity}
}

// TotalPrice returns price * quantity when both are present.
func (i Item) TotalPrice() (int, bool) {
	if i.Price == nil || i.Quantity == nil {
		return 0, false
	}
	return *i.Price * *i.Quantity, true
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
