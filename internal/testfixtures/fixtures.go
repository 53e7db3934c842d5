package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/item-validation/internal/application"
	"github.com/example/item-validation/internal/persistence"
)

var itemCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ItemFixture represents a deterministic item that passes validation unless
// overridden. It can be materialised as a form, an application item or a row.
type ItemFixture struct {
	ID        int64
	ItemName  string
	Price     *int
	Quantity  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemOption configures the generated item fixture.
type ItemOption func(*ItemFixture)

// NewItemFixture returns a valid item fixture with optional overrides. The ID
// is zero so the fixture can be inserted; use WithItemID for stored items.
func NewItemFixture(opts ...ItemOption) ItemFixture {
	idx := atomic.AddUint64(&itemCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	price := 10000
	quantity := 10
	fixture := ItemFixture{
		ItemName:  fmt.Sprintf("item-%03d", idx),
		Price:     &price,
		Quantity:  &quantity,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithItemID sets the identifier of a stored item.
func WithItemID(id int64) ItemOption {
	return func(f *ItemFixture) {
		f.ID = id
	}
}

// WithItemName overrides the generated name.
func WithItemName(name string) ItemOption {
	return func(f *ItemFixture) {
		f.ItemName = name
	}
}

// WithPrice overrides the price.
func WithPrice(price int) ItemOption {
	return func(f *ItemFixture) {
		f.Price = &price
	}
}

// WithoutPrice clears the price.
func WithoutPrice() ItemOption {
	return func(f *ItemFixture) {
		f.Price = nil
	}
}

// WithQuantity overrides the quantity.
func WithQuantity(quantity int) ItemOption {
	return func(f *ItemFixture) {
		f.Quantity = &quantity
	}
}

// WithoutQuantity clears the quantity.
func WithoutQuantity() ItemOption {
	return func(f *ItemFixture) {
		f.Quantity = nil
	}
}

// WithItemTimestamps sets both created and updated timestamps on the fixture.
func WithItemTimestamps(created, updated time.Time) ItemOption {
	return func(f *ItemFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Form converts the fixture into a submitted form.
func (f ItemFixture) Form() application.ItemForm {
	name := f.ItemName
	return application.ItemForm{
		ItemName: &name,
		Price:    cloneInt(f.Price),
		Quantity: cloneInt(f.Quantity),
	}
}

// Application converts the fixture into an application item.
func (f ItemFixture) Application() application.Item {
	return application.Item{
		ID:        f.ID,
		ItemName:  f.ItemName,
		Price:     cloneInt(f.Price),
		Quantity:  cloneInt(f.Quantity),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence converts the fixture into a persistence row.
func (f ItemFixture) Persistence() persistence.Item {
	return persistence.Item{
		ID:        f.ID,
		ItemName:  f.ItemName,
		Price:     cloneInt(f.Price),
		Quantity:  cloneInt(f.Quantity),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// SampleItems returns the two items the service seeds on an empty database.
func SampleItems() []application.ItemForm {
	return []application.ItemForm{
		application.NewItemForm("itemA", 10000, 10),
		application.NewItemForm("itemB", 20000, 20),
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
