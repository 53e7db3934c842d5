package persistence

import "context"

// ItemRepository exposes CRUD operations for items.
type ItemRepository interface {
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) error
	GetItem(ctx context.Context, id int64) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
}
