package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/item-validation/internal/persistence"
)

const timeLayout = time.RFC3339Nano

// ItemRepository implements persistence.ItemRepository using SQLite
type ItemRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
	now    func() time.Time
}

// NewItemRepository creates a new SQLite item repository
func NewItemRepository(pool *ConnectionPool) *ItemRepository {
	return &ItemRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
		now:    time.Now,
	}
}

// CreateItem inserts item and returns it with the assigned ID. Zero
// timestamps are filled with the current time.
func (r *ItemRepository) CreateItem(ctx context.Context, item persistence.Item) (persistence.Item, error) {
	if item.ID != 0 {
		return persistence.Item{}, fmt.Errorf("%w: id is assigned on insert", persistence.ErrConstraintViolation)
	}

	now := r.now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	query := `
		INSERT INTO items (item_name, price, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	err := r.retry.WithRetry(ctx, func(ctx context.Context) error {
		result, err := r.helper.Exec(ctx, query,
			item.ItemName,
			nullableInt(item.Price),
			nullableInt(item.Quantity),
			item.CreatedAt.UTC().Format(timeLayout),
			item.UpdatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return err
		}
		item.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return persistence.Item{}, err
	}

	return item, nil
}

// UpdateItem overwrites name, price and quantity of an existing item.
func (r *ItemRepository) UpdateItem(ctx context.Context, item persistence.Item) error {
	if item.ID <= 0 {
		return persistence.ErrNotFound
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = r.now().UTC()
	}

	query := `
		UPDATE items
		SET item_name = ?, price = ?, quantity = ?, updated_at = ?
		WHERE id = ?
	`

	var rowsAffected int64
	err := r.retry.WithRetry(ctx, func(ctx context.Context) error {
		result, err := r.helper.Exec(ctx, query,
			item.ItemName,
			nullableInt(item.Price),
			nullableInt(item.Quantity),
			item.UpdatedAt.UTC().Format(timeLayout),
			item.ID,
		)
		if err != nil {
			return err
		}
		rowsAffected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetItem retrieves an item by ID. Like the writes, it retries while the
// database is locked.
func (r *ItemRepository) GetItem(ctx context.Context, id int64) (persistence.Item, error) {
	if id <= 0 {
		return persistence.Item{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, item_name, price, quantity, created_at, updated_at
		FROM items
		WHERE id = ?
	`

	var item persistence.Item
	err := r.retry.WithRetry(ctx, func(ctx context.Context) error {
		var err error
		item, err = scanItem(r.helper.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return persistence.Item{}, err
	}
	return item, nil
}

// ListItems returns all items ordered by ID
func (r *ItemRepository) ListItems(ctx context.Context) ([]persistence.Item, error) {
	query := `
		SELECT id, item_name, price, quantity, created_at, updated_at
		FROM items
		ORDER BY id ASC
	`

	var items []persistence.Item
	err := r.retry.WithRetry(ctx, func(ctx context.Context) error {
		var err error
		items, err = r.listItems(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) listItems(ctx context.Context, query string) ([]persistence.Item, error) {
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]persistence.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (persistence.Item, error) {
	var (
		item                     persistence.Item
		price, quantity          sql.NullInt64
		createdAtStr, updatedStr string
	)

	if err := row.Scan(&item.ID, &item.ItemName, &price, &quantity, &createdAtStr, &updatedStr); err != nil {
		return persistence.Item{}, err
	}

	item.Price = intFromNull(price)
	item.Quantity = intFromNull(quantity)

	var err error
	if item.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
		return persistence.Item{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(timeLayout, updatedStr); err != nil {
		return persistence.Item{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return item, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
