package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/item-validation/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "items.db")
	storage, err := OpenWithConfig(TempFileTestSQLiteConfig(dsn))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}

	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return storage
}

func intPtr(v int) *int { return &v }

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	now := time.Now().UTC().Truncate(time.Second)
	created, err := storage.CreateItem(ctx, persistence.Item{
		ItemName:  "itemA",
		Price:     intPtr(10000),
		Quantity:  intPtr(10),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected an assigned id, got %#v", created)
	}

	fetched, err := storage.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if fetched.ItemName != "itemA" || *fetched.Price != 10000 || *fetched.Quantity != 10 {
		t.Fatalf("unexpected item retrieved: %#v", fetched)
	}
	if !fetched.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, fetched.CreatedAt)
	}

	fetched.ItemName = "itemA2"
	fetched.Price = intPtr(20000)
	fetched.Quantity = nil
	fetched.UpdatedAt = now.Add(time.Minute)
	if err := storage.UpdateItem(ctx, fetched); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	items, err := storage.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ItemName != "itemA2" || *items[0].Price != 20000 || items[0].Quantity != nil {
		t.Fatalf("unexpected item after update: %#v", items[0])
	}
	if !items[0].UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected updated_at to change, got %v", items[0].UpdatedAt)
	}
}

func TestItemRepository_NullableFields(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	created, err := storage.CreateItem(ctx, persistence.Item{ItemName: "draft"})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	fetched, err := storage.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if fetched.Price != nil || fetched.Quantity != nil {
		t.Fatalf("expected NULL price and quantity, got %#v", fetched)
	}
	if fetched.CreatedAt.IsZero() || !fetched.CreatedAt.Equal(fetched.UpdatedAt) {
		t.Fatalf("expected timestamps to be filled, got %#v", fetched)
	}
}

func TestItemRepository_ListOrdersByID(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	for _, name := range []string{"b", "a", "c"} {
		if _, err := storage.CreateItem(ctx, persistence.Item{ItemName: name}); err != nil {
			t.Fatalf("CreateItem(%s) failed: %v", name, err)
		}
	}

	items, err := storage.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	got := []string{items[0].ItemName, items[1].ItemName, items[2].ItemName}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestItemRepository_EmptyList(t *testing.T) {
	storage := newTestStorage(t)

	items, err := storage.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestItemRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	if _, err := storage.GetItem(ctx, 42); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := storage.GetItem(ctx, 0); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for id 0, got %v", err)
	}
	if err := storage.UpdateItem(ctx, persistence.Item{ID: 42, ItemName: "ghost"}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestItemRepository_CreateRejectsAssignedID(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.CreateItem(context.Background(), persistence.Item{ID: 7, ItemName: "x"})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestStorage_InMemory(t *testing.T) {
	ctx := context.Background()
	storage, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer storage.Close()

	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := storage.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if _, err := storage.CreateItem(ctx, persistence.Item{ItemName: "mem"}); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	items, err := storage.ListItems(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one item, got %v (%v)", items, err)
	}
}

// newLockableStorage opens storage without a busy timeout, so a lock held by
// another connection fails reads at once instead of waiting inside SQLite.
func newLockableStorage(t *testing.T) (*Storage, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "items.db")
	storage, err := OpenWithConfig(SQLiteConfig{
		DSN:          path,
		JournalMode:  "DELETE",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close()
	})
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage, path
}

// lockDatabase holds an exclusive lock on path until the returned func is called.
func lockDatabase(t *testing.T, path string) func() {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open locking connection: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("failed to get locking connection: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "BEGIN EXCLUSIVE"); err != nil {
		t.Fatalf("failed to lock database: %v", err)
	}
	return func() {
		if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
			t.Errorf("failed to release lock: %v", err)
		}
		_ = conn.Close()
	}
}

func TestItemRepository_ReadsRetryWhileLocked(t *testing.T) {
	ctx := context.Background()
	storage, path := newLockableStorage(t)

	created, err := storage.CreateItem(ctx, persistence.Item{ItemName: "itemA", Price: intPtr(10000), Quantity: intPtr(10)})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	reads := map[string]func() error{
		"GetItem": func() error {
			_, err := storage.GetItem(ctx, created.ID)
			return err
		},
		"ListItems": func() error {
			items, err := storage.ListItems(ctx)
			if err == nil && len(items) != 1 {
				t.Errorf("expected one item, got %v", items)
			}
			return err
		},
	}

	for name, read := range reads {
		t.Run(name, func(t *testing.T) {
			unlock := lockDatabase(t, path)
			released := make(chan struct{})
			go func() {
				defer close(released)
				time.Sleep(150 * time.Millisecond)
				unlock()
			}()

			err := read()
			<-released
			if err != nil {
				t.Fatalf("expected read to succeed once the lock is released, got %v", err)
			}
		})
	}
}

func TestItemRepository_ReadReportsLockedAfterRetries(t *testing.T) {
	ctx := context.Background()
	storage, path := newLockableStorage(t)

	unlock := lockDatabase(t, path)
	defer unlock()

	_, err := storage.GetItem(ctx, 1)
	if !errors.Is(err, persistence.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
