package persistence_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/item-validation/internal/persistence"
	"github.com/example/item-validation/internal/testfixtures"
)

func newPersistenceItem(opts ...testfixtures.ItemOption) persistence.Item {
	return testfixtures.NewItemFixture(opts...).Persistence()
}

func TestItemRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, updates, and lists items", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		base := testfixtures.ReferenceTime()
		item := newPersistenceItem(
			testfixtures.WithItemName("itemA"),
			testfixtures.WithPrice(10000),
			testfixtures.WithQuantity(10),
			testfixtures.WithItemTimestamps(base, base),
		)

		created, err := harness.Items.CreateItem(ctx, item)
		if err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}

		fetched, err := harness.Items.GetItem(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if fetched.ItemName != "itemA" || *fetched.Price != 10000 || *fetched.Quantity != 10 {
			t.Fatalf("unexpected item data: %#v", fetched)
		}

		fetched.Quantity = nil
		fetched.UpdatedAt = base.Add(time.Hour)
		if err := harness.Items.UpdateItem(ctx, fetched); err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}

		items, err := harness.Items.ListItems(ctx)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 1 || items[0].Quantity != nil || !items[0].UpdatedAt.Equal(base.Add(time.Hour)) {
			t.Fatalf("unexpected items after update: %#v", items)
		}
	})

	t.Run("assigns increasing identifiers", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		var ids []int64
		for i := 0; i < 3; i++ {
			created, err := harness.Items.CreateItem(ctx, newPersistenceItem())
			if err != nil {
				t.Fatalf("CreateItem failed: %v", err)
			}
			ids = append(ids, created.ID)
		}
		if !slices.IsSorted(ids) || ids[0] == ids[2] {
			t.Fatalf("expected increasing ids, got %v", ids)
		}
	})

	t.Run("reports missing items", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		if _, err := harness.Items.GetItem(ctx, 1); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
		missing := newPersistenceItem(testfixtures.WithItemID(1))
		if err := harness.Items.UpdateItem(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound on update, got %v", err)
		}
	})
}
