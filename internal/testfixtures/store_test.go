package testfixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/item-validation/internal/application"
)

func TestItemStore(t *testing.T) {
	ctx := context.Background()
	existing := NewItemFixture(WithItemID(5), WithItemName("itemA")).Application()
	store := NewItemStore(existing)

	saved, err := store.Save(ctx, NewItemFixture(WithItemName("itemB")).Application())
	require.NoError(t, err)
	assert.Equal(t, int64(6), saved.ID)

	*saved.Price = 1
	fetched, err := store.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000, *fetched.Price, "store must not alias caller memory")

	fetched.ItemName = "itemB2"
	require.NoError(t, store.Update(ctx, saved.ID, fetched))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "itemA", all[0].ItemName)
	assert.Equal(t, "itemB2", all[1].ItemName)

	_, err = store.FindByID(ctx, 99)
	assert.ErrorIs(t, err, application.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, 99, fetched), application.ErrNotFound)

	store.Err = errors.New("offline")
	_, err = store.FindAll(ctx)
	assert.EqualError(t, err, "offline")
}

func TestItemFixtureConversions(t *testing.T) {
	fixture := NewItemFixture(WithItemName("pen"), WithPrice(1500), WithoutQuantity())

	form := fixture.Form()
	require.NotNil(t, form.ItemName)
	assert.Equal(t, "pen", *form.ItemName)
	assert.Equal(t, 1500, *form.Price)
	assert.Nil(t, form.Quantity)

	row := fixture.Persistence()
	assert.Equal(t, fixture.CreatedAt, row.CreatedAt)
	assert.Nil(t, row.Quantity)

	item := fixture.Application()
	assert.Equal(t, "pen", item.ItemName)
}

func TestSQLiteHarness(t *testing.T) {
	harness := NewSQLiteHarness(t)

	created, err := harness.Items.CreateItem(context.Background(), NewItemFixture().Persistence())
	require.NoError(t, err)

	fetched, err := harness.Items.GetItem(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ItemName, fetched.ItemName)
}
