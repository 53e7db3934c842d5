package testfixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/item-validation/internal/application"
)

func TestServiceFactoryNewItemService(t *testing.T) {
	factory := NewServiceFactory()
	store := NewItemStore()

	svc := factory.NewItemService(ItemServiceDeps{Items: store})
	sub := application.NewSubmission(NewItemFixture().Form(), nil)

	require.NoError(t, svc.Add(context.Background(), sub))
	assert.Equal(t, application.SubmissionDone, sub.State())
	assert.Equal(t, int64(1), sub.Item.ID)
	assert.True(t, sub.Item.CreatedAt.Equal(factory.Clock.Current()))
	assert.Equal(t, 1, store.Len())
}

func TestServiceFactorySeedsSampleItems(t *testing.T) {
	store := NewItemStore()
	svc := NewServiceFactory().NewItemService(ItemServiceDeps{Items: store})

	n, err := svc.Seed(context.Background(), SampleItems()...)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "itemA", items[0].ItemName)
	assert.Equal(t, "itemB", items[1].ItemName)
}
