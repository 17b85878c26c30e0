package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/cart/repository"
	"github.com/tair/storefront/internal/cart/usecase/command"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
)

// TestAddItemDefaultsQuantity verifies an omitted quantity means one item,
// and a zero product id is rejected before touching the cart.
func TestAddItemDefaultsQuantity(t *testing.T) {
	t.Parallel()

	store := storagerepo.NewMemoryStore()
	defer store.Close()

	cart := repository.NewSlotStore(context.Background(), store)
	defer cart.Close()

	handler := command.NewAddItemHandler(cart)

	require.NoError(t, handler.Handle(command.AddItemCommand{ProductID: 7}))
	assert.Equal(t, 1, cart.ItemCount())

	require.NoError(t, handler.Handle(command.AddItemCommand{ProductID: 7, Quantity: 3}))
	assert.Equal(t, 4, cart.ItemCount())

	err := handler.Handle(command.AddItemCommand{ProductID: 0, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, 4, cart.ItemCount())
}
