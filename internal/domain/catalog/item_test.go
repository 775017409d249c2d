package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates item with valid fields", func(t *testing.T) {
		item, err := NewItem(tenantID, "Widget", "hardware", decimal.NewFromFloat(19.99), 100)
		require.NoError(t, err)
		assert.Equal(t, tenantID, item.TenantID)
		assert.Equal(t, "Widget", item.Name)
		assert.Equal(t, "hardware", item.Category)
		assert.Equal(t, int64(100), item.StockQuantity)
		assert.NotEqual(t, uuid.Nil, item.ID)
	})

	t.Run("trims whitespace from name", func(t *testing.T) {
		item, err := NewItem(tenantID, "  Widget  ", "", decimal.NewFromInt(5), 0)
		require.NoError(t, err)
		assert.Equal(t, "Widget", item.Name)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewItem(tenantID, "   ", "", decimal.NewFromInt(5), 0)
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewItem(tenantID, "Widget", "", decimal.NewFromInt(-1), 0)
		assert.Error(t, err)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewItem(tenantID, "Widget", "", decimal.NewFromInt(1), -5)
		assert.Error(t, err)
	})
}

func TestItemHasStock(t *testing.T) {
	item, err := NewItem(uuid.New(), "Widget", "", decimal.NewFromInt(10), 10)
	require.NoError(t, err)

	assert.True(t, item.HasStock(10))
	assert.True(t, item.HasStock(1))
	assert.False(t, item.HasStock(11))
}
