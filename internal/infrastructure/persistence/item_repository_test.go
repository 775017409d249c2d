package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/billing/backend/internal/domain/shared"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockItemRepository(t *testing.T) (*GormItemRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormItemRepository(gormDB), mock, mockDB
}

func TestGormItemRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds item within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "category", "price", "stock_quantity"}).
			AddRow(itemID, tenantID, "Widget", "hardware", decimal.NewFromInt(100), int64(10))

		mock.ExpectQuery(`SELECT \* FROM "items" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, itemID, 1).
			WillReturnRows(rows)

		item, err := repo.FindByIDForTenant(context.Background(), tenantID, itemID)

		require.NoError(t, err)
		assert.Equal(t, itemID, item.ID)
		assert.Equal(t, int64(10), item.StockQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing item", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		itemID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "items" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, itemID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		item, err := repo.FindByIDForTenant(context.Background(), tenantID, itemID)

		assert.Nil(t, item)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormItemRepository_FindByIDsForTenant(t *testing.T) {
	t.Run("returns empty slice without querying for no IDs", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		items, err := repo.FindByIDsForTenant(context.Background(), uuid.New(), nil)

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("finds items by IDs", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		itemID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "price", "stock_quantity"}).
			AddRow(itemID, tenantID, "Widget", decimal.NewFromInt(100), int64(5))

		mock.ExpectQuery(`SELECT \* FROM "items" WHERE tenant_id = \$1 AND id IN \(\$2\)`).
			WithArgs(tenantID, itemID).
			WillReturnRows(rows)

		items, err := repo.FindByIDsForTenant(context.Background(), tenantID, []uuid.UUID{itemID})

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, itemID, items[0].ID)
	})
}

func TestGormItemRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("applies delta when stock covers it", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdjustStock(ctx, uuid.New(), uuid.New(), -4)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		err := repo.AdjustStock(ctx, uuid.New(), uuid.New(), 0)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrInsufficientStock when guard rejects the update", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		itemID := uuid.New()

		mock.ExpectExec(`UPDATE "items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "items" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, itemID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.AdjustStock(ctx, tenantID, itemID, -100)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown item", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		itemID := uuid.New()

		mock.ExpectExec(`UPDATE "items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "items" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, itemID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.AdjustStock(ctx, tenantID, itemID, -1)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
