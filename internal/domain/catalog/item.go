package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/shared"
)

// Item is a sellable catalog entry with a tracked stock level.
// Stock is never mutated through the aggregate directly; all stock
// movement goes through ItemRepository.AdjustStock so the non-negativity
// guard and the write are one atomic statement.
type Item struct {
	shared.TenantAggregateRoot
	Name          string          `gorm:"type:varchar(255);not null"`
	Category      string          `gorm:"type:varchar(100)"`
	Price         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	StockQuantity int64           `gorm:"not null;default:0;check:stock_quantity >= 0"`
}

// TableName returns the database table name
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new catalog item
func NewItem(tenantID uuid.UUID, name, category string, price decimal.Decimal, stockQuantity int64) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Item name is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Item price cannot be negative")
	}
	if stockQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Item stock quantity cannot be negative")
	}
	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Category:            category,
		Price:               price,
		StockQuantity:       stockQuantity,
	}, nil
}

// HasStock reports whether the item can cover the requested quantity
func (i *Item) HasStock(quantity int64) bool {
	return i.StockQuantity >= quantity
}
