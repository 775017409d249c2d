package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/billing/backend/internal/domain/billing"
)

// GormUnitOfWork runs invoice mutations inside one database
// transaction. The repositories handed to fn are bound to the open
// transaction, so every write commits or rolls back as a unit.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

var _ billing.UnitOfWork = (*GormUnitOfWork)(nil)

// Execute runs fn inside a transaction. An error from fn rolls back
// every write made through the transaction context.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(tx billing.TxContext) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(billing.TxContext{
			Invoices: NewGormInvoiceRepository(tx),
			Items:    NewGormItemRepository(tx),
			Parties:  NewGormPartyRepository(tx),
		})
	})
}
