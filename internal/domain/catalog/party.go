package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/billing/backend/internal/domain/shared"
)

// PartyKind distinguishes customers from suppliers
type PartyKind string

const (
	PartyKindCustomer PartyKind = "CUSTOMER"
	PartyKindSupplier PartyKind = "SUPPLIER"
)

// IsValid checks whether the kind is a known value
func (k PartyKind) IsValid() bool {
	return k == PartyKindCustomer || k == PartyKindSupplier
}

// Party is a customer or supplier that invoices are issued against
type Party struct {
	shared.TenantAggregateRoot
	Name string    `gorm:"type:varchar(255);not null"`
	Kind PartyKind `gorm:"type:varchar(20);not null"`
}

// TableName returns the database table name
func (Party) TableName() string {
	return "parties"
}

// NewParty creates a new party
func NewParty(tenantID uuid.UUID, name string, kind PartyKind) (*Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party name is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party kind must be CUSTOMER or SUPPLIER")
	}
	return &Party{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Kind:                kind,
	}, nil
}
