package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/shared"
)

// DesiredLine is the caller-supplied target state for one invoice line
type DesiredLine struct {
	ItemID   uuid.UUID
	Quantity int64
}

// ExistingLine is the stored state of one invoice line, keyed by item
type ExistingLine struct {
	LineID          uuid.UUID
	Quantity        int64
	PriceAtPurchase decimal.Decimal
}

// LineUpsert describes one line to insert or update in place
type LineUpsert struct {
	LineID          uuid.UUID
	ItemID          uuid.UUID
	Quantity        int64
	PriceAtPurchase decimal.Decimal
	TotalLineAmount decimal.Decimal
	IsNew           bool
}

// ReconcilePlan is the minimal change set that turns the existing line
// set into the desired one. StockDeltas is keyed by item: a negative
// delta consumes stock, a positive delta restores it.
type ReconcilePlan struct {
	Upserts       []LineUpsert
	DeleteLineIDs []uuid.UUID
	StockDeltas   map[uuid.UUID]int64
}

// Reconcile diffs the desired line set against the existing one.
//
// Item identity is the sole matching key. A surviving line keeps its
// stored PriceAtPurchase; only brand-new lines are priced from
// catalogPrices. Duplicate items in desired are a caller error, as is
// a non-positive quantity. The function is pure: it performs no I/O
// and leaves stock application to the caller.
func Reconcile(existing map[uuid.UUID]ExistingLine, desired []DesiredLine, catalogPrices map[uuid.UUID]decimal.Decimal) (*ReconcilePlan, error) {
	plan := &ReconcilePlan{
		StockDeltas: make(map[uuid.UUID]int64),
	}

	seen := make(map[uuid.UUID]bool, len(desired))
	for _, want := range desired {
		if seen[want.ItemID] {
			return nil, shared.NewDomainError("DUPLICATE_LINE_ITEM", fmt.Sprintf("Item %s appears more than once in the line set", want.ItemID))
		}
		seen[want.ItemID] = true

		if want.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity for item %s must be positive", want.ItemID))
		}

		if current, ok := existing[want.ItemID]; ok {
			if delta := current.Quantity - want.Quantity; delta != 0 {
				plan.StockDeltas[want.ItemID] = delta
			}
			if current.Quantity != want.Quantity {
				plan.Upserts = append(plan.Upserts, LineUpsert{
					LineID:          current.LineID,
					ItemID:          want.ItemID,
					Quantity:        want.Quantity,
					PriceAtPurchase: current.PriceAtPurchase,
					TotalLineAmount: current.PriceAtPurchase.Mul(decimal.NewFromInt(want.Quantity)),
				})
			}
			continue
		}

		price, ok := catalogPrices[want.ItemID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Item %s not found in catalog", want.ItemID))
		}
		plan.StockDeltas[want.ItemID] = -want.Quantity
		plan.Upserts = append(plan.Upserts, LineUpsert{
			ItemID:          want.ItemID,
			Quantity:        want.Quantity,
			PriceAtPurchase: price,
			TotalLineAmount: price.Mul(decimal.NewFromInt(want.Quantity)),
			IsNew:           true,
		})
	}

	for itemID, current := range existing {
		if seen[itemID] {
			continue
		}
		plan.DeleteLineIDs = append(plan.DeleteLineIDs, current.LineID)
		plan.StockDeltas[itemID] = current.Quantity
	}

	return plan, nil
}
