package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/backend/internal/domain/catalog"
)

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=255"`
	Category      string          `json:"category" binding:"max=100"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity" binding:"min=0"`
}

// CreatePartyRequest represents a request to create a party
type CreatePartyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
	Kind string `json:"kind" binding:"required"`
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PartyListFilter represents filter options for the party list
type PartyListFilter struct {
	Search   string `form:"search"`
	Kind     string `form:"kind"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Category:      item.Category,
		Price:         item.Price,
		StockQuantity: item.StockQuantity,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// ToItemResponses converts domain items to response DTOs
func ToItemResponses(items []*catalog.Item) []ItemResponse {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ToItemResponse(item))
	}
	return responses
}

// ToPartyResponse converts a domain party to a response DTO
func ToPartyResponse(party *catalog.Party) PartyResponse {
	return PartyResponse{
		ID:        party.ID,
		Name:      party.Name,
		Kind:      strings.ToLower(string(party.Kind)),
		CreatedAt: party.CreatedAt,
		UpdatedAt: party.UpdatedAt,
	}
}

// ToPartyResponses converts domain parties to response DTOs
func ToPartyResponses(parties []*catalog.Party) []PartyResponse {
	responses := make([]PartyResponse, 0, len(parties))
	for _, party := range parties {
		responses = append(responses, ToPartyResponse(party))
	}
	return responses
}
