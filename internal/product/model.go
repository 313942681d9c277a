package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	IsActive    bool            `json:"isActive"`
	CreatedBy   *uint           `json:"createdBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
}

// UpdateInput is a partial update: nil fields are left untouched.
type UpdateInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Images      *[]string        `json:"images"`
	IsActive    *bool            `json:"isActive"`
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Description == nil && in.Price == nil &&
		in.Stock == nil && in.Category == nil && in.Images == nil && in.IsActive == nil
}

type ListFilter struct {
	Category   string
	OnlyActive bool
	Limit      int
	Offset     int
}

type ListQuery struct {
	Category string
	Page     int
	Limit    int
}
