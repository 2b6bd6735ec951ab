package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. It owns its images: deleting a product deletes
// every image that references it.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Images      []Image         `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductFilter narrows a product listing. Empty fields match everything.
type ProductFilter struct {
	Name     string
	Brand    string
	Category string
	Limit    int
	Offset   int
}

// AddProductRequest holds the parameters for creating a product.
type AddProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Brand       string          `json:"brand" validate:"required,min=1,max=255"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Inventory   int             `json:"inventory" validate:"gte=0"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category" validate:"required,min=1,max=255"`
}

// UpdateProductRequest replaces every mutable field of a product.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Brand       string          `json:"brand" validate:"required,min=1,max=255"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Inventory   int             `json:"inventory" validate:"gte=0"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category" validate:"required,min=1,max=255"`
}
