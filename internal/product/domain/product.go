package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Category    Category        `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateProductRequest struct {
	Category    string          `json:"category" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock" binding:"min=0"`
}

type SetStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

type SetStockResponse struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

// StockReport is produced by the scheduled inventory scan.
type StockReport struct {
	Threshold int       `json:"threshold"`
	Products  int       `json:"products"`
	LowStock  []Product `json:"lowStock"`
}
