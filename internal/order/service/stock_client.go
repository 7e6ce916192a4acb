package service

import (
	"context"

	stockDomain "github.com/ridloal/toy-store-backend/internal/stock/domain"
)

// StockClient is the part of the stock service the order workflow needs.
// Positive quantities release units back to stock.
type StockClient interface {
	Reserve(ctx context.Context, lines []stockDomain.Line) (*stockDomain.ReserveResponse, error)
}
