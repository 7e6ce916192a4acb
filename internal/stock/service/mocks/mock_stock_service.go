package mocks

import (
	"context"

	"github.com/ridloal/toy-store-backend/internal/stock/domain"
	"github.com/stretchr/testify/mock"
)

type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) Verify(ctx context.Context, lines []domain.Line) (*domain.VerifyResponse, error) {
	args := m.Called(ctx, lines)
	if res := args.Get(0); res != nil {
		return res.(*domain.VerifyResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStockService) Adjust(ctx context.Context, category, productID string, delta int) (int, error) {
	args := m.Called(ctx, category, productID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockStockService) Reserve(ctx context.Context, lines []domain.Line) (*domain.ReserveResponse, error) {
	args := m.Called(ctx, lines)
	if res := args.Get(0); res != nil {
		return res.(*domain.ReserveResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
