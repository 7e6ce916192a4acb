package mocks

import (
	"context"

	"github.com/ridloal/toy-store-backend/internal/order/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*domain.CreateOrderResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if res := args.Get(0); res != nil {
		return res.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}
