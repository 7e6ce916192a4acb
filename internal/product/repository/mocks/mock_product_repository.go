package mocks

import (
	"context"

	"github.com/ridloal/toy-store-backend/internal/platform/database"
	pDomain "github.com/ridloal/toy-store-backend/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Category() pDomain.Category {
	args := m.Called()
	return args.Get(0).(pDomain.Category)
}

func (m *MockProductRepository) List(ctx context.Context) ([]pDomain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*pDomain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *pDomain.Product) error {
	args := m.Called(ctx, p)
	if p != nil && args.Error(0) == nil {
		p.ID = "mock-product-id"
	}
	return args.Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id string, stock int) (*pDomain.Product, error) {
	args := m.Called(ctx, id, stock)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, dbops database.DBTX, id string, delta int) (int, error) {
	args := m.Called(ctx, dbops, id, delta)
	return args.Int(0), args.Error(1)
}
