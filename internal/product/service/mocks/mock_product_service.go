package mocks

import (
	"context"

	pDomain "github.com/ridloal/toy-store-backend/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListByCategory(ctx context.Context, category string) ([]pDomain.Product, error) {
	args := m.Called(ctx, category)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, req pDomain.CreateProductRequest) (*pDomain.Product, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) SetStock(ctx context.Context, category, id string, stock int) (*pDomain.Product, error) {
	args := m.Called(ctx, category, id, stock)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) StockReport(ctx context.Context) (*pDomain.StockReport, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.StockReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) StartScheduler(spec string) error {
	args := m.Called(spec)
	return args.Error(0)
}

func (m *MockProductService) StopScheduler() {
	m.Called()
}
