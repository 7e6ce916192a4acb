package mocks

import (
	"context"

	"github.com/ridloal/toy-store-backend/internal/platform/database"
	pDomain "github.com/ridloal/toy-store-backend/internal/product/domain"
	"github.com/ridloal/toy-store-backend/internal/product/repository"
	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) For(category pDomain.Category) (repository.ProductRepository, error) {
	args := m.Called(category)
	if res := args.Get(0); res != nil {
		return res.(repository.ProductRepository), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalog) All() []repository.ProductRepository {
	args := m.Called()
	if res := args.Get(0); res != nil {
		return res.([]repository.ProductRepository)
	}
	return nil
}

func (m *MockCatalog) BeginTx(ctx context.Context) (database.Tx, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.(database.Tx), args.Error(1)
	}
	return nil, args.Error(1)
}
