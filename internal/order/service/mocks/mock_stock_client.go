package mocks

import (
	"context"

	stockDomain "github.com/ridloal/toy-store-backend/internal/stock/domain"
	"github.com/stretchr/testify/mock"
)

type MockStockClient struct {
	mock.Mock
}

func (m *MockStockClient) Reserve(ctx context.Context, lines []stockDomain.Line) (*stockDomain.ReserveResponse, error) {
	args := m.Called(ctx, lines)
	if res := args.Get(0); res != nil {
		return res.(*stockDomain.ReserveResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
