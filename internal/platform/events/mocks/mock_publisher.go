package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType, key string, payload any) {
	m.Called(ctx, eventType, key, payload)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
