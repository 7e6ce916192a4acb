package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/events"
	eventMocks "github.com/ridloal/toy-store-backend/internal/platform/events/mocks"
	pDomain "github.com/ridloal/toy-store-backend/internal/product/domain"
	pRepo "github.com/ridloal/toy-store-backend/internal/product/repository"
	"github.com/ridloal/toy-store-backend/internal/product/repository/mocks"
	"github.com/ridloal/toy-store-backend/internal/stock/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	catalog   *mocks.MockCatalog
	puzzles   *mocks.MockProductRepository
	madera    *mocks.MockProductRepository
	publisher *eventMocks.MockPublisher
	svc       *stockServiceImpl
}

func newFixture() *fixture {
	f := &fixture{
		catalog:   new(mocks.MockCatalog),
		puzzles:   new(mocks.MockProductRepository),
		madera:    new(mocks.MockProductRepository),
		publisher: new(eventMocks.MockPublisher),
	}
	f.catalog.On("For", pDomain.CategoryPuzzles).Return(f.puzzles, nil).Maybe()
	f.catalog.On("For", pDomain.CategoryMadera).Return(f.madera, nil).Maybe()
	f.svc = NewStockService(f.catalog, f.publisher).(*stockServiceImpl)
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func TestStockService_Verify(t *testing.T) {
	ctx := context.TODO()
	puzzle := &pDomain.Product{ID: "p1", Name: "Puzzle 1000", Category: pDomain.CategoryPuzzles, Stock: 10}
	train := &pDomain.Product{ID: "m1", Name: "Tren", Category: pDomain.CategoryMadera, Stock: 2}

	t.Run("Every line has enough stock", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("GetByID", ctx, "p1").Return(puzzle, nil).Once()
		f.madera.On("GetByID", ctx, "m1").Return(train, nil).Once()

		res, err := f.svc.Verify(ctx, []domain.Line{
			{Category: "puzzles", ProductID: "p1", Quantity: 10},
			{Category: "juegos-madera", ProductID: "m1", Quantity: 2},
		})

		require.NoError(t, err)
		assert.True(t, res.Available)
		assert.Empty(t, res.Message)
		f.puzzles.AssertExpectations(t)
		f.madera.AssertExpectations(t)
	})

	t.Run("Stops at the first short line", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("GetByID", ctx, "p1").Return(puzzle, nil).Once()

		res, err := f.svc.Verify(ctx, []domain.Line{
			{Category: "puzzles", ProductID: "p1", Quantity: 11},
			{Category: "juegos-madera", ProductID: "m1", Quantity: 5},
		})

		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Equal(t, "stock not available for Puzzle 1000", res.Message)
		f.madera.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Unknown category", func(t *testing.T) {
		f := newFixture()

		res, err := f.svc.Verify(ctx, []domain.Line{{Category: "peluches", ProductID: "x9", Quantity: 1}})

		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Equal(t, "invalid category for product x9", res.Message)
	})

	t.Run("Unknown product", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("GetByID", ctx, "gone").Return(nil, pRepo.ErrProductNotFound).Once()

		res, err := f.svc.Verify(ctx, []domain.Line{{Category: "puzzles", ProductID: "gone", Quantity: 1}})

		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Equal(t, "product not found: gone", res.Message)
	})

	t.Run("Persistence failure is an error", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("GetByID", ctx, "p1").Return(nil, fmt.Errorf("%w: ping", apperr.ErrUnavailable)).Once()

		res, err := f.svc.Verify(ctx, []domain.Line{{Category: "puzzles", ProductID: "p1", Quantity: 1}})

		assert.Nil(t, res)
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	})

	t.Run("Non-positive quantity is rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Verify(ctx, []domain.Line{{Category: "puzzles", ProductID: "p1", Quantity: 0}})

		assert.ErrorIs(t, err, ErrInvalidQuantity)
		f.puzzles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Quantity above the line limit is rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Verify(ctx, []domain.Line{{Category: "puzzles", ProductID: "p1", Quantity: 3000000000}})

		assert.ErrorIs(t, err, ErrQuantityTooLarge)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		f.puzzles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.TODO()

	t.Run("Applies the delta", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("AdjustStock", ctx, nil, "p1", -3).Return(7, nil).Once()

		stock, err := f.svc.Adjust(ctx, "puzzles", "p1", -3)

		assert.NoError(t, err)
		assert.Equal(t, 7, stock)
		f.puzzles.AssertExpectations(t)
	})

	t.Run("Refused delta is a conflict", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("AdjustStock", ctx, nil, "p1", -20).Return(7, pRepo.ErrInsufficientStock).Once()

		_, err := f.svc.Adjust(ctx, "puzzles", "p1", -20)

		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("Zero delta only validates the product", func(t *testing.T) {
		f := newFixture()
		f.puzzles.On("GetByID", ctx, "p1").Return(&pDomain.Product{ID: "p1", Stock: 4}, nil).Once()

		stock, err := f.svc.Adjust(ctx, "puzzles", "p1", 0)

		assert.NoError(t, err)
		assert.Equal(t, 4, stock)
		f.puzzles.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown category is not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Adjust(ctx, "peluches", "p1", -1)

		assert.ErrorIs(t, err, pDomain.ErrUnknownCategory)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Oversized delta never reaches the database", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Adjust(ctx, "puzzles", "p1", -domain.MaxQuantity-1)

		assert.ErrorIs(t, err, ErrQuantityTooLarge)
		f.catalog.AssertNotCalled(t, "For", mock.Anything)
	})
}

func TestStockService_Reserve(t *testing.T) {
	ctx := context.TODO()

	t.Run("Merges, skips zero lines and commits once", func(t *testing.T) {
		f := newFixture()
		tx := new(mocks.MockTx)
		f.catalog.On("BeginTx", ctx).Return(tx, nil).Once()
		f.puzzles.On("AdjustStock", ctx, tx, "p2", -1).Return(4, nil).Once()
		f.puzzles.On("AdjustStock", ctx, tx, "p1", -3).Return(7, nil).Once()
		f.madera.On("AdjustStock", ctx, tx, "m1", 2).Return(5, nil).Once()
		tx.On("Commit").Return(nil).Once()
		f.publisher.On("Publish", ctx, events.TypeStockReserved, "1700000000000", mock.AnythingOfType("domain.ReservedEvent")).Once()

		res, err := f.svc.Reserve(ctx, []domain.Line{
			{Category: "juegos-madera", ProductID: "m1", Quantity: 2},
			{Category: "puzzles", ProductID: "p2", Quantity: -1},
			{Category: "puzzles", ProductID: "p1", Quantity: -1},
			{Category: "puzzles", ProductID: "p9", Quantity: 0},
			{Category: "puzzles", ProductID: "p1", Quantity: -2},
		})

		require.NoError(t, err)
		assert.Equal(t, "1700000000000", res.ReservationID)
		assert.Equal(t, []domain.ReservedItem{
			{Category: "puzzles", ProductID: "p1", Stock: 7},
			{Category: "puzzles", ProductID: "p2", Stock: 4},
			{Category: "juegos-madera", ProductID: "m1", Stock: 5},
		}, res.Items)
		tx.AssertExpectations(t)
		tx.AssertNotCalled(t, "Rollback")
		f.publisher.AssertExpectations(t)
	})

	t.Run("A refused line rolls back every line", func(t *testing.T) {
		f := newFixture()
		tx := new(mocks.MockTx)
		f.catalog.On("BeginTx", ctx).Return(tx, nil).Once()
		f.puzzles.On("AdjustStock", ctx, tx, "p1", -3).Return(7, nil).Once()
		f.puzzles.On("AdjustStock", ctx, tx, "p2", -9).Return(4, pRepo.ErrInsufficientStock).Once()
		tx.On("Rollback").Return(nil).Once()

		res, err := f.svc.Reserve(ctx, []domain.Line{
			{Category: "puzzles", ProductID: "p1", Quantity: -3},
			{Category: "puzzles", ProductID: "p2", Quantity: -9},
		})

		assert.Nil(t, res)
		assert.ErrorIs(t, err, pRepo.ErrInsufficientStock)
		tx.AssertExpectations(t)
		tx.AssertNotCalled(t, "Commit")
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown category fails before any write", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Reserve(ctx, []domain.Line{{Category: "peluches", ProductID: "x", Quantity: -1}})

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		f.catalog.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("Oversized line fails before any write", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Reserve(ctx, []domain.Line{{Category: "puzzles", ProductID: "p1", Quantity: 2147483648}})

		assert.ErrorIs(t, err, ErrQuantityTooLarge)
		f.catalog.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("Only zero lines is a no-op", func(t *testing.T) {
		f := newFixture()

		res, err := f.svc.Reserve(ctx, []domain.Line{{Category: "puzzles", ProductID: "p1", Quantity: 0}})

		require.NoError(t, err)
		assert.Empty(t, res.Items)
		f.catalog.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("Begin failure", func(t *testing.T) {
		f := newFixture()
		f.catalog.On("BeginTx", ctx).Return(nil, errors.New("pool exhausted")).Once()

		_, err := f.svc.Reserve(ctx, []domain.Line{{Category: "puzzles", ProductID: "p1", Quantity: -1}})

		assert.EqualError(t, err, "pool exhausted")
	})
}
