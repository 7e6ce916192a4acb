package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ridloal/toy-store-backend/internal/order/domain"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orderA = "0b7e3c1a-5d2f-4e6a-8c9b-1f2e3d4c5b6a"
	orderB = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
)

var orderCols = []string{"id", "code", "user_id", "customer_data", "total", "status", "created_at", "updated_at"}

func newRepo(t *testing.T) (OrderRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresOrderRepository(db), mock
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		Code: "2410-0042",
		CustomerData: domain.CustomerData{
			Name:    "Lucia",
			Address: domain.Address{Street: "Calle Mayor", PostalCode: "28013", City: "Madrid"},
		},
		Items: []domain.OrderItem{
			{ProductID: "p1", Category: "puzzles", Name: "Puzzle", Price: decimal.NewFromInt(10), Quantity: 2},
		},
		Total:     decimal.NewFromInt(20),
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	insertOrder := regexp.QuoteMeta(`INSERT INTO orders (code, user_id, customer_data, total, status, created_at, updated_at)`)
	insertItem := regexp.QuoteMeta(`INSERT INTO order_items`)

	t.Run("order and items in one transaction", func(t *testing.T) {
		repo, mock := newRepo(t)
		order := sampleOrder()

		mock.ExpectBegin()
		mock.ExpectQuery(insertOrder).
			WithArgs("2410-0042", nil, sqlmock.AnyArg(), "20", "pending", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderA))
		mock.ExpectExec(insertItem).
			WithArgs(orderA, 0, "p1", "puzzles", "Puzzle", "10", 2).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, order))
		assert.Equal(t, orderA, order.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("code collision is an internal error", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(insertOrder).WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		err := repo.Create(ctx, sampleOrder())
		assert.ErrorIs(t, err, ErrDuplicateOrderCode)
		assert.NotErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, 500, apperr.HTTPStatus(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed item rolls back the order", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(insertOrder).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderA))
		mock.ExpectExec(insertItem).WillReturnError(&pgconn.PgError{Code: "23514"})
		mock.ExpectRollback()

		err := repo.Create(ctx, sampleOrder())
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("client data rejected by postgres is a bad request", func(t *testing.T) {
		for code, msg := range map[string]string{
			"22P02": "malformed value",
			"23503": "unknown user",
			"23514": "data constraint",
			"22003": "out of range",
		} {
			repo, mock := newRepo(t)

			mock.ExpectBegin()
			mock.ExpectQuery(insertOrder).WillReturnError(&pgconn.PgError{Code: code})
			mock.ExpectRollback()

			err := repo.Create(ctx, sampleOrder())
			assert.ErrorIs(t, err, apperr.ErrValidation, code)
			assert.Equal(t, 400, apperr.HTTPStatus(err), code)
			assert.Contains(t, err.Error(), msg, code)
			assert.NoError(t, mock.ExpectationsWereMet(), code)
		}
	})

	t.Run("unexpected driver error stays internal", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(insertOrder).WillReturnError(&pgconn.PgError{Code: "42P01"})
		mock.ExpectRollback()

		assert.Equal(t, 500, apperr.HTTPStatus(repo.Create(ctx, sampleOrder())))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	update := regexp.QuoteMeta(`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`)
	lookup := regexp.QuoteMeta(`SELECT status FROM orders WHERE id = $1`)

	t.Run("pending order is updated", func(t *testing.T) {
		repo, mock := newRepo(t)
		now := time.Now()

		mock.ExpectQuery(update).WithArgs("accepted", orderA, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderA))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = $1`)).WithArgs(orderA).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(orderA, "2410-0042", nil, []byte(`{"name":"Lucia","address":{"street":"x","postalCode":"1","city":"y"}}`), "20.00", "accepted", now, now))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "category", "name", "price", "quantity"}).
				AddRow(orderA, "p1", "puzzles", "Puzzle", "10.00", 2))

		order, err := repo.Transition(ctx, orderA, domain.StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, order.Status)
		assert.Nil(t, order.UserID)
		assert.Equal(t, "Lucia", order.CustomerData.Name)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("decided order is a conflict", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(update).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(lookup).WithArgs(orderA).WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("rejected"))

		_, err := repo.Transition(ctx, orderA, domain.StatusAccepted)
		assert.ErrorIs(t, err, ErrOrderNotPending)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Contains(t, err.Error(), "cannot move from rejected to accepted")
	})

	t.Run("status changed between update and lookup", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(update).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(lookup).WithArgs(orderA).WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

		_, err := repo.Transition(ctx, orderA, domain.StatusRejected)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Contains(t, err.Error(), "changed while updating")
	})

	t.Run("target with no source status is refused before querying", func(t *testing.T) {
		repo, mock := newRepo(t)

		_, err := repo.Transition(ctx, orderA, domain.StatusPending)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(update).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(lookup).WithArgs(orderA).WillReturnRows(sqlmock.NewRows([]string{"status"}))

		_, err := repo.Transition(ctx, orderA, domain.StatusRejected)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		repo, mock := newRepo(t)

		_, err := repo.Transition(ctx, "42", domain.StatusRejected)
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListAll_AttachesItemsInOrder(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	customer := []byte(`{"name":"Lucia","address":{"street":"x","postalCode":"1","city":"y"}}`)
	user := "5c0e1f2a-3b4c-4d5e-8f9a-0b1c2d3e4f5a"

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(orderB, "2410-0002", user, customer, "5.00", "pending", now, now).
			AddRow(orderA, "2410-0001", nil, customer, "20.00", "rejected", now.Add(-time.Hour), now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "category", "name", "price", "quantity"}).
			AddRow(orderA, "p1", "puzzles", "Puzzle", "10.00", 2).
			AddRow(orderB, "m1", "juegos-madera", "Tren", "5.00", 1))

	orders, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, orderB, orders[0].ID)
	require.NotNil(t, orders[0].UserID)
	assert.Equal(t, user, *orders[0].UserID)
	assert.Equal(t, "m1", orders[0].Items[0].ProductID)
	assert.Equal(t, "p1", orders[1].Items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
