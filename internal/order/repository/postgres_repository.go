package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ridloal/toy-store-backend/internal/order/domain"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/database"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
)

var (
	ErrOrderNotFound   = apperr.New(apperr.ErrNotFound, "order not found")
	ErrOrderNotPending = apperr.New(apperr.ErrConflict, "order is no longer pending")
	// ErrDuplicateOrderCode has no apperr kind and maps to 500.
	ErrDuplicateOrderCode = errors.New("order code already exists")
)

type OrderRepository interface {
	// Create stores the order and its items in one transaction.
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByUser and ListAll return newest orders first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// Transition moves an order to status in a single conditional update,
	// allowed only from the statuses domain.Sources lists, and returns the
	// updated order.
	Transition(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

const orderColumns = `id, code, user_id, customer_data, total, status, created_at, updated_at`

func (r *postgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	customer, err := json.Marshal(order.CustomerData)
	if err != nil {
		return fmt.Errorf("encode customer data: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("CreateOrder: failed to begin tx", err, nil)
		return database.Classify(err)
	}
	defer tx.Rollback()

	orderQuery := `INSERT INTO orders (code, user_id, customer_data, total, status, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	var userID sql.NullString
	if order.UserID != nil {
		userID = sql.NullString{String: *order.UserID, Valid: true}
	}
	err = tx.QueryRowContext(ctx, orderQuery, order.Code, userID, customer, order.Total, string(order.Status), order.CreatedAt).
		Scan(&order.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderCode, order.Code)
		}
		if rejected := rejectedInput(err); rejected != nil {
			logger.Warn("CreateOrder: order rejected by constraints", logger.Fields{"code": order.Code, "error": err.Error()})
			return rejected
		}
		logger.Error("CreateOrder: failed to insert order", err, nil)
		return database.Classify(err)
	}

	itemQuery := `INSERT INTO order_items (order_id, line_no, product_id, category, name, price, quantity)
                  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, itemQuery, order.ID, i, item.ProductID, item.Category, item.Name, item.Price, item.Quantity)
		if err != nil {
			if rejected := rejectedInput(err); rejected != nil {
				logger.Warn("CreateOrder: item rejected by constraints", logger.Fields{"productId": item.ProductID, "error": err.Error()})
				return rejected
			}
			logger.Error("CreateOrder: failed to insert order item", err, logger.Fields{"productId": item.ProductID})
			return database.Classify(err)
		}
	}
	order.UpdatedAt = order.CreatedAt

	if err := tx.Commit(); err != nil {
		logger.Error("CreateOrder: commit failed", err, nil)
		return database.Classify(err)
	}
	return nil
}

// rejectedInput maps constraint failures caused by client data to
// validation errors. It returns nil for anything else.
func rejectedInput(err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: unknown user", apperr.ErrValidation)
	case database.IsInvalidInput(err):
		return fmt.Errorf("%w: malformed value in order", apperr.ErrValidation)
	case database.IsCheckViolation(err):
		return fmt.Errorf("%w: order violates a data constraint", apperr.ErrValidation)
	case database.IsOutOfRange(err):
		return fmt.Errorf("%w: numeric value out of range", apperr.ErrValidation)
	}
	return nil
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}
	orders, err := r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

func (r *postgresOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresOrderRepository) Transition(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}
	sources := domain.Sources(status)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	from := make([]string, len(sources))
	for i, s := range sources {
		from[i] = string(s)
	}

	var updated string
	err := r.db.QueryRowContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3) RETURNING id`,
		string(status), id, pq.Array(from),
	).Scan(&updated)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Error("TransitionOrder: update failed", err, logger.Fields{"orderId": id, "status": string(status)})
			return nil, database.Classify(err)
		}
		// Nothing matched: tell a missing order from one already decided.
		var current string
		err = r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		if err != nil {
			logger.Error("TransitionOrder: status lookup failed", err, logger.Fields{"orderId": id})
			return nil, database.Classify(err)
		}
		if !domain.CanTransition(domain.Status(current), status) {
			return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrOrderNotPending, current, status)
		}
		return nil, fmt.Errorf("%w: order changed while updating", ErrOrderNotPending)
	}
	return r.GetByID(ctx, updated)
}

// query loads orders and then their items with one extra round trip.
func (r *postgresOrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("ListOrders: query failed", err, nil)
		return nil, database.Classify(err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o        domain.Order
			userID   sql.NullString
			customer []byte
			status   string
		)
		if err := rows.Scan(&o.ID, &o.Code, &userID, &customer, &o.Total, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			logger.Error("ListOrders: scan failed", err, nil)
			return nil, err
		}
		if userID.Valid {
			o.UserID = &userID.String
		}
		if err := json.Unmarshal(customer, &o.CustomerData); err != nil {
			return nil, fmt.Errorf("decode customer data of order %s: %w", o.ID, err)
		}
		o.Status = domain.Status(status)
		o.Items = []domain.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		logger.Error("ListOrders: rows iteration error", err, nil)
		return nil, database.Classify(err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemRows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, category, name, price, quantity FROM order_items
         WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, line_no`, pq.Array(ids))
	if err != nil {
		logger.Error("ListOrders: items query failed", err, nil)
		return nil, database.Classify(err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID string
			item    domain.OrderItem
		)
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Category, &item.Name, &item.Price, &item.Quantity); err != nil {
			logger.Error("ListOrders: item scan failed", err, nil)
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return orders, nil
}

// Schema returns the DDL for orders and their items. It expects the users
// table to exist.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			code TEXT NOT NULL UNIQUE,
			user_id UUID NULL REFERENCES users(id) ON DELETE SET NULL,
			customer_data JSONB NOT NULL,
			total NUMERIC(12,2) NOT NULL CHECK (total > 0),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			line_no INTEGER NOT NULL,
			product_id TEXT NOT NULL,
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			quantity INTEGER NOT NULL CHECK (quantity >= 1)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id, line_no)`,
	}
}
