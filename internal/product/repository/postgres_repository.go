package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/database"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/product/domain"
)

var (
	ErrProductNotFound   = apperr.New(apperr.ErrNotFound, "product not found")
	ErrInsufficientStock = apperr.New(apperr.ErrConflict, "insufficient stock")
)

// ProductRepository is bound to one category's table.
type ProductRepository interface {
	Category() domain.Category
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	SetStock(ctx context.Context, id string, stock int) (*domain.Product, error)

	// AdjustStock adds delta to the product's stock in one conditional
	// statement and returns the new value. A delta that would drive stock
	// below zero fails with ErrInsufficientStock. A nil dbops uses the pool.
	AdjustStock(ctx context.Context, dbops database.DBTX, id string, delta int) (int, error)
}

type postgresProductRepository struct {
	db       *sql.DB
	category domain.Category
	table    string
}

func NewPostgresProductRepository(db *sql.DB, category domain.Category) ProductRepository {
	return &postgresProductRepository{
		db:       db,
		category: category,
		table:    pq.QuoteIdentifier(category.Table()),
	}
}

func (r *postgresProductRepository) Category() domain.Category {
	return r.category
}

func (r *postgresProductRepository) conn(dbops database.DBTX) database.DBTX {
	if dbops == nil {
		return r.db
	}
	return dbops
}

func (r *postgresProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name, description, price, image, stock, created_at, updated_at FROM ` + r.table + ` ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ListProducts: query failed", err, logger.Fields{"category": r.category.String()})
		return nil, database.Classify(err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p := domain.Product{Category: r.category}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Error("ListProducts: scan failed", err, logger.Fields{"category": r.category.String()})
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("ListProducts: rows iteration error", err, logger.Fields{"category": r.category.String()})
		return nil, database.Classify(err)
	}
	return products, nil
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	query := `SELECT id, name, description, price, image, stock, created_at, updated_at FROM ` + r.table + ` WHERE id = $1`
	p := domain.Product{Category: r.category}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err, logger.Fields{"category": r.category.String(), "id": id})
		return nil, database.Classify(err)
	}
	return &p, nil
}

func (r *postgresProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO ` + r.table + ` (name, description, price, image, stock, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	p.Category = r.category
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Price, p.Image, p.Stock, p.CreatedAt, p.UpdatedAt).
		Scan(&p.ID)
	if err != nil {
		logger.Error("CreateProduct: failed to insert product", err, logger.Fields{"category": r.category.String()})
		return database.Classify(err)
	}
	return nil
}

func (r *postgresProductRepository) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	query := `UPDATE ` + r.table + ` SET stock = $1, updated_at = NOW() WHERE id = $2
              RETURNING id, name, description, price, image, stock, created_at, updated_at`
	p := domain.Product{Category: r.category}
	err := r.db.QueryRowContext(ctx, query, stock, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("SetStock: update failed", err, logger.Fields{"category": r.category.String(), "id": id})
		return nil, database.Classify(err)
	}
	return &p, nil
}

func (r *postgresProductRepository) AdjustStock(ctx context.Context, dbops database.DBTX, id string, delta int) (int, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrProductNotFound
	}
	conn := r.conn(dbops)

	query := `UPDATE ` + r.table + ` SET stock = stock + $1, updated_at = NOW()
              WHERE id = $2 AND stock + $1 >= 0 RETURNING stock`
	var stock int
	err := conn.QueryRowContext(ctx, query, delta, id).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("AdjustStock: update failed", err, logger.Fields{"category": r.category.String(), "id": id})
		return 0, database.Classify(err)
	}

	// No row matched: either the product is missing or the delta was refused.
	var current int
	err = conn.QueryRowContext(ctx, `SELECT stock FROM `+r.table+` WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		logger.Error("AdjustStock: stock lookup failed", err, logger.Fields{"category": r.category.String(), "id": id})
		return 0, database.Classify(err)
	}
	return current, fmt.Errorf("%w: product %s has %d, delta %d", ErrInsufficientStock, id, current, delta)
}
