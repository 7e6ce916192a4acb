package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ridloal/toy-store-backend/internal/platform/database"
	"github.com/ridloal/toy-store-backend/internal/product/domain"
)

// Catalog dispatches to the repository of a category.
type Catalog interface {
	For(category domain.Category) (ProductRepository, error)
	All() []ProductRepository
	BeginTx(ctx context.Context) (database.Tx, error)
}

// postgresCatalog holds one typed repository per category variant.
type postgresCatalog struct {
	db          *sql.DB
	novedades   ProductRepository
	puzzles     ProductRepository
	creatividad ProductRepository
	juegosMesa  ProductRepository
	madera      ProductRepository
}

func NewPostgresCatalog(db *sql.DB) Catalog {
	return &postgresCatalog{
		db:          db,
		novedades:   NewPostgresProductRepository(db, domain.CategoryNovedades),
		puzzles:     NewPostgresProductRepository(db, domain.CategoryPuzzles),
		creatividad: NewPostgresProductRepository(db, domain.CategoryCreatividad),
		juegosMesa:  NewPostgresProductRepository(db, domain.CategoryJuegosMesa),
		madera:      NewPostgresProductRepository(db, domain.CategoryMadera),
	}
}

func (c *postgresCatalog) For(category domain.Category) (ProductRepository, error) {
	switch category {
	case domain.CategoryNovedades:
		return c.novedades, nil
	case domain.CategoryPuzzles:
		return c.puzzles, nil
	case domain.CategoryCreatividad:
		return c.creatividad, nil
	case domain.CategoryJuegosMesa:
		return c.juegosMesa, nil
	case domain.CategoryMadera:
		return c.madera, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, category)
	}
}

func (c *postgresCatalog) All() []ProductRepository {
	return []ProductRepository{c.novedades, c.puzzles, c.creatividad, c.juegosMesa, c.madera}
}

func (c *postgresCatalog) BeginTx(ctx context.Context) (database.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, database.Classify(err)
	}
	return tx, nil
}
