package repository

import (
	"github.com/lib/pq"
	"github.com/ridloal/toy-store-backend/internal/product/domain"
)

// Schema returns the DDL for every category table.
func Schema() []string {
	stmts := make([]string, 0, len(domain.AllCategories()))
	for _, c := range domain.AllCategories() {
		stmts = append(stmts, `CREATE TABLE IF NOT EXISTS `+pq.QuoteIdentifier(c.Table())+` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			image TEXT NOT NULL DEFAULT '',
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	}
	return stmts
}
