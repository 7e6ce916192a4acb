package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/database"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/user/domain"
)

var (
	ErrUserNotFound  = apperr.New(apperr.ErrNotFound, "user not found")
	ErrUsernameTaken = apperr.New(apperr.ErrConflict, "username already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, username, password_hash, name, surname, email, phone, address, role, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (username, password_hash, name, surname, email, phone, address, role, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	user.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Name, user.Surname, user.Email, user.Phone, user.Address,
		string(user.Role), user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		logger.Error("CreateUser: failed to insert user", err, nil)
		return database.Classify(err)
	}
	return nil
}

func (r *postgresUserRepository) getUserBy(ctx context.Context, field, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + field + ` = $1`
	user := &domain.User{}
	var role string

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Name, &user.Surname,
		&user.Email, &user.Phone, &user.Address, &role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error("GetUserBy"+field+": query failed", err, nil)
		return nil, database.Classify(err)
	}
	user.Role = domain.Role(role)
	return user, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return r.getUserBy(ctx, "id", id)
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUserBy(ctx, "username", username)
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET name = $1, surname = $2, email = $3, phone = $4, address = $5 WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Surname, user.Email, user.Phone, user.Address, user.ID)
	if err != nil {
		logger.Error("UpdateProfile: update failed", err, logger.Fields{"userId": user.ID})
		return database.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			surname TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('customer', 'admin')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
}
