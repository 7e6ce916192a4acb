package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// Manager issues signed cookie tokens whose subject is a session id stored
// server-side. Revoking the record invalidates the cookie.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create stores a new session for the user and returns the cookie value.
func (m *Manager) Create(ctx context.Context, userID, role string) (string, error) {
	sid := uuid.NewString()
	now := time.Now()
	if err := m.store.Save(ctx, sid, Data{UserID: userID, Role: role, CreatedAt: now}, m.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign session token: %w", err)
	}
	return token, nil
}

// Resolve returns the session id and record behind a cookie value.
func (m *Manager) Resolve(ctx context.Context, token string) (string, *Data, error) {
	sid, err := m.parse(token)
	if err != nil {
		return "", nil, err
	}
	data, err := m.store.Load(ctx, sid)
	if err != nil {
		return "", nil, err
	}
	return sid, data, nil
}

// Destroy removes the record behind the cookie. Unparseable tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	sid, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sid)
}

func (m *Manager) parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
