package api

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/httpx"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/platform/session"
	"github.com/ridloal/toy-store-backend/internal/user/domain"
	"github.com/ridloal/toy-store-backend/internal/user/repository"
	"github.com/ridloal/toy-store-backend/internal/user/service"
)

// Sessions is implemented by *session.Manager.
type Sessions interface {
	Create(ctx context.Context, userID, role string) (string, error)
	Resolve(ctx context.Context, token string) (string, *session.Data, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

var (
	errNotSignedIn = apperr.New(apperr.ErrUnauthorized, "Unauthorized")
	errNotAdmin    = apperr.New(apperr.ErrForbidden, "Access denied")
)

type SessionMiddleware struct {
	sessions   Sessions
	users      service.UserService
	cookieName string
	respond    httpx.Responder
}

func NewSessionMiddleware(sessions Sessions, users service.UserService, cookieName string, respond httpx.Responder) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, users: users, cookieName: cookieName, respond: respond}
}

// Guards bundles the middlewares for route registration.
func (m *SessionMiddleware) Guards() httpx.Guards {
	return httpx.Guards{Auth: m.RequireAuth, Admin: m.RequireAdmin, Optional: m.OptionalAuth}
}

// identify loads the user behind the session cookie. A nil user with a nil
// error means the request is anonymous.
func (m *SessionMiddleware) identify(c *gin.Context) (*domain.User, error) {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		return nil, nil
	}
	_, data, err := m.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	user, err := m.users.GetByID(c.Request.Context(), data.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (m *SessionMiddleware) RequireAuth(c *gin.Context) {
	user, err := m.identify(c)
	if err != nil {
		m.respond.Error(c, err, "Failed to verify session")
		return
	}
	if user == nil {
		m.respond.Error(c, errNotSignedIn, "Unauthorized")
		return
	}
	httpx.SetIdentity(c, user.ID, string(user.Role))
	c.Next()
}

// RequireAdmin checks the user's stored role, not the one cached in the session.
func (m *SessionMiddleware) RequireAdmin(c *gin.Context) {
	user, err := m.identify(c)
	if err != nil {
		m.respond.Error(c, err, "Failed to verify session")
		return
	}
	if user == nil {
		m.respond.Error(c, errNotSignedIn, "Unauthorized")
		return
	}
	if user.Role != domain.RoleAdmin {
		m.respond.Error(c, errNotAdmin, "Access denied")
		return
	}
	httpx.SetIdentity(c, user.ID, string(user.Role))
	c.Next()
}

func (m *SessionMiddleware) OptionalAuth(c *gin.Context) {
	user, err := m.identify(c)
	if err != nil {
		logger.Warn("OptionalAuth: continuing anonymously", logger.Fields{"error": err.Error()})
	}
	if user != nil {
		httpx.SetIdentity(c, user.ID, string(user.Role))
	}
	c.Next()
}
