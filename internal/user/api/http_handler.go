package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/config"
	"github.com/ridloal/toy-store-backend/internal/platform/httpx"
	"github.com/ridloal/toy-store-backend/internal/user/domain"
	"github.com/ridloal/toy-store-backend/internal/user/service"
)

type UserHandler struct {
	userService service.UserService
	sessions    Sessions
	middleware  *SessionMiddleware
	cookie      config.SessionConfig
	respond     httpx.Responder
}

func NewUserHandler(us service.UserService, sessions Sessions, middleware *SessionMiddleware, cookie config.SessionConfig, respond httpx.Responder) *UserHandler {
	return &UserHandler{userService: us, sessions: sessions, middleware: middleware, cookie: cookie, respond: respond}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, guards httpx.Guards) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
		authRoutes.GET("/session", h.Session)
	}
	userRoutes := router.Group("/users")
	{
		userRoutes.GET("/me", guards.Auth, h.GetProfile)
		userRoutes.PUT("/me", guards.Auth, h.UpdateProfile)
	}
}

func (h *UserHandler) startSession(c *gin.Context, user *domain.User) error {
	token, err := h.sessions.Create(c.Request.Context(), user.ID, string(user.Role))
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.CookieSecure, true)
	return nil
}

func (h *UserHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		h.respond.Error(c, err, "Failed to register user")
		return
	}
	if err := h.startSession(c, user); err != nil {
		h.respond.Error(c, err, "Failed to start session")
		return
	}
	c.JSON(http.StatusCreated, domain.AuthResponse{Message: "User registered successfully", User: *user})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		h.respond.Error(c, err, "Failed to login")
		return
	}
	if err := h.startSession(c, user); err != nil {
		h.respond.Error(c, err, "Failed to start session")
		return
	}
	c.JSON(http.StatusOK, domain.AuthResponse{Message: "Login successful", User: *user})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.CookieName); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.respond.Error(c, err, "Failed to log out")
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", "", h.cookie.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *UserHandler) Session(c *gin.Context) {
	user, err := h.middleware.identify(c)
	if err != nil {
		h.respond.Error(c, err, "Failed to verify session")
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, domain.SessionResponse{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, domain.SessionResponse{Authenticated: true, User: user})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := httpx.UserID(c)
	if !ok {
		h.respond.Error(c, errNotSignedIn, "Unauthorized")
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respond.Error(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := httpx.UserID(c)
	if !ok {
		h.respond.Error(c, errNotSignedIn, "Unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.respond.Error(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
