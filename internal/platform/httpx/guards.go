package httpx

import "github.com/gin-gonic/gin"

// Guards are the session middlewares route groups attach.
type Guards struct {
	Auth     gin.HandlerFunc // any signed-in user
	Admin    gin.HandlerFunc // admin role
	Optional gin.HandlerFunc // identity when present, never rejects
}

// OpenGuards lets every request through; used by handler tests.
func OpenGuards() Guards {
	pass := func(c *gin.Context) { c.Next() }
	return Guards{Auth: pass, Admin: pass, Optional: pass}
}
