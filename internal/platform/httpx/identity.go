package httpx

import "github.com/gin-gonic/gin"

// Context keys set by the session middlewares.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

func SetIdentity(c *gin.Context, userID, role string) {
	c.Set(UserIDKey, userID)
	c.Set(RoleKey, role)
}

// UserID returns the signed-in user's id, if any.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}

func Role(c *gin.Context) string {
	return c.GetString(RoleKey)
}
