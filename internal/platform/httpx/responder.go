package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
)

// Responder writes error bodies. Verbose adds the underlying error text and
// must be off in production.
type Responder struct {
	Verbose bool
}

func NewResponder(verbose bool) Responder {
	return Responder{Verbose: verbose}
}

// Error picks the status from the error kind. Client errors (4xx) expose the
// error text as message; server errors use fallback and log the cause.
func (r Responder) Error(c *gin.Context, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	body := gin.H{"message": fallback}
	if status < http.StatusInternalServerError {
		body["message"] = err.Error()
	} else {
		logger.Error(fallback, err, logger.Fields{"path": c.FullPath(), "method": c.Request.Method})
		if r.Verbose {
			body["error"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest reports a body that failed to bind.
func (r Responder) BadRequest(c *gin.Context, err error) {
	body := gin.H{"message": "Invalid request payload"}
	if r.Verbose {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}
