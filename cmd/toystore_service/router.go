package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ridloal/toy-store-backend/internal/platform/config"
	"github.com/ridloal/toy-store-backend/internal/platform/database"
	"github.com/ridloal/toy-store-backend/internal/platform/metrics"
)

// newRouter wires the shared middleware, the operational endpoints and the
// /api group. register attaches the domain handlers to that group.
func newRouter(app config.AppConfig, monitor *database.Monitor, register func(api *gin.RouterGroup)) *gin.Engine {
	router := gin.Default()
	router.RedirectTrailingSlash = false

	router.Use(metrics.PrometheusMiddleware(app.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler(monitor))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", monitor.Middleware())
	register(api)
	return router
}

func healthHandler(monitor *database.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "connected"
		if !monitor.Available() {
			state = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": state})
	}
}
