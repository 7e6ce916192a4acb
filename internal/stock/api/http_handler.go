package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/httpx"
	"github.com/ridloal/toy-store-backend/internal/stock/domain"
	"github.com/ridloal/toy-store-backend/internal/stock/service"
)

type StockHandler struct {
	stockService service.StockService
	respond      httpx.Responder
}

func NewStockHandler(ss service.StockService, respond httpx.Responder) *StockHandler {
	return &StockHandler{stockService: ss, respond: respond}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stockRoutes := router.Group("/stock")
	{
		stockRoutes.POST("/verify", h.Verify)
		stockRoutes.POST("/reserve", h.Reserve)
	}
}

func (h *StockHandler) Verify(c *gin.Context) {
	var req domain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	res, err := h.stockService.Verify(c.Request.Context(), req.Items)
	if err != nil {
		h.respond.Error(c, err, "Failed to verify stock")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StockHandler) Reserve(c *gin.Context) {
	var req domain.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	res, err := h.stockService.Reserve(c.Request.Context(), req.Items)
	if err != nil {
		h.respond.Error(c, err, "Failed to reserve stock")
		return
	}
	c.JSON(http.StatusOK, res)
}
