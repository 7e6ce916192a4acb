package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/order/domain"
	"github.com/ridloal/toy-store-backend/internal/order/service"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/httpx"
)

type OrderHandler struct {
	orderService service.OrderService
	respond      httpx.Responder
}

func NewOrderHandler(os service.OrderService, respond httpx.Responder) *OrderHandler {
	return &OrderHandler{orderService: os, respond: respond}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, guards httpx.Guards) {
	orderRoutes := router.Group("/orders")
	{
		orderRoutes.POST("/create", guards.Optional, h.CreateOrder)
		orderRoutes.GET("/mine", guards.Auth, h.ListMine)
		orderRoutes.GET("/all", guards.Admin, h.ListAll)
		orderRoutes.PUT("/:id/status", guards.Admin, h.UpdateStatus)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	// A signed-in user always owns the order.
	if userID, ok := httpx.UserID(c); ok {
		req.UserID = userID
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.respond.Error(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := httpx.UserID(c)
	if !ok {
		h.respond.Error(c, apperr.ErrUnauthorized, "Authentication required")
		return
	}
	orders, err := h.orderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.respond.Error(c, err, "Failed to retrieve orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		h.respond.Error(c, err, "Failed to retrieve orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respond.Error(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, domain.UpdateStatusResponse{Message: "Order status updated", Order: *order})
}
