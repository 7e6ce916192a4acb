package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/httpx"
	"github.com/ridloal/toy-store-backend/internal/product/domain"
	"github.com/ridloal/toy-store-backend/internal/product/service"
)

type ProductHandler struct {
	productService service.ProductService
	respond        httpx.Responder
}

func NewProductHandler(ps service.ProductService, respond httpx.Responder) *ProductHandler {
	return &ProductHandler{productService: ps, respond: respond}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, guards httpx.Guards) {
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("/:category", h.ListByCategory)
		productRoutes.POST("", guards.Admin, h.CreateProduct)
		productRoutes.PUT("/:category/:id/stock", guards.Admin, h.SetStock)
	}
}

func (h *ProductHandler) ListByCategory(c *gin.Context) {
	products, err := h.productService.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.respond.Error(c, err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	p, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respond.Error(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) SetStock(c *gin.Context) {
	var req domain.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	p, err := h.productService.SetStock(c.Request.Context(), c.Param("category"), c.Param("id"), *req.Stock)
	if err != nil {
		h.respond.Error(c, err, "Failed to update stock")
		return
	}
	c.JSON(http.StatusOK, domain.SetStockResponse{Message: "Stock updated", Product: *p})
}
