package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/toy-store-backend/internal/order/domain"
	"github.com/ridloal/toy-store-backend/internal/order/repository"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/events"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/platform/metrics"
	pDomain "github.com/ridloal/toy-store-backend/internal/product/domain"
	pRepo "github.com/ridloal/toy-store-backend/internal/product/repository"
	stockDomain "github.com/ridloal/toy-store-backend/internal/stock/domain"
)

var ErrProductUnavailable = apperr.New(apperr.ErrValidation, "product unavailable")

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus moves a pending order to accepted or rejected. Rejecting
	// returns the order's units to stock.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
	catalog   pRepo.Catalog
	stock     StockClient
	publisher events.Publisher
	now       func() time.Time
	suffix    func() int
}

func NewOrderService(or repository.OrderRepository, catalog pRepo.Catalog, stock StockClient, publisher events.Publisher) OrderService {
	return &orderServiceImpl{
		orderRepo: or,
		catalog:   catalog,
		stock:     stock,
		publisher: publisher,
		now:       time.Now,
		suffix:    func() int { return rand.Intn(10000) },
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
}

func validate(req domain.CreateOrderRequest) error {
	if req.UserID != "" {
		if _, err := uuid.Parse(req.UserID); err != nil {
			return invalid("userId must be a valid id")
		}
	}
	c := req.CustomerData
	if c == nil {
		return invalid("customer data is required")
	}
	if c.Name == "" {
		return invalid("customer name is required")
	}
	if c.Address.Street == "" || c.Address.City == "" || c.Address.PostalCode == "" {
		return invalid("shipping address requires street, city and postal code")
	}
	if c.PaymentMethod != "" && !c.PaymentMethod.Valid() {
		return invalid(fmt.Sprintf("unsupported payment method %q", c.PaymentMethod))
	}
	if len(req.Items) == 0 {
		return invalid("order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return invalid(fmt.Sprintf("item %d has no product id", i+1))
		}
		if _, err := pDomain.ParseCategory(item.Category); err != nil {
			return invalid(fmt.Sprintf("item %d has unknown category %q", i+1, item.Category))
		}
		if item.Name == "" {
			return invalid(fmt.Sprintf("item %d has no name", i+1))
		}
		if item.Quantity < 1 {
			return invalid(fmt.Sprintf("item %d must have quantity of at least 1", i+1))
		}
		if item.Quantity > stockDomain.MaxQuantity {
			return invalid(fmt.Sprintf("item %d exceeds %d units", i+1, stockDomain.MaxQuantity))
		}
		if item.Price.IsNegative() {
			return invalid(fmt.Sprintf("item %d has a negative price", i+1))
		}
	}
	if req.Total == nil || !req.Total.IsPositive() {
		return invalid("total must be greater than zero")
	}
	return nil
}

// recheck confirms every product still exists. Units were already taken by
// the reservation, so only a negative counter means the product is unusable.
func (s *orderServiceImpl) recheck(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		cat, err := pDomain.ParseCategory(item.Category)
		if err != nil {
			return err
		}
		repo, err := s.catalog.For(cat)
		if err != nil {
			return err
		}
		p, err := repo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, pRepo.ErrProductNotFound) {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, item.Name)
			}
			logger.Error("Svc.CreateOrder: product re-check failed", err, logger.Fields{"productId": item.ProductID})
			return err
		}
		if p.Stock < 0 {
			return fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}
	}
	return nil
}

func (s *orderServiceImpl) newCode(at time.Time) string {
	return fmt.Sprintf("%s-%04d", at.Format("0601"), s.suffix())
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.recheck(ctx, req.Items); err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		Code:         s.newCode(now),
		CustomerData: *req.CustomerData,
		Items:        req.Items,
		Total:        *req.Total,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.UserID != "" {
		userID := req.UserID
		order.UserID = &userID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		logger.Error("Svc.CreateOrder: failed to persist order", err, logger.Fields{"code": order.Code})
		return nil, err
	}
	metrics.OrdersTotal.WithLabelValues(string(domain.StatusPending)).Inc()

	s.publisher.Publish(ctx, events.TypeOrderCreated, order.ID, domain.OrderCreatedEvent{
		OrderID: order.ID,
		Code:    order.Code,
		UserID:  order.UserID,
		Total:   order.Total,
		Items:   order.Items,
	})
	logger.Info(fmt.Sprintf("Order %s created with code %s", order.ID, order.Code))

	return &domain.CreateOrderResponse{
		Message: "Order created successfully",
		Order:   domain.OrderSummary{ID: order.ID, Code: order.Code, Status: order.Status},
	}, nil
}

func (s *orderServiceImpl) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderServiceImpl) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	target, err := domain.ParseTargetStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.Transition(ctx, id, target)
	if err != nil {
		return nil, err
	}
	metrics.OrdersTotal.WithLabelValues(string(target)).Inc()

	if target == domain.StatusRejected {
		s.release(ctx, order)
	}

	s.publisher.Publish(ctx, events.TypeOrderStatusChanged, order.ID, domain.StatusChangedEvent{
		OrderID: order.ID,
		Code:    order.Code,
		From:    domain.StatusPending,
		To:      target,
	})
	logger.Info(fmt.Sprintf("Order %s moved to %s", order.ID, target))
	return order, nil
}

// release gives a rejected order's units back. An order is placed only
// after its units were reserved, so its quantities are what stock lost.
// The status change stands even when this fails.
func (s *orderServiceImpl) release(ctx context.Context, order *domain.Order) {
	lines := make([]stockDomain.Line, len(order.Items))
	for i, item := range order.Items {
		lines[i] = stockDomain.Line{Category: item.Category, ProductID: item.ProductID, Quantity: item.Quantity}
	}
	if _, err := s.stock.Reserve(ctx, lines); err != nil {
		logger.Error("CRITICAL: failed to release stock of rejected order", err, logger.Fields{
			"orderId": order.ID,
			"code":    order.Code,
		})
	}
}
