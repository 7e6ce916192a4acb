package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/events"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/platform/metrics"
	pDomain "github.com/ridloal/toy-store-backend/internal/product/domain"
	pRepo "github.com/ridloal/toy-store-backend/internal/product/repository"
	"github.com/ridloal/toy-store-backend/internal/stock/domain"
)

var (
	ErrInvalidQuantity  = apperr.New(apperr.ErrValidation, "quantity must be greater than zero")
	ErrQuantityTooLarge = apperr.New(apperr.ErrValidation, fmt.Sprintf("quantity exceeds %d units", domain.MaxQuantity))
)

func tooLarge(q int) bool {
	return q > domain.MaxQuantity || q < -domain.MaxQuantity
}

type StockService interface {
	// Verify checks lines in order and stops at the first one that cannot be
	// served. It never writes.
	Verify(ctx context.Context, lines []domain.Line) (*domain.VerifyResponse, error)
	// Adjust applies a signed delta to one product and returns its new stock.
	Adjust(ctx context.Context, category, productID string, delta int) (int, error)
	// Reserve applies every line in one transaction; a failing line leaves
	// all stock untouched.
	Reserve(ctx context.Context, lines []domain.Line) (*domain.ReserveResponse, error)
}

type stockServiceImpl struct {
	catalog   pRepo.Catalog
	publisher events.Publisher
	now       func() time.Time
}

func NewStockService(catalog pRepo.Catalog, publisher events.Publisher) StockService {
	return &stockServiceImpl{catalog: catalog, publisher: publisher, now: time.Now}
}

func (s *stockServiceImpl) Verify(ctx context.Context, lines []domain.Line) (*domain.VerifyResponse, error) {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, line.ProductID)
		}
		if tooLarge(line.Quantity) {
			return nil, fmt.Errorf("%w: product %s", ErrQuantityTooLarge, line.ProductID)
		}
	}

	for _, line := range lines {
		cat, err := pDomain.ParseCategory(line.Category)
		if err != nil {
			return s.unavailable(fmt.Sprintf("invalid category for product %s", line.ProductID)), nil
		}
		repo, err := s.catalog.For(cat)
		if err != nil {
			return s.unavailable(fmt.Sprintf("invalid category for product %s", line.ProductID)), nil
		}

		p, err := repo.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, pRepo.ErrProductNotFound) {
				return s.unavailable(fmt.Sprintf("product not found: %s", line.ProductID)), nil
			}
			metrics.StockVerifications.WithLabelValues("error").Inc()
			logger.Error("Svc.Verify: product lookup failed", err, logger.Fields{"productId": line.ProductID})
			return nil, err
		}
		if p.Stock < line.Quantity {
			return s.unavailable(fmt.Sprintf("stock not available for %s", p.Name)), nil
		}
	}

	metrics.StockVerifications.WithLabelValues("available").Inc()
	return &domain.VerifyResponse{Available: true}, nil
}

func (s *stockServiceImpl) unavailable(msg string) *domain.VerifyResponse {
	metrics.StockVerifications.WithLabelValues("unavailable").Inc()
	return &domain.VerifyResponse{Available: false, Message: msg}
}

func (s *stockServiceImpl) Adjust(ctx context.Context, category, productID string, delta int) (int, error) {
	if tooLarge(delta) {
		return 0, fmt.Errorf("%w: product %s", ErrQuantityTooLarge, productID)
	}
	cat, err := pDomain.ParseCategory(category)
	if err != nil {
		return 0, err
	}
	repo, err := s.catalog.For(cat)
	if err != nil {
		return 0, err
	}

	if delta == 0 {
		p, err := repo.GetByID(ctx, productID)
		if err != nil {
			return 0, err
		}
		return p.Stock, nil
	}

	stock, err := repo.AdjustStock(ctx, nil, productID, delta)
	s.recordAdjustment(cat, err)
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (s *stockServiceImpl) recordAdjustment(cat pDomain.Category, err error) {
	outcome := "applied"
	switch {
	case err == nil:
	case errors.Is(err, pRepo.ErrInsufficientStock):
		outcome = "refused"
	default:
		outcome = "error"
	}
	metrics.StockAdjustments.WithLabelValues(cat.String(), outcome).Inc()
}

type plannedLine struct {
	category  pDomain.Category
	repo      pRepo.ProductRepository
	productID string
	delta     int
}

// plan resolves categories, merges duplicate products and drops zero deltas.
// The result is sorted by (category, product id) so concurrent reservations
// lock rows in the same order.
func (s *stockServiceImpl) plan(lines []domain.Line) ([]plannedLine, error) {
	type key struct {
		category  pDomain.Category
		productID string
	}
	merged := map[key]*plannedLine{}
	for _, line := range lines {
		if tooLarge(line.Quantity) {
			return nil, fmt.Errorf("%w: product %s", ErrQuantityTooLarge, line.ProductID)
		}
		cat, err := pDomain.ParseCategory(line.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s", err, line.ProductID)
		}
		k := key{cat, line.ProductID}
		if pl, ok := merged[k]; ok {
			pl.delta += line.Quantity
			continue
		}
		repo, err := s.catalog.For(cat)
		if err != nil {
			return nil, err
		}
		merged[k] = &plannedLine{category: cat, repo: repo, productID: line.ProductID, delta: line.Quantity}
	}

	planned := make([]plannedLine, 0, len(merged))
	for _, pl := range merged {
		if pl.delta != 0 {
			planned = append(planned, *pl)
		}
	}
	sort.Slice(planned, func(i, j int) bool {
		if planned[i].category != planned[j].category {
			return planned[i].category < planned[j].category
		}
		return planned[i].productID < planned[j].productID
	})
	return planned, nil
}

func (s *stockServiceImpl) Reserve(ctx context.Context, lines []domain.Line) (resp *domain.ReserveResponse, err error) {
	planned, err := s.plan(lines)
	if err != nil {
		return nil, err
	}
	reservationID := strconv.FormatInt(s.now().UnixMilli(), 10)
	resp = &domain.ReserveResponse{Message: "Stock reserved", ReservationID: reservationID, Items: []domain.ReservedItem{}}
	if len(planned) == 0 {
		return resp, nil
	}

	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.Reserve: failed to begin transaction", err, nil)
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("Svc.Reserve: rollback failed", rbErr, nil)
			}
		}
	}()

	for _, pl := range planned {
		stock, adjErr := pl.repo.AdjustStock(ctx, tx, pl.productID, pl.delta)
		s.recordAdjustment(pl.category, adjErr)
		if adjErr != nil {
			logger.Warn("Reservation rolled back", logger.Fields{
				"reservationId": reservationID,
				"category":      pl.category.String(),
				"productId":     pl.productID,
				"delta":         pl.delta,
				"error":         adjErr.Error(),
			})
			return nil, fmt.Errorf("%w (category %s)", adjErr, pl.category)
		}
		resp.Items = append(resp.Items, domain.ReservedItem{
			Category:  pl.category.String(),
			ProductID: pl.productID,
			Stock:     stock,
		})
	}

	if err = tx.Commit(); err != nil {
		logger.Error("Svc.Reserve: commit failed", err, nil)
		return nil, err
	}

	applied := make([]domain.Line, len(planned))
	for i, pl := range planned {
		applied[i] = domain.Line{Category: pl.category.String(), ProductID: pl.productID, Quantity: pl.delta}
	}
	s.publisher.Publish(ctx, events.TypeStockReserved, reservationID, domain.ReservedEvent{
		ReservationID: reservationID,
		Items:         applied,
	})
	logger.Info(fmt.Sprintf("Reservation %s applied %d lines", reservationID, len(planned)))
	return resp, nil
}
