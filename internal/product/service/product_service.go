package service

import (
	"context"
	"fmt"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/platform/metrics"
	"github.com/ridloal/toy-store-backend/internal/product/domain"
	"github.com/ridloal/toy-store-backend/internal/product/repository"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice = apperr.New(apperr.ErrValidation, "price must be greater than zero")
	ErrInvalidStock = apperr.New(apperr.ErrValidation, "stock cannot be negative")
)

type ProductService interface {
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	SetStock(ctx context.Context, category, id string, stock int) (*domain.Product, error)

	// StockReport refreshes the inventory gauge and lists products at or
	// below the low-stock threshold.
	StockReport(ctx context.Context) (*domain.StockReport, error)
	StartScheduler(spec string) error
	StopScheduler()
}

type productServiceImpl struct {
	catalog           repository.Catalog
	lowStockThreshold int
	scheduler         *cron.Cron
}

func NewProductService(catalog repository.Catalog, lowStockThreshold int) ProductService {
	return &productServiceImpl{
		catalog:           catalog,
		lowStockThreshold: lowStockThreshold,
		scheduler:         cron.New(cron.WithSeconds()),
	}
}

func (s *productServiceImpl) repoFor(category string) (repository.ProductRepository, error) {
	cat, err := domain.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return s.catalog.For(cat)
}

func (s *productServiceImpl) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	repo, err := s.repoFor(category)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	repo, err := s.repoFor(req.Category)
	if err != nil {
		return nil, err
	}
	if !req.Price.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if req.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
	}
	if err := repo.Create(ctx, p); err != nil {
		logger.Error("Svc.CreateProduct: repo error", err, nil)
		return nil, err
	}
	logger.Info(fmt.Sprintf("Product %s created in %s", p.ID, repo.Category()))
	return p, nil
}

func (s *productServiceImpl) SetStock(ctx context.Context, category, id string, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	repo, err := s.repoFor(category)
	if err != nil {
		return nil, err
	}
	p, err := repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	metrics.InventoryLevel.WithLabelValues(p.Category.String(), p.ID).Set(float64(p.Stock))
	return p, nil
}

func (s *productServiceImpl) StockReport(ctx context.Context) (*domain.StockReport, error) {
	report := &domain.StockReport{Threshold: s.lowStockThreshold, LowStock: []domain.Product{}}
	for _, repo := range s.catalog.All() {
		products, err := repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", repo.Category(), err)
		}
		for _, p := range products {
			report.Products++
			metrics.InventoryLevel.WithLabelValues(p.Category.String(), p.ID).Set(float64(p.Stock))
			if p.Stock <= s.lowStockThreshold {
				report.LowStock = append(report.LowStock, p)
			}
		}
	}
	return report, nil
}

func (s *productServiceImpl) StartScheduler(spec string) error {
	_, err := s.scheduler.AddFunc(spec, func() {
		report, err := s.StockReport(context.Background())
		if err != nil {
			logger.Error("Scheduler: stock report failed", err, nil)
			return
		}
		for _, p := range report.LowStock {
			logger.Warn("Low stock", logger.Fields{
				"category": p.Category.String(),
				"id":       p.ID,
				"name":     p.Name,
				"stock":    p.Stock,
			})
		}
		logger.Info(fmt.Sprintf("Scheduler: stock report scanned %d products, %d low", report.Products, len(report.LowStock)))
	})
	if err != nil {
		return fmt.Errorf("invalid stock report schedule %q: %w", spec, err)
	}
	s.scheduler.Start()
	logger.Info(fmt.Sprintf("Stock report scheduler initialized with spec '%s'", spec))
	return nil
}

func (s *productServiceImpl) StopScheduler() {
	<-s.scheduler.Stop().Done()
}
