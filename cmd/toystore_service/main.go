package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	orderAPI "github.com/ridloal/toy-store-backend/internal/order/api"
	orderRepo "github.com/ridloal/toy-store-backend/internal/order/repository"
	orderService "github.com/ridloal/toy-store-backend/internal/order/service"
	"github.com/ridloal/toy-store-backend/internal/platform/config"
	"github.com/ridloal/toy-store-backend/internal/platform/database"
	"github.com/ridloal/toy-store-backend/internal/platform/events"
	"github.com/ridloal/toy-store-backend/internal/platform/httpx"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/platform/session"
	productAPI "github.com/ridloal/toy-store-backend/internal/product/api"
	productRepo "github.com/ridloal/toy-store-backend/internal/product/repository"
	productService "github.com/ridloal/toy-store-backend/internal/product/service"
	stockAPI "github.com/ridloal/toy-store-backend/internal/stock/api"
	stockService "github.com/ridloal/toy-store-backend/internal/stock/service"
	userAPI "github.com/ridloal/toy-store-backend/internal/user/api"
	userRepo "github.com/ridloal/toy-store-backend/internal/user/repository"
	userService "github.com/ridloal/toy-store-backend/internal/user/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Could not read .env file", logger.Fields{"error": err.Error()})
	}

	// Load Config
	appCfg := config.LoadAppConfig()
	serverCfg := config.LoadServerConfig("3000")
	dbCfg := config.LoadDBConfig()
	redisCfg := config.LoadRedisConfig()
	sessionCfg := config.LoadSessionConfig(appCfg)
	kafkaCfg := config.LoadKafkaConfig()
	schedCfg := config.LoadSchedulerConfig()

	// Setup Logger
	logger.Init(appCfg.LogLevel, appCfg.IsProduction())
	logger.Info("Starting Toy Store Service...", logger.Fields{"env": appCfg.Env})
	if appCfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup Database
	db, err := database.Open(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to open database", err, nil)
		return
	}
	defer db.Close()

	monitor := database.NewMonitor(db, database.ExponentialBackoff{
		Base:   dbCfg.RetryBase,
		Max:    dbCfg.RetryMax,
		Jitter: 0.2,
	}, dbCfg.PingInterval)
	if err := monitor.Check(ctx); err != nil {
		logger.Warn("Database not reachable at startup, API answers 503 until it recovers", logger.Fields{"error": err.Error()})
	}
	go monitor.Run(ctx)
	go migrateWhenAvailable(ctx, db, monitor, dbCfg.PingInterval)

	// Setup Sessions
	rdb := session.NewRedisClient(redisCfg)
	defer rdb.Close()
	sessions := session.NewManager(session.NewRedisStore(rdb), []byte(sessionCfg.Secret), sessionCfg.TTL)

	// Setup Events
	var publisher events.Publisher = events.NewNopPublisher()
	if len(kafkaCfg.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(kafkaCfg.Brokers, kafkaCfg.Topic, appCfg.ServiceName, 256)
		logger.Info("Publishing events to Kafka", logger.Fields{"brokers": kafkaCfg.Brokers, "topic": kafkaCfg.Topic})
	}
	defer publisher.Close()

	// Setup Dependencies
	respond := httpx.NewResponder(!appCfg.IsProduction())
	catalog := productRepo.NewPostgresCatalog(db)

	prodService := productService.NewProductService(catalog, schedCfg.LowStockThreshold)
	if err := prodService.StartScheduler(schedCfg.StockReportSpec); err != nil {
		logger.Error("Failed to start stock report scheduler", err, nil)
		return
	}
	defer prodService.StopScheduler()

	stkService := stockService.NewStockService(catalog, publisher)
	ordService := orderService.NewOrderService(orderRepo.NewPostgresOrderRepository(db), catalog, stkService, publisher)
	usrService := userService.NewUserService(userRepo.NewPostgresUserRepository(db))

	sessionMW := userAPI.NewSessionMiddleware(sessions, usrService, sessionCfg.CookieName, respond)
	guards := sessionMW.Guards()

	router := newRouter(appCfg, monitor, func(api *gin.RouterGroup) {
		productAPI.NewProductHandler(prodService, respond).RegisterRoutes(api, guards)
		stockAPI.NewStockHandler(stkService, respond).RegisterRoutes(api)
		orderAPI.NewOrderHandler(ordService, respond).RegisterRoutes(api, guards)
		userAPI.NewUserHandler(usrService, sessions, sessionMW, sessionCfg, respond).RegisterRoutes(api, guards)
	})

	server := &http.Server{
		Addr:              serverCfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Toy Store Service running on port " + serverCfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to run Toy Store Service server", err, nil)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down Toy Store Service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err, nil)
	}
}

func schema() []string {
	stmts := userRepo.Schema()
	stmts = append(stmts, productRepo.Schema()...)
	return append(stmts, orderRepo.Schema()...)
}

// migrateWhenAvailable applies the schema once the database answers.
func migrateWhenAvailable(ctx context.Context, db database.DBTX, monitor *database.Monitor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if monitor.Available() {
			err := database.Migrate(ctx, db, schema()...)
			if err == nil {
				logger.Info("Database schema is up to date")
				return
			}
			logger.Error("Database migration failed", err, nil)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
