package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petaria-auction/internal/api/handlers"
	"petaria-auction/internal/config"
	"petaria-auction/internal/infrastructure/leader"
	"petaria-auction/internal/infrastructure/mysql"
	"petaria-auction/internal/infrastructure/redis"
	"petaria-auction/internal/infrastructure/websocket"
	"petaria-auction/internal/services"
	"petaria-auction/pkg/logger"
	"petaria-auction/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Petaria Auction Service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := utils.InitializeMySQL(ctx, cfg)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}()
	log.Info("Connected to MySQL")

	// Write path: every mutating operation runs in one transaction.
	uow := mysql.NewTxManager(db)

	// Read path, straight against the pool.
	queryRepo := mysql.NewQueryRepository(db)
	balanceRepo := mysql.NewCurrencyLedger(db)

	// Redis based components
	stateCache := redis.NewRedisStateCache(rdb)
	eventPublisher := redis.NewEventPublisher(rdb)
	eventSubscriber := redis.NewRedisEventSubscriber(rdb, log)
	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Services
	listingService := services.NewListingService(uow, stateCache, log)
	biddingService := services.NewBiddingService(uow, eventPublisher, log)
	settlementService := services.NewSettlementService(uow, eventPublisher, stateCache, log)
	queryService := services.NewQueryService(queryRepo, balanceRepo, log)
	sweeper := services.NewExpirySweeper(queryRepo, settlementService, leaderElection,
		cfg.Instance.ID, cfg.Sweeper.Interval, cfg.Sweeper.BatchSize, log)

	// Live feed
	connManager := websocket.NewConnectionManager(log)
	eventListener := services.NewEventListener(connManager, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"X-User-ID",
			"X-User-Role",
		},
	}))
	e.Use(handlers.PrincipalMiddleware())

	// Handlers and routes
	auctionHandler := handlers.NewAuctionHandler(listingService, biddingService, settlementService, queryService, log)
	auctionHandler.RegisterRoutes(e)

	wsHandler := handlers.NewWebSocketHandler(queryService, stateCache, connManager, log)
	wsHandler.RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "petaria-auction",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Background services
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	go func() {
		if err := eventListener.Start(appCtx, eventSubscriber); err != nil {
			log.Error("Event listener stopped", "error", err)
		}
	}()

	if err := sweeper.Start(appCtx); err != nil {
		log.Error("Failed to start expiry sweeper", "error", err)
		os.Exit(1)
	}

	// Keep contending for sweep leadership for as long as we run.
	go func() {
		for {
			select {
			case <-appCtx.Done():
				return
			default:
			}
			became, err := leaderElection.BecomeLeader(appCtx, cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became sweep leader", "instance_id", cfg.Instance.ID)
			}
			time.Sleep(10 * time.Second)
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting auction server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	appCancel()
	sweeper.Stop()
	if err := leaderElection.ReleaseLeadership(shutdownCtx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Auction service stopped")
}
