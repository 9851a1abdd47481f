package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"bidmarket/internal/api/handlers"
	"bidmarket/internal/config"
	"bidmarket/internal/infrastructure/leader"
	"bidmarket/internal/infrastructure/mysql"
	"bidmarket/internal/infrastructure/redis"
	ws "bidmarket/internal/infrastructure/websocket"
	"bidmarket/internal/services"
	"bidmarket/pkg/logger"
	"bidmarket/pkg/utils"
)

func main() {
	log := logger.New()
	log.Info("Starting bidmarket API")

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
	db := utils.InitializeMySQL(ctx, cfg, log)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}()
	log.Info("Connected to MySQL")

	// Repositories
	listingRepo := mysql.NewMySQLListingRepository(db)
	bidRepo := mysql.NewMySQLBidRepository(db)
	chatRepo := mysql.NewMySQLChatSessionRepository(db)
	favoriteRepo := mysql.NewMySQLFavoriteRepository(db)
	accountRepo := mysql.NewMySQLAccountRepository(db)

	// Redis based components
	stateCache := redis.NewStateCache(rdb)
	eventPublisher := redis.NewEventPublisher(rdb)
	eventSubscriber := redis.NewEventSubscriber(rdb, log)
	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Services; bid admission and resolution share one lock per listing.
	locks := services.NewListingLocks()
	catalog := services.NewCatalogService(listingRepo, stateCache, cfg.Auction.ListingDuration, log)
	bids := services.NewBidService(listingRepo, bidRepo, stateCache, eventPublisher, locks, log)
	resolver := services.NewResolverService(listingRepo, bidRepo, chatRepo, favoriteRepo,
		stateCache, eventPublisher, locks, log)
	favorites := services.NewFavoriteService(listingRepo, favoriteRepo, log)
	accounts := services.NewAccountService(accountRepo, listingRepo, bids, resolver, log)

	// Background resolution sweep
	sweeper := services.NewResolutionSweeper(listingRepo, resolver, leaderElection,
		cfg.Instance.ID, cfg.Auction.SweepInterval, log)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if err := sweeper.Start(sweepCtx); err != nil {
		log.Error("Failed to start resolution sweeper", "error", err)
		os.Exit(1)
	}

	// Chat notification gateway fed by the event stream
	connManager := ws.NewConnectionManager(log)
	chatGateway := ws.NewChatGateway(connManager, log)
	go func() {
		if err := eventSubscriber.SubscribeToAuctionEvents(sweepCtx, chatGateway.HandleEvent); err != nil && sweepCtx.Err() == nil {
			log.Error("Event subscription ended", "error", err)
		}
	}()

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
		},
		MaxAge: 86400,
	}))

	// Handlers
	listingHandler := handlers.NewListingHandler(catalog, resolver, favorites, log)
	bidHandler := handlers.NewBidHandler(bids, log)
	favoriteHandler := handlers.NewFavoriteHandler(favorites, log)
	userHandler := handlers.NewUserHandler(accounts, bids, favorites, chatRepo, listingRepo, log)
	wsHandler := handlers.NewWebSocketHandler(connManager, log)

	// API routes
	api := e.Group("/api/v1")
	api.POST("/listings", listingHandler.CreateListing)
	api.GET("/listings/:id", listingHandler.GetListing)
	api.GET("/listings/:id/result", listingHandler.GetResult)
	api.POST("/listings/:id/bids", bidHandler.PlaceBid)
	api.GET("/listings/:id/bids", bidHandler.ListListingBids)
	api.GET("/listings/:id/bids/highest", bidHandler.GetHighestBid)
	api.PUT("/listings/:id/favorite", favoriteHandler.Toggle)
	api.GET("/listings/:id/favorite", favoriteHandler.Check)

	api.POST("/users/join", userHandler.Join)
	api.GET("/users/:id", userHandler.GetUser)
	api.PUT("/users/:id", userHandler.UpdateUser)
	api.DELETE("/users/:id", userHandler.DeleteUser)
	api.GET("/users/:id/bids", userHandler.ListUserBids)
	api.GET("/users/:id/listings", userHandler.ListUserListings)
	api.GET("/users/:id/favorites", userHandler.ListUserFavorites)
	api.GET("/users/:id/chats", userHandler.ListUserChats)

	api.GET("/ws", wsHandler.Notifications)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "bidmarket-api",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Start server
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info("Server listening", "address", address)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	stopSweep()
	if err := sweeper.Stop(); err != nil {
		log.Error("Failed to stop sweeper", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down server", "error", err)
	}
}
