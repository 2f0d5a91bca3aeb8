package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abv-ps/shop-api/internal/audit"
	auditsvc "github.com/abv-ps/shop-api/internal/audit/service"
	auditstore "github.com/abv-ps/shop-api/internal/audit/store"
	"github.com/abv-ps/shop-api/internal/config"
	"github.com/abv-ps/shop-api/internal/logger"
	"github.com/abv-ps/shop-api/internal/metrics"
	"github.com/abv-ps/shop-api/internal/platform/validation"
	"github.com/abv-ps/shop-api/internal/session"
	"github.com/abv-ps/shop-api/internal/shop"
	"github.com/abv-ps/shop-api/internal/version"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.String()).Msg("starting api server")

	// Init Redis (TTL session store)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()

	// Init Cassandra (append-only event log)
	cqlConn, err := auditstore.Dial(cfg.CassandraHosts, cfg.CassandraKeyspace)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to cassandra")
	}
	defer cqlConn.Close()

	// Init Mongo (products/orders document store)
	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelMongo()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Session-Token"},
	}))
	e.Use(metrics.HTTPMiddleware())

	// Validator
	e.Validator = validation.New()

	// Register domain routes via factories
	v1 := e.Group("/v1")
	eventLogger := audit.RegisterV1(v1, audit.Deps{
		Conn:       cqlConn,
		DefaultTTL: cfg.AuditLogTTL,
		Workers:    cfg.AuditWorkers,
		QueueSize:  cfg.AuditQueueSize,
		Log:        log,
	})
	defer eventLogger.Close()

	sessions := session.RegisterV1(v1, session.Deps{
		Redis:  redisClient,
		TTL:    cfg.SessionTTL,
		Events: eventLogger,
		Log:    log,
	})

	shopRepo := shop.RegisterV1(v1, shop.Deps{
		Mongo:    mongoClient.Database(cfg.MongoDB),
		Sessions: sessions,
		Events:   eventLogger,
		Log:      log,
	})
	if err := shopRepo.EnsureIndexes(mongoCtx); err != nil {
		log.Fatal().Err(err).Msg("unable to create indexes")
	}

	// Scheduled retention sweep for the event log
	sweeper, err := auditsvc.NewSweeper(eventLogger, cfg.AuditSweepSchedule, cfg.AuditRetentionDays, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sweep schedule")
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Health endpoint pings all three stores
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
		defer cancel()

		cacheStatus := "ok"
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			cacheStatus = "down"
		}
		logStatus := "ok"
		if err := cqlConn.Ping(ctx); err != nil {
			logStatus = "down"
		}
		docStatus := "ok"
		if err := mongoClient.Ping(ctx, nil); err != nil {
			docStatus = "down"
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"version": version.String(),
			"time":    time.Now().UTC().Format(time.RFC3339),
			"cache":   cacheStatus,
			"log":     logStatus,
			"db":      docStatus,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Start server
	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
