package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/config"
	"github.com/seidelmaycon/game-api/internal/container"
	"github.com/seidelmaycon/game-api/internal/infrastructure/billing"
	pginfra "github.com/seidelmaycon/game-api/internal/infrastructure/postgres"
	sqliteinfra "github.com/seidelmaycon/game-api/internal/infrastructure/sqlite"
	"github.com/seidelmaycon/game-api/internal/router"
	"github.com/seidelmaycon/game-api/pkg/helpers"
	"github.com/seidelmaycon/game-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	closeStore, err := setupStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.DBDriver, err)
	}
	defer closeStore()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))
	container.SetBilling(billing.New(cfg.BillingBaseURL, cfg.BillingAPIKey, cfg.BillingTimeout, cfg.BillingOpenTimeout, logger))

	// RabbitMQ publisher for welcome emails (optional)
	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; welcome emails disabled")
		} else {
			defer pub.Close()
			container.SetMailPublisher(pub)
		}
	}

	// Elasticsearch for event analytics (optional)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch client init failed; indexing disabled")
		} else {
			if err := helpers.EnsureEventsIndex(ctx, es, cfg.ESEventsIndex); err != nil {
				logger.WithError(err).Warn("ensure events index failed")
			}
			container.SetES(es)
		}
	}

	r := router.NewEngine(cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// setupStore opens the store selected by DB_DRIVER and registers its
// repositories in the container.
func setupStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (func(), error) {
	switch cfg.DBDriver {
	case "postgres", "postgresql", "pgx":
		pool, err := pginfra.Open(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		}, logger)
		if err != nil {
			return nil, err
		}
		container.SetUserRepo(pginfra.NewUserRepository(pool))
		container.SetEventRepo(pginfra.NewGameEventRepository(pool))
		container.SetStore(pool)
		return pool.Close, nil
	case "sqlite", "sqlite3":
		db, err := sqliteinfra.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("using sqlite store")
		container.SetUserRepo(sqliteinfra.NewUserRepository(db))
		container.SetEventRepo(sqliteinfra.NewGameEventRepository(db))
		container.SetStore(db)
		return func() { _ = db.Close() }, nil
	default:
		return nil, errors.New("unsupported DB_DRIVER " + cfg.DBDriver)
	}
}
