package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baechuer/city-population-api/internal/application/city"
	"github.com/baechuer/city-population-api/internal/config"
	rediscache "github.com/baechuer/city-population-api/internal/infrastructure/caching/redis"
	rabbitpub "github.com/baechuer/city-population-api/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/city-population-api/internal/infrastructure/search/elasticsearch"
	"github.com/baechuer/city-population-api/internal/logger"
	"github.com/baechuer/city-population-api/internal/transport/http/handlers"
	mw "github.com/baechuer/city-population-api/internal/transport/http/middleware"
	"github.com/baechuer/city-population-api/internal/transport/http/router"
	zlog "github.com/rs/zerolog/log"
)

// sysClock implements city.Clock using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds the wired HTTP server and the service behind it.
type App struct {
	Config  *config.Config
	Server  *http.Server
	Service *city.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// logger reads LOG_* from env
	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		_ = os.Setenv("LOG_FORMAT", cfg.LogFormat)
	}
	logger.Init()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info().
		Str("env", cfg.AppEnv).
		Str("version", cfg.AppVersion).
		Strs("es_hosts", cfg.ESAddresses).
		Str("es_index", cfg.ESIndex).
		Msg("config loaded")

	// ---- Elasticsearch ----
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:      cfg.ESAddresses,
		Username:       cfg.ESUser,
		Password:       cfg.ESPassword,
		MaxRetries:     cfg.ESMaxRetries,
		MaxConns:       cfg.ESMaxConns,
		RequestTimeout: cfg.ESRequestTimeout,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("elasticsearch client init failed")
	}
	defer esClient.Close()

	{
		ctx, cancel := context.WithTimeout(rootCtx, cfg.ESStartupTimeout)
		defer cancel()
		if err := esClient.WaitReady(ctx, "yellow"); err != nil {
			zlog.Fatal().Err(err).Msg("elasticsearch not ready")
		}
	}

	repo := elasticsearch.New(esClient, cfg.ESIndex, cfg.ESRefresh)
	{
		ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
		defer cancel()
		err := repo.EnsureSchema(ctx, elasticsearch.SchemaConfig{
			Shards:   cfg.ESShards,
			Replicas: cfg.ESReplicas,
		})
		if err != nil {
			zlog.Fatal().Err(err).Str("index", cfg.ESIndex).Msg("index setup failed")
		}
	}

	// ---- RabbitMQ ----
	var pub city.EventPublisher = city.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		defer p.Close()
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// ---- Redis ----
	var limiter mw.Allower
	if cfg.RedisURL != "" {
		rc, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable: falling back to in-process rate limiting")
		} else {
			defer rc.Close()
			limiter = rc
			zlog.Info().Msg("redis connected")
		}
	}

	app := NewApp(cfg, repo, pub, limiter)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info().Msg("shutdown signal received")
	case err := <-errCh:
		zlog.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}
	zlog.Info().Msg("shutdown complete")
}

// NewApp wires the application and transport layers on top of already
// connected infrastructure. limiter may be nil.
func NewApp(cfg *config.Config, store city.CityStore, pub city.EventPublisher, limiter mw.Allower) *App {
	// 1) Application
	svc := city.New(store, sysClock{}, pub, cfg.StoreTimeout, cfg.ListLimit)

	// 2) Transport
	h := handlers.NewCitiesHandler(svc)
	z := handlers.NewHealthHandler(svc)

	// 3) Router
	httpHandler := router.New(h, z, limiter, cfg)

	// 4) Server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	return &App{
		Config:  cfg,
		Server:  srv,
		Service: svc,
	}
}
