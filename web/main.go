package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metrix-hq/metrix/web/internal/cache"
	"github.com/metrix-hq/metrix/web/internal/config"
	"github.com/metrix-hq/metrix/web/internal/dedupe"
	"github.com/metrix-hq/metrix/web/internal/logger"
	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/search"
	"github.com/metrix-hq/metrix/web/internal/signup"
)

const (
	redisPrefix    = "metrix:"
	memoryCapacity = 5000
)

func main() {
	log := logger.New("web")
	cfg, err := config.LoadWeb()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("init cache", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	client := metrix.NewClient(cfg.BackendURL,
		metrix.WithHTTPClient(backendHTTPClient()),
		metrix.WithTimeout(cfg.BackendTimeout),
		metrix.WithLogger(log),
	)
	backend := cache.NewBackend(client, store, cfg.CacheTTL, log)

	writer := signup.NewKafkaWriter(cfg.Brokers, cfg.Topic)
	defer func() {
		if err := writer.Close(); err != nil {
			log.Warn("close kafka writer", slog.Any("err", err))
		}
	}()

	srv := &server{
		log:      log,
		cfg:      cfg,
		backend:  backend,
		resolver: search.NewResolver(backend, cfg.BackendTimeout*2, log),
		answers:  cache.NewAnswers(store, cfg.AnswerTTL),
		signup:   signup.NewService(writer, dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL), log),
		store:    store,
		now:      time.Now,
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.BackendTimeout*2 + 5*time.Second,
	}

	go func() {
		log.Info("web server starting", slog.String("addr", cfg.BindAddr), slog.String("backend", cfg.BackendURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// openStore uses Redis when REDIS_URL is set and an in-process store otherwise.
func openStore(ctx context.Context, cfg *config.Web, log *slog.Logger) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryStore(memoryCapacity), func() {}, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rs, err := cache.DialRedis(dialCtx, cfg.RedisURL, redisPrefix)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Warn("close redis", slog.Any("err", err))
		}
	}, nil
}

// backendIdleConns bounds the pooled connections to the backend host.
const backendIdleConns = 32

// backendHTTPClient keeps a warm connection pool to the single backend host.
func backendHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = backendIdleConns
	transport.MaxIdleConnsPerHost = backendIdleConns
	transport.IdleConnTimeout = 90 * time.Second
	return &http.Client{Transport: transport}
}
