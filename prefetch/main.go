package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metrix-hq/metrix/web/internal/cache"
	"github.com/metrix-hq/metrix/web/internal/config"
	"github.com/metrix-hq/metrix/web/internal/logger"
	"github.com/metrix-hq/metrix/web/internal/metrix"
)

const (
	redisPrefix   = "metrix:"
	startupTries  = 10
	maxRetryDelay = 30 * time.Second
)

// warmer refreshes the newsletter bundle cache for the most recent days.
type warmer struct {
	log      *slog.Logger
	backend  metrix.Backend
	store    cache.Store
	ttl      time.Duration
	loc      *time.Location
	daysBack int
	now      func() time.Time
}

func main() {
	log := logger.New("prefetch")
	cfg, err := config.LoadPrefetch()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, err := dialWithRetry(ctx, log, cfg.RedisURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("shutdown signal received during startup")
			return
		}
		log.Error("failed to connect to redis after retries", slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("connected to redis")

	w := &warmer{
		log:      log,
		backend:  metrix.NewClient(cfg.BackendURL, metrix.WithTimeout(cfg.BackendTimeout), metrix.WithLogger(log)),
		store:    store,
		ttl:      cfg.CacheTTL,
		loc:      cfg.Location,
		daysBack: cfg.DaysBack,
		now:      time.Now,
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("prefetch job running",
		slog.Duration("interval", cfg.Interval),
		slog.Int("days_back", cfg.DaysBack),
	)

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func dialWithRetry(ctx context.Context, log *slog.Logger, redisURL string) (*cache.RedisStore, error) {
	delay := 2 * time.Second
	var err error
	for attempt := 1; attempt <= startupTries; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var store *cache.RedisStore
		store, err = cache.DialRedis(dialCtx, redisURL, redisPrefix)
		cancel()
		if err == nil {
			return store, nil
		}
		log.Warn("redis ping failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", startupTries),
			slog.Duration("retry_in", delay),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return nil, err
}

// dates lists today and the previous daysBack days in the newsletter time zone.
func (w *warmer) dates() []string {
	today := w.now()
	if w.loc != nil {
		today = today.In(w.loc)
	}
	out := make([]string, 0, w.daysBack+1)
	for i := 0; i <= w.daysBack; i++ {
		out = append(out, today.AddDate(0, 0, -i).Format(time.DateOnly))
	}
	return out
}

// runOnce fetches each date and stores non-empty bundles. Failures are logged
// and retried on the next tick.
func (w *warmer) runOnce(ctx context.Context) int {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	warmed := 0
	for _, date := range w.dates() {
		bundle, err := w.backend.Newsletter(subCtx, date)
		if err != nil {
			if errors.Is(err, metrix.ErrNotFound) {
				w.log.Debug("no newsletter yet", slog.String("date", date))
			} else {
				w.log.Warn("prefetch failed (will retry on next interval)", slog.String("date", date), slog.Any("err", err))
			}
			continue
		}
		if bundle.IsEmpty() {
			w.log.Debug("newsletter empty, not cached", slog.String("date", date))
			continue
		}
		if err := w.store.Set(subCtx, cache.NewsletterKey(date), bundle, w.ttl); err != nil {
			w.log.Warn("cache write failed", slog.String("date", date), slog.Any("err", err))
			continue
		}
		warmed++
	}

	if warmed > 0 {
		w.log.Info("prefetch run completed", slog.Int("warmed", warmed))
	} else {
		w.log.Debug("prefetch run completed, nothing cached")
	}
	return warmed
}
