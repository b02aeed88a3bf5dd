package cache

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/models"
)

// Key builders. Prefetch and web share them, so they must stay in sync.
func NewsletterKey(date string) string {
	return "newsletter:" + date
}

func PlayerKey(name string) string {
	return "player:" + strings.ToLower(strings.TrimSpace(name))
}

func AnswerKey(id string) string {
	return "answer:" + id
}

// Backend is a read-through cache in front of a metrix.Backend. Player cards
// and newsletter bundles are cached; classification and resolution never are.
// Cache failures are logged and fall through to the backend.
type Backend struct {
	next  metrix.Backend
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

var _ metrix.Backend = (*Backend)(nil)

// NewBackend wraps next with store.
func NewBackend(next metrix.Backend, store Store, ttl time.Duration, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Backend{next: next, store: store, ttl: ttl, log: log}
}

func (b *Backend) PlayerCard(ctx context.Context, name string) (*models.PlayerProfile, error) {
	key := PlayerKey(name)
	var cached models.PlayerProfile
	if b.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := b.next.PlayerCard(ctx, name)
	if err != nil {
		return nil, err
	}
	b.remember(ctx, key, p)
	return p, nil
}

func (b *Backend) Newsletter(ctx context.Context, date string) (*models.NewsletterBundle, error) {
	key := NewsletterKey(date)
	var cached models.NewsletterBundle
	if b.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	bundle, err := b.next.Newsletter(ctx, date)
	if err != nil {
		return nil, err
	}
	// Empty bundles are not cached; the newsletter for a date may still be generating.
	if !bundle.IsEmpty() {
		b.remember(ctx, key, bundle)
	}
	return bundle, nil
}

func (b *Backend) Classify(ctx context.Context, query string) (string, error) {
	return b.next.Classify(ctx, query)
}

func (b *Backend) Resolve(ctx context.Context, query, queryType string) (*models.QueryAnswer, error) {
	return b.next.Resolve(ctx, query, queryType)
}

func (b *Backend) lookup(ctx context.Context, key string, dst any) bool {
	ok, err := b.store.Get(ctx, key, dst)
	if err != nil {
		b.log.Warn("cache read failed", slog.String("key", key), slog.Any("err", err))
		return false
	}
	return ok
}

func (b *Backend) remember(ctx context.Context, key string, v any) {
	if err := b.store.Set(ctx, key, v, b.ttl); err != nil {
		b.log.Warn("cache write failed", slog.String("key", key), slog.Any("err", err))
	}
}
