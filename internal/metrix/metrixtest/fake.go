// Package metrixtest provides an in-memory metrix.Backend for tests.
package metrixtest

import (
	"context"
	"sync"

	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/models"
)

// Fake serves canned responses and records calls. Nil funcs return a NotFound error.
type Fake struct {
	PlayerFunc     func(ctx context.Context, name string) (*models.PlayerProfile, error)
	NewsletterFunc func(ctx context.Context, date string) (*models.NewsletterBundle, error)
	ClassifyFunc   func(ctx context.Context, query string) (string, error)
	ResolveFunc    func(ctx context.Context, query, queryType string) (*models.QueryAnswer, error)

	mu    sync.Mutex
	calls map[string][]string
}

var _ metrix.Backend = (*Fake)(nil)

func (f *Fake) record(op, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string][]string)
	}
	f.calls[op] = append(f.calls[op], arg)
}

// Calls returns the arguments recorded for op.
func (f *Fake) Calls(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls[op]...)
}

func notFound(op string) error {
	return &metrix.Error{Op: op, Kind: metrix.KindNotFound, Err: metrix.ErrNotFound}
}

func (f *Fake) PlayerCard(ctx context.Context, name string) (*models.PlayerProfile, error) {
	f.record("playercard", name)
	if f.PlayerFunc == nil {
		return nil, notFound("playercard")
	}
	return f.PlayerFunc(ctx, name)
}

func (f *Fake) Newsletter(ctx context.Context, date string) (*models.NewsletterBundle, error) {
	f.record("fetchsummaries", date)
	if f.NewsletterFunc == nil {
		return nil, notFound("fetchsummaries")
	}
	return f.NewsletterFunc(ctx, date)
}

func (f *Fake) Classify(ctx context.Context, query string) (string, error) {
	f.record("query", query)
	if f.ClassifyFunc == nil {
		return "", notFound("query")
	}
	return f.ClassifyFunc(ctx, query)
}

func (f *Fake) Resolve(ctx context.Context, query, queryType string) (*models.QueryAnswer, error) {
	f.record("usetool", query+"|"+queryType)
	if f.ResolveFunc == nil {
		return nil, notFound("usetool")
	}
	return f.ResolveFunc(ctx, query, queryType)
}
