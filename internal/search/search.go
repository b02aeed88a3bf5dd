// Package search drives the two-step query lifecycle: classify, then resolve.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/metrix-hq/metrix/web/internal/metrix"
	"github.com/metrix-hq/metrix/web/internal/models"
)

// Phase is a state of the search page.
type Phase int

const (
	Idle Phase = iota
	Resolving
	Answered
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Answered:
		return "answered"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MaxQueryLength bounds the free-text question forwarded to the backend.
const MaxQueryLength = 500

// ErrEmptyQuery is returned when there is nothing to submit.
var ErrEmptyQuery = errors.New("search: empty query")

// Result is the outcome of one submission.
type Result struct {
	Phase     Phase
	Query     string
	QueryType string
	Answer    *models.QueryAnswer
	Err       error
}

// Resolver runs the classification and resolution calls in sequence.
type Resolver struct {
	backend metrix.Backend
	timeout time.Duration
	log     *slog.Logger
}

// NewResolver creates a resolver. timeout bounds the whole two-call exchange; zero disables it.
func NewResolver(backend metrix.Backend, timeout time.Duration, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{backend: backend, timeout: timeout, log: log}
}

// Normalize trims a query and caps its length.
func Normalize(query string) string {
	q := strings.TrimSpace(query)
	if r := []rune(q); len(r) > MaxQueryLength {
		q = string(r[:MaxQueryLength])
	}
	return q
}

// Resolve submits query. An empty query leaves the page Idle without any
// network call. Any failure ends in Failed; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, query string) Result {
	q := Normalize(query)
	if q == "" {
		return Result{Phase: Idle, Err: ErrEmptyQuery}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res := Result{Phase: Resolving, Query: q}

	qt, err := r.backend.Classify(ctx, q)
	if err != nil {
		r.log.Warn("classification failed", slog.String("query", q), slog.Any("err", err))
		res.Phase, res.Err = Failed, err
		return res
	}
	res.QueryType = qt

	answer, err := r.backend.Resolve(ctx, q, qt)
	if err != nil {
		r.log.Warn("resolution failed", slog.String("query", q), slog.String("query_type", qt), slog.Any("err", err))
		res.Phase, res.Err = Failed, err
		return res
	}

	r.log.Info("query answered",
		slog.String("query_type", qt),
		slog.String("player", answer.PlayerName),
		slog.Int("visuals", len(answer.Visuals)),
	)
	res.Phase, res.Answer = Answered, answer
	return res
}
