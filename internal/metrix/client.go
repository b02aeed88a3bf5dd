// Package metrix is the HTTP client for the Metrix statistics backend.
package metrix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metrix-hq/metrix/web/internal/models"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

// Backend is the set of calls the pages make. Handlers depend on this
// interface so tests can substitute a fake.
type Backend interface {
	PlayerCard(ctx context.Context, name string) (*models.PlayerProfile, error)
	Newsletter(ctx context.Context, date string) (*models.NewsletterBundle, error)
	Classify(ctx context.Context, query string) (string, error)
	Resolve(ctx context.Context, query, queryType string) (*models.QueryAnswer, error)
}

// Client talks to the backend over HTTP+JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient constructs a client for baseURL. An empty baseURL uses the local default.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PlayerCard fetches a player's profile by full name.
func (c *Client) PlayerCard(ctx context.Context, name string) (*models.PlayerProfile, error) {
	const op = "playercard"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(op, KindNotFound, 0, errors.New("empty player name"))
	}

	q := url.Values{}
	q.Set("player_name", name)

	var profile models.PlayerProfile
	if err := c.do(ctx, op, http.MethodGet, "/playercard?"+q.Encode(), nil, &profile); err != nil {
		return nil, err
	}
	if profile.IsEmpty() {
		return nil, newError(op, KindNotFound, 0, fmt.Errorf("no profile for %q", name))
	}
	if profile.Name == "" {
		profile.Name = name
	}
	return &profile, nil
}

// Newsletter fetches the daily bundle for an ISO date.
func (c *Client) Newsletter(ctx context.Context, date string) (*models.NewsletterBundle, error) {
	const op = "fetchsummaries"
	q := url.Values{}
	q.Set("games_date", date)

	var bundle models.NewsletterBundle
	if err := c.do(ctx, op, http.MethodGet, "/fetchsummaries?"+q.Encode(), nil, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

type classifyRequest struct {
	Q string `json:"q"`
}

// Classify labels a free-text question with a handling category.
func (c *Client) Classify(ctx context.Context, query string) (string, error) {
	const op = "query"
	var out models.Classification
	if err := c.do(ctx, op, http.MethodPost, "/query", classifyRequest{Q: query}, &out); err != nil {
		return "", err
	}
	qt := strings.TrimSpace(out.QueryType)
	if qt == "" {
		return "", newError(op, KindMalformed, 0, errors.New("missing query_type"))
	}
	return qt, nil
}

type resolveRequest struct {
	Q     string `json:"q"`
	QType string `json:"q_type"`
}

// Resolve produces the answer and visualizations for a classified query.
func (c *Client) Resolve(ctx context.Context, query, queryType string) (*models.QueryAnswer, error) {
	const op = "usetool"
	var answer models.QueryAnswer
	if err := c.do(ctx, op, http.MethodPost, "/usetool", resolveRequest{Q: query, QType: queryType}, &answer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer.AnswerText) == "" {
		return nil, newError(op, KindMalformed, 0, errors.New("missing stat_formatted"))
	}
	return &answer, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return newError(op, KindMalformed, 0, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return newError(op, KindNetwork, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", slog.String("op", op), slog.Any("err", err))
		return newError(op, KindNetwork, 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newError(op, kindForStatus(resp.StatusCode), resp.StatusCode,
			fmt.Errorf("api error: %s", strings.TrimSpace(string(data))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return newError(op, KindNetwork, resp.StatusCode, fmt.Errorf("read response: %w", err))
		}
		return newError(op, KindMalformed, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound,
		status == http.StatusBadRequest,
		status == http.StatusUnprocessableEntity:
		return KindNotFound
	case status >= 500:
		return KindNetwork
	default:
		return KindMalformed
	}
}
