package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/metrix-hq/metrix/web/internal/models"
)

// Answers keeps resolved query answers addressable by id so the response
// card can be paginated with plain GET requests.
type Answers struct {
	store Store
	ttl   time.Duration
}

// StoredAnswer is an answer together with the question that produced it.
type StoredAnswer struct {
	ID     string             `json:"id"`
	Query  string             `json:"query"`
	Answer models.QueryAnswer `json:"answer"`
}

// NewAnswers creates an answer store whose entries live for ttl.
func NewAnswers(store Store, ttl time.Duration) *Answers {
	return &Answers{store: store, ttl: ttl}
}

// Save stores answer under a fresh id.
func (a *Answers) Save(ctx context.Context, query string, answer models.QueryAnswer) (string, error) {
	id := uuid.NewString()
	rec := StoredAnswer{ID: id, Query: query, Answer: answer}
	if err := a.store.Set(ctx, AnswerKey(id), rec, a.ttl); err != nil {
		return "", fmt.Errorf("save answer: %w", err)
	}
	return id, nil
}

// Load returns the answer for id. Malformed ids are reported as a miss.
func (a *Answers) Load(ctx context.Context, id string) (*StoredAnswer, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, nil
	}
	var rec StoredAnswer
	ok, err := a.store.Get(ctx, AnswerKey(id), &rec)
	if err != nil {
		return nil, false, fmt.Errorf("load answer: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}
