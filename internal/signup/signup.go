// Package signup validates mailing-list signups and publishes them to Kafka.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"

	"github.com/metrix-hq/metrix/web/internal/dedupe"
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/processing"
)

var (
	// ErrInvalidEmail is returned for addresses that fail validation.
	ErrInvalidEmail = errors.New("signup: invalid email address")
	// ErrDuplicate is returned when the same address was submitted recently.
	ErrDuplicate = errors.New("signup: already subscribed")
)

// MessageWriter is the subset of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Service handles the landing page form.
type Service struct {
	writer   MessageWriter
	seen     *dedupe.Cache
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a signup service publishing through writer.
func NewService(writer MessageWriter, seen *dedupe.Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		writer:   writer,
		seen:     seen,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// NewKafkaWriter builds the producer for the subscriber topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
}

// Validate checks a subscriber event.
func (s *Service) Validate(sub models.Subscriber) error {
	if err := s.validate.Struct(sub); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return nil
}

// Subscribe normalizes, validates, dedupes and publishes a signup.
func (s *Service) Subscribe(ctx context.Context, email, source string) (*models.Subscriber, error) {
	normalized := processing.NormalizeEmail(email)
	sub := models.Subscriber{
		ID:           processing.BuildSubscriberID(normalized),
		Email:        normalized,
		Source:       source,
		SubscribedAt: s.now().UTC(),
	}
	if err := s.Validate(sub); err != nil {
		return nil, err
	}

	if s.seen != nil && s.seen.Observe(sub.ID) {
		return nil, ErrDuplicate
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal subscriber: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(sub.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(source)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		if s.seen != nil {
			s.seen.Forget(sub.ID)
		}
		s.log.Error("publish subscriber", slog.String("id", sub.ID), slog.Any("err", err))
		return nil, fmt.Errorf("publish subscriber: %w", err)
	}

	s.log.Info("subscriber published", slog.String("id", sub.ID), slog.String("source", source))
	return &sub, nil
}
