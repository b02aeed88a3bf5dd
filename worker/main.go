package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"

	"github.com/metrix-hq/metrix/web/internal/config"
	"github.com/metrix-hq/metrix/web/internal/dedupe"
	"github.com/metrix-hq/metrix/web/internal/elasticsearch"
	"github.com/metrix-hq/metrix/web/internal/logger"
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/processing"
)

const (
	dlqAttempts   = 5
	startupTries  = 10
	maxRetryDelay = 30 * time.Second
)

type subscriberIndexer interface {
	IndexSubscriber(ctx context.Context, sub models.Subscriber) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type processor struct {
	log      *slog.Logger
	index    subscriberIndexer
	seen     *dedupe.Cache
	validate *validator.Validate
	now      func() time.Time
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}
	if err := ensureIndex(ctx, log, esClient); err != nil {
		log.Error("prepare subscriber index", slog.Any("err", err))
		os.Exit(1)
	}

	p := &processor{
		log:      log,
		index:    esClient,
		seen:     dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL),
		validate: validator.New(),
		now:      time.Now,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	dlqTopic := cfg.Topic + "_dlq"
	dlqWriter := &kafka.Writer{
		Addr:        kafka.TCP(cfg.Brokers...),
		Topic:       dlqTopic,
		MaxAttempts: 3,
	}
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.Topic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := p.processMessage(ctx, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			// Only commit once the DLQ has the message; otherwise it is reprocessed on restart.
			if !sendToDLQ(ctx, log, dlqWriter, msg, err, time.Second) {
				if ctx.Err() != nil {
					return
				}
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// ensureIndex waits for Elasticsearch and creates the subscriber index.
func ensureIndex(ctx context.Context, log *slog.Logger, es *elasticsearch.Client) error {
	delay := 2 * time.Second
	var err error
	for attempt := 1; attempt <= startupTries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = es.EnsureIndex(attemptCtx)
		cancel()
		if err == nil {
			log.Info("subscriber index ready")
			return nil
		}
		log.Warn("elasticsearch not ready, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", delay),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return fmt.Errorf("elasticsearch unavailable after %d attempts: %w", startupTries, err)
}

// sendToDLQ publishes msg to the dead letter topic, backing off exponentially
// from base between attempts. It reports whether the write succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error, base time.Duration) bool {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(append([]kafka.Header(nil), msg.Headers...),
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range dlqAttempts {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := base << uint(attempt)
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			log.Info("context canceled during DLQ retry")
			return false
		}
	}
	return false
}

// processMessage decodes, validates, dedupes and indexes one subscriber event.
func (p *processor) processMessage(ctx context.Context, msg kafka.Message) error {
	var sub models.Subscriber
	if err := json.Unmarshal(msg.Value, &sub); err != nil {
		return fmt.Errorf("decode subscriber: %w", err)
	}

	sub.Email = processing.NormalizeEmail(sub.Email)
	if err := p.validate.Struct(sub); err != nil {
		return fmt.Errorf("invalid subscriber: %w", err)
	}

	// The id is derived from the address so replays and resubmissions collapse.
	sub.ID = processing.BuildSubscriberID(sub.Email)
	sub.Source = strings.TrimSpace(sub.Source)
	if sub.Source == "" {
		sub.Source = headerValue(msg.Headers, "source")
	}
	if sub.Source == "" {
		sub.Source = "unknown"
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = p.now().UTC()
	}

	if p.seen.IsSeen(sub.ID) {
		p.log.Debug("duplicate subscriber", slog.String("id", sub.ID))
		return nil
	}

	err := p.index.IndexSubscriber(ctx, sub)
	switch {
	case errors.Is(err, elasticsearch.ErrAlreadySubscribed):
		p.log.Debug("subscriber already indexed", slog.String("id", sub.ID))
	case err != nil:
		return err
	default:
		p.log.Info("indexed subscriber", slog.String("id", sub.ID), slog.String("source", sub.Source))
	}

	p.seen.MarkSeen(sub.ID)
	return nil
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return strings.TrimSpace(string(h.Value))
		}
	}
	return ""
}
