package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/dedupe"
	"github.com/metrix-hq/metrix/web/internal/elasticsearch"
	"github.com/metrix-hq/metrix/web/internal/logger"
	"github.com/metrix-hq/metrix/web/internal/models"
	"github.com/metrix-hq/metrix/web/internal/processing"
)

type stubIndexer struct {
	subs []models.Subscriber
	err  error
}

func (s *stubIndexer) IndexSubscriber(_ context.Context, sub models.Subscriber) error {
	if s.err != nil {
		return s.err
	}
	s.subs = append(s.subs, sub)
	return nil
}

type stubWriter struct {
	fails int
	calls int
	msgs  []kafka.Message
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.calls++
	if s.calls <= s.fails {
		return errors.New("broker unavailable")
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

var fixedNow = time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

func newProcessor(idx subscriberIndexer) *processor {
	return &processor{
		log:      logger.Discard(),
		index:    idx,
		seen:     dedupe.NewCache(100, time.Hour),
		validate: validator.New(),
		now:      func() time.Time { return fixedNow },
	}
}

func subscriberMessage(t *testing.T, sub models.Subscriber, headers ...kafka.Header) kafka.Message {
	t.Helper()
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	return kafka.Message{Value: data, Headers: headers}
}

func TestProcessMessageIndexesSubscriber(t *testing.T) {
	idx := &stubIndexer{}
	p := newProcessor(idx)

	msg := subscriberMessage(t, models.Subscriber{Email: " Fan@Example.com "},
		kafka.Header{Key: "source", Value: []byte("landing")})
	require.NoError(t, p.processMessage(context.Background(), msg))

	require.Len(t, idx.subs, 1)
	sub := idx.subs[0]
	require.Equal(t, "fan@example.com", sub.Email)
	require.Equal(t, processing.BuildSubscriberID("fan@example.com"), sub.ID)
	require.Equal(t, "landing", sub.Source)
	require.Equal(t, fixedNow, sub.SubscribedAt)

	require.NoError(t, p.processMessage(context.Background(), msg))
	require.Len(t, idx.subs, 1)
}

func TestProcessMessageRejectsInvalidPayloads(t *testing.T) {
	p := newProcessor(&stubIndexer{})

	require.Error(t, p.processMessage(context.Background(), kafka.Message{Value: []byte("{not json")}))
	require.Error(t, p.processMessage(context.Background(), subscriberMessage(t, models.Subscriber{Email: "nope"})))
	require.Error(t, p.processMessage(context.Background(), subscriberMessage(t, models.Subscriber{})))
}

func TestProcessMessageTreatsExistingDocumentAsDone(t *testing.T) {
	idx := &stubIndexer{err: elasticsearch.ErrAlreadySubscribed}
	p := newProcessor(idx)

	msg := subscriberMessage(t, models.Subscriber{Email: "fan@example.com", Source: "landing"})
	require.NoError(t, p.processMessage(context.Background(), msg))
	require.True(t, p.seen.IsSeen(processing.BuildSubscriberID("fan@example.com")))
}

func TestProcessMessageSurfacesIndexFailures(t *testing.T) {
	idx := &stubIndexer{err: errors.New("es down")}
	p := newProcessor(idx)

	msg := subscriberMessage(t, models.Subscriber{Email: "fan@example.com"})
	require.Error(t, p.processMessage(context.Background(), msg))
	require.False(t, p.seen.IsSeen(processing.BuildSubscriberID("fan@example.com")))
}

func TestSendToDLQRetriesWithBackoff(t *testing.T) {
	w := &stubWriter{fails: 2}
	msg := kafka.Message{Key: []byte("k"), Value: []byte("v"), Partition: 3, Offset: 42}

	ok := sendToDLQ(context.Background(), logger.Discard(), w, msg, errors.New("boom"), time.Millisecond)
	require.True(t, ok)
	require.Equal(t, 3, w.calls)
	require.Len(t, w.msgs, 1)

	headers := map[string]string{}
	for _, h := range w.msgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "3", headers["original_partition"])
	require.Equal(t, "42", headers["original_offset"])
	require.Equal(t, "boom", headers["error"])
}

func TestSendToDLQStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &stubWriter{fails: 10}
	require.False(t, sendToDLQ(ctx, logger.Discard(), w, kafka.Message{}, errors.New("boom"), time.Hour))
	require.Equal(t, 1, w.calls)
}
