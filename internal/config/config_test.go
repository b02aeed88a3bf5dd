package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/config"
)

func TestLoadWebDefaults(t *testing.T) {
	t.Setenv("METRIX_API_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_SUBSCRIBER_TOPIC", "")
	t.Setenv("WEB_BIND_ADDR", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("NEWSLETTER_TZ", "")

	cfg, err := config.LoadWeb()
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:8000", cfg.BackendURL)
	require.Equal(t, 10*time.Second, cfg.BackendTimeout)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, []string{"kafka:9092"}, cfg.Brokers)
	require.Equal(t, "metrix_subscribers", cfg.Topic)
	require.Equal(t, 30*time.Minute, cfg.AnswerTTL)
	require.Equal(t, "America/New_York", cfg.Location.String())
	require.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadWebOverrides(t *testing.T) {
	t.Setenv("METRIX_API_URL", "http://backend:9000/")
	t.Setenv("METRIX_API_TIMEOUT", "3s")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("NEWSLETTER_TZ", "UTC")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("WEB_BIND_ADDR", ":9090")
	t.Setenv("WEB_CORS_ORIGINS", "https://metrix.example")
	t.Setenv("WEB_ANSWER_TTL", "5m")
	t.Setenv("WEB_DEDUPE_CAPACITY", "50")

	cfg, err := config.LoadWeb()
	require.NoError(t, err)
	require.Equal(t, "http://backend:9000", cfg.BackendURL)
	require.Equal(t, 3*time.Second, cfg.BackendTimeout)
	require.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, time.UTC, cfg.Location)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.Brokers)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, []string{"https://metrix.example"}, cfg.CORSOrigins)
	require.Equal(t, 5*time.Minute, cfg.AnswerTTL)
	require.Equal(t, 50, cfg.DedupeCapacity)
}

func TestLoadWebRejectsBadBackendURL(t *testing.T) {
	t.Setenv("METRIX_API_URL", "not a url")
	_, err := config.LoadWeb()
	require.Error(t, err)
}

func TestLoadWebRejectsBadTimezone(t *testing.T) {
	t.Setenv("METRIX_API_URL", "")
	t.Setenv("NEWSLETTER_TZ", "Mars/Olympus")
	_, err := config.LoadWeb()
	require.Error(t, err)
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("WORKER_BATCH_SIZE", "3")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)
	require.Equal(t, []string{"kafka:9092"}, cfg.Brokers)
	require.Equal(t, "subscriber-worker", cfg.KafkaConsumer)
	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "subscribers", cfg.ElasticsearchIndex)
	require.Equal(t, 3, cfg.BatchSize)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
}

func TestLoadWorkerRejectsBadBatch(t *testing.T) {
	t.Setenv("WORKER_BATCH_SIZE", "0")
	_, err := config.LoadWorker()
	require.Error(t, err)
}

func TestLoadPrefetch(t *testing.T) {
	t.Setenv("METRIX_API_URL", "")
	t.Setenv("NEWSLETTER_TZ", "")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("PREFETCH_INTERVAL", "12h")
	t.Setenv("PREFETCH_DAYS_BACK", "2")

	cfg, err := config.LoadPrefetch()
	require.NoError(t, err)
	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 2, cfg.DaysBack)

	t.Setenv("REDIS_URL", "")
	_, err = config.LoadPrefetch()
	require.Error(t, err)
}
