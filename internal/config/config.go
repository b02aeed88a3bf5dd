package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Common holds the backend and cache settings shared by every binary.
type Common struct {
	BackendURL     string
	BackendTimeout time.Duration
	RedisURL       string
	CacheTTL       time.Duration
	Location       *time.Location
}

// Kafka addresses the subscriber event topic.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Web holds configuration for the HTTP front end.
type Web struct {
	Common
	Kafka
	BindAddr       string
	CORSOrigins    []string
	AnswerTTL      time.Duration
	DedupeTTL      time.Duration
	DedupeCapacity int
}

// Worker holds configuration for the Kafka -> Elasticsearch subscriber worker.
type Worker struct {
	Kafka
	KafkaConsumer      string
	ElasticsearchAddr  string
	ElasticsearchIndex string
	DedupeCapacity     int
	DedupeTTL          time.Duration
	BatchSize          int
}

// Prefetch configures the newsletter cache warmer.
type Prefetch struct {
	Common
	Interval time.Duration
	DaysBack int
}

// LoadWeb builds a Web config from environment variables.
func LoadWeb() (*Web, error) {
	loadDotEnv()
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Web{
		Common:         *common,
		Kafka:          loadKafka(),
		BindAddr:       getEnv("WEB_BIND_ADDR", "0.0.0.0:8080"),
		CORSOrigins:    splitAndTrim(getEnv("WEB_CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		AnswerTTL:      getDuration("WEB_ANSWER_TTL", "30m"),
		DedupeTTL:      getDuration("WEB_DEDUPE_TTL", "10m"),
		DedupeCapacity: getInt("WEB_DEDUPE_CAPACITY", 10000),
	}

	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.AnswerTTL <= 0 {
		return nil, fmt.Errorf("WEB_ANSWER_TTL must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WEB_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	loadDotEnv()
	c := &Worker{
		Kafka:              loadKafka(),
		KafkaConsumer:      getEnv("KAFKA_CONSUMER_GROUP", "subscriber-worker"),
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "subscribers"),
		DedupeCapacity:     getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:          getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:          getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadPrefetch builds a Prefetch config from environment variables.
func LoadPrefetch() (*Prefetch, error) {
	loadDotEnv()
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Prefetch{
		Common:   *common,
		Interval: getDuration("PREFETCH_INTERVAL", "30m"),
		DaysBack: getInt("PREFETCH_DAYS_BACK", 1),
	}

	if c.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for prefetch")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("PREFETCH_INTERVAL must be positive")
	}
	if c.DaysBack < 0 {
		return nil, fmt.Errorf("PREFETCH_DAYS_BACK cannot be negative")
	}

	return c, nil
}

func loadCommon() (*Common, error) {
	c := &Common{
		BackendURL:     strings.TrimRight(getEnv("METRIX_API_URL", "http://127.0.0.1:8000"), "/"),
		BackendTimeout: getDuration("METRIX_API_TIMEOUT", "10s"),
		RedisURL:       getEnv("REDIS_URL", ""),
		CacheTTL:       getDuration("CACHE_TTL", "15m"),
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("METRIX_API_URL must be an absolute URL, got %q", c.BackendURL)
	}
	if c.BackendTimeout <= 0 {
		return nil, fmt.Errorf("METRIX_API_TIMEOUT must be positive")
	}
	if c.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive")
	}

	tz := getEnv("NEWSLETTER_TZ", "America/New_York")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("NEWSLETTER_TZ %q: %w", tz, err)
	}
	c.Location = loc

	return c, nil
}

func loadKafka() Kafka {
	return Kafka{
		Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		Topic:   getEnv("KAFKA_SUBSCRIBER_TOPIC", "metrix_subscribers"),
	}
}

// loadDotEnv reads a .env file when present. Existing variables win.
func loadDotEnv() {
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
