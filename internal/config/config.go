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

type Config struct {
	AppEnv     string
	AppName    string
	AppVersion string

	HTTPAddr string

	// Elasticsearch
	ESAddresses      []string
	ESIndex          string
	ESUser           string
	ESPassword       string
	ESRequestTimeout time.Duration
	ESMaxRetries     int
	ESMaxConns       int
	ESRefresh        string
	ESShards         int
	ESReplicas       int
	ESStartupTimeout time.Duration

	// Record service
	StoreTimeout time.Duration
	ListLimit    int

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Redis (shared rate limit counter)
	RedisURL string

	// Rate Limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration
}

func Load() (*Config, error) {
	// local development: pick up .env if present
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.AppName = getEnv("APP_NAME", "city-population-api")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8000")

	cfg.ESAddresses = splitList(getEnv("ELASTICSEARCH_HOST", "http://elasticsearch:9200"))
	cfg.ESIndex = getEnv("ELASTICSEARCH_INDEX", "cities")
	cfg.ESUser = getEnv("ELASTICSEARCH_USER", "")
	cfg.ESPassword = getEnv("ELASTICSEARCH_PASSWORD", "")
	cfg.ESRequestTimeout = getDuration("ES_REQUEST_TIMEOUT", 30*time.Second)
	cfg.ESMaxRetries = getIntEnv("ES_MAX_RETRIES", 3)
	cfg.ESMaxConns = getIntEnv("ES_MAX_CONNS", 10)
	cfg.ESRefresh = getEnv("ES_REFRESH", "true")
	cfg.ESShards = getIntEnv("ES_SHARDS", 1)
	cfg.ESReplicas = getIntEnv("ES_REPLICAS", 1)
	cfg.ESStartupTimeout = getDuration("ES_STARTUP_TIMEOUT", 60*time.Second)

	cfg.StoreTimeout = getDuration("STORE_TIMEOUT", 10*time.Second)
	cfg.ListLimit = getIntEnv("LIST_LIMIT", 10000)

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "city.population")

	cfg.RedisURL = getEnv("REDIS_URL", "")

	// Rate Limiting Defaults: 100 reqs / 1 min
	cfg.RLEnabled = getEnv("RL_ENABLED", "true") == "true"
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 100)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 8*time.Second)

	// validation
	if len(cfg.ESAddresses) == 0 {
		return nil, fmt.Errorf("missing ELASTICSEARCH_HOST")
	}
	for _, a := range cfg.ESAddresses {
		u, err := url.Parse(a)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid ELASTICSEARCH_HOST %q (want http(s)://host:port)", a)
		}
	}
	if cfg.ListLimit < 1 || cfg.ListLimit > 10000 {
		return nil, fmt.Errorf("invalid LIST_LIMIT %d (must be 1..10000)", cfg.ListLimit)
	}
	switch cfg.ESRefresh {
	case "true", "false", "wait_for":
	default:
		return nil, fmt.Errorf("invalid ES_REFRESH %q (must be true, false or wait_for)", cfg.ESRefresh)
	}

	// Rabbit: dev may skip it; everything else must publish domain events
	if cfg.AppEnv != "dev" && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
