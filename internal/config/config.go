package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr          string
	DatabaseURL       string
	RedisAddr         string
	KafkaBrokers      []string
	OutbidTopic       string
	ServiceName       string
	JWTSecret         string
	TokenTTL          time.Duration
	ReconcileSchedule string
	RateLimitRPS      float64
	RateLimitBurst    int
	CORSOrigins       []string
	LogLevel          string
	SeedDemoData      bool
	ShutdownTimeout   time.Duration
}

// Load reads the configuration from the environment. Empty DATABASE_URL,
// REDIS_ADDR and KAFKA_BROKERS select the in-process fallbacks.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:          httpAddr(),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaBrokers:      splitCSV(os.Getenv("KAFKA_BROKERS")),
		OutbidTopic:       getenv("OUTBID_TOPIC", "auction.outbid"),
		ServiceName:       getenv("SERVICE_NAME", "auction-house"),
		JWTSecret:         getenv("JWT_SECRET", "change-me"),
		ReconcileSchedule: getenv("RECONCILE_SCHEDULE", "@every 1m"),
		CORSOrigins:       splitCSV(getenv("CORS_ORIGINS", "*")),
		LogLevel:          getenv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.TokenTTL, err = duration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = duration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = float("RATE_LIMIT_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = integer("RATE_LIMIT_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemoData, err = boolean("SEED_DEMO_DATA", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// httpAddr prefers HTTP_ADDR and falls back to PORT, then ":8080"
func httpAddr() string {
	if a := os.Getenv("HTTP_ADDR"); a != "" {
		return a
	}
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", k, v)
	}
	return d, nil
}

func float(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive number, got %q", k, v)
	}
	return f, nil
}

func integer(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", k, v)
	}
	return n, nil
}

func boolean(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", k, v)
	}
	return b, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
