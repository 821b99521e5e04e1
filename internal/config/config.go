package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	Drafts   DraftConfig
	Bakery   BakeryConfig
	Schedule ScheduleConfig
}

type DraftConfig struct {
	Backend          string
	RedisAddr        string
	RedisPassword    string
	MySQLDSN         string
	Key              string
	TTL              time.Duration
	AutosaveInterval time.Duration
}

type BakeryConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
}

type ScheduleConfig struct {
	Location      *time.Location
	MinNoticeDays int
	PickupBuffer  time.Duration
}

// Load reads the environment, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr: getEnv("GRPC_ADDR", ":50051"),
		Drafts: DraftConfig{
			Backend:       getEnv("DRAFT_BACKEND", BackendRedis),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			MySQLDSN:      getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/cakeorders?parseTime=true"),
			Key:           getEnv("DRAFT_KEY", "cakeOrderDraft"),
		},
		Bakery: BakeryConfig{
			BaseURL: getEnv("BAKERY_API_URL", "http://localhost:3000"),
		},
	}

	var err error
	if cfg.Drafts.TTL, err = getDuration("DRAFT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Drafts.AutosaveInterval, err = getDuration("AUTOSAVE_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Bakery.SearchDebounce, err = getDuration("SEARCH_DEBOUNCE", 300*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Bakery.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Schedule.PickupBuffer, err = getDuration("PICKUP_BUFFER", 4*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Schedule.MinNoticeDays, err = getInt("MIN_NOTICE_DAYS", 2); err != nil {
		return nil, err
	}
	if cfg.Schedule.Location, err = time.LoadLocation(getEnv("SHOP_TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("SHOP_TIMEZONE: %w", err)
	}

	switch cfg.Drafts.Backend {
	case BackendRedis, BackendMySQL, BackendMemory:
	default:
		return nil, fmt.Errorf("DRAFT_BACKEND: unknown backend %q", cfg.Drafts.Backend)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %d", key, n)
	}
	return n, nil
}
