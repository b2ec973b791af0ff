package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient dials Redis and pings it. It returns nil, nil when no address is configured.
func NewClient(log *logger.Logger, cfg Config) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.With("client", "Redis").Info("redis connected", "addr", addr, "db", cfg.DB)
	return rdb, nil
}
