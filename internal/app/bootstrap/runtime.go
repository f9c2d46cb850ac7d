package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	"github.com/wolfman30/lumiere-booking/internal/wizard"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// redisPingTimeout bounds the start-up reachability check.
const redisPingTimeout = 3 * time.Second

var errNoRedisAddr = errors.New("bootstrap: REDIS_ADDR is empty")

// OpenRedis connects to REDIS_ADDR and pings it. The client is closed again
// when the ping fails.
func OpenRedis(ctx context.Context, cfg *appconfig.Config) (*redis.Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, errNoRedisAddr
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		// Wizard requests read one small key each; fail fast rather than
		// stall a click.
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("bootstrap: redis %s unreachable: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// BuildSessionStore picks the wizard session store named by SESSION_STORE.
// The returned client is nil for the in-memory store; callers own closing it
// otherwise.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (wizard.Store, *redis.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.SessionStore {
	case "", "memory":
		logger.Info("session store ready", "kind", "memory", "ttl", cfg.SessionTTL.String())
		return wizard.NewMemoryStore(cfg.SessionTTL), nil, nil
	case "redis":
		client, err := OpenRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store ready", "kind", "redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		return wizard.NewRedisStore(client, cfg.SessionTTL, nil), client, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown session store %q", cfg.SessionStore)
	}
}
