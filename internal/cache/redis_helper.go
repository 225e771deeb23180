package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/procuresmart/backend-go/internal/config"
)

const (
	defaultCacheTTL  = time.Hour
	redisDialTimeout = 3 * time.Second
	redisPingTimeout = 5 * time.Second
	redisPurgeBatch  = 100
	defaultRedisHost = "127.0.0.1"
	defaultRedisPort = "6379"
)

// redisStore is a JSON key/value namespace on top of a redis client.
type redisStore struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

func dialRedis(cfg config.CacheConfig, namespace string) (*redisStore, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return &redisStore{client: client, ttl: cacheTTL(cfg), namespace: namespace}, nil
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if cfg.NarrativeTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(cfg.NarrativeTTLSeconds) * time.Second
}

// redisOptions prefers REDIS_URL and falls back to host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts.DialTimeout = redisDialTimeout
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = defaultRedisHost
	}
	if port == "" {
		port = defaultRedisPort
	}

	return &redis.Options{
		Addr:        net.JoinHostPort(host, port),
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: redisDialTimeout,
	}, nil
}

func (s *redisStore) key(k string) string {
	return s.namespace + ":" + k
}

// getJSON decodes the value at k into dst and reports whether it existed.
func (s *redisStore) getJSON(ctx context.Context, k string, dst any) (bool, error) {
	payload, err := s.client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", s.key(k), err)
	}
	return true, nil
}

func (s *redisStore) setJSON(ctx context.Context, k string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key(k), err)
	}
	if err := s.client.Set(ctx, s.key(k), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// purge unlinks every key of the namespace and returns how many were removed.
func (s *redisStore) purge(ctx context.Context) (int, error) {
	iter := s.client.Scan(ctx, 0, s.key("*"), redisPurgeBatch).Iterator()

	removed := 0
	batch := make([]string, 0, redisPurgeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisPurgeBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan failed: %w", err)
	}
	return removed, flush()
}
