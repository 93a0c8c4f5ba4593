package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ratecard/internal/clock"
	"github.com/smallbiznis/ratecard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyPrefix      = "ratecard"
	nullEncoding   = "null"
	redisOpTimeout = 250 * time.Millisecond
)

// UtilizationStore caches utilization percentages. A missing percentage is cached too.
type UtilizationStore interface {
	Get(ctx context.Context, key string) (decimal.NullDecimal, bool)
	Set(ctx context.Context, key string, value decimal.NullDecimal)
}

type memoryStore struct {
	entries Cache[string, decimal.NullDecimal]
	ttl     time.Duration
}

func NewMemoryStore(clk clock.Clock, ttl time.Duration) UtilizationStore {
	return &memoryStore{
		entries: NewTTLCache[string, decimal.NullDecimal](clk),
		ttl:     ttl,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (decimal.NullDecimal, bool) {
	return s.entries.Get(key)
}

func (s *memoryStore) Set(_ context.Context, key string, value decimal.NullDecimal) {
	s.entries.Set(key, value, s.ttl)
}

type redisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisStore caches in redis. Redis failures degrade to cache misses.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) UtilizationStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &redisStore{client: client, ttl: ttl, log: log.Named("cache.redis")}
}

func (s *redisStore) Get(ctx context.Context, key string) (decimal.NullDecimal, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return decimal.NullDecimal{}, false
	}
	value, ok := decodeNullDecimal(raw)
	if !ok {
		s.log.Warn("discarding malformed cache entry", zap.String("key", key))
	}
	return value, ok
}

func (s *redisStore) Set(ctx context.Context, key string, value decimal.NullDecimal) {
	if s.ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, encodeNullDecimal(value), s.ttl).Err(); err != nil {
		s.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func encodeNullDecimal(value decimal.NullDecimal) string {
	if !value.Valid {
		return nullEncoding
	}
	return value.Decimal.String()
}

func decodeNullDecimal(raw string) (decimal.NullDecimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == nullEncoding {
		return decimal.NullDecimal{}, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(value), true
}

type StoreParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Clock     clock.Clock
	Log       *zap.Logger
}

// NewStore builds the store selected by RATING_CACHE_BACKEND. It returns nil when caching is off.
func NewStore(p StoreParams) (UtilizationStore, error) {
	switch p.Config.RatingCacheBackend {
	case config.CacheBackendMemory:
		return NewMemoryStore(p.Clock, p.Config.RatingCacheTTL), nil
	case config.CacheBackendRedis:
		addr := strings.TrimSpace(p.Config.RedisAddr)
		if addr == "" {
			return nil, errors.New("redis addr is required for the redis cache backend")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(p.Config.RedisPassword),
			DB:       p.Config.RedisDB,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return NewRedisStore(client, p.Config.RatingCacheTTL, p.Log), nil
	default:
		return nil, nil
	}
}

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)
