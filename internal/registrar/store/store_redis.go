package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"namelease/internal/registrar/models"
	"namelease/pkg/platform/sentinel"
)

var leaseLookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "namelease_redis_lease_lookup_duration_ms",
	Help:    "Latency of redis lease lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const (
	// Redis key prefix for lease records
	leaseKeyPrefix = "lease:"
	// Redis key for the settings singleton
	settingsKey = "registry:settings"
)

// RedisStore keeps leases and settings as JSON values in Redis. Suitable for
// deployments that already run Redis and do not need relational durability.
// Records carry no TTL: leases expire by timestamp comparison, never by
// key eviction.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Find retrieves a lease by exact name match.
// Returns sentinel.ErrNotFound if no record exists.
func (s *RedisStore) Find(ctx context.Context, name string) (*models.Lease, error) {
	start := time.Now()
	defer func() {
		leaseLookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	raw, err := s.client.Get(ctx, leaseKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lease: %w", err)
	}
	var lease models.Lease
	if err := json.Unmarshal(raw, &lease); err != nil {
		return nil, fmt.Errorf("decode lease: %w", err)
	}
	return &lease, nil
}

// Put upserts the whole lease record.
func (s *RedisStore) Put(ctx context.Context, lease *models.Lease) error {
	raw, err := json.Marshal(lease)
	if err != nil {
		return fmt.Errorf("encode lease: %w", err)
	}
	if err := s.client.Set(ctx, leaseKeyPrefix+lease.Name, raw, 0).Err(); err != nil {
		return fmt.Errorf("put lease: %w", err)
	}
	return nil
}

// LoadSettings retrieves the settings singleton.
// Returns sentinel.ErrNotFound until the registry has been seeded.
func (s *RedisStore) LoadSettings(ctx context.Context) (*models.Settings, error) {
	raw, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings upserts the settings singleton.
func (s *RedisStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.client.Set(ctx, settingsKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// DumpLeases returns every lease record ordered by name. Uses SCAN so a
// large registry does not block the server the way KEYS would.
func (s *RedisStore) DumpLeases(ctx context.Context) ([]models.Lease, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, leaseKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan leases: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leases: %w", err)
	}
	out := make([]models.Lease, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Key deleted between SCAN and MGET; skip.
			continue
		}
		var lease models.Lease
		if err := json.Unmarshal([]byte(str), &lease); err != nil {
			return nil, fmt.Errorf("decode lease: %w", err)
		}
		out = append(out, lease)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
