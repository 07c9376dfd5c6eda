package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardSummaryKeyPrefix = "po:dashboard:summary"
	defaultDashboardTTL       = time.Minute
	scanBatchSize             = 100
)

// DashboardSummaryCache caches KPI summaries. Entries are keyed by the day
// they were computed for, so a cached status never outlives its date.
type DashboardSummaryCache interface {
	GetSummary(ctx context.Context, asOf domain.Date, filter domain.POFilter) (*domain.DashboardSummary, bool, error)
	SetSummary(ctx context.Context, asOf domain.Date, filter domain.POFilter, summary *domain.DashboardSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

// NewDashboardCache returns the Redis-backed cache when CACHE_ENABLED is set
// and a noop cache otherwise.
func NewDashboardCache(cfg config.CacheConfig) (DashboardSummaryCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, err := connectRedis(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{
		client: client,
		ttl:    dashboardTTL(cfg),
	}, nil
}

// dashboardTTL bounds how long a summary may lag behind writes made by
// another process (the CLI or a second server) that did not invalidate it.
func dashboardTTL(cfg config.CacheConfig) time.Duration {
	ttl := time.Duration(cfg.DashboardTTLSeconds) * time.Second
	if ttl <= 0 {
		return defaultDashboardTTL
	}
	return ttl
}

func NewNoopDashboardCache() DashboardSummaryCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetSummary(ctx context.Context, asOf domain.Date, filter domain.POFilter) (*domain.DashboardSummary, bool, error) {
	key := buildDashboardSummaryKey(asOf, filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode dashboard summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisDashboardCache) SetSummary(ctx context.Context, asOf domain.Date, filter domain.POFilter, summary *domain.DashboardSummary) error {
	key := buildDashboardSummaryKey(asOf, filter)
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode dashboard summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// InvalidateAll drops every cached summary, for every day and filter.
func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, dashboardSummaryKeyPrefix+":*", scanBatchSize).Iterator()

	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis unlink failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
	}
	return nil
}

func (n *noopDashboardCache) GetSummary(ctx context.Context, asOf domain.Date, filter domain.POFilter) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetSummary(ctx context.Context, asOf domain.Date, filter domain.POFilter, summary *domain.DashboardSummary) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildDashboardSummaryKey(asOf domain.Date, filter domain.POFilter) string {
	prefix := dashboardSummaryKeyPrefix + ":" + asOf.String()

	var parts []string
	if filter.Search != "" {
		parts = append(parts, "search="+strings.ToLower(filter.Search))
	}
	if filter.SalesEngineer != "" {
		parts = append(parts, "sales_engineer="+strings.ToLower(filter.SalesEngineer))
	}
	if filter.Division != "" {
		parts = append(parts, "division="+strings.ToLower(filter.Division))
	}
	if filter.Status != "" {
		parts = append(parts, "status="+string(filter.Status))
	}
	if filter.Month > 0 {
		parts = append(parts, "month="+strconv.Itoa(filter.Month))
	}
	if filter.Year > 0 {
		parts = append(parts, "year="+strconv.Itoa(filter.Year))
	}

	if len(parts) == 0 {
		return prefix + ":default"
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}
