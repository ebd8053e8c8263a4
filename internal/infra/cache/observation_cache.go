// internal/infra/cache/observation_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"geoguard/internal/domain/observation"
	"geoguard/internal/infra/observability"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "geoguard:observation:latest:"

// ObservationCache is a read-through cache in front of the observation store.
// Redis failures are logged and the read goes to the store; they never fail a request.
type ObservationCache struct {
	client  *redis.Client
	next    observation.Repository
	ttl     time.Duration
	metrics *observability.Metrics
	log     *logrus.Entry
}

func NewObservationCache(client *redis.Client, next observation.Repository, ttl time.Duration, metrics *observability.Metrics, log *logrus.Entry) *ObservationCache {
	return &ObservationCache{
		client:  client,
		next:    next,
		ttl:     ttl,
		metrics: metrics,
		log:     log.WithField("cache", "observation"),
	}
}

func key(zoneName string) string { return keyPrefix + zoneName }

// Latest serves from Redis when possible. Misses, including not-found, are not cached.
func (c *ObservationCache) Latest(ctx context.Context, zoneName string) (*observation.Observation, error) {
	raw, err := c.client.Get(ctx, key(zoneName)).Bytes()
	switch {
	case err == nil:
		var obs observation.Observation
		if jsonErr := json.Unmarshal(raw, &obs); jsonErr == nil {
			c.count("hit")
			return &obs, nil
		}
		c.log.WithField("zone", zoneName).Warn("Discarding undecodable cache entry")
		c.count("miss")
	case errors.Is(err, redis.Nil):
		c.count("miss")
	default:
		c.count("error")
		c.log.WithError(err).WithField("zone", zoneName).Warn("Redis read failed, falling back to store")
	}

	obs, err := c.next.Latest(ctx, zoneName)
	if err != nil {
		return nil, err
	}
	c.put(ctx, obs)
	return obs, nil
}

// Save writes through to the store, then refreshes the cached entry.
func (c *ObservationCache) Save(ctx context.Context, obs *observation.Observation) error {
	if err := c.next.Save(ctx, obs); err != nil {
		return err
	}
	c.put(ctx, obs)
	return nil
}

func (c *ObservationCache) put(ctx context.Context, obs *observation.Observation) {
	data, err := json.Marshal(obs)
	if err != nil {
		c.log.WithError(err).Warn("Failed to encode observation for cache")
		return
	}
	if err := c.client.Set(ctx, key(obs.Zone), data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("zone", obs.Zone).Warn("Redis write failed")
	}
}

func (c *ObservationCache) count(result string) {
	if c.metrics != nil {
		c.metrics.ObservationCache.WithLabelValues(result).Inc()
	}
}
