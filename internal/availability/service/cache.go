package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sisagenda/internal/availability/engine"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/metrics"
	"sisagenda/pkg/model"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "availability"

// CacheInvalidator drops cached availability after a write. With no dates it
// drops every cached date of the delivery type, and with an empty delivery
// type every cached entry of the organization.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, organizationID, deliveryTypeID string, dates ...string) error
}

// CachedAvailabilityService is a read-through Redis cache in front of an
// AvailabilityService. Only GetAvailability is cached. A hit for today is
// re-filtered against the clock so elapsed slots disappear without a
// recompute. Redis failures fall back to the wrapped service.
type CachedAvailabilityService struct {
	next   AvailabilityService
	client *redis.Client
	ttl    time.Duration
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger
}

func NewCachedAvailabilityService(next AvailabilityService, client *redis.Client, ttl time.Duration, loc *time.Location, log *logger.Logger) *CachedAvailabilityService {
	return &CachedAvailabilityService{
		next:   next,
		client: client,
		ttl:    ttl,
		loc:    loc,
		now:    time.Now,
		log:    log,
	}
}

func (c *CachedAvailabilityService) GetAvailability(ctx context.Context, organizationID, deliveryTypeID, date string) (*Availability, error) {
	key := cacheKey(organizationID, deliveryTypeID, date)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Availability
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.IncAvailabilityQuery("cache_hit")
			return c.refilter(&cached), nil
		}
		c.log.Warn("Discarding corrupt availability cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Availability cache read failed", "key", key, "error", err)
	}

	availability, err := c.next.GetAvailability(ctx, organizationID, deliveryTypeID, date)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		if data, jsonErr := json.Marshal(availability); jsonErr == nil {
			if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
				c.log.Warn("Availability cache write failed", "key", key, "error", setErr)
			}
		}
	}
	return availability, nil
}

func (c *CachedAvailabilityService) GetOpeningHours(ctx context.Context, organizationID, deliveryTypeID, date string) (*OpeningHours, error) {
	return c.next.GetOpeningHours(ctx, organizationID, deliveryTypeID, date)
}

// CheckSlot always goes to the wrapped service. It guards writes and must
// never see stale data.
func (c *CachedAvailabilityService) CheckSlot(ctx context.Context, organizationID, deliveryTypeID string, start time.Time, excludeID string) (int, error) {
	return c.next.CheckSlot(ctx, organizationID, deliveryTypeID, start, excludeID)
}

func (c *CachedAvailabilityService) Invalidate(ctx context.Context, organizationID, deliveryTypeID string, dates ...string) error {
	if organizationID == "" {
		return fmt.Errorf("organization id is required to invalidate availability")
	}

	if deliveryTypeID != "" && len(dates) > 0 {
		keys := make([]string, len(dates))
		for i, d := range dates {
			keys[i] = cacheKey(organizationID, deliveryTypeID, d)
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete availability keys: %w", err)
		}
		return nil
	}

	pattern := fmt.Sprintf("%s:%s:*", cacheKeyPrefix, canonicalID(organizationID))
	if deliveryTypeID != "" {
		pattern = fmt.Sprintf("%s:%s:%s:*", cacheKeyPrefix, canonicalID(organizationID), canonicalID(deliveryTypeID))
	}
	return c.deleteMatching(ctx, pattern)
}

func (c *CachedAvailabilityService) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete availability keys: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan availability keys: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete availability keys: %w", err)
		}
	}
	return nil
}

func (c *CachedAvailabilityService) refilter(a *Availability) *Availability {
	now := c.now().In(c.loc)
	today := now.Format(model.DateLayout)
	if a.Date > today {
		return a
	}
	if a.Date < today {
		a.Slots = []string{}
		return a
	}

	notBefore := engine.CeilMinuteOfDay(now)
	kept := make([]string, 0, len(a.Slots))
	for _, slot := range a.Slots {
		minute, err := engine.ParseMinute(slot)
		if err != nil || minute < notBefore {
			continue
		}
		kept = append(kept, slot)
	}
	a.Slots = kept
	return a
}

func cacheKey(organizationID, deliveryTypeID, date string) string {
	return fmt.Sprintf("%s:%s:%s:%s", cacheKeyPrefix, canonicalID(organizationID), canonicalID(deliveryTypeID), date)
}

// canonicalID is the lowercase hex form events carry. ObjectID parsing
// accepts either case, so keys must not depend on it.
func canonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
