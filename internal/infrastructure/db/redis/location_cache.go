package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

const locationTTL = 24 * time.Hour

// LocationCache stores the latest victim/responder coordinates for each
// emergency in a single Redis hash keyed by emergency id.
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocationCache creates a LocationCache. A non-positive ttl falls back to locationTTL.
func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = locationTTL
	}
	return &LocationCache{client: client, ttl: ttl}
}

type cachedLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	TS  int64   `json:"ts"`
}

// SetLatest overwrites one side of the pair. Older reports never replace newer ones.
func (c *LocationCache) SetLatest(ctx context.Context, emergencyID int64, party domain.Party, coord domain.Coordinate, ts time.Time) error {
	key := locationKey(emergencyID)

	prev, err := c.client.HGet(ctx, key, string(party)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read cached %s location: %w", party, err)
	}
	if prev != "" {
		var old cachedLocation
		if json.Unmarshal([]byte(prev), &old) == nil && old.TS > ts.UnixMilli() {
			return nil
		}
	}

	raw, err := json.Marshal(cachedLocation{Lat: coord.Lat, Lng: coord.Lng, TS: ts.UnixMilli()})
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, string(party), raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store %s location: %w", party, err)
	}
	return nil
}

// Latest returns the cached pair. Missing sides are left nil.
func (c *LocationCache) Latest(ctx context.Context, emergencyID int64) (domain.LocationPair, error) {
	var pair domain.LocationPair

	vals, err := c.client.HGetAll(ctx, locationKey(emergencyID)).Result()
	if err != nil {
		return pair, fmt.Errorf("read locations: %w", err)
	}

	pair.Victim = decodeLocation(vals[string(domain.PartyVictim)])
	pair.Responder = decodeLocation(vals[string(domain.PartyResponder)])
	return pair, nil
}

// Clear drops every cached coordinate for the emergency.
func (c *LocationCache) Clear(ctx context.Context, emergencyID int64) error {
	return c.client.Del(ctx, locationKey(emergencyID)).Err()
}

func decodeLocation(raw string) *domain.Coordinate {
	if raw == "" {
		return nil
	}
	var cl cachedLocation
	if err := json.Unmarshal([]byte(raw), &cl); err != nil {
		return nil
	}
	return &domain.Coordinate{Lat: cl.Lat, Lng: cl.Lng}
}

func locationKey(emergencyID int64) string {
	return fmt.Sprintf("emergency:%d:locations", emergencyID)
}
