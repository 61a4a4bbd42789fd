package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 10 * time.Minute

// DedupChecker remembers which (emergency, party, timestamp) reports were
// already applied so retried uploads do not move a marker twice.
type DedupChecker struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewDedupChecker(rdb redis.Cmdable) *DedupChecker {
	return &DedupChecker{rdb: rdb, ttl: dedupTTL}
}

func (d *DedupChecker) IsDuplicate(ctx context.Context, emergencyID int64, party string, ts time.Time) (bool, error) {
	n, err := d.rdb.Exists(ctx, dedupKey(emergencyID, party, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return n == 1, nil
}

func (d *DedupChecker) Mark(ctx context.Context, emergencyID int64, party string, ts time.Time) error {
	if err := d.rdb.SetNX(ctx, dedupKey(emergencyID, party, ts), 1, d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

// dedupKey uses millisecond precision: devices may report more than once per second.
func dedupKey(emergencyID int64, party string, ts time.Time) string {
	return fmt.Sprintf("dedup:%d:%s:%d", emergencyID, party, ts.UnixMilli())
}
