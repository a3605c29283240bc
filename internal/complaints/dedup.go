package complaints

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupPrefix     = "complaints:filed:"
	DefaultDedupTTL = 10 * time.Minute
)

// dedupTimeout bounds the Redis round trip on the fulfillment path.
var dedupTimeout = 500 * time.Millisecond

type dedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// DedupRecorder drops filings whose fingerprint was already recorded within ttl,
// so a retried fulfillment hook does not file the complaint twice.
type DedupRecorder struct {
	rdb  dedupStore
	next Recorder
	ttl  time.Duration
}

func NewDedupRecorder(rdb *redis.Client, next Recorder, ttl time.Duration) *DedupRecorder {
	return newDedupRecorder(rdb, next, ttl)
}

func newDedupRecorder(rdb dedupStore, next Recorder, ttl time.Duration) *DedupRecorder {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupRecorder{rdb: rdb, next: next, ttl: ttl}
}

func (d *DedupRecorder) Record(ctx context.Context, f Filing) error {
	key := dedupPrefix + f.Fingerprint()

	sctx, cancel := context.WithTimeout(ctx, dedupTimeout)
	fresh, err := d.rdb.SetNX(sctx, key, f.ID, d.ttl).Result()
	cancel()
	if err != nil {
		// redis down: record anyway, duplicates are preferable to lost complaints
		log.Printf("complaints: dedup check failed: %v", err)
		return d.next.Record(ctx, f)
	}
	if !fresh {
		log.Printf("complaints: duplicate filing for user %s, skipping", f.UserID)
		return nil
	}

	if err := d.next.Record(ctx, f); err != nil {
		// release the key so the retried hook files it
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dedupTimeout)
		defer cancel()
		if derr := d.rdb.Del(dctx, key).Err(); derr != nil {
			log.Printf("complaints: failed to release dedup key for filing %s: %v", f.ID, derr)
		}
		return err
	}
	return nil
}
