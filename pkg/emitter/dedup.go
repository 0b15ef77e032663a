package emitter

import (
	"context"
	"errors"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/ctdf"
)

const dedupKeyPrefix = "incidentparser:published:"

// HashCache remembers incident hashes. *cache.Cache[string] satisfies it.
type HashCache interface {
	Get(ctx context.Context, key any) (string, error)
	Set(ctx context.Context, key any, object string, options ...store.Option) error
}

func NewRedisHashCache(client *redis.Client, window time.Duration) *cache.Cache[string] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(window))

	return cache.New[string](redisStore)
}

// Deduplicator drops incidents whose hash was already dispatched while it is
// still held by the cache.
type Deduplicator struct {
	next       Emitter
	cache      HashCache
	duplicates Counter
}

func NewDeduplicator(next Emitter, hashCache HashCache, duplicates Counter) *Deduplicator {
	return &Deduplicator{
		next:       next,
		cache:      hashCache,
		duplicates: duplicates,
	}
}

func (d *Deduplicator) Dispatch(ctx context.Context, incident *ctdf.Incident) error {
	key := dedupKeyPrefix + incident.Hash()

	seen, err := d.cache.Get(ctx, key)
	if err != nil && !isCacheMiss(err) {
		log.Warn().Err(err).Str("hash", incident.Hash()).Msg("Failed to look up published incident, dispatching anyway")
	}

	if seen != "" {
		log.Debug().Str("hash", incident.Hash()).Int("line", incident.Line()).Msg("Skipping duplicate incident")

		if d.duplicates != nil {
			d.duplicates.Inc()
		}

		return nil
	}

	if err := d.next.Dispatch(ctx, incident); err != nil {
		return err
	}

	if err := d.cache.Set(ctx, key, incident.Hash()); err != nil {
		log.Error().Err(err).Str("hash", incident.Hash()).Msg("Failed to remember published incident")
	}

	return nil
}

// The redis store reports a miss as store.NotFound wrapping redis.Nil.
func isCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
