package cache

import (
	"context" // Context for Redis operations
	"errors"  // errors.Is on redis.Nil
	"net/url" // Sorted query encoding
	"strconv" // Generation and id formatting
	"strings" // Key joining
	"time"    // Time durations

	"github.com/prometheus/client_golang/prometheus"          // Metric types
	"github.com/prometheus/client_golang/prometheus/promauto" // Auto-registered metrics
	"github.com/redis/go-redis/v9"                            // Redis client
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moneybase",
	Name:      "query_cache_lookups_total",
	Help:      "Query cache lookups by result",
}, []string{"result"}) // hit, miss, error

var invalidations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "moneybase",
	Name:      "query_cache_invalidations_total",
	Help:      "Number of invalidate-all calls",
})

// Key is a cache key pinned to the generation seen when it was resolved.
// Writes through a stale Key land in a generation nobody reads anymore.
type Key string

// Store is the query cache used by read endpoints
type Store interface {
	Resolve(ctx context.Context, logical string) (Key, error)
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Put(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

// Redis implements Store on a single Redis namespace
type Redis struct {
	rdb       *redis.Client // Redis client
	namespace string        // Prefix of every key we own
}

// NewRedis returns a query cache rooted at namespace
func NewRedis(rdb *redis.Client, namespace string) *Redis {
	return &Redis{rdb: rdb, namespace: namespace}
}

func (c *Redis) genKey() string { return c.namespace + ":gen" }

// LogicalKey joins endpoint identity, caller identity and request parameters
func LogicalKey(endpoint string, userID uint, params url.Values) string {
	// url.Values.Encode sorts by key, so parameter order does not matter
	return endpoint + ":user=" + strconv.FormatUint(uint64(userID), 10) + ":" + params.Encode()
}

// Resolve pins logical to the current generation
func (c *Redis) Resolve(ctx context.Context, logical string) (Key, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err // Redis unavailable
	}
	// A missing counter is generation 0
	return Key(strings.Join([]string{c.namespace, "v" + strconv.FormatInt(gen, 10), logical}, ":")), nil
}

// Get retrieves a cached value
func (c *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, string(key)).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		lookups.WithLabelValues("miss").Inc()
		return nil, false, nil // Key does not exist
	} else if err != nil {
		lookups.WithLabelValues("error").Inc()
		return nil, false, err // Other Redis error
	}
	lookups.WithLabelValues("hit").Inc()
	return val, true, nil
}

// Put sets a value with a TTL
func (c *Redis) Put(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, string(key), value, ttl).Err() // Set value in Redis with TTL
}

// InvalidateAll makes every cached entry unreachable by bumping the
// generation, then deletes the old entries.
func (c *Redis) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		return err // Nothing was invalidated
	}
	invalidations.Inc()
	// Cleanup only; correctness already holds after the INCR. Data keys are
	// ns:v<gen>:..., which never matches the counter at ns:gen.
	iter := c.rdb.Scan(ctx, 0, c.namespace+":v*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Ping checks the Redis connection
func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
