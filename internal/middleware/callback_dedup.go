package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// CallbackDeduper tracks already-seen IPN deliveries. Forget releases
// a key so that a delivery answered with a retryable ack is not shed
// when the gateway sends it again.
type CallbackDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type redisCallbackDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisCallbackDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

func (d *redisCallbackDeduper) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+":"+key).Err()
}

type memoryCallbackDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryCallbackDeduper(ttl time.Duration) *memoryCallbackDeduper {
	now := time.Now()
	return &memoryCallbackDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryCallbackDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

func (d *memoryCallbackDeduper) Forget(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

// NewCallbackDeduper builds a Redis deduper and falls back to in-memory
// on failure.
func NewCallbackDeduper(addr, pass string, db int, ttl time.Duration) (CallbackDeduper, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if addr == "" {
		return newMemoryCallbackDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryCallbackDeduper(ttl), err
	}

	return &redisCallbackDeduper{
		client: client,
		prefix: "vnp:ipn",
		ttl:    ttl,
	}, nil
}

// CallbackDedup sheds exact duplicate IPN deliveries, keyed by the
// secure hash (same hash => byte-identical signed payload). Duplicates
// are acknowledged with "02" so the gateway stops retrying. The
// reconciliation engine is idempotent on its own; this only saves it
// the work. Deliveries without a hash pass straight through; the
// engine answers those with an invalid-signature ack.
func CallbackDedup(deduper CallbackDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			hash := c.QueryParam("vnp_SecureHash")
			if hash == "" {
				hash = c.FormValue("vnp_SecureHash")
			}
			if hash == "" {
				return next(c)
			}

			isDuplicate, err := deduper.Seen(c.Request().Context(), hash)
			if err != nil {
				return next(c)
			}
			if isDuplicate {
				return c.JSON(http.StatusOK, map[string]string{
					"RspCode": "02",
					"Message": "Order already confirmed",
				})
			}

			return next(c)
		}
	}
}
