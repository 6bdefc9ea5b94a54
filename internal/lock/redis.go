package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ======================================================
// Lock distribuído por unidade (SetNX + TTL)
// ======================================================

// ErrNotAcquired: alguém segura o lock e as tentativas acabaram.
// O chamador pode repetir a operação inteira.
var ErrNotAcquired = errors.New("lock: not acquired")

const (
	defaultTTL     = 10 * time.Second
	defaultRetries = 20
	defaultBackoff = 50 * time.Millisecond
)

// libera somente se o token ainda é nosso
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`

type Locker struct {
	rdb     *redis.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

func New(rdb *redis.Client) *Locker {
	return &Locker{
		rdb:     rdb,
		ttl:     defaultTTL,
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
}

func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func ApartmentKey(apartmentID uint) string {
	return fmt.Sprintf("lock:apartment:%d", apartmentID)
}

func BookingKey(bookingID uint) string {
	return fmt.Sprintf("lock:booking:%d", bookingID)
}

// Acquire tenta pegar o lock com retry e devolve a função de release.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	for attempt := 0; attempt < l.retries; attempt++ {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}

		if ok {
			release := func() {
				if err := l.rdb.Eval(
					context.Background(),
					releaseScript,
					[]string{key},
					token,
				).Err(); err != nil && err != redis.Nil {
					log.Printf("lock release failed for %s: %v", key, err)
				}
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}

	return nil, ErrNotAcquired
}
