package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "opinion:room-lock:"
	minPollBackoff = 10 * time.Millisecond
	maxPollBackoff = 250 * time.Millisecond
)

// releaseScript deletes the key only when it still holds our token, so an
// expired lock taken over by another owner is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry out only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker holds room locks across processes with SET NX PX. The TTL
// bounds how long a crashed holder blocks the room; a live holder keeps
// renewing it every TTL/3 until unlock, so oracle calls longer than the TTL
// stay covered.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

func (l *RedisLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	key := keyPrefix + strconv.FormatInt(roomID, 10)
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	backoff := minPollBackoff
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire room lock: %w", err)
		}
		if ok {
			break
		}
		if l.wait <= 0 || time.Now().Add(backoff).After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxPollBackoff)
	}

	// Renewal outlives ctx; only unlock stops it.
	renewCtx, stopRenew := context.WithCancel(context.WithoutCancel(ctx))
	renewDone := make(chan struct{})
	go func() {
		defer close(renewDone)
		l.renew(renewCtx, key, token, roomID)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopRenew()
			<-renewDone

			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				slog.ErrorContext(releaseCtx, "failed to release room lock", "room_id", roomID, "error", err)
			}
		})
	}, nil
}

func (l *RedisLocker) renew(ctx context.Context, key, token string, roomID int64) {
	interval := l.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		extended, err := extendScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int64()
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			// Transient; the remaining TTL leaves room for the next tick.
			slog.WarnContext(ctx, "failed to extend room lock", "room_id", roomID, "error", err)
		case extended == 0:
			slog.ErrorContext(ctx, "room lock lost before unlock", "room_id", roomID)
			return
		}
	}
}
