package lock

import (
	"context"
	"sync"
	"time"
)

type roomLock struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is a keyed mutex for a single process. Entries are dropped once
// no goroutine holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	rooms map[int64]*roomLock
	wait  time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		rooms: map[int64]*roomLock{},
		wait:  wait,
	}
}

func (l *LocalLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	l.mu.Lock()
	rl, ok := l.rooms[roomID]
	if !ok {
		rl = &roomLock{ch: make(chan struct{}, 1)}
		l.rooms[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	if l.wait <= 0 {
		select {
		case rl.ch <- struct{}{}:
			return l.unlocker(roomID, rl), nil
		default:
			l.drop(roomID, rl)
			return nil, ErrLockTimeout
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	select {
	case rl.ch <- struct{}{}:
	case <-waitCtx.Done():
		l.drop(roomID, rl)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrLockTimeout
	}

	return l.unlocker(roomID, rl), nil
}

func (l *LocalLocker) unlocker(roomID int64, rl *roomLock) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-rl.ch
			l.drop(roomID, rl)
		})
	}
}

func (l *LocalLocker) drop(roomID int64, rl *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl.refs--
	if rl.refs == 0 {
		delete(l.rooms, roomID)
	}
}

// Held reports how many rooms currently have holders or waiters.
func (l *LocalLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
