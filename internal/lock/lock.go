// Package lock serializes group-mutating operations per room.
package lock

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a room lock could not be acquired within
// the configured wait.
var ErrLockTimeout = errors.New("room lock wait timed out")

// Locker grants exclusive access to one room. The returned unlock func is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, roomID int64) (unlock func(), err error)
}
