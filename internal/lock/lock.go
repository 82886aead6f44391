// Package lock provides the advisory lock that serializes document mutations across
// processes sharing one store.
package lock

import (
	"context"
	"errors"
)

// ErrTimeout is returned when the lock could not be taken before the wait timeout.
var ErrTimeout = errors.New("timed out waiting for document lock")

// Locker grants exclusive access to a key. The returned release func must be called
// exactly once; it never fails loudly since an expired lock is released by its TTL.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Noop is used when only one process writes the document.
type Noop struct{}

func (Noop) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
