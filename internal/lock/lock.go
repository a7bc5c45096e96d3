// Package lock serializes work on a single resource across requests and,
// with Redis, across instances.
package lock

import (
	"context"
	"errors"
	"time"
)

var ErrNotAcquired = errors.New("lock_not_acquired")

// Locker blocks until key is held or ctx ends. The returned release must be
// called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

const (
	DefaultTTL     = 30 * time.Second
	DefaultTimeout = 10 * time.Second
)

// MaLoDraftKey is the lock key shared by manual edits and activation.
func MaLoDraftKey(maloDraftID string) string {
	return "onboarding:malo-draft:" + maloDraftID
}
