package ports

import (
	"context"
	"time"
)

type LockRepository interface {
	// Acquire takes the named lock for holder until now+ttl. It succeeds
	// when no row exists or the existing row has expired; reports false
	// when another holder still owns the lock.
	Acquire(ctx context.Context, job string, holder string, ttl time.Duration, now time.Time) (bool, error)
	// Release drops the lock only when holder still owns it.
	Release(ctx context.Context, job string, holder string) error
}

// ProfileSyncer refreshes creator social profiles from the upstream
// platform. Token exchange and the platform API live outside this module.
type ProfileSyncer interface {
	Resync(ctx context.Context) (int, error)
}

type Clock interface {
	Now() time.Time
}
