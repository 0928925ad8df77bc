package entities

import "time"

// CronLock is the mutual-exclusion row for a named job. A lock whose
// expiry has passed is stealable: the TTL is the recovery path for a
// holder that died without releasing.
type CronLock struct {
	Job       string
	Holder    string
	ExpiresAt time.Time
}

func (l CronLock) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
