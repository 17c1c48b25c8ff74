// Package throttle implements the per-identifier login lockout: failures are
// counted inside a window and, past a threshold, the identifier is locked
// for an exponentially growing period.
package throttle

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type LoginThrottle interface {
	// Locked reports the remaining lock time, zero when the identifier may try.
	Locked(ctx context.Context, id string) (time.Duration, error)
	// Fail records a failed attempt and returns the lock it triggered, if any.
	Fail(ctx context.Context, id string) (time.Duration, error)
	// Reset clears the identifier after a successful login.
	Reset(ctx context.Context, id string) error
}

type Policy struct {
	Threshold int
	Base      time.Duration
	Max       time.Duration
	Window    time.Duration
}

// LockFor returns how long to lock after the given number of failures:
// Base at the threshold, doubling per further failure, capped at Max.
func (p Policy) LockFor(failures int64) time.Duration {
	if p.Threshold <= 0 || failures < int64(p.Threshold) {
		return 0
	}
	d := p.Base
	for i := int64(p.Threshold); i < failures; i++ {
		d *= 2
		if d >= p.Max || d <= 0 {
			return p.Max
		}
	}
	if d > p.Max {
		return p.Max
	}
	return d
}

// Key normalizes a login identifier so "Alice" and "alice " share state.
func Key(login string) string {
	return "name:" + strings.ToLower(strings.TrimSpace(login))
}

// AccountKey identifies a resolved account, whichever login named it.
func AccountKey(userID int64) string {
	return "account:" + strconv.FormatInt(userID, 10)
}
