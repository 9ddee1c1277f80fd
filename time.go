package remit

import (
	"encoding/json"
	"math"
	"time"

	"github.com/iov-one/remit/errors"
)

// UnixTime is a point in time with a precision of one second. Deadlines
// are stored and compared as UnixTime, never with nanoseconds.
type UnixTime int64

// AsUnixTime truncates t to seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Time returns the moment in UTC.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add moves the time by d, truncated to whole seconds.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AddSeconds moves the time by offset seconds. It fails instead of
// wrapping around.
func (t UnixTime) AddSeconds(offset int64) (UnixTime, error) {
	if offset > 0 && int64(t) > math.MaxInt64-offset {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d seconds", t, offset)
	}
	if offset < 0 && int64(t) < math.MinInt64-offset {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d - %d seconds", t, -offset)
	}
	return t + UnixTime(offset), nil
}

// UnmarshalJSON accepts both a number of seconds and an RFC3339 string.
// Genesis files are easier to write with the latter.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err != nil {
		var std time.Time
		if err := json.Unmarshal(raw, &std); err != nil {
			return errors.Wrap(errors.ErrInput, "invalid time format")
		}
		unix = std.Unix()
	}
	if unix < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = UnixTime(unix)
	return nil
}

// Validate rejects times before the epoch.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().String()
}

// IsExpired reports whether t is before the block time. A deadline equal to
// the block time has not expired yet.
//
// IsExpired panics if the context carries no block time.
func IsExpired(ctx Context, t UnixTime) bool {
	return t < MustBlockTime(ctx)
}
