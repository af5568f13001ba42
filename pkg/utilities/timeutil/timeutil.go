package timeutil

import (
	"time"
)

// TimeUTC is Unix time in seconds, always UTC.
type TimeUTC struct {
	T int64 `json:"t"`
}

func NowUTC() TimeUTC {
	return TimeUTC{T: time.Now().UTC().Unix()}
}

func (t TimeUTC) Time() time.Time {
	return time.Unix(t.T, 0).UTC()
}

func (t TimeUTC) After(other TimeUTC) bool { return t.T > other.T }
