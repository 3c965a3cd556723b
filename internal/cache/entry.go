package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached page with its expiry.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewEntry creates an entry stored at now that lives for ttl.
func NewEntry(key string, data json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	return &Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// ExpiredAt reports whether the entry has expired at now.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Remaining returns the time left before expiry at now, never negative.
func (e *Entry) Remaining(now time.Time) time.Duration {
	if d := e.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Decode unmarshals the cached payload into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}
