package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order when decoding a Timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is an optional point in time. Values that are missing or cannot
// be parsed decode as invalid instead of failing the surrounding payload.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NewTimestamp wraps t as a valid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// ParseTimestamp parses s with the known layouts or as epoch milliseconds.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t)
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewTimestamp(time.UnixMilli(ms).UTC())
	}
	return Timestamp{}
}

// UnixMilli returns the timestamp as epoch milliseconds.
func (t Timestamp) UnixMilli() (int64, bool) {
	if !t.Valid {
		return 0, false
	}
	return t.Time.UnixMilli(), true
}

// UnmarshalJSON accepts strings, epoch-millisecond numbers and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = Timestamp{}
			return nil //nolint:nilerr // malformed dates render as N/A
		}
		*t = ParseTimestamp(s)
		return nil
	}
	*t = ParseTimestamp(string(data))
	return nil
}

// MarshalJSON writes RFC 3339 or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
