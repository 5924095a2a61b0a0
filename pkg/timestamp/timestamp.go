// Package timestamp provides standardized Unix timestamp handling utilities.
//
// The messaging API reports message creation times as integer epoch seconds
// (UTC). This package uses int64 seconds as the canonical format so message
// timestamps never pass through lossy float conversions or string parsing
// scattered across the codebase.
//
// Zero Value Semantics:
//   - A timestamp value of 0 means "not set" or "unknown"
//   - Functions handle zero values gracefully, returning appropriate defaults
package timestamp

import (
	"strconv"
	"time"
)

// SecondsPerHour is the histogram bucket width used by stats aggregation.
const SecondsPerHour = 3600

// HoursPerDay is the number of hour-of-day buckets.
const HoursPerDay = 24

// Now returns the current time as Unix seconds.
func Now() int64 {
	return time.Now().Unix()
}

// ToTime converts Unix seconds to time.Time.
// Returns zero time if the timestamp is 0.
func ToTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// Format converts Unix seconds to an RFC3339 string for display.
// Returns "-" if the timestamp is 0, matching table rendering conventions.
func Format(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// HourBucket returns the UTC hour-of-day bucket (0-23) for a timestamp.
// The second return value is false when the timestamp is unset, letting
// callers skip the item rather than miscounting it into bucket 0.
func HourBucket(sec int64) (int, bool) {
	if sec <= 0 {
		return 0, false
	}
	return int((sec / SecondsPerHour) % HoursPerDay), true
}

// Parse converts various timestamp representations to Unix seconds.
// Supports:
//   - int64/int/float64 epoch seconds (JSON numbers decode as float64)
//   - string epoch seconds or RFC3339
//   - time.Time
//   - nil (returns 0)
//
// Returns 0 for invalid input.
func Parse(input any) int64 {
	if input == nil {
		return 0
	}

	switch v := input.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case time.Time:
		if v.IsZero() {
			return 0
		}
		return v.Unix()
	case string:
		if v == "" {
			return 0
		}
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			return sec
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.Unix()
		}
		return 0
	default:
		return 0
	}
}
