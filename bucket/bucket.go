// Package bucket derives the weekly time buckets that scope roast records,
// their indexes and the retention sweep.
//
// A bucket id is the ISO-8601 week of an instant in UTC formatted as
// "{isoYear}-{week:02d}". Week 1 is the week containing the year's first
// Thursday, so the last days of December can belong to week 1 of the next
// year (2024-12-31 is "2025-01").
package bucket

import (
	"fmt"
	"strconv"
	"time"
)

// Week is the span of a single bucket.
const Week = 7 * 24 * time.Hour

// ID returns the bucket id of t.
func ID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// PreviousID returns the bucket id of the instant exactly one week before t.
func PreviousID(t time.Time) string {
	return ID(t.Add(-Week))
}

// Parse validates a bucket id and returns its parts.
func Parse(id string) (year, week int, ok bool) {
	if len(id) != 7 || id[4] != '-' {
		return 0, 0, false
	}
	year, err := strconv.Atoi(id[:4])
	if err != nil {
		return 0, 0, false
	}
	week, err = strconv.Atoi(id[5:])
	if err != nil || week < 1 || week > 53 {
		return 0, 0, false
	}
	return year, week, true
}

// Retained reports whether id is the current or the previous bucket of now.
func Retained(id string, now time.Time) bool {
	return id == ID(now) || id == PreviousID(now)
}
