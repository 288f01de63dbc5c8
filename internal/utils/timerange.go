// Package utils holds small shared helpers with no service dependencies.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseTime accepts RFC3339 timestamps, plain dates and relative phrases
// ("now", "today", "yesterday", "N days ago", "N hours ago"). now anchors the
// relative phrases so callers and tests stay deterministic.
func ParseTime(value string, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(strings.ToLower(value))
	switch v {
	case "":
		return time.Time{}, fmt.Errorf("empty time value")
	case "now":
		return now, nil
	case "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}

	var n int
	if _, err := fmt.Sscanf(v, "%d days ago", &n); err == nil && strings.HasSuffix(v, "days ago") {
		return midnight(now).AddDate(0, 0, -n), nil
	}
	if _, err := fmt.Sscanf(v, "%d day ago", &n); err == nil && strings.HasSuffix(v, "day ago") {
		return midnight(now).AddDate(0, 0, -n), nil
	}
	if _, err := fmt.Sscanf(v, "%d hours ago", &n); err == nil && strings.HasSuffix(v, "hours ago") {
		return now.Add(-time.Duration(n) * time.Hour), nil
	}
	if _, err := fmt.Sscanf(v, "%d hour ago", &n); err == nil && strings.HasSuffix(v, "hour ago") {
		return now.Add(-time.Duration(n) * time.Hour), nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time value: %s", value)
}

// ParsePeriod resolves a named period or an explicit start/end pair into a
// half-open [start, end) interval. Named periods: today, yesterday,
// this_week, last_week, last_7_days, last_30_days, this_month.
func ParsePeriod(period, startValue, endValue string, now time.Time) (time.Time, time.Time, error) {
	switch strings.TrimSpace(strings.ToLower(period)) {
	case "today":
		start := midnight(now)
		return start, start.AddDate(0, 0, 1), nil
	case "yesterday":
		start := midnight(now).AddDate(0, 0, -1)
		return start, start.AddDate(0, 0, 1), nil
	case "this_week":
		start := weekStart(now)
		return start, start.AddDate(0, 0, 7), nil
	case "last_week":
		start := weekStart(now).AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, 7), nil
	case "last_7_days":
		return midnight(now).AddDate(0, 0, -7), now, nil
	case "last_30_days":
		return midnight(now).AddDate(0, 0, -30), now, nil
	case "this_month":
		y, m, _ := now.UTC().Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	case "":
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period: %s", period)
	}

	if startValue == "" || endValue == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("period or explicit start and end required")
	}
	start, err := ParseTime(startValue, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseTime(endValue, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end must be after start")
	}
	return start, end, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekStart is the most recent Monday midnight UTC.
func weekStart(t time.Time) time.Time {
	day := midnight(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
