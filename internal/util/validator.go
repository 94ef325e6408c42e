package util

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,          // 2025-01-01T00:00:00+07:00
	"2006-01-02T15:04:05", // 2025-01-01T00:00:00
	"2006-01-02",          // 2025-01-01
	"2006/01/02",          // 2025/01/01
}

// ParseDate accepts the date shapes spreadsheets and JSON clients send.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ValidateDate checks a strict YYYY-MM-DD date.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}
