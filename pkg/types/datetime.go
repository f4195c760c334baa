package types

import (
	"fmt"
	"strings"
	"time"
)

// User-facing date layouts accepted by ParseUserTime.
const (
	UserDateTimeLayout = "2006-01-02 15:04"
	UserDateLayout     = "2006-01-02"
)

// ParseUserTime parses "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" in loc and
// returns the instant in UTC.
func ParseUserTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{UserDateTimeLayout, UserDateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q (want %s)", ErrValidation, s, UserDateTimeLayout)
}

// FormatUserTime renders t in loc using UserDateTimeLayout.
func FormatUserTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(UserDateTimeLayout)
}
