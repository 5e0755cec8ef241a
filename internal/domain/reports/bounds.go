package reports

import (
	"fmt"
	"strings"
	"time"

	"stockledger/internal/core/apperror"
)

// DefaultRangeDays is the length of the default report range, today included.
const DefaultRangeDays = 30

const dateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseBound parses a range bound in loc. A date without time is normalized to the
// start of the day, or to 23:59:59 when end is true. Bounds with a time are used as given.
func ParseBound(s string, end bool, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		if end {
			return endOfDay(d), nil
		}
		return d, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.NewValidation(fmt.Sprintf("invalid date %q", s)).WithDetail("value", s)
}

// DefaultRange is [now-29 days 00:00:00, today 23:59:59] in loc.
func DefaultRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	today := startOfDay(now.In(loc))
	return today.AddDate(0, 0, -(DefaultRangeDays - 1)), endOfDay(today)
}

// ResolveRange applies defaults to missing bounds and validates the order.
func ResolveRange(from, to string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	defFrom, defTo := DefaultRange(now, loc)

	start, end := defFrom, defTo
	var err error
	if strings.TrimSpace(from) != "" {
		if start, err = ParseBound(from, false, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if strings.TrimSpace(to) != "" {
		if end, err = ParseBound(to, true, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, apperror.NewValidation("from must not be after to").
			WithDetail("from", start).WithDetail("to", end)
	}
	return start, end, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
