// Package dates formats and compares the timestamps shown in the back office.
package dates

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Display layouts.
const (
	DateLayout     = "Jan 2, 2006"
	DateTimeLayout = "Jan 2, 2006, 03:04 PM"
	ShortLayout    = "1/2/2006"
)

// Sentinels returned by the formatters.
const (
	NotAvailable = "N/A"
	InvalidDate  = "Invalid Date"
)

// Timestamp is implemented by store-specific time wrappers that can convert
// themselves to a plain time value.
type Timestamp interface {
	AsTime() time.Time
}

// Presence describes the outcome of Normalize.
type Presence int

const (
	Absent Presence = iota
	Invalid
	Present
)

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	ShortLayout,
	DateLayout,
}

// Normalize converts v to a time value. Accepted inputs are time.Time,
// *time.Time, Timestamp, date strings and Unix milliseconds (integers, float64
// and json.Number). Nil, zero times, zero milliseconds and empty strings are
// Absent.
func Normalize(v any) (time.Time, Presence) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, Absent
	case time.Time:
		if t.IsZero() {
			return time.Time{}, Absent
		}
		return t, Present
	case *time.Time:
		if t == nil {
			return time.Time{}, Absent
		}
		return Normalize(*t)
	case Timestamp:
		return Normalize(t.AsTime())
	case string:
		if t == "" {
			return time.Time{}, Absent
		}
		for _, layout := range parseLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, Present
			}
		}
		return time.Time{}, Invalid
	case int64:
		if t == 0 {
			return time.Time{}, Absent
		}
		return time.UnixMilli(t).UTC(), Present
	case int:
		return Normalize(int64(t))
	case float64:
		// encoding/json decodes every number as float64.
		if math.IsNaN(t) || math.IsInf(t, 0) || t > math.MaxInt64 || t < math.MinInt64 {
			return time.Time{}, Invalid
		}
		return Normalize(int64(t))
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, Invalid
		}
		return Normalize(ms)
	default:
		return time.Time{}, Invalid
	}
}

func format(v any, layout string) string {
	t, p := Normalize(v)
	switch p {
	case Absent:
		return NotAvailable
	case Invalid:
		return InvalidDate
	}
	return t.Format(layout)
}

// FormatDate renders v as "Jan 2, 2006".
func FormatDate(v any) string {
	return format(v, DateLayout)
}

// FormatDateTime renders v as "Jan 2, 2006, 03:04 PM".
func FormatDateTime(v any) string {
	return format(v, DateTimeLayout)
}

// FormatRelativeTime describes how long ago v was, relative to the wall clock.
func FormatRelativeTime(v any) string {
	return FormatRelativeTimeAt(v, time.Now())
}

// FormatRelativeTimeAt is FormatRelativeTime with an explicit now.
func FormatRelativeTimeAt(v any, now time.Time) string {
	t, p := Normalize(v)
	switch p {
	case Absent:
		return NotAvailable
	case Invalid:
		return InvalidDate
	}

	seconds := int(now.Sub(t) / time.Second)
	if seconds < 60 {
		return "Just now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return ago(minutes, "minute")
	}
	hours := minutes / 60
	if hours < 24 {
		return ago(hours, "hour")
	}
	days := hours / 24
	if days < 30 {
		return ago(days, "day")
	}
	months := days / 30
	if months < 12 {
		return ago(months, "month")
	}
	return ago(months/12, "year")
}

func ago(n int, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// IsDateInRange reports whether start <= date <= end. Any absent or invalid
// input yields false.
func IsDateInRange(date, start, end any) bool {
	d, ok := present(date)
	if !ok {
		return false
	}
	s, ok := present(start)
	if !ok {
		return false
	}
	e, ok := present(end)
	if !ok {
		return false
	}
	return !d.Before(s) && !d.After(e)
}

// DateRangeString renders "<start> - <end>", or N/A when either bound is absent.
func DateRangeString(start, end any) string {
	if _, p := Normalize(start); p == Absent {
		return NotAvailable
	}
	if _, p := Normalize(end); p == Absent {
		return NotAvailable
	}
	return FormatDate(start) + " - " + FormatDate(end)
}

// AddDays returns t moved forward by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SubtractDays returns t moved back by n calendar days.
func SubtractDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -n)
}

// IsSameDay compares calendar dates, ignoring the time of day. b is converted
// to a's location first.
func IsSameDay(a, b any) bool {
	ta, ok := present(a)
	if !ok {
		return false
	}
	tb, ok := present(b)
	if !ok {
		return false
	}
	tb = tb.In(ta.Location())
	y1, m1, d1 := ta.Date()
	y2, m2, d2 := tb.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Age returns the number of whole years since birth as of today.
func Age(birth any) (int, bool) {
	return AgeAt(birth, time.Now())
}

// AgeAt returns the number of whole years between birth and today. The result
// is one less than the year difference while today precedes the birthday.
func AgeAt(birth any, today time.Time) (int, bool) {
	b, ok := present(birth)
	if !ok {
		return 0, false
	}
	today = today.In(b.Location())
	age := today.Year() - b.Year()
	if today.Month() < b.Month() || (today.Month() == b.Month() && today.Day() < b.Day()) {
		age--
	}
	return age, true
}

func present(v any) (time.Time, bool) {
	t, p := Normalize(v)
	return t, p == Present
}
