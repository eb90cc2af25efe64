package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"tradeanalytics/src/calendar"
)

// Parsed carries a value read from a broker field. Defaulted is set when the
// field was empty or malformed and Value holds the safe default instead.
type Parsed[T any] struct {
	Value     T
	Defaulted bool
}

func valid[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v}
}

func defaulted[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v, Defaulted: true}
}

// MaxQuantity is the largest contract count accepted from one row. Larger
// readings are treated as unreadable.
const MaxQuantity = 10000

// Epoch is the default instant for unreadable timestamps.
var Epoch = time.Unix(0, 0).UTC()

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParsePrice reads a decimal amount, ignoring "$" and thousands separators.
// Malformed input, NaN and infinities default to 0.
func ParsePrice(s string) Parsed[float64] {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return defaulted(0.0)
	}
	return valid(v)
}

// ParseQuantity reads a positive contract count. Fractional input is
// truncated; anything below one or above MaxQuantity defaults to 1.
func ParseQuantity(s string) Parsed[int] {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= MaxQuantity {
			return valid(n)
		}
		return defaulted(1)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f <= MaxQuantity {
		return valid(int(f))
	}
	return defaulted(1)
}

// ParsePnL reads a signed currency amount in broker notation:
// "$100.00", "$(15.00)", "-15", "1,234.50". A lone "-" is zero.
func ParsePnL(s string) Parsed[float64] {
	s = strings.TrimSpace(s)
	if s == "-" {
		return valid(0.0)
	}
	negative := false
	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		negative = true
		s = strings.NewReplacer("(", "", ")", "").Replace(s)
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	p := ParsePrice(s)
	if p.Defaulted {
		return p
	}
	if negative {
		p.Value = -p.Value
	}
	return p
}

// ParseTimestamp reads an ISO-8601 instant or a "MM/DD/YYYY HH:mm:ss" broker
// reading. Readings without a zone are exchange local time. Unreadable input
// defaults to the Unix epoch.
func ParseTimestamp(s string) Parsed[time.Time] {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaulted(Epoch)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return valid(t.UTC())
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return valid(calendar.FromLocal(t))
		}
	}
	if t, good := parseBrokerTime(s); good {
		return valid(calendar.FromLocal(t))
	}
	return defaulted(Epoch)
}

// parseBrokerTime handles "1/2/26 9:05:00" style readings with optional
// AM/PM marker. Missing time components are zero.
func parseBrokerTime(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	date := strings.Split(fields[0], "/")
	if len(date) != 3 {
		return time.Time{}, false
	}
	month, errM := strconv.Atoi(date[0])
	day, errD := strconv.Atoi(date[1])
	year, errY := strconv.Atoi(date[2])
	if errM != nil || errD != nil || errY != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}

	var clock [3]int
	if len(fields) > 1 {
		for i, part := range strings.SplitN(fields[1], ":", 3) {
			if f, err := strconv.ParseFloat(part, 64); err == nil {
				clock[i] = int(f)
			}
		}
	}
	if len(fields) > 2 {
		switch strings.ToUpper(fields[2]) {
		case "PM":
			if clock[0] < 12 {
				clock[0] += 12
			}
		case "AM":
			if clock[0] == 12 {
				clock[0] = 0
			}
		}
	}

	return time.Date(year, time.Month(month), day, clock[0], clock[1], clock[2], 0, time.UTC), true
}
