package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*hr`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*min`)
	secondsPattern = regexp.MustCompile(`(\d+)\s*sec`)
)

// FormatHolding renders d as "Xhr Ymin Zsec" with zero units dropped.
// Sub-second remainders are truncated and the floor is "0sec".
func FormatHolding(d time.Duration) string {
	return formatUnits(d, "hr", "min", "sec", "")
}

// FormatHoldingLong renders d as "X hr Y min Z sec" for reports.
func FormatHoldingLong(d time.Duration) string {
	return formatUnits(d, "hr", "min", "sec", " ")
}

func formatUnits(d time.Duration, hr, min, sec, sep string) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+sep+hr)
	}
	if minutes > 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+sep+min)
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, strconv.FormatInt(seconds, 10)+sep+sec)
	}
	return strings.Join(parts, " ")
}

// ParseHolding reads back a duration written by FormatHolding or a broker
// export ("1hr 5min", "45 sec"). Unrecognised text yields zero.
func ParseHolding(s string) time.Duration {
	var total time.Duration
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Hour
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Minute
	}
	if m := secondsPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Second
	}
	return total
}
