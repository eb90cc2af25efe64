// Package calendar assigns CME trading days using U.S. Central exchange time.
// The DST rule is computed directly so results do not depend on the host
// timezone database.
package calendar

import (
	"time"
)

const (
	DateLayout = "2006-01-02"

	StandardOffset = -6
	DaylightOffset = -5

	// SessionCutoverHour is the local hour at which the next trading day starts.
	SessionCutoverHour = 17

	DaysPerWeek        = 7
	SecondSundayOffset = 1
	FirstSundayOffset  = 0

	// dstSwitchHour is the local wall-clock hour of both DST transitions.
	dstSwitchHour = 2
)

var (
	standardZone = time.FixedZone("CST", StandardOffset*3600)
	daylightZone = time.FixedZone("CDT", DaylightOffset*3600)
)

// SessionOffset returns the UTC offset in hours (-5 or -6) in effect at t.
func SessionOffset(t time.Time) int {
	u := t.UTC()
	year := u.Year()

	// 02:00 CST on the second Sunday of March, 02:00 CDT on the first Sunday of November.
	dstStart := specificSunday(year, time.March, SecondSundayOffset).
		Add(time.Duration(dstSwitchHour-StandardOffset) * time.Hour)
	dstEnd := specificSunday(year, time.November, FirstSundayOffset).
		Add(time.Duration(dstSwitchHour-DaylightOffset) * time.Hour)

	if !u.Before(dstStart) && u.Before(dstEnd) {
		return DaylightOffset
	}
	return StandardOffset
}

// Local returns t expressed in exchange wall-clock time.
func Local(t time.Time) time.Time {
	if SessionOffset(t) == DaylightOffset {
		return t.In(daylightZone)
	}
	return t.In(standardZone)
}

// TradingDay returns the YYYY-MM-DD session date of t. Instants at or after
// 17:00 local belong to the next calendar date.
func TradingDay(t time.Time) string {
	local := Local(t)
	if local.Hour() >= SessionCutoverHour {
		local = local.AddDate(0, 0, 1)
	}
	return local.Format(DateLayout)
}

// WeekdayLabel returns the English weekday name of a YYYY-MM-DD date, or ""
// when day does not parse.
func WeekdayLabel(day string) string {
	d, err := time.Parse(DateLayout, day)
	if err != nil {
		return ""
	}
	return d.Weekday().String()
}

// WeekStart returns the Monday of the week containing day.
func WeekStart(day string) string {
	d, err := time.Parse(DateLayout, day)
	if err != nil {
		return ""
	}
	back := (int(d.Weekday()) - int(time.Monday) + DaysPerWeek) % DaysPerWeek
	return d.AddDate(0, 0, -back).Format(DateLayout)
}

// FromLocal interprets the wall-clock fields of wall as exchange local time
// and returns the absolute instant. Readings inside the fall-back hour
// resolve to daylight time.
func FromLocal(wall time.Time) time.Time {
	naive := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)

	asDaylight := naive.Add(-DaylightOffset * time.Hour)
	if SessionOffset(asDaylight) == DaylightOffset {
		return asDaylight
	}
	return naive.Add(-StandardOffset * time.Hour)
}

// specificSunday returns midnight UTC of the nth (zero based) Sunday of month.
func specificSunday(year int, month time.Month, sundayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Sunday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+sundayOffset*DaysPerWeek)
}
