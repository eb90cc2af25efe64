package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func utc(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func TestSessionOffset(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{name: "january is standard", at: utc(2026, time.January, 15, 12, 0, 0), want: -6},
		{name: "july is daylight", at: utc(2025, time.July, 10, 12, 0, 0), want: -5},
		{name: "one second before spring forward", at: utc(2025, time.March, 9, 7, 59, 59), want: -6},
		{name: "spring forward instant", at: utc(2025, time.March, 9, 8, 0, 0), want: -5},
		{name: "one second before fall back", at: utc(2025, time.November, 2, 6, 59, 59), want: -5},
		{name: "fall back instant", at: utc(2025, time.November, 2, 7, 0, 0), want: -6},
		{name: "2026 spring forward", at: utc(2026, time.March, 8, 8, 0, 0), want: -5},
		{name: "2026 day before spring forward", at: utc(2026, time.March, 7, 12, 0, 0), want: -6},
		{name: "non utc input compares by instant", at: utc(2025, time.March, 9, 8, 0, 0).In(time.FixedZone("JST", 9*3600)), want: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionOffset(tt.at))
		})
	}
}

func TestTradingDay(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{name: "winter 16:59:59 local stays", at: utc(2026, time.January, 15, 22, 59, 59), want: "2026-01-15"},
		{name: "winter 17:00 local rolls", at: utc(2026, time.January, 15, 23, 0, 0), want: "2026-01-16"},
		{name: "summer 16:59:59 local stays", at: utc(2025, time.July, 10, 21, 59, 59), want: "2025-07-10"},
		{name: "summer 17:00 local rolls", at: utc(2025, time.July, 10, 22, 0, 0), want: "2025-07-11"},
		{name: "utc midnight is previous local evening", at: utc(2026, time.January, 16, 0, 30, 0), want: "2026-01-16"},
		{name: "late local evening already next session", at: utc(2026, time.January, 16, 5, 0, 0), want: "2026-01-16"},
		{name: "local morning keeps date", at: utc(2026, time.January, 16, 14, 0, 0), want: "2026-01-16"},
		{name: "month rollover", at: utc(2026, time.January, 31, 23, 15, 0), want: "2026-02-01"},
		{name: "year rollover", at: utc(2025, time.December, 31, 23, 0, 0), want: "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TradingDay(tt.at))
		})
	}
}

func TestTradingDayIdempotentOnLocalMidnight(t *testing.T) {
	for _, day := range []string{"2025-03-09", "2025-03-10", "2025-07-04", "2025-11-02", "2026-01-16", "2026-02-28"} {
		d, err := time.Parse(DateLayout, day)
		assert.NoError(t, err)
		assert.Equal(t, day, TradingDay(FromLocal(d)), day)
	}
}

func TestWeekdayLabel(t *testing.T) {
	assert.Equal(t, "Friday", WeekdayLabel("2026-01-16"))
	assert.Equal(t, "Monday", WeekdayLabel("2026-01-19"))
	assert.Equal(t, "Sunday", WeekdayLabel("2025-03-09"))
	assert.Equal(t, "", WeekdayLabel("16/01/2026"))
	assert.Equal(t, "", WeekdayLabel(""))

	// a Thursday 17:30 local execution belongs to Friday's session
	assert.Equal(t, "Friday", WeekdayLabel(TradingDay(utc(2026, time.January, 15, 23, 30, 0))))
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, "2026-01-12", WeekStart("2026-01-18"))
	assert.Equal(t, "2026-01-12", WeekStart("2026-01-12"))
	assert.Equal(t, "2026-01-12", WeekStart("2026-01-16"))
	assert.Equal(t, "2025-12-29", WeekStart("2026-01-01"))
	assert.Equal(t, "", WeekStart("bad"))
}

func TestFromLocal(t *testing.T) {
	assert.Equal(t, utc(2026, time.February, 10, 14, 30, 0), FromLocal(utc(2026, time.February, 10, 8, 30, 0)))
	assert.Equal(t, utc(2025, time.July, 10, 13, 30, 0), FromLocal(utc(2025, time.July, 10, 8, 30, 0)))
	// ambiguous fall back hour resolves to daylight time
	assert.Equal(t, utc(2025, time.November, 2, 6, 30, 0), FromLocal(utc(2025, time.November, 2, 1, 30, 0)))

	local := Local(utc(2025, time.July, 10, 13, 30, 0))
	assert.Equal(t, 8, local.Hour())
	assert.Equal(t, "CDT", local.Location().String())
}
