package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradeanalytics/src/calendar"
	"tradeanalytics/src/model"
)

// Weekdays is the canonical reporting order.
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

type DailySummary struct {
	Date          string  `json:"date"`
	PnL           float64 `json:"pnl"`
	CumulativePnL float64 `json:"cumulativePnL"`
	TradeCount    int     `json:"tradeCount"`
	WinRate       float64 `json:"winRate"`
	Commission    float64 `json:"commission"`
	NetPnL        float64 `json:"netPnL"`
}

type WeeklySummary struct {
	WeekStart     string  `json:"weekStart"`
	PnL           float64 `json:"pnl"`
	CumulativePnL float64 `json:"cumulativePnL"`
	TradeCount    int     `json:"tradeCount"`
	WinRate       float64 `json:"winRate"`
	Commission    float64 `json:"commission"`
	NetPnL        float64 `json:"netPnL"`
}

type WeekdaySummary struct {
	Day        string  `json:"day"`
	PnL        float64 `json:"pnl"`
	TradeCount int     `json:"tradeCount"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"winRate"`
	AvgPnL     float64 `json:"avgPnL"`
	Commission float64 `json:"commission"`
}

// bucket accumulates one group of trades.
type bucket struct {
	key        string
	trades     []model.Trade
	pnl        decimal.Decimal
	commission decimal.Decimal
}

func (b *bucket) add(t model.Trade) {
	b.trades = append(b.trades, t)
	b.pnl = b.pnl.Add(decimal.NewFromFloat(t.PnL))
	b.commission = b.commission.Add(decimal.NewFromFloat(t.Commission))
}

// groupSorted buckets trades by key and returns the buckets in ascending key
// order.
func groupSorted(trades []model.Trade, key func(model.Trade) string) []*bucket {
	byKey := make(map[string]*bucket)
	for _, t := range trades {
		k := key(t)
		b, ok := byKey[k]
		if !ok {
			b = &bucket{key: k}
			byKey[k] = b
		}
		b.add(t)
	}

	out := make([]*bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Daily groups trades by trading day, ascending, with a running cumulative
// P/L.
func Daily(trades []model.Trade) []DailySummary {
	buckets := groupSorted(trades, func(t model.Trade) string { return t.TradeDate })
	out := make([]DailySummary, 0, len(buckets))
	cumulative := decimal.Zero
	for _, b := range buckets {
		cumulative = cumulative.Add(b.pnl)
		out = append(out, DailySummary{
			Date:          b.key,
			PnL:           b.pnl.InexactFloat64(),
			CumulativePnL: cumulative.InexactFloat64(),
			TradeCount:    len(b.trades),
			WinRate:       Summarize(b.trades).WinRate,
			Commission:    b.commission.InexactFloat64(),
			NetPnL:        b.pnl.Sub(b.commission).InexactFloat64(),
		})
	}
	return out
}

// Weekly groups trades by the Monday of their trading day's week.
func Weekly(trades []model.Trade) []WeeklySummary {
	buckets := groupSorted(trades, func(t model.Trade) string { return calendar.WeekStart(t.TradeDate) })
	out := make([]WeeklySummary, 0, len(buckets))
	cumulative := decimal.Zero
	for _, b := range buckets {
		cumulative = cumulative.Add(b.pnl)
		out = append(out, WeeklySummary{
			WeekStart:     b.key,
			PnL:           b.pnl.InexactFloat64(),
			CumulativePnL: cumulative.InexactFloat64(),
			TradeCount:    len(b.trades),
			WinRate:       Summarize(b.trades).WinRate,
			Commission:    b.commission.InexactFloat64(),
			NetPnL:        b.pnl.Sub(b.commission).InexactFloat64(),
		})
	}
	return out
}

// DayOfWeek groups trades by weekday label in Monday..Sunday order. Days
// without trades are omitted.
func DayOfWeek(trades []model.Trade) []WeekdaySummary {
	byDay := make(map[string]*bucket, len(Weekdays))
	for _, t := range trades {
		b, ok := byDay[t.DayOfWeek]
		if !ok {
			b = &bucket{key: t.DayOfWeek}
			byDay[t.DayOfWeek] = b
		}
		b.add(t)
	}

	out := make([]WeekdaySummary, 0, len(byDay))
	for _, day := range Weekdays {
		b, ok := byDay[day]
		if !ok {
			continue
		}
		s := Summarize(b.trades)
		out = append(out, WeekdaySummary{
			Day:        day,
			PnL:        b.pnl.InexactFloat64(),
			TradeCount: s.TotalTrades,
			Wins:       s.WinCount,
			Losses:     s.LossCount,
			WinRate:    s.WinRate,
			AvgPnL:     s.AvgPnL,
			Commission: b.commission.InexactFloat64(),
		})
	}
	return out
}
