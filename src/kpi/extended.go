package kpi

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tradeanalytics/src/model"
	"tradeanalytics/src/utils"
)

// NoDay labels weekday statistics of an empty trade set.
const NoDay = "-"

// Extended holds the secondary statistics. Durations are in seconds and only
// trades with a positive recorded duration contribute to them. Weekday ties
// resolve to the earliest day in Monday..Sunday order.
type Extended struct {
	MostActiveDay       string       `json:"mostActiveDay"`
	MostActiveDayCount  int          `json:"mostActiveDayCount"`
	MostActiveDayDates  int          `json:"mostActiveDayDates"`
	LeastActiveDay      string       `json:"leastActiveDay"`
	LeastActiveDayCount int          `json:"leastActiveDayCount"`
	TotalActiveDays     int          `json:"totalActiveDays"`
	AvgTradesPerDay     float64      `json:"avgTradesPerDay"`
	MostProfitableDay   string       `json:"mostProfitableDay"`
	MostProfitablePnL   float64      `json:"mostProfitablePnL"`
	LeastProfitableDay  string       `json:"leastProfitableDay"`
	LeastProfitablePnL  float64      `json:"leastProfitablePnL"`
	TotalLots           int          `json:"totalLots"`
	AvgDuration         float64      `json:"avgDuration"`
	AvgWinDuration      float64      `json:"avgWinDuration"`
	AvgLossDuration     float64      `json:"avgLossDuration"`
	LongCount           int          `json:"longCount"`
	ShortCount          int          `json:"shortCount"`
	LongPercent         float64      `json:"longPercent"`
	BestTrade           *model.Trade `json:"bestTrade"`
	WorstTrade          *model.Trade `json:"worstTrade"`
}

type weekdayStat struct {
	pnl    decimal.Decimal
	trades int
	dates  map[string]struct{}
}

type durationAvg struct {
	total decimal.Decimal
	count int
}

func (d *durationAvg) add(seconds int64) {
	d.total = d.total.Add(decimal.NewFromInt(seconds))
	d.count++
}

func (d durationAvg) mean() float64 {
	if d.count == 0 {
		return 0
	}
	return d.total.Div(decimal.NewFromInt(int64(d.count))).InexactFloat64()
}

// Extend computes the secondary statistics of trades.
func Extend(trades []model.Trade) Extended {
	ext := Extended{
		MostActiveDay:      NoDay,
		LeastActiveDay:     NoDay,
		MostProfitableDay:  NoDay,
		LeastProfitableDay: NoDay,
	}
	if len(trades) == 0 {
		return ext
	}

	stats := make(map[string]*weekdayStat)
	activeDates := make(map[string]struct{})
	var all, wins, losses durationAvg
	best, worst := 0, 0

	for i, t := range trades {
		st, ok := stats[t.DayOfWeek]
		if !ok {
			st = &weekdayStat{dates: make(map[string]struct{})}
			stats[t.DayOfWeek] = st
		}
		st.pnl = st.pnl.Add(decimal.NewFromFloat(t.PnL))
		st.trades++
		st.dates[t.TradeDate] = struct{}{}
		activeDates[t.TradeDate] = struct{}{}

		ext.TotalLots += t.Units()

		if secs := int64(utils.ParseHolding(t.Duration).Seconds()); secs > 0 {
			all.add(secs)
			switch {
			case t.PnL > 0:
				wins.add(secs)
			case t.PnL < 0:
				losses.add(secs)
			}
		}

		switch strings.ToLower(string(t.Direction)) {
		case "long", "buy":
			ext.LongCount++
		case "short", "sell":
			ext.ShortCount++
		}

		if t.PnL > trades[best].PnL {
			best = i
		}
		if t.PnL < trades[worst].PnL {
			worst = i
		}
	}

	var mostProfit, leastProfit decimal.Decimal
	for _, day := range weekdayOrder(stats) {
		st := stats[day]
		if ext.MostActiveDay == NoDay || st.trades > ext.MostActiveDayCount {
			ext.MostActiveDay = day
			ext.MostActiveDayCount = st.trades
			ext.MostActiveDayDates = len(st.dates)
		}
		if ext.LeastActiveDay == NoDay || st.trades < ext.LeastActiveDayCount {
			ext.LeastActiveDay = day
			ext.LeastActiveDayCount = st.trades
		}
		if ext.MostProfitableDay == NoDay || st.pnl.GreaterThan(mostProfit) {
			ext.MostProfitableDay = day
			mostProfit = st.pnl
		}
		if ext.LeastProfitableDay == NoDay || st.pnl.LessThan(leastProfit) {
			ext.LeastProfitableDay = day
			leastProfit = st.pnl
		}
	}
	ext.MostProfitablePnL = mostProfit.InexactFloat64()
	ext.LeastProfitablePnL = leastProfit.InexactFloat64()

	ext.TotalActiveDays = len(activeDates)
	ext.AvgTradesPerDay = decimal.NewFromInt(int64(len(trades))).
		Div(decimal.NewFromInt(int64(ext.TotalActiveDays))).InexactFloat64()
	ext.AvgDuration = all.mean()
	ext.AvgWinDuration = wins.mean()
	ext.AvgLossDuration = losses.mean()
	ext.LongPercent = percent(ext.LongCount, len(trades))

	bestTrade, worstTrade := trades[best], trades[worst]
	ext.BestTrade = &bestTrade
	ext.WorstTrade = &worstTrade

	return ext
}

// weekdayOrder returns the labels present in stats, canonical weekdays
// first and any unrecognised labels after them in sorted order.
func weekdayOrder(stats map[string]*weekdayStat) []string {
	order := make([]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	for _, day := range Weekdays {
		if _, ok := stats[day]; ok {
			order = append(order, day)
			seen[day] = struct{}{}
		}
	}
	var extra []string
	for day := range stats {
		if _, ok := seen[day]; !ok {
			extra = append(extra, day)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
