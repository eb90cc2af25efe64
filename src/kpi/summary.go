// Package kpi computes performance statistics over a finished trade set.
// Every function accepts an empty slice and returns a zero-valued result.
package kpi

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"tradeanalytics/src/model"
)

var hundred = decimal.NewFromInt(100)

// ProfitFactor is gross wins over gross losses. It is +Inf when there are
// wins and no losses and encodes as the JSON string "Infinity" in that case.
type ProfitFactor float64

func (p ProfitFactor) IsInf() bool {
	return math.IsInf(float64(p), 1)
}

func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.IsInf() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(p))
}

func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*p = ProfitFactor(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = ProfitFactor(f)
	return nil
}

// Summary holds the headline statistics. AvgLoss is a positive magnitude,
// MaxLoss the most negative single P/L.
type Summary struct {
	TotalTrades          int          `json:"totalTrades"`
	WinCount             int          `json:"winCount"`
	LossCount            int          `json:"lossCount"`
	EvenCount            int          `json:"evenCount"`
	WinRate              float64      `json:"winRate"`
	TotalPnL             float64      `json:"totalPnL"`
	NetPnL               float64      `json:"netPnL"`
	TotalCommission      float64      `json:"totalCommission"`
	AvgWin               float64      `json:"avgWin"`
	AvgLoss              float64      `json:"avgLoss"`
	ProfitFactor         ProfitFactor `json:"profitFactor"`
	MaxWin               float64      `json:"maxWin"`
	MaxLoss              float64      `json:"maxLoss"`
	MaxConsecutiveWins   int          `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses int          `json:"maxConsecutiveLosses"`
	AvgPnL               float64      `json:"avgPnL"`
}

// Streak holds the longest winning and losing runs.
type Streak struct {
	MaxWins   int `json:"maxWins"`
	MaxLosses int `json:"maxLosses"`
}

// Summarize computes the headline statistics of trades.
func Summarize(trades []model.Trade) Summary {
	if len(trades) == 0 {
		return Summary{}
	}

	var (
		total, commission   decimal.Decimal
		grossWin, grossLoss decimal.Decimal
		maxWin, maxLoss     decimal.Decimal
		winCount, lossCount int
	)

	for _, t := range trades {
		pnl := decimal.NewFromFloat(t.PnL)
		total = total.Add(pnl)
		commission = commission.Add(decimal.NewFromFloat(t.Commission))

		switch pnl.Sign() {
		case 1:
			if winCount == 0 || pnl.GreaterThan(maxWin) {
				maxWin = pnl
			}
			winCount++
			grossWin = grossWin.Add(pnl)
		case -1:
			if lossCount == 0 || pnl.LessThan(maxLoss) {
				maxLoss = pnl
			}
			lossCount++
			grossLoss = grossLoss.Add(pnl.Abs())
		}
	}

	n := decimal.NewFromInt(int64(len(trades)))
	streak := Streaks(trades)

	s := Summary{
		TotalTrades:          len(trades),
		WinCount:             winCount,
		LossCount:            lossCount,
		EvenCount:            len(trades) - winCount - lossCount,
		WinRate:              percent(winCount, len(trades)),
		TotalPnL:             total.InexactFloat64(),
		NetPnL:               total.Sub(commission).InexactFloat64(),
		TotalCommission:      commission.InexactFloat64(),
		MaxWin:               maxWin.InexactFloat64(),
		MaxLoss:              maxLoss.InexactFloat64(),
		MaxConsecutiveWins:   streak.MaxWins,
		MaxConsecutiveLosses: streak.MaxLosses,
		AvgPnL:               total.Div(n).InexactFloat64(),
	}
	if winCount > 0 {
		s.AvgWin = grossWin.Div(decimal.NewFromInt(int64(winCount))).InexactFloat64()
	}
	if lossCount > 0 {
		s.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(lossCount))).InexactFloat64()
	}

	switch {
	case grossLoss.IsPositive():
		s.ProfitFactor = ProfitFactor(grossWin.Div(grossLoss).InexactFloat64())
	case grossWin.IsPositive():
		s.ProfitFactor = ProfitFactor(math.Inf(1))
	}

	return s
}

// Streaks scans trades in order. A breakeven trade resets both runs.
func Streaks(trades []model.Trade) Streak {
	var s Streak
	wins, losses := 0, 0
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			wins++
			losses = 0
			s.MaxWins = max(s.MaxWins, wins)
		case t.PnL < 0:
			losses++
			wins = 0
			s.MaxLosses = max(s.MaxLosses, losses)
		default:
			wins, losses = 0, 0
		}
	}
	return s
}

// percent returns part/whole*100 without binary rounding noise.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).InexactFloat64()
}
