// Package export writes the trade set and its summaries as CSV sheets:
// trades, daily summary and key figures.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tradeanalytics/src/kpi"
	"tradeanalytics/src/model"
)

const (
	TradesFile  = "trades.csv"
	DailyFile   = "daily_summary.csv"
	SummaryFile = "kpi.csv"
)

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteTrades writes one row per trade.
func WriteTrades(w io.Writer, trades []model.Trade) error {
	rows := [][]string{{"#", "Symbol", "Qty", "Entry", "Exit", "P/L", "Commission", "Bought", "Sold", "Duration", "Trade Date", "Direction"}}
	for _, t := range trades {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Symbol,
			strconv.Itoa(t.Qty),
			number(t.EntryPrice),
			number(t.ExitPrice),
			number(t.PnL),
			number(t.Commission),
			stamp(t.EntryTime),
			stamp(t.ExitTime),
			t.Duration,
			t.TradeDate,
			string(t.Direction),
		})
	}
	return writeRows(w, rows)
}

// WriteDaily writes one row per trading day.
func WriteDaily(w io.Writer, daily []kpi.DailySummary) error {
	rows := [][]string{{"Date", "P/L", "Cumulative P/L", "Trades", "Win Rate", "Commission"}}
	for _, d := range daily {
		rows = append(rows, []string{
			d.Date,
			number(d.PnL),
			number(d.CumulativePnL),
			strconv.Itoa(d.TradeCount),
			kpi.FormatPercent(d.WinRate),
			number(d.Commission),
		})
	}
	return writeRows(w, rows)
}

// WriteSummary writes the headline figures as metric/value pairs.
func WriteSummary(w io.Writer, s kpi.Summary) error {
	rows := [][]string{
		{"Metric", "Value"},
		{"Total Trades", strconv.Itoa(s.TotalTrades)},
		{"Wins", strconv.Itoa(s.WinCount)},
		{"Losses", strconv.Itoa(s.LossCount)},
		{"Win Rate", kpi.FormatPercent(s.WinRate)},
		{"Total P/L", number(s.TotalPnL)},
		{"Net P/L", number(s.NetPnL)},
		{"Total Commission", number(s.TotalCommission)},
		{"Avg Win", number(s.AvgWin)},
		{"Avg Loss", number(s.AvgLoss)},
		{"Profit Factor", kpi.FormatProfitFactor(s.ProfitFactor)},
		{"Max Win", number(s.MaxWin)},
		{"Max Loss", number(s.MaxLoss)},
		{"Max Consecutive Wins", strconv.Itoa(s.MaxConsecutiveWins)},
		{"Max Consecutive Losses", strconv.Itoa(s.MaxConsecutiveLosses)},
	}
	return writeRows(w, rows)
}

// WriteDir writes the three sheets into dir and returns their paths.
func WriteDir(dir string, trades []model.Trade, report kpi.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	sheets := []struct {
		name  string
		write func(io.Writer) error
	}{
		{TradesFile, func(w io.Writer) error { return WriteTrades(w, trades) }},
		{DailyFile, func(w io.Writer) error { return WriteDaily(w, report.Daily) }},
		{SummaryFile, func(w io.Writer) error { return WriteSummary(w, report.Summary) }},
	}

	paths := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		path := filepath.Join(dir, sheet.name)
		if err := writeFile(path, sheet.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(out); err != nil {
		out.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
