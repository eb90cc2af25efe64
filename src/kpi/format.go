package kpi

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradeanalytics/src/calendar"
	"tradeanalytics/src/model"
)

const infinity = "∞"

// FormatCurrency renders v as US dollars with thousands separators:
// 1234.5 -> "$1,234.50", -15 -> "-$15.00".
func FormatCurrency(v float64) string {
	if math.IsInf(v, 1) {
		return infinity
	}
	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// FormatPercent renders v with one decimal place: 70 -> "70.0%".
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// FormatProfitFactor renders p with two decimals or "∞".
func FormatProfitFactor(p ProfitFactor) string {
	if p.IsInf() {
		return infinity
	}
	return decimal.NewFromFloat(float64(p)).StringFixed(2)
}

// FormatTradeDetail describes a trade on one line, e.g.
// "Short 1 /NQH6 @ 25266, Exited @ 25271, 02/11/2026 09:34:46".
// The exit stamp is exchange local time and is omitted when unknown.
func FormatTradeDetail(t *model.Trade) string {
	if t == nil {
		return ""
	}
	direction := t.Direction
	if direction == "" {
		direction = model.DirectionLong
		if t.EntryTime.After(t.ExitTime) {
			direction = model.DirectionShort
		}
	}

	var b strings.Builder
	b.WriteString(string(direction))
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(t.Units()))
	b.WriteString(" /")
	b.WriteString(t.Symbol)
	b.WriteString(" @ ")
	b.WriteString(strconv.FormatFloat(t.EntryPrice, 'f', -1, 64))
	b.WriteString(", Exited @ ")
	b.WriteString(strconv.FormatFloat(t.ExitPrice, 'f', -1, 64))
	if t.ExitTime.Unix() > 0 {
		b.WriteString(", ")
		b.WriteString(calendar.Local(t.ExitTime).Format("01/02/2006 15:04:05"))
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
