// Package instrument resolves futures product codes, commission rates and
// point multipliers.
package instrument

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// contractSuffix is a futures month code followed by a one or two digit year.
var contractSuffix = regexp.MustCompile(`[FGHJKMNQUVXZ][0-9]{1,2}$`)

// commissionPerSide is the all-in broker rate charged per contract per side.
var commissionPerSide = map[string]decimal.Decimal{
	// equity index
	"NQ":  decimal.RequireFromString("2.38"),
	"ES":  decimal.RequireFromString("2.38"),
	"YM":  decimal.RequireFromString("2.38"),
	"RTY": decimal.RequireFromString("2.38"),
	"MNQ": decimal.RequireFromString("0.81"),
	"MES": decimal.RequireFromString("0.81"),
	"MYM": decimal.RequireFromString("0.81"),
	"M2K": decimal.RequireFromString("0.81"),
	// fx
	"6E":  decimal.RequireFromString("2.54"),
	"6J":  decimal.RequireFromString("2.54"),
	"6B":  decimal.RequireFromString("2.54"),
	"6A":  decimal.RequireFromString("2.54"),
	"M6E": decimal.RequireFromString("0.66"),
	// rates
	"ZB": decimal.RequireFromString("1.94"),
	"ZN": decimal.RequireFromString("1.79"),
	"ZF": decimal.RequireFromString("1.71"),
	"ZT": decimal.RequireFromString("1.71"),
	// energy
	"CL":  decimal.RequireFromString("2.48"),
	"MCL": decimal.RequireFromString("0.91"),
	"NG":  decimal.RequireFromString("2.50"),
	// metals
	"GC":  decimal.RequireFromString("2.58"),
	"MGC": decimal.RequireFromString("0.91"),
	"SI":  decimal.RequireFromString("2.58"),
	"SIL": decimal.RequireFromString("1.31"),
	"HG":  decimal.RequireFromString("2.58"),
	// agricultural
	"ZC": decimal.RequireFromString("2.63"),
	"ZS": decimal.RequireFromString("2.63"),
	"ZW": decimal.RequireFromString("2.63"),
}

// pointValue is the currency value of one full point of price movement.
var pointValue = map[string]float64{
	"NQ": 20, "ES": 50, "YM": 5, "RTY": 50,
	"MNQ": 2, "MES": 5, "MYM": 0.5, "M2K": 5,
	"GC": 100, "MGC": 10, "SI": 5000, "SIL": 1000, "HG": 25000,
	"CL": 1000, "MCL": 100, "NG": 10000,
	"ZB": 1000, "ZN": 1000, "ZF": 1000, "ZT": 2000,
	"6E": 125000, "6J": 12500000, "6B": 62500, "6A": 100000, "M6E": 12500,
	"ZC": 50, "ZS": 50, "ZW": 50,
}

// ExtractRoot strips the month/year suffix from a dated contract symbol.
// "NQH6" -> "NQ". Symbols without a suffix are returned unchanged.
func ExtractRoot(symbol string) string {
	return contractSuffix.ReplaceAllString(symbol, "")
}

// CommissionRate returns the per-side rate for root and whether it is known.
func CommissionRate(root string) (decimal.Decimal, bool) {
	rate, ok := commissionPerSide[root]
	return rate, ok
}

// Commission is the round-trip commission for qty contracts of root,
// rounded to cents. Unknown products cost nothing.
func Commission(root string, qty int) float64 {
	rate, ok := commissionPerSide[root]
	if !ok {
		return 0
	}
	return rate.Mul(decimal.NewFromInt(2)).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}

// StaticMultiplier returns the tabled point value for root.
func StaticMultiplier(root string) (float64, bool) {
	m, ok := pointValue[root]
	return m, ok
}

// ResolveMultiplier infers round(notional/price) when both are positive,
// otherwise falls back to the static table and finally to 1.
func ResolveMultiplier(root string, notional, price float64) float64 {
	if inferred, ok := inferMultiplier(notional, price); ok {
		return inferred
	}
	if m, ok := StaticMultiplier(root); ok {
		return m
	}
	return 1
}

func inferMultiplier(notional, price float64) (float64, bool) {
	if notional <= 0 || price <= 0 {
		return 0, false
	}
	m := decimal.NewFromFloat(notional).Div(decimal.NewFromFloat(price)).Round(0)
	if !m.IsPositive() {
		return 0, false
	}
	return m.InexactFloat64(), true
}

// Resolver caches inferred multipliers for the duration of one matching run
// so every trade of a product uses the same point value. Not safe for
// concurrent use.
type Resolver struct {
	inferred map[string]float64
}

func NewResolver() *Resolver {
	return &Resolver{inferred: make(map[string]float64)}
}

// Prime records the multiplier implied by notional/price for root unless one
// is already cached.
func (r *Resolver) Prime(root string, notional, price float64) {
	if _, ok := r.inferred[root]; ok {
		return
	}
	if m, ok := inferMultiplier(notional, price); ok {
		r.inferred[root] = m
	}
}

// Multiplier returns the cached inferred value for root or the static
// fallback.
func (r *Resolver) Multiplier(root string) float64 {
	if m, ok := r.inferred[root]; ok {
		return m
	}
	return ResolveMultiplier(root, 0, 0)
}
