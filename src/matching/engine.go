// Package matching reconstructs closed round-trip trades from broker
// executions with per-contract FIFO position queues.
package matching

import (
	"cmp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"tradeanalytics/src/calendar"
	"tradeanalytics/src/instrument"
	"tradeanalytics/src/model"
	"tradeanalytics/src/utils"
)

// Match pairs opposite-side executions per contract in arrival order and
// returns trades sorted by exit instant with ids 1..n. Units left resting at
// the end of the data never produce a trade. execs is not modified.
func Match(execs []model.Execution) []model.Trade {
	resolver := instrument.NewResolver()
	for _, e := range execs {
		resolver.Prime(e.Root, e.Notional, e.Price)
	}

	var trades []model.Trade
	for _, group := range groupByContract(execs) {
		sortExecutions(group)

		queue := &positionQueue{}
		for _, e := range group {
			for _, u := range explode(e) {
				if queue.accepts(u) {
					queue.push(u)
					continue
				}
				trades = append(trades, closeTrade(queue.pop(), u, resolver))
			}
		}
	}

	model.SortByExit(trades)
	return trades
}

// groupByContract buckets executions by contract key, keeping groups in order
// of first appearance.
func groupByContract(execs []model.Execution) [][]model.Execution {
	index := make(map[string]int)
	var groups [][]model.Execution
	for _, e := range execs {
		key := e.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	return groups
}

// sortExecutions orders by instant, then sequence key, then arrival index.
func sortExecutions(group []model.Execution) {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if c := compareSequence(a.Sequence, b.Sequence); c != 0 {
			return c < 0
		}
		return a.Index < b.Index
	})
}

// compareSequence orders integer keys numerically and ahead of every
// non-integer key; non-integer keys compare lexically.
func compareSequence(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(ai, bi)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

// explode splits an execution of quantity N into N units, each carrying an
// equal share of the raw commission.
func explode(e model.Execution) []unit {
	qty := e.Qty
	if qty < 1 {
		qty = 1
	}
	share := e.Commission / float64(qty)
	units := make([]unit, qty)
	for i := range units {
		units[i] = unit{
			side:        e.Side,
			price:       e.Price,
			at:          e.Time,
			commission:  share,
			symbol:      e.Symbol,
			root:        e.Root,
			description: e.ProductDescription,
		}
	}
	return units
}

// closeTrade builds the trade for a resting unit closed by an incoming one.
// The buy leg is always the entry.
func closeTrade(resting, incoming unit, resolver *instrument.Resolver) model.Trade {
	buy, sell := resting, incoming
	if buy.side != model.SideBuy {
		buy, sell = incoming, resting
	}

	root := buy.root
	if root == "" {
		root = sell.root
	}

	pnl := decimal.NewFromFloat(sell.price).
		Sub(decimal.NewFromFloat(buy.price)).
		Mul(decimal.NewFromFloat(resolver.Multiplier(root))).
		Round(2)

	direction := model.DirectionLong
	if buy.at.After(sell.at) {
		direction = model.DirectionShort
	}

	dayInstant := sell.at
	if sell.at.Unix() <= 0 {
		dayInstant = buy.at
	}
	tradeDate := calendar.TradingDay(dayInstant)

	symbol := buy.symbol
	if symbol == "" {
		symbol = sell.symbol
	}
	description := buy.description
	if description == "" {
		description = sell.description
	}

	return model.Trade{
		Symbol:             symbol,
		Qty:                1,
		EntryPrice:         buy.price,
		ExitPrice:          sell.price,
		PnL:                pnl.InexactFloat64(),
		Commission:         unitCommission(root, buy, sell),
		EntryTime:          buy.at,
		ExitTime:           sell.at,
		Duration:           utils.FormatHolding(sell.at.Sub(buy.at)),
		Direction:          direction,
		ProductDescription: description,
		TradeDate:          tradeDate,
		DayOfWeek:          calendar.WeekdayLabel(tradeDate),
	}
}

// unitCommission prefers the rate table and falls back to the apportioned raw
// commission of both legs when the product has no rate.
func unitCommission(root string, buy, sell unit) float64 {
	if _, ok := instrument.CommissionRate(root); ok {
		return instrument.Commission(root, 1)
	}
	raw := decimal.NewFromFloat(buy.commission).Add(decimal.NewFromFloat(sell.commission))
	return raw.Abs().Round(2).InexactFloat64()
}
