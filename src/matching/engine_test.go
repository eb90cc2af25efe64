package matching

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeanalytics/src/instrument"
	"tradeanalytics/src/model"
)

// 09:00 CST
var base = time.Date(2026, time.January, 15, 15, 0, 0, 0, time.UTC)

func at(min int) time.Time {
	return base.Add(time.Duration(min) * time.Minute)
}

func fill(symbol string, side model.Side, qty int, price float64, ts time.Time, seq int) model.Execution {
	return model.Execution{
		Side:     side,
		Price:    price,
		Qty:      qty,
		Time:     ts,
		Symbol:   symbol,
		Root:     instrument.ExtractRoot(symbol),
		Sequence: fmt.Sprint(seq),
		Index:    seq,
	}
}

func prices(trades []model.Trade) [][2]float64 {
	out := make([][2]float64, len(trades))
	for i, tr := range trades {
		out[i] = [2]float64{tr.EntryPrice, tr.ExitPrice}
	}
	return out
}

func TestMatchSingleShortRoundTrip(t *testing.T) {
	trades := Match([]model.Execution{
		fill("NQH6", model.SideSell, 1, 25271, at(0), 1),
		fill("NQH6", model.SideBuy, 1, 25266, at(3), 2),
	})

	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, 1, tr.ID)
	assert.Equal(t, "NQH6", tr.Symbol)
	assert.Equal(t, model.DirectionShort, tr.Direction)
	assert.Equal(t, 25266.0, tr.EntryPrice)
	assert.Equal(t, 25271.0, tr.ExitPrice)
	assert.Equal(t, 100.0, tr.PnL)
	assert.Equal(t, 4.76, tr.Commission)
	assert.Equal(t, at(3), tr.EntryTime)
	assert.Equal(t, at(0), tr.ExitTime)
	assert.Equal(t, "3min", tr.Duration)
	assert.Equal(t, 1, tr.Qty)
	assert.Equal(t, "2026-01-15", tr.TradeDate)
	assert.Equal(t, "Thursday", tr.DayOfWeek)
}

func TestMatchPreservesFIFOOrder(t *testing.T) {
	trades := Match([]model.Execution{
		fill("XYZ", model.SideBuy, 1, 10, at(0), 1),
		fill("XYZ", model.SideBuy, 1, 11, at(1), 2),
		fill("XYZ", model.SideSell, 1, 20, at(2), 3),
		fill("XYZ", model.SideSell, 1, 21, at(3), 4),
	})

	require.Len(t, trades, 2)
	assert.Equal(t, [][2]float64{{10, 20}, {11, 21}}, prices(trades))
	assert.Equal(t, []float64{10, 10}, []float64{trades[0].PnL, trades[1].PnL})
	for _, tr := range trades {
		assert.Equal(t, model.DirectionLong, tr.Direction)
	}
}

func TestMatchExplodesQuantity(t *testing.T) {
	trades := Match([]model.Execution{
		fill("MESH6", model.SideBuy, 3, 6000, at(0), 1),
		fill("MESH6", model.SideSell, 2, 6001, at(5), 2),
		fill("MESH6", model.SideSell, 1, 6002, at(9), 3),
	})

	require.Len(t, trades, 3)
	assert.Equal(t, []float64{5, 5, 10}, []float64{trades[0].PnL, trades[1].PnL, trades[2].PnL})
	for i, tr := range trades {
		assert.Equal(t, i+1, tr.ID)
		assert.Equal(t, 1.62, tr.Commission)
		assert.Equal(t, 1, tr.Qty)
	}
}

func TestMatchFlipOpensReversedPosition(t *testing.T) {
	trades := Match([]model.Execution{
		fill("MESH6", model.SideBuy, 2, 100, at(0), 1),
		fill("MESH6", model.SideSell, 3, 105, at(1), 2),
		fill("MESH6", model.SideBuy, 1, 103, at(2), 3),
	})

	require.Len(t, trades, 3)
	assert.Equal(t, model.DirectionLong, trades[0].Direction)
	assert.Equal(t, model.DirectionLong, trades[1].Direction)

	// the excess sell unit rested and was closed by the later buy
	flip := trades[0]
	for _, tr := range trades {
		if tr.Direction == model.DirectionShort {
			flip = tr
		}
	}
	assert.Equal(t, model.DirectionShort, flip.Direction)
	assert.Equal(t, 103.0, flip.EntryPrice)
	assert.Equal(t, 105.0, flip.ExitPrice)
	assert.Equal(t, 10.0, flip.PnL)
}

func TestMatchExtendsSameSidePosition(t *testing.T) {
	trades := Match([]model.Execution{
		fill("ESH6", model.SideSell, 1, 5000, at(0), 1),
		fill("ESH6", model.SideSell, 1, 5010, at(1), 2),
		fill("ESH6", model.SideBuy, 1, 4990, at(2), 3),
	})

	require.Len(t, trades, 1, "second sell extends the short, one unit stays open")
	assert.Equal(t, 5000.0, trades[0].ExitPrice)
	assert.Equal(t, 500.0, trades[0].PnL)
}

func TestMatchTieBreaksBySequence(t *testing.T) {
	trades := Match([]model.Execution{
		fill("XYZ", model.SideBuy, 1, 101, at(0), 10),
		fill("XYZ", model.SideBuy, 1, 100, at(0), 9),
		fill("XYZ", model.SideSell, 1, 110, at(1), 11),
	})

	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].EntryPrice, "sequence 9 sorts before 10 numerically")
}

func TestMatchTieBreaksLexicallyForNonNumericKeys(t *testing.T) {
	a := fill("XYZ", model.SideBuy, 1, 101, at(0), 0)
	a.Sequence = "b-2"
	b := fill("XYZ", model.SideBuy, 1, 100, at(0), 1)
	b.Sequence = "a-1"
	trades := Match([]model.Execution{a, b, fill("XYZ", model.SideSell, 1, 110, at(1), 2)})

	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].EntryPrice)
}

func TestCompareSequenceIsTransitive(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "1a", -1},
		{"9", "1a", -1},
		{"1a", "9", 1},
		{"a-1", "b-2", -1},
		{"7", "7", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareSequence(tt.a, tt.b))
		})
	}

	a := fill("XYZ", model.SideBuy, 1, 103, at(0), 0)
	a.Sequence = "1a"
	b := fill("XYZ", model.SideBuy, 1, 102, at(0), 1)
	b.Sequence = "10"
	c := fill("XYZ", model.SideBuy, 1, 101, at(0), 2)
	c.Sequence = "9"
	sells := []model.Execution{
		fill("XYZ", model.SideSell, 1, 110, at(1), 3),
		fill("XYZ", model.SideSell, 1, 110, at(2), 4),
		fill("XYZ", model.SideSell, 1, 110, at(3), 5),
	}
	trades := Match(append([]model.Execution{a, b, c}, sells...))

	require.Len(t, trades, 3)
	assert.Equal(t, []float64{101, 102, 103}, []float64{trades[0].EntryPrice, trades[1].EntryPrice, trades[2].EntryPrice})
}

func TestMatchKeepsContractsIndependent(t *testing.T) {
	trades := Match([]model.Execution{
		fill("NQH6", model.SideBuy, 1, 25000, at(0), 1),
		fill("ESH6", model.SideSell, 1, 6000, at(1), 2),
	})
	assert.Empty(t, trades)

	dec := fill("NQZ5", model.SideBuy, 1, 25000, at(0), 1)
	dec.ContractKey = "4001"
	mar := fill("NQZ5", model.SideSell, 1, 25010, at(1), 2)
	mar.ContractKey = "4002"
	assert.Empty(t, Match([]model.Execution{dec, mar}), "contract id outranks symbol")
}

func TestMatchSortsByExitAndRenumbers(t *testing.T) {
	trades := Match([]model.Execution{
		fill("NQH6", model.SideBuy, 1, 25000, at(0), 1),
		fill("NQH6", model.SideSell, 1, 25001, at(30), 2),
		fill("ESH6", model.SideBuy, 1, 6000, at(5), 3),
		fill("ESH6", model.SideSell, 1, 6001, at(10), 4),
	})

	require.Len(t, trades, 2)
	assert.Equal(t, "ESH6", trades[0].Symbol)
	assert.Equal(t, 1, trades[0].ID)
	assert.Equal(t, "NQH6", trades[1].Symbol)
	assert.Equal(t, 2, trades[1].ID)
}

func TestMatchCommissionFallsBackToRawField(t *testing.T) {
	buy := fill("ABCH6", model.SideBuy, 3, 10, at(0), 1)
	buy.Commission = 3
	sell := fill("ABCH6", model.SideSell, 1, 11, at(1), 2)
	sell.Commission = -1.5

	trades := Match([]model.Execution{buy, sell})

	require.Len(t, trades, 1)
	assert.Equal(t, 0.5, trades[0].Commission)
	assert.Equal(t, 1.0, trades[0].PnL, "unknown product multiplier defaults to 1")
}

func TestMatchUsesOneInferredMultiplierPerProduct(t *testing.T) {
	first := fill("ABCH6", model.SideBuy, 1, 10, at(0), 1)
	first.Notional = 1000
	second := fill("ABCH6", model.SideSell, 1, 12, at(1), 2)
	second.Notional = 600
	third := fill("ABCH6", model.SideBuy, 1, 12, at(2), 3)
	fourth := fill("ABCH6", model.SideSell, 1, 13, at(3), 4)

	trades := Match([]model.Execution{first, second, third, fourth})

	require.Len(t, trades, 2)
	assert.Equal(t, 200.0, trades[0].PnL)
	assert.Equal(t, 100.0, trades[1].PnL)
}

func TestMatchAssignsSessionDayFromExit(t *testing.T) {
	// exit at 17:30 CST belongs to the next session
	trades := Match([]model.Execution{
		fill("ESH6", model.SideBuy, 1, 6000, base.Add(7*time.Hour), 1),
		fill("ESH6", model.SideSell, 1, 6002, base.Add(8*time.Hour+30*time.Minute), 2),
	})

	require.Len(t, trades, 1)
	assert.Equal(t, "2026-01-16", trades[0].TradeDate)
	assert.Equal(t, "Friday", trades[0].DayOfWeek)
	assert.Equal(t, "1hr 30min", trades[0].Duration)
}

func TestMatchPnLMatchesPriceDifference(t *testing.T) {
	tests := []struct {
		symbol    string
		buy, sell float64
		wantPnL   float64
	}{
		{symbol: "NQH6", buy: 25266.25, sell: 25271.5, wantPnL: 105},
		{symbol: "MESH6", buy: 6010.25, sell: 6009.75, wantPnL: -2.5},
		{symbol: "MYMH6", buy: 42000, sell: 42003, wantPnL: 1.5},
		{symbol: "6EH6", buy: 1.0851, sell: 1.0853, wantPnL: 25},
		{symbol: "CLH6", buy: 70.11, sell: 70.1, wantPnL: -10},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			trades := Match([]model.Execution{
				fill(tt.symbol, model.SideBuy, 1, tt.buy, at(0), 1),
				fill(tt.symbol, model.SideSell, 1, tt.sell, at(1), 2),
			})
			require.Len(t, trades, 1)
			assert.Equal(t, tt.wantPnL, trades[0].PnL)
		})
	}
}

func TestMatchDoesNotModifyInput(t *testing.T) {
	execs := []model.Execution{
		fill("XYZ", model.SideSell, 1, 20, at(5), 1),
		fill("XYZ", model.SideBuy, 1, 10, at(0), 2),
	}
	snapshot := append([]model.Execution(nil), execs...)

	trades := Match(execs)

	require.Len(t, trades, 1)
	assert.Equal(t, snapshot, execs)
}

func TestMatchEmpty(t *testing.T) {
	assert.Empty(t, Match(nil))
}

func TestPositionQueueHoldsSingleSide(t *testing.T) {
	q := &positionQueue{}
	buy := unit{side: model.SideBuy}
	sell := unit{side: model.SideSell}

	require.True(t, q.accepts(buy))
	q.push(buy)
	q.push(buy)
	assert.False(t, q.accepts(sell))
	assert.Equal(t, 2, q.Len())

	q.pop()
	q.pop()
	require.Equal(t, 0, q.Len())
	assert.True(t, q.accepts(sell))
	q.push(sell)
	assert.Equal(t, model.SideSell, q.side)
	for _, u := range q.units[q.head:] {
		assert.Equal(t, model.SideSell, u.side)
	}
}
