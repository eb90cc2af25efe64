package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradeanalytics/src/calendar"
	"tradeanalytics/src/csvrow"
	"tradeanalytics/src/instrument"
	"tradeanalytics/src/model"
	"tradeanalytics/src/schema"
	"tradeanalytics/src/utils"
)

// mapTrades converts pre-aggregated round trips through a column mapping.
// Trades keep row order and are numbered 1..n.
func mapTrades(table *csvrow.Table, mapping schema.Mapping, q *Quality) []model.Trade {
	field := func(row int, f schema.Field) string {
		h := mapping.Header(f)
		if h == "" {
			return ""
		}
		return table.Field(row, h)
	}

	trades := make([]model.Trade, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		symbol := field(i, schema.FieldSymbol)
		qty := ParseQuantity(field(i, schema.FieldQty))
		buy := ParsePrice(field(i, schema.FieldBuyPrice))
		sell := ParsePrice(field(i, schema.FieldSellPrice))
		bought := ParseTimestamp(field(i, schema.FieldBoughtTimestamp))
		sold := ParseTimestamp(field(i, schema.FieldSoldTimestamp))
		q.observe(buy, qty, bought)
		q.observe(sell, Parsed[int]{}, sold)

		duration := field(i, schema.FieldDuration)
		if duration == "" {
			duration = utils.FormatHolding(sold.Value.Sub(bought.Value))
		}

		dayInstant := sold.Value
		if dayInstant.Unix() <= 0 {
			dayInstant = bought.Value
		}
		tradeDate := calendar.TradingDay(dayInstant)

		trades = append(trades, model.Trade{
			ID:                 i + 1,
			Symbol:             symbol,
			Qty:                qty.Value,
			EntryPrice:         buy.Value,
			ExitPrice:          sell.Value,
			PnL:                decimal.NewFromFloat(ParsePnL(field(i, schema.FieldPnL)).Value).Round(2).InexactFloat64(),
			Commission:         mappedCommission(symbol, qty.Value, field(i, schema.FieldCommission)),
			EntryTime:          bought.Value,
			ExitTime:           sold.Value,
			Duration:           duration,
			Direction:          normalizeDirection(field(i, schema.FieldDirection), bought.Value, sold.Value),
			ProductDescription: field(i, schema.FieldProductDescription),
			TradeDate:          tradeDate,
			DayOfWeek:          calendar.WeekdayLabel(tradeDate),
		})
	}
	return trades
}

// mappedCommission prefers the rate table and falls back to the raw column.
func mappedCommission(symbol string, qty int, raw string) float64 {
	root := instrument.ExtractRoot(symbol)
	if _, known := instrument.CommissionRate(root); known {
		return instrument.Commission(root, qty)
	}
	return decimal.NewFromFloat(ParsePnL(raw).Value).Abs().Round(2).InexactFloat64()
}

// normalizeDirection maps side labels to a direction, inferring it from the
// leg order when the label is absent or unrecognised.
func normalizeDirection(raw string, bought, sold time.Time) model.Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy", "long", "b", "0":
		return model.DirectionLong
	case "sell", "short", "s", "1":
		return model.DirectionShort
	}
	if !bought.After(sold) {
		return model.DirectionLong
	}
	return model.DirectionShort
}
