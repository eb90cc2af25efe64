package ingest

import (
	"strings"

	"tradeanalytics/src/csvrow"
	"tradeanalytics/src/instrument"
	"tradeanalytics/src/model"
	"tradeanalytics/src/schema"
)

var notionalHeaders = []string{"_notional", "Notional Value", "notionalValue", "Notional"}

// DetectDirection reads the side of a fill from the display "B/S" column,
// falling back to the raw "_action" code (0 buy, 1 sell) and finally Buy.
func DetectDirection(buySell, action string) model.Side {
	switch strings.TrimSpace(buySell) {
	case "Buy":
		return model.SideBuy
	case "Sell":
		return model.SideSell
	}
	switch strings.TrimSpace(action) {
	case "0":
		return model.SideBuy
	case "1":
		return model.SideSell
	}
	return model.SideBuy
}

// fillsToExecutions converts a per-fill ledger.
func fillsToExecutions(table *csvrow.Table, q *Quality) []model.Execution {
	execs := make([]model.Execution, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		symbol := table.Field(i, schema.HeaderContract)
		price := ParsePrice(table.First(i, "_price", "Price"))
		qty := ParseQuantity(table.First(i, "_qty", "Quantity"))
		ts := ParseTimestamp(table.First(i, "_timestamp", "Timestamp"))
		q.observe(price, qty, ts)

		execs = append(execs, model.Execution{
			Side:               DetectDirection(table.Field(i, schema.HeaderBuySell), table.Field(i, schema.HeaderAction)),
			Price:              price.Value,
			Qty:                qty.Value,
			Time:               ts.Value,
			Symbol:             symbol,
			ContractKey:        table.Field(i, schema.HeaderContractID),
			Root:               rootOf(table.Field(i, "Product"), symbol),
			ProductDescription: table.Field(i, "Product Description"),
			Commission:         ParsePrice(table.Field(i, schema.HeaderCommission)).Value,
			Notional:           ParsePrice(table.First(i, notionalHeaders...)).Value,
			Sequence:           table.First(i, schema.HeaderRawID, schema.HeaderFillID),
			Index:              i,
		})
	}
	return execs
}

// ordersToExecutions converts the filled orders of a per-order ledger.
func ordersToExecutions(table *csvrow.Table, q *Quality) []model.Execution {
	var execs []model.Execution
	for i := 0; i < table.Len(); i++ {
		if !strings.EqualFold(strings.TrimSpace(table.Field(i, schema.HeaderStatus)), "Filled") {
			q.SkippedOrders++
			continue
		}

		symbol := table.First(i, schema.HeaderContract, "Symbol", "symbol")
		price := ParsePrice(table.First(i, schema.HeaderAvgPrice, schema.HeaderAvgFillPrice))
		qty := ParseQuantity(table.First(i, "filledQty", "Filled Qty", "Quantity", "qty"))
		ts := ParseTimestamp(table.First(i, schema.HeaderFillTime, "Timestamp"))
		q.observe(price, qty, ts)

		execs = append(execs, model.Execution{
			Side:               DetectDirection(table.Field(i, schema.HeaderBuySell), table.Field(i, schema.HeaderAction)),
			Price:              price.Value,
			Qty:                qty.Value,
			Time:               ts.Value,
			Symbol:             symbol,
			ContractKey:        table.Field(i, schema.HeaderContractID),
			Root:               rootOf(table.Field(i, "Product"), symbol),
			ProductDescription: table.Field(i, "Product Description"),
			Commission:         ParsePrice(table.First(i, schema.HeaderCommission, "Commission")).Value,
			Notional:           ParsePrice(table.First(i, notionalHeaders...)).Value,
			Sequence:           table.First(i, "orderId", "Order ID", schema.HeaderRawID),
			Index:              i,
		})
	}
	return execs
}

func rootOf(product, symbol string) string {
	if p := strings.TrimSpace(product); p != "" {
		return p
	}
	return instrument.ExtractRoot(symbol)
}
