// Package schema classifies broker export headers and maps free-form
// headers onto canonical trade fields.
package schema

type Format string

const (
	FormatFills       Format = "fills"
	FormatOrders      Format = "orders"
	FormatPerformance Format = "performance"
	FormatUnknown     Format = "unknown"
)

// Header names used by the recognised export shapes.
const (
	HeaderFillID       = "Fill ID"
	HeaderRawID        = "_id"
	HeaderBuySell      = "B/S"
	HeaderAction       = "_action"
	HeaderCommission   = "commission"
	HeaderContract     = "Contract"
	HeaderContractID   = "_contractId"
	HeaderStatus       = "Status"
	HeaderAvgPrice     = "avgPrice"
	HeaderAvgFillPrice = "Avg Fill Price"
	HeaderFillTime     = "Fill Time"
)

// Detect returns the export shape of headers. Fills are checked first, then
// orders, then pre-aggregated performance exports.
func Detect(headers []string) Format {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	has := func(names ...string) bool {
		for _, n := range names {
			if _, ok := set[n]; ok {
				return true
			}
		}
		return false
	}

	side := has(HeaderBuySell, HeaderAction)

	switch {
	case has(HeaderFillID, HeaderRawID) && side && has(HeaderCommission) && has(HeaderContract):
		return FormatFills
	case side && has(HeaderStatus) && has(HeaderAvgPrice, HeaderAvgFillPrice) && has(HeaderFillTime):
		return FormatOrders
	case has("buyPrice") && has("sellPrice") && has("pnl"):
		return FormatPerformance
	default:
		return FormatUnknown
	}
}
