package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Field is a canonical trade column.
type Field string

const (
	FieldSymbol             Field = "symbol"
	FieldBuyPrice           Field = "buyPrice"
	FieldSellPrice          Field = "sellPrice"
	FieldPnL                Field = "pnl"
	FieldQty                Field = "qty"
	FieldBoughtTimestamp    Field = "boughtTimestamp"
	FieldSoldTimestamp      Field = "soldTimestamp"
	FieldDuration           Field = "duration"
	FieldCommission         Field = "commission"
	FieldDirection          Field = "direction"
	FieldProductDescription Field = "productDescription"
)

var ErrUnknownField = errors.New("unknown field")

type alias struct {
	field   Field
	headers []string
}

var requiredAliases = []alias{
	{FieldSymbol, []string{"symbol", "Symbol", "Contract", "contract", "Product"}},
	{FieldBuyPrice, []string{"buyPrice", "Buy Price", "Entry Price", "entryPrice", "avgPrice"}},
	{FieldSellPrice, []string{"sellPrice", "Sell Price", "Exit Price", "exitPrice"}},
	{FieldPnL, []string{"pnl", "P&L", "PnL", "Profit/Loss", "Net P&L"}},
	{FieldQty, []string{"qty", "Qty", "Quantity", "quantity", "filledQty"}},
	{FieldBoughtTimestamp, []string{"boughtTimestamp", "Bought Timestamp", "Buy Time", "Entry Time", "Fill Time"}},
	{FieldSoldTimestamp, []string{"soldTimestamp", "Sold Timestamp", "Sell Time", "Exit Time"}},
	{FieldDuration, []string{"duration", "Duration"}},
}

var optionalAliases = []alias{
	{FieldCommission, []string{"commission", "Commission", "Fee", "fee"}},
	{FieldDirection, []string{"B/S", "direction", "Direction", "Side", "side", "_action"}},
	{FieldProductDescription, []string{"Product Description", "productDescription"}},
}

// RequiredFields lists the fields a direct mapping cannot proceed without.
func RequiredFields() []Field {
	out := make([]Field, len(requiredAliases))
	for i, a := range requiredAliases {
		out[i] = a.field
	}
	return out
}

// Fields lists every canonical field, required first.
func Fields() []Field {
	out := RequiredFields()
	for _, a := range optionalAliases {
		out = append(out, a.field)
	}
	return out
}

// Mapping resolves canonical fields to source headers.
type Mapping map[Field]string

// Header returns the header mapped to f, or "".
func (m Mapping) Header(f Field) string {
	return m[f]
}

// Merge returns a copy of m with every non-empty entry of manual applied.
func (m Mapping) Merge(manual Mapping) Mapping {
	out := make(Mapping, len(m)+len(manual))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range manual {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Missing lists required fields without a header, in canonical order.
func (m Mapping) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields() {
		if m[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Result is the outcome of AutoMap.
type Result struct {
	Mapping Mapping
	Missing []Field
}

// AutoMap resolves each canonical field to the highest priority alias present
// in headers.
func AutoMap(headers []string) Result {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	find := func(candidates []string) string {
		for _, c := range candidates {
			if _, ok := present[c]; ok {
				return c
			}
		}
		return ""
	}

	res := Result{Mapping: Mapping{}}
	for _, a := range requiredAliases {
		if h := find(a.headers); h != "" {
			res.Mapping[a.field] = h
		} else {
			res.Missing = append(res.Missing, a.field)
		}
	}
	for _, a := range optionalAliases {
		if h := find(a.headers); h != "" {
			res.Mapping[a.field] = h
		}
	}
	return res
}

// ParseMapping builds a Mapping from "field=Header" pairs.
func ParseMapping(pairs []string) (Mapping, error) {
	known := make(map[Field]struct{})
	for _, f := range Fields() {
		known[f] = struct{}{}
	}

	m := Mapping{}
	for _, pair := range pairs {
		name, header, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("mapping %q: expected field=header", pair)
		}
		f := Field(strings.TrimSpace(name))
		if _, ok := known[f]; !ok {
			return nil, fmt.Errorf("mapping %q: %w %q", pair, ErrUnknownField, f)
		}
		m[f] = strings.TrimSpace(header)
	}
	return m, nil
}
