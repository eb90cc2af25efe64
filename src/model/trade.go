package model

import (
	"sort"
	"time"
)

type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// Trade is one closed round trip. Entry is always the buy leg and exit the
// sell leg; for shorts the exit instant precedes the entry instant.
type Trade struct {
	ID                 int       `json:"id"`
	Symbol             string    `json:"symbol"`
	Qty                int       `json:"qty"`
	EntryPrice         float64   `json:"buyPrice"`
	ExitPrice          float64   `json:"sellPrice"`
	PnL                float64   `json:"pnl"`
	Commission         float64   `json:"commission"`
	EntryTime          time.Time `json:"boughtTimestamp"`
	ExitTime           time.Time `json:"soldTimestamp"`
	Duration           string    `json:"duration"`
	Direction          Direction `json:"direction"`
	ProductDescription string    `json:"productDescription,omitempty"`
	TradeDate          string    `json:"tradeDate"`
	DayOfWeek          string    `json:"dayOfWeek"`
}

// Holding is the absolute time between the two legs.
func (t Trade) Holding() time.Duration {
	d := t.ExitTime.Sub(t.EntryTime)
	if d < 0 {
		return -d
	}
	return d
}

// Units returns the contract count, treating an unset quantity as one lot.
func (t Trade) Units() int {
	if t.Qty <= 0 {
		return 1
	}
	return t.Qty
}

// NetPnL is the realized P/L after commission.
func (t Trade) NetPnL() float64 {
	return t.PnL - t.Commission
}

// SortByExit stable-sorts trades by exit instant and renumbers ids from 1.
func SortByExit(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExitTime.Before(trades[j].ExitTime)
	})
	for i := range trades {
		trades[i].ID = i + 1
	}
}

// Execution is a single broker fill ready for matching. Commission is the raw
// amount reported for the whole execution, Notional the raw notional value.
type Execution struct {
	Side               Side
	Price              float64
	Qty                int
	Time               time.Time
	Symbol             string
	ContractKey        string
	Root               string
	ProductDescription string
	Commission         float64
	Notional           float64
	Sequence           string
	Index              int
}

// GroupKey is the per-contract key used to build position queues.
func (e Execution) GroupKey() string {
	if e.ContractKey != "" {
		return e.ContractKey
	}
	return e.Symbol
}
