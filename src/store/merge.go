// Package store deduplicates trade sets across imports and persists them as
// a versioned snapshot.
package store

import (
	"strconv"
	"strings"
	"time"

	"tradeanalytics/src/model"
)

const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// Fingerprint is the identity of a trade for dedup purposes:
// symbol|entry|exit|pnl|buyPrice|sellPrice|qty. Instants are rendered in UTC
// so equal points in time produce equal keys whatever their zone.
func Fingerprint(t model.Trade) string {
	return strings.Join([]string{
		t.Symbol,
		instant(t.EntryTime),
		instant(t.ExitTime),
		number(t.PnL),
		number(t.EntryPrice),
		number(t.ExitPrice),
		strconv.Itoa(t.Units()),
	}, "|")
}

func instant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type MergeResult struct {
	Merged  []model.Trade
	Added   int
	Skipped int
}

// Merge appends the incoming trades whose fingerprint is not already known,
// then sorts the combined list by exit instant and renumbers it. Neither
// input is modified. An incoming trade repeated within the same batch is
// kept once.
func Merge(existing, incoming []model.Trade) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]model.Trade, 0, len(existing)+len(incoming))
	for _, t := range existing {
		seen[Fingerprint(t)] = struct{}{}
		merged = append(merged, t)
	}

	res := MergeResult{}
	for _, t := range incoming {
		fp := Fingerprint(t)
		if _, dup := seen[fp]; dup {
			res.Skipped++
			continue
		}
		seen[fp] = struct{}{}
		merged = append(merged, t)
		res.Added++
	}

	model.SortByExit(merged)
	res.Merged = merged
	return res
}
