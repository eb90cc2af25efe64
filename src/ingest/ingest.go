// Package ingest turns raw broker CSV text into a reconstructed trade set.
package ingest

import (
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/csvrow"
	"tradeanalytics/src/matching"
	"tradeanalytics/src/model"
	"tradeanalytics/src/schema"
)

// Outcome classifies an ingestion attempt. Everything except OutcomeOK needs
// a corrective action from the caller.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeEmpty        Outcome = "empty"
	OutcomeNeedsMapping Outcome = "needs_mapping"
	OutcomeNoTrades     Outcome = "no_trades"
)

// Quality counts fields that were replaced by safe defaults.
type Quality struct {
	Rows                int `json:"rows"`
	DefaultedPrices     int `json:"defaultedPrices"`
	DefaultedQuantities int `json:"defaultedQuantities"`
	DefaultedTimestamps int `json:"defaultedTimestamps"`
	SkippedOrders       int `json:"skippedOrders"`
}

// Defaulted is the total number of defaulted fields.
func (q Quality) Defaulted() int {
	return q.DefaultedPrices + q.DefaultedQuantities + q.DefaultedTimestamps
}

func (q *Quality) observe(price Parsed[float64], qty Parsed[int], ts Parsed[time.Time]) {
	if price.Defaulted {
		q.DefaultedPrices++
	}
	if qty.Defaulted {
		q.DefaultedQuantities++
	}
	if ts.Defaulted {
		q.DefaultedTimestamps++
	}
}

// Options tune a single ingestion.
type Options struct {
	// Mapping overrides auto-detected columns for free-form exports.
	Mapping schema.Mapping
	Log     *logger.Entry
}

// Result is the structured outcome of Ingest.
type Result struct {
	Outcome Outcome        `json:"outcome"`
	Format  schema.Format  `json:"format"`
	Trades  []model.Trade  `json:"trades"`
	Mapping schema.Mapping `json:"mapping,omitempty"`
	Missing []schema.Field `json:"missing,omitempty"`
	Quality Quality        `json:"quality"`
}

// Message is a user-facing description of the outcome.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeEmpty:
		return "the file has no data rows"
	case OutcomeNeedsMapping:
		names := make([]string, len(r.Missing))
		for i, f := range r.Missing {
			names[i] = string(f)
		}
		return fmt.Sprintf("columns could not be matched for: %s; supply a mapping", strings.Join(names, ", "))
	case OutcomeNoTrades:
		return "no closed trades could be reconstructed from the file"
	default:
		return fmt.Sprintf("%d trades reconstructed from %s export", len(r.Trades), r.Format)
	}
}

// Ingest parses text, detects its shape and reconstructs trades. It never
// fails on malformed rows; see Result.Quality for what was defaulted.
func Ingest(text string, opts Options) Result {
	log := opts.Log
	if log == nil {
		log = logger.WithField("component", "ingest")
	}

	table := csvrow.Parse(text)
	res := Result{Format: schema.Detect(table.Headers)}
	res.Quality.Rows = table.Len()

	if table.Len() == 0 {
		res.Outcome = OutcomeEmpty
		return res
	}

	switch res.Format {
	case schema.FormatFills:
		res.Trades = matching.Match(fillsToExecutions(table, &res.Quality))
	case schema.FormatOrders:
		res.Trades = matching.Match(ordersToExecutions(table, &res.Quality))
	default:
		detected := schema.AutoMap(table.Headers)
		res.Mapping = detected.Mapping.Merge(opts.Mapping)
		if missing := res.Mapping.Missing(); len(missing) > 0 {
			res.Outcome = OutcomeNeedsMapping
			res.Missing = missing
			return res
		}
		res.Trades = mapTrades(table, res.Mapping, &res.Quality)
	}

	if res.Quality.Defaulted() > 0 {
		log.WithFields(map[string]interface{}{
			"format":               res.Format,
			"rows":                 res.Quality.Rows,
			"defaulted_prices":     res.Quality.DefaultedPrices,
			"defaulted_quantities": res.Quality.DefaultedQuantities,
			"defaulted_timestamps": res.Quality.DefaultedTimestamps,
		}).Warn("Rows contained unreadable values, defaults applied")
	}

	if len(res.Trades) == 0 {
		res.Outcome = OutcomeNoTrades
		return res
	}

	res.Outcome = OutcomeOK
	log.WithFields(map[string]interface{}{
		"format": res.Format,
		"rows":   res.Quality.Rows,
		"trades": len(res.Trades),
	}).Debug("Ingestion completed")

	return res
}
