// Package service runs the import workflow: ingest a file, merge it into the
// stored trade set and persist the result.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/ingest"
	"tradeanalytics/src/kpi"
	"tradeanalytics/src/model"
	"tradeanalytics/src/schema"
	"tradeanalytics/src/store"
)

// TradeStore holds the merged trade set.
type TradeStore interface {
	LoadTrades(ctx context.Context) ([]model.Trade, error)
	// SaveTrades replaces the stored set with trades. batch describes the
	// import that produced the newly added ones.
	SaveTrades(ctx context.Context, trades []model.Trade, batch model.ImportBatch) error
}

type ImportRequest struct {
	FileName string
	CSV      string
	Mapping  schema.Mapping
}

type ImportResult struct {
	BatchID  string         `json:"batchId,omitempty"`
	FileName string         `json:"fileName"`
	Outcome  ingest.Outcome `json:"outcome"`
	Format   schema.Format  `json:"format"`
	Message  string         `json:"message"`
	Added    int            `json:"added"`
	Skipped  int            `json:"skipped"`
	Total    int            `json:"total"`
	Mapping  schema.Mapping `json:"mapping,omitempty"`
	Missing  []schema.Field `json:"missing,omitempty"`
	Quality  ingest.Quality `json:"quality"`
}

// OK reports whether the import was accepted.
func (r ImportResult) OK() bool {
	return r.Outcome == ingest.OutcomeOK
}

type Service struct {
	store TradeStore
	log   *logger.Entry
	now   func() time.Time
	newID func() string

	// mu serialises load-merge-save cycles.
	mu sync.Mutex
}

func New(ts TradeStore, log *logger.Entry) *Service {
	if log == nil {
		log = logger.WithField("component", "service")
	}
	return &Service{
		store: ts,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// Import ingests req and merges the reconstructed trades into the store.
// Outcomes other than ingest.OutcomeOK are returned without error and leave
// the store untouched.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	log := s.log.WithFields(map[string]interface{}{
		"op":        "Import",
		"file_name": req.FileName,
	})

	res := ingest.Ingest(req.CSV, ingest.Options{Mapping: req.Mapping, Log: log})
	out := ImportResult{
		FileName: req.FileName,
		Outcome:  res.Outcome,
		Format:   res.Format,
		Message:  res.Message(),
		Mapping:  res.Mapping,
		Missing:  res.Missing,
		Quality:  res.Quality,
	}
	if res.Outcome != ingest.OutcomeOK {
		log.WithField("outcome", res.Outcome).Warn("Import not accepted")
		return out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.LoadTrades(ctx)
	if err != nil {
		return out, fmt.Errorf("load stored trades: %w", err)
	}

	merged := store.Merge(existing, res.Trades)
	batch := model.ImportBatch{
		ID:        s.newID(),
		FileName:  req.FileName,
		Format:    string(res.Format),
		Outcome:   string(res.Outcome),
		Rows:      res.Quality.Rows,
		Added:     merged.Added,
		Skipped:   merged.Skipped,
		Defaulted: res.Quality.Defaulted(),
		CreatedAt: s.now(),
	}
	if err := s.store.SaveTrades(ctx, merged.Merged, batch); err != nil {
		return out, fmt.Errorf("save merged trades: %w", err)
	}

	out.BatchID = batch.ID
	out.Added = merged.Added
	out.Skipped = merged.Skipped
	out.Total = len(merged.Merged)

	log.WithFields(map[string]interface{}{
		"batch_id": batch.ID,
		"format":   res.Format,
		"added":    merged.Added,
		"skipped":  merged.Skipped,
		"total":    out.Total,
	}).Info("Import merged")

	return out, nil
}

// Trades returns the stored trade set ordered by exit.
func (s *Service) Trades(ctx context.Context) ([]model.Trade, error) {
	trades, err := s.store.LoadTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored trades: %w", err)
	}
	if trades == nil {
		trades = []model.Trade{}
	}
	return trades, nil
}

// Report recomputes every summary over the stored trade set.
func (s *Service) Report(ctx context.Context) (kpi.Report, error) {
	trades, err := s.Trades(ctx)
	if err != nil {
		return kpi.Report{}, err
	}
	return kpi.BuildReport(trades), nil
}
