package service

import (
	"context"

	"tradeanalytics/src/model"
	"tradeanalytics/src/repository"
	"tradeanalytics/src/store"
)

type tradeRecords interface {
	FindAll(ctx context.Context) ([]model.TradeRecord, error)
	ReplaceAll(ctx context.Context, records []model.TradeRecord, batch *model.ImportBatch) error
}

// DatabaseStore keeps trades in the trades table and records every import.
type DatabaseStore struct {
	trades tradeRecords
}

func NewDatabaseStore(trades tradeRecords) *DatabaseStore {
	return &DatabaseStore{trades: trades}
}

// DefaultDatabaseStore wires the store to the production repositories.
func DefaultDatabaseStore() *DatabaseStore {
	return NewDatabaseStore(repository.NewTradeRepository())
}

func (d *DatabaseStore) LoadTrades(ctx context.Context) ([]model.Trade, error) {
	records, err := d.trades.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	trades := make([]model.Trade, len(records))
	for i := range records {
		trades[i] = records[i].ConvertToTrade()
	}
	return trades, nil
}

// SaveTrades rewrites the trade table and records batch in the same
// transaction. Trades already stored keep the batch id they were first
// imported with.
func (d *DatabaseStore) SaveTrades(ctx context.Context, trades []model.Trade, batch model.ImportBatch) error {
	current, err := d.trades.FindAll(ctx)
	if err != nil {
		return err
	}
	origin := make(map[string]string, len(current))
	for _, r := range current {
		origin[r.Fingerprint] = r.ImportBatchID
	}

	records := make([]model.TradeRecord, len(trades))
	for i, t := range trades {
		fp := store.Fingerprint(t)
		batchID, ok := origin[fp]
		if !ok {
			batchID = batch.ID
		}
		records[i] = *model.NewTradeRecord(t, fp, batchID)
	}

	return d.trades.ReplaceAll(ctx, records, &batch)
}

// SnapshotStore keeps trades in a snapshot envelope.
type SnapshotStore struct {
	snapshots store.SnapshotStore
}

func NewSnapshotStore(s store.SnapshotStore) *SnapshotStore {
	return &SnapshotStore{snapshots: s}
}

func (s *SnapshotStore) LoadTrades(ctx context.Context) ([]model.Trade, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil || snap == nil {
		return nil, err
	}
	return snap.Trades, nil
}

// FileNames lists the sources merged into the snapshot so far.
func (s *SnapshotStore) FileNames(ctx context.Context) ([]string, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil || snap == nil {
		return nil, err
	}
	return snap.FileNames, nil
}

func (s *SnapshotStore) SaveTrades(ctx context.Context, trades []model.Trade, batch model.ImportBatch) error {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = &store.Snapshot{}
	}
	snap.Trades = trades
	snap.SavedAt = batch.CreatedAt
	snap.AddFileName(batch.FileName)
	return s.snapshots.Save(ctx, *snap)
}

// MemoryStore keeps trades for the lifetime of the process.
type MemoryStore struct {
	trades []model.Trade
}

func (m *MemoryStore) LoadTrades(context.Context) ([]model.Trade, error) {
	return append([]model.Trade(nil), m.trades...), nil
}

func (m *MemoryStore) SaveTrades(_ context.Context, trades []model.Trade, _ model.ImportBatch) error {
	m.trades = append([]model.Trade(nil), trades...)
	return nil
}
