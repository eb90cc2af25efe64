package repository

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradeanalytics/src/database"
	"tradeanalytics/src/model"
)

const replaceBatchSize = 200

// TradeSearchOptions filters a trade listing. Trade days are YYYY-MM-DD and
// both bounds are inclusive.
type TradeSearchOptions struct {
	Symbol    *string
	Direction *string
	DayFrom   *string
	DayTo     *string
	Limit     int
	Offset    int
}

// TradeRepository handles read/write operations for the stored trade set.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main database.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Debug("Creating TradeRepository with custom DB instance")

	return &TradeRepository{db: db}
}

// ReplaceAll swaps the stored trade set for records and, when batch is not
// nil, records the import that produced it, all in one transaction.
// Positions are renumbered on every merge, so the set is rewritten whole.
func (r *TradeRepository) ReplaceAll(
	ctx context.Context,
	records []model.TradeRecord,
	batch *model.ImportBatch,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":  "TradeRepository",
		"op":    "ReplaceAll",
		"count": len(records),
	}).Debug("Replacing stored trades")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.TradeRecord{}).Error; err != nil {
			return fmt.Errorf("delete trades: %w", err)
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, replaceBatchSize).Error; err != nil {
				return fmt.Errorf("insert trades: %w", err)
			}
		}
		if batch != nil {
			if err := tx.Create(batch).Error; err != nil {
				return fmt.Errorf("record import batch: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "ReplaceAll",
		}).WithError(err).Error("Failed to replace trades")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":  "TradeRepository",
		"op":    "ReplaceAll",
		"count": len(records),
	}).Info("Trades replaced successfully")

	return nil
}

// FindAll returns every stored trade in position order.
func (r *TradeRepository) FindAll(ctx context.Context) ([]model.TradeRecord, error) {
	logger.WithFields(map[string]interface{}{
		"repo": "TradeRepository",
		"op":   "FindAll",
	}).Debug("Fetching all trades")

	var records []model.TradeRecord
	err := r.db.WithContext(ctx).
		Order("position ASC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch trades")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "TradeRepository",
		"op":          "FindAll",
		"rows_return": len(records),
	}).Debug("Trades fetched")

	return records, nil
}

// Search lists trades matching options in position order.
func (r *TradeRepository) Search(
	ctx context.Context,
	options TradeSearchOptions,
) ([]model.TradeRecord, error) {

	fields := map[string]interface{}{
		"repo":   "TradeRepository",
		"op":     "Search",
		"limit":  options.Limit,
		"offset": options.Offset,
	}
	logger.WithFields(fields).Debug("Searching trades")

	query := r.db.WithContext(ctx).Model(&model.TradeRecord{})
	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}
	if options.Direction != nil {
		query = query.Where("direction = ?", *options.Direction)
	}
	if options.DayFrom != nil {
		query = query.Where("trade_date >= ?", *options.DayFrom)
	}
	if options.DayTo != nil {
		query = query.Where("trade_date <= ?", *options.DayTo)
	}

	query = query.Order("position ASC")
	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var records []model.TradeRecord
	if err := query.Find(&records).Error; err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to search trades")
		return nil, err
	}

	return records, nil
}

// Count returns how many trades are stored.
func (r *TradeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TradeRecord{}).Count(&count).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Count",
		}).WithError(err).Error("Failed to count trades")

		return 0, err
	}
	return count, nil
}
