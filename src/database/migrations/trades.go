package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"tradeanalytics/src/model"
	"tradeanalytics/src/store"
)

const backfillBatchSize = 500

// Rows written through TradeRepository already carry a fingerprint and a
// Long/Short direction, so both migrations below only touch rows written by
// older builds, by hand or by other tools sharing the table.

// backfillTradeFingerprints fills the dedup key of rows written before it was
// stored, so merges against the database see them as known trades.
func backfillTradeFingerprints(db *gorm.DB) error {
	var rows []model.TradeRecord
	result := db.Where("fingerprint IS NULL OR fingerprint = ''").
		FindInBatches(&rows, backfillBatchSize, func(tx *gorm.DB, batch int) error {
			for i := range rows {
				fp := store.Fingerprint(rows[i].ConvertToTrade())
				if err := tx.Model(&model.TradeRecord{}).
					Where("id = ?", rows[i].ID).
					Update("fingerprint", fp).Error; err != nil {
					return fmt.Errorf("backfill fingerprint for trade %d: %w", rows[i].ID, err)
				}
			}
			return nil
		})
	return result.Error
}

// normalizeTradeDirection rewrites side labels stored as direction.
func normalizeTradeDirection(db *gorm.DB) error {
	mapping := map[string]model.Direction{
		"Buy":   model.DirectionLong,
		"BUY":   model.DirectionLong,
		"long":  model.DirectionLong,
		"Sell":  model.DirectionShort,
		"SELL":  model.DirectionShort,
		"short": model.DirectionShort,
	}

	for from, to := range mapping {
		if err := db.Model(&model.TradeRecord{}).
			Where("direction = ?", from).
			Update("direction", string(to)).Error; err != nil {
			return fmt.Errorf("normalize direction %q: %w", from, err)
		}
	}
	return nil
}
