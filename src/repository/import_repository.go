package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradeanalytics/src/database"
	"tradeanalytics/src/model"
)

const defaultImportListLimit = 20

// ImportRepository records ingested source files.
type ImportRepository struct {
	db *gorm.DB
}

func NewImportRepository() *ImportRepository {
	logger.WithField("component", "ImportRepository").
		Info("Creating new ImportRepository with MainDB")

	return &ImportRepository{db: database.MainDB}
}

func (r *ImportRepository) WithDB(db *gorm.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// FindLatest returns the most recent import batch.
// Returns (nil, nil) if nothing was imported yet.
func (r *ImportRepository) FindLatest(ctx context.Context) (*model.ImportBatch, error) {
	var batch model.ImportBatch

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Take(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "ImportRepository",
				"op":   "FindLatest",
			}).Info("No import batch found")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "ImportRepository",
			"op":   "FindLatest",
		}).WithError(err).Error("Failed to fetch latest import batch")

		return nil, err
	}

	return &batch, nil
}

// List returns import batches from newest to oldest.
func (r *ImportRepository) List(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	if limit <= 0 {
		limit = defaultImportListLimit
	}

	var batches []model.ImportBatch
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&batches).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "ImportRepository",
			"op":    "List",
			"limit": limit,
		}).WithError(err).Error("Failed to list import batches")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "ImportRepository",
		"op":          "List",
		"limit":       limit,
		"rows_return": len(batches),
	}).Debug("Import batches fetched")

	return batches, nil
}
