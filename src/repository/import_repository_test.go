package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradeanalytics/src/model"
)

func TestImportRepositoryFindLatest(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &ImportRepository{db: mockDB}

	t.Run("returns newest batch", func(t *testing.T) {
		created := time.Date(2026, 2, 12, 8, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "import_batches" ORDER BY created_at DESC LIMIT $1`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "file_name", "format", "outcome", "added", "created_at"}).
				AddRow("6f1c", "Fills.csv", "fills", "ok", 4, created))

		batch, err := repo.FindLatest(context.Background())
		require.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, "Fills.csv", batch.FileName)
		assert.Equal(t, 4, batch.Added)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "import_batches" ORDER BY created_at DESC LIMIT $1`)).
			WithArgs(1).
			WillReturnError(gorm.ErrRecordNotFound)

		batch, err := repo.FindLatest(context.Background())
		require.NoError(t, err)
		assert.Nil(t, batch)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepositoryList(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &ImportRepository{db: mockDB}

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "explicit limit", limit: 5, wantLimit: 5},
		{name: "default limit", limit: 0, wantLimit: defaultImportListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "import_batches" ORDER BY created_at DESC LIMIT $1`)).
				WithArgs(tt.wantLimit).
				WillReturnRows(sqlmock.NewRows([]string{"id", "file_name"}).
					AddRow("b", "Orders.csv").
					AddRow("a", "Fills.csv"))

			batches, err := repo.List(context.Background(), tt.limit)
			require.NoError(t, err)
			require.Len(t, batches, 2)
			assert.Equal(t, "Orders.csv", batches[0].FileName)
		})
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepositoryListsRecordedBatches(t *testing.T) {
	db := newSQLiteDB(t)
	trades := (&TradeRepository{}).WithDB(db)
	repo := (&ImportRepository{}).WithDB(db)
	ctx := context.Background()

	older := &model.ImportBatch{ID: "00000000-0000-0000-0000-000000000001", FileName: "Fills.csv", Format: "fills", Outcome: "ok", Rows: 6, Added: 3,
		CreatedAt: time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)}
	newer := &model.ImportBatch{ID: "00000000-0000-0000-0000-000000000002", FileName: "Orders.csv", Format: "orders", Outcome: "ok", Rows: 4, Added: 1, Skipped: 2,
		CreatedAt: time.Date(2026, 2, 12, 8, 0, 0, 0, time.UTC)}

	require.NoError(t, trades.ReplaceAll(ctx, sampleRecords(older.ID, 3), older))
	require.NoError(t, trades.ReplaceAll(ctx, sampleRecords(newer.ID, 4), newer))

	latest, err := repo.FindLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Equal(t, 2, latest.Skipped)

	batches, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "Orders.csv", batches[0].FileName)
	assert.Equal(t, "Fills.csv", batches[1].FileName)
}

func TestImportRepositoryFindLatestEmpty(t *testing.T) {
	repo := (&ImportRepository{}).WithDB(newSQLiteDB(t))

	latest, err := repo.FindLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}
