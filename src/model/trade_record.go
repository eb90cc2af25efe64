package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is the persisted form of a Trade. Position is the dense ordinal
// assigned after the last merge; Fingerprint is the dedup key.
type TradeRecord struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Fingerprint        string          `gorm:"size:255;uniqueIndex" json:"fingerprint"`
	Position           int             `gorm:"index" json:"position"`
	Symbol             string          `gorm:"size:40;index" json:"symbol"`
	Qty                int             `gorm:"not null;default:1" json:"qty"`
	BuyPrice           decimal.Decimal `gorm:"type:numeric(20,8)" json:"buy_price"`
	SellPrice          decimal.Decimal `gorm:"type:numeric(20,8)" json:"sell_price"`
	PnL                decimal.Decimal `gorm:"type:numeric(20,2);column:pnl" json:"pnl"`
	Commission         decimal.Decimal `gorm:"type:numeric(20,2)" json:"commission"`
	BoughtAt           time.Time       `gorm:"not null" json:"bought_at"`
	SoldAt             time.Time       `gorm:"not null;index" json:"sold_at"`
	Duration           string          `gorm:"size:40" json:"duration"`
	Direction          string          `gorm:"size:10;not null" json:"direction"`
	ProductDescription string          `gorm:"size:255" json:"product_description,omitempty"`
	TradeDate          string          `gorm:"size:10;index" json:"trade_date"`
	DayOfWeek          string          `gorm:"size:10" json:"day_of_week"`
	ImportBatchID      string          `gorm:"size:36;index" json:"import_batch_id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (TradeRecord) TableName() string {
	return "trades"
}

// NewTradeRecord converts a trade into its row form.
func NewTradeRecord(t Trade, fingerprint, batchID string) *TradeRecord {
	return &TradeRecord{
		Fingerprint:        fingerprint,
		Position:           t.ID,
		Symbol:             t.Symbol,
		Qty:                t.Qty,
		BuyPrice:           decimal.NewFromFloat(t.EntryPrice),
		SellPrice:          decimal.NewFromFloat(t.ExitPrice),
		PnL:                decimal.NewFromFloat(t.PnL),
		Commission:         decimal.NewFromFloat(t.Commission),
		BoughtAt:           t.EntryTime.UTC(),
		SoldAt:             t.ExitTime.UTC(),
		Duration:           t.Duration,
		Direction:          string(t.Direction),
		ProductDescription: t.ProductDescription,
		TradeDate:          t.TradeDate,
		DayOfWeek:          t.DayOfWeek,
		ImportBatchID:      batchID,
	}
}

// ConvertToTrade returns the domain trade held by the row.
func (r *TradeRecord) ConvertToTrade() Trade {
	return Trade{
		ID:                 r.Position,
		Symbol:             r.Symbol,
		Qty:                r.Qty,
		EntryPrice:         r.BuyPrice.InexactFloat64(),
		ExitPrice:          r.SellPrice.InexactFloat64(),
		PnL:                r.PnL.InexactFloat64(),
		Commission:         r.Commission.InexactFloat64(),
		EntryTime:          r.BoughtAt.UTC(),
		ExitTime:           r.SoldAt.UTC(),
		Duration:           r.Duration,
		Direction:          Direction(r.Direction),
		ProductDescription: r.ProductDescription,
		TradeDate:          r.TradeDate,
		DayOfWeek:          r.DayOfWeek,
	}
}

// ImportBatch records one ingested source file.
type ImportBatch struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	Format    string    `gorm:"size:20;not null" json:"format"`
	Outcome   string    `gorm:"size:20;not null" json:"outcome"`
	Rows      int       `json:"rows"`
	Added     int       `json:"added"`
	Skipped   int       `json:"skipped"`
	Defaulted int       `json:"defaulted"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ImportBatch) TableName() string {
	return "import_batches"
}
