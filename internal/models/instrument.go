package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Instrument is a tracked prediction market. It owns its outcomes and
// snapshots; deleting an instrument removes both, plus its alerts.
type Instrument struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement"`
	Slug       string           `gorm:"type:text;uniqueIndex;not null;comment:external URL slug"`
	ExternalID *string          `gorm:"type:text;index;comment:upstream market id"`
	Title      string           `gorm:"type:text;not null"`
	TagSlug    *string          `gorm:"type:text;index;comment:category tag the market was added from"`
	Volume     *decimal.Decimal `gorm:"type:numeric(30,10)"`
	Liquidity  *decimal.Decimal `gorm:"type:numeric(30,10)"`
	RawJSON    datatypes.JSON   `gorm:"type:jsonb;comment:last raw event payload"`
	CreatedAt  time.Time        `gorm:"type:timestamptz;autoCreateTime"`
}

func (Instrument) TableName() string {
	return "tracked_markets"
}
