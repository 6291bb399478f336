package models

import "time"

// Snapshot is one immutable probability observation for an outcome.
// Append-only; all rows of one ingestion batch share the same TS.
type Snapshot struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	InstrumentID uint64    `gorm:"index;not null"`
	OutcomeID    uint64    `gorm:"index;not null"`
	Probability  float64   `gorm:"not null;comment:normalized implied probability in [0,1]"`
	Volume       *float64  `gorm:"comment:trade volume at observation time"`
	Liquidity    *float64  `gorm:"comment:book liquidity at observation time"`
	TS           time.Time `gorm:"type:timestamptz;index;not null"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}
