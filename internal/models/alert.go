package models

import "time"

const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
)

// Alert is a persisted probability shift. Status only ever moves
// active -> acknowledged; rows are never auto-expired or deleted here.
// OutcomeID is a weak reference: the alert stays valid even if the outcome
// record later changes.
type Alert struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	InstrumentID    uint64    `gorm:"index;not null"`
	OutcomeID       *uint64   `gorm:"index"`
	PrevProbability float64   `gorm:"not null"`
	NewProbability  float64   `gorm:"not null"`
	Delta           float64   `gorm:"not null"`
	DeltaPercent    float64   `gorm:"not null"`
	Volume          *float64  `gorm:"comment:volume at the moment of the shift"`
	VolumeImpact    *float64  `gorm:"comment:severity score abs(delta) * volume"`
	TS              time.Time `gorm:"type:timestamptz;index;not null"`
	Status          string    `gorm:"type:varchar(20);index;not null;default:active"`
}

func (Alert) TableName() string {
	return "alerts"
}
