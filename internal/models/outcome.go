package models

// Outcome is one resolvable side of an instrument (Yes/No, a candidate, ...).
// Rows are created lazily the first time a token id appears in fetched market
// data and live exactly as long as their instrument.
type Outcome struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	InstrumentID uint64 `gorm:"index:idx_outcome_instrument_token,unique;not null"`
	TokenID      string `gorm:"type:text;index:idx_outcome_instrument_token,unique;not null;comment:external token id"`
	Name         string `gorm:"type:text;not null"`
}

func (Outcome) TableName() string {
	return "outcomes"
}
