package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendingCategory is a cache row: category score = sum of 24h volumes of
// the events carrying its tag. The whole table is replaced on refresh.
type TrendingCategory struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	Slug       string          `gorm:"type:text;uniqueIndex;not null"`
	Label      string          `gorm:"type:text;not null"`
	Score      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Count      int             `gorm:"not null;comment:number of events carrying the tag"`
	ComputedAt time.Time       `gorm:"type:timestamptz;not null"`
}

func (TrendingCategory) TableName() string {
	return "trending_category_cache"
}
