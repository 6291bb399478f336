package db

import (
	"polytracker/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Instrument{},
		&models.Outcome{},
		&models.Snapshot{},
		&models.Alert{},
		&models.TrendingCategory{},
	)
}
