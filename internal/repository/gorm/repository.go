package gormrepository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"polytracker/internal/apperr"
	"polytracker/internal/models"
	"polytracker/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

// --- instruments ------------------------------------------------------------

func (s *Store) CreateInstrument(ctx context.Context, item *models.Instrument) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetInstrumentByID(ctx context.Context, id uint64) (*models.Instrument, error) {
	var item models.Instrument
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("instrument %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetInstrumentBySlug(ctx context.Context, slug string) (*models.Instrument, error) {
	var item models.Instrument
	err := s.db.WithContext(ctx).First(&item, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("instrument %q: %w", slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	var items []models.Instrument
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteInstrument removes the instrument and everything it owns in one
// transaction. Alerts go too: they reference by id only, but keeping rows
// for untracked markets serves nobody.
func (s *Store) DeleteInstrument(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Instrument{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("instrument %d: %w", id, apperr.ErrNotFound)
		}
		if err := tx.Where("instrument_id = ?", id).Delete(&models.Snapshot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instrument_id = ?", id).Delete(&models.Alert{}).Error; err != nil {
			return err
		}
		return tx.Where("instrument_id = ?", id).Delete(&models.Outcome{}).Error
	})
}

// UpdateInstrumentObserved refreshes the instrument's last observed market
// figures; called by the ingestion cycle after a successful fetch.
func (s *Store) UpdateInstrumentObserved(ctx context.Context, id uint64, volume, liquidity *decimal.Decimal, raw []byte) error {
	updates := map[string]any{}
	if volume != nil {
		updates["volume"] = *volume
	}
	if liquidity != nil {
		updates["liquidity"] = *liquidity
	}
	if len(raw) > 0 {
		updates["raw_json"] = datatypes.JSON(raw)
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Instrument{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// --- outcomes ---------------------------------------------------------------

func (s *Store) GetOrCreateOutcome(ctx context.Context, instrumentID uint64, tokenID, name string) (*models.Outcome, error) {
	var item models.Outcome
	err := s.db.WithContext(ctx).
		First(&item, "instrument_id = ? AND token_id = ?", instrumentID, tokenID).Error
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	item = models.Outcome{
		InstrumentID: instrumentID,
		TokenID:      tokenID,
		Name:         name,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListOutcomesByInstrument(ctx context.Context, instrumentID uint64) ([]models.Outcome, error) {
	var items []models.Outcome
	if err := s.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- snapshots --------------------------------------------------------------

func (s *Store) InsertSnapshots(ctx context.Context, batch []models.Snapshot) error {
	if len(batch) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&batch).Error
}

// ListSnapshotsSince returns snapshots in [since, now] newest-first; this is
// the detector's read path.
func (s *Store) ListSnapshotsSince(ctx context.Context, instrumentID uint64, since time.Time) ([]models.Snapshot, error) {
	var items []models.Snapshot
	if err := s.db.WithContext(ctx).
		Where("instrument_id = ? AND ts >= ?", instrumentID, since).
		Order("ts DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListSnapshotsRange is the ascending variant used by the history endpoint.
func (s *Store) ListSnapshotsRange(ctx context.Context, instrumentID uint64, from time.Time) ([]models.Snapshot, error) {
	var items []models.Snapshot
	if err := s.db.WithContext(ctx).
		Where("instrument_id = ? AND ts >= ?", instrumentID, from).
		Order("ts ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- alerts -----------------------------------------------------------------

func (s *Store) InsertAlert(ctx context.Context, item *models.Alert) error {
	if item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAlertByID(ctx context.Context, id uint64) (*models.Alert, error) {
	var item models.Alert
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("alert %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListAlerts(ctx context.Context, params repository.ListAlertsParams) ([]models.Alert, error) {
	query := s.db.WithContext(ctx).Model(&models.Alert{})
	if params.Status != nil && *params.Status != "" {
		query = query.Where("status = ?", *params.Status)
	}
	if params.InstrumentID != nil {
		query = query.Where("instrument_id = ?", *params.InstrumentID)
	}
	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	var items []models.Alert
	if err := query.Order("ts DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListAlertsByImpact(ctx context.Context, instrumentID uint64) ([]models.Alert, error) {
	var items []models.Alert
	if err := s.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("volume_impact DESC NULLS LAST").
		Order("ts DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindActiveAlertSince is the cooldown probe: the newest active alert for
// (instrument, outcome) at or after since, or nil when there is none.
func (s *Store) FindActiveAlertSince(ctx context.Context, instrumentID uint64, outcomeID uint64, since time.Time) (*models.Alert, error) {
	var item models.Alert
	err := s.db.WithContext(ctx).
		Where("instrument_id = ? AND outcome_id = ? AND status = ? AND ts >= ?",
			instrumentID, outcomeID, models.AlertStatusActive, since).
		Order("ts DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateAlertStatus(ctx context.Context, id uint64, status string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// --- trending ---------------------------------------------------------------

func (s *Store) ReplaceTrendingCategories(ctx context.Context, items []models.TrendingCategory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TrendingCategory{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (s *Store) ListTrendingCategories(ctx context.Context) ([]models.TrendingCategory, error) {
	var items []models.TrendingCategory
	if err := s.db.WithContext(ctx).Order("score DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
