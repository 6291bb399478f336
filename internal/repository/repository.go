package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"polytracker/internal/models"
)

type ListAlertsParams struct {
	Status       *string
	InstrumentID *uint64
	Limit        int
}

// Repository is the persistence boundary for the tracker core: tracked
// instruments with their outcome/snapshot/alert rows plus the trending
// cache. Reads that miss return apperr.ErrNotFound.
type Repository interface {
	// Instruments. Delete cascades to outcomes, snapshots and alerts.
	CreateInstrument(ctx context.Context, item *models.Instrument) error
	GetInstrumentByID(ctx context.Context, id uint64) (*models.Instrument, error)
	GetInstrumentBySlug(ctx context.Context, slug string) (*models.Instrument, error)
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
	DeleteInstrument(ctx context.Context, id uint64) error
	UpdateInstrumentObserved(ctx context.Context, id uint64, volume, liquidity *decimal.Decimal, raw []byte) error

	// Outcomes are resolved lazily by (instrument, external token id).
	GetOrCreateOutcome(ctx context.Context, instrumentID uint64, tokenID, name string) (*models.Outcome, error)
	ListOutcomesByInstrument(ctx context.Context, instrumentID uint64) ([]models.Outcome, error)

	// Snapshots are append-only; one ingestion batch is one insert.
	InsertSnapshots(ctx context.Context, batch []models.Snapshot) error
	ListSnapshotsSince(ctx context.Context, instrumentID uint64, since time.Time) ([]models.Snapshot, error)
	ListSnapshotsRange(ctx context.Context, instrumentID uint64, from time.Time) ([]models.Snapshot, error)

	// Alerts.
	InsertAlert(ctx context.Context, item *models.Alert) error
	GetAlertByID(ctx context.Context, id uint64) (*models.Alert, error)
	ListAlerts(ctx context.Context, params ListAlertsParams) ([]models.Alert, error)
	ListAlertsByImpact(ctx context.Context, instrumentID uint64) ([]models.Alert, error)
	FindActiveAlertSince(ctx context.Context, instrumentID uint64, outcomeID uint64, since time.Time) (*models.Alert, error)
	UpdateAlertStatus(ctx context.Context, id uint64, status string) error

	// Trending cache; refresh replaces the whole table.
	ReplaceTrendingCategories(ctx context.Context, items []models.TrendingCategory) error
	ListTrendingCategories(ctx context.Context) ([]models.TrendingCategory, error)
}
