package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"polytracker/internal/apperr"
	"polytracker/internal/models"
	"polytracker/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	instruments map[uint64]models.Instrument
	outcomes    []models.Outcome
	snapshots   []models.Snapshot
	alerts      []models.Alert
	trending    []models.TrendingCategory

	nextOutcomeID uint64
	nextAlertID   uint64

	insertSnapshotErr error
	observedCalls     int
}

func newStubRepo() *stubRepo {
	return &stubRepo{instruments: map[uint64]models.Instrument{}}
}

func (s *stubRepo) CreateInstrument(ctx context.Context, item *models.Instrument) error {
	if item.ID == 0 {
		item.ID = uint64(len(s.instruments) + 1)
	}
	s.instruments[item.ID] = *item
	return nil
}

func (s *stubRepo) GetInstrumentByID(ctx context.Context, id uint64) (*models.Instrument, error) {
	inst, ok := s.instruments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &inst, nil
}

func (s *stubRepo) GetInstrumentBySlug(ctx context.Context, slug string) (*models.Instrument, error) {
	for _, inst := range s.instruments {
		if inst.Slug == slug {
			inst := inst
			return &inst, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *stubRepo) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	out := make([]models.Instrument, 0, len(s.instruments))
	for _, inst := range s.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) DeleteInstrument(ctx context.Context, id uint64) error {
	if _, ok := s.instruments[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.instruments, id)
	return nil
}

func (s *stubRepo) UpdateInstrumentObserved(ctx context.Context, id uint64, volume, liquidity *decimal.Decimal, raw []byte) error {
	s.observedCalls++
	inst, ok := s.instruments[id]
	if !ok {
		return apperr.ErrNotFound
	}
	inst.Volume = volume
	inst.Liquidity = liquidity
	s.instruments[id] = inst
	return nil
}

func (s *stubRepo) GetOrCreateOutcome(ctx context.Context, instrumentID uint64, tokenID, name string) (*models.Outcome, error) {
	for _, o := range s.outcomes {
		if o.InstrumentID == instrumentID && o.TokenID == tokenID {
			o := o
			return &o, nil
		}
	}
	s.nextOutcomeID++
	outcome := models.Outcome{
		ID:           s.nextOutcomeID,
		InstrumentID: instrumentID,
		TokenID:      tokenID,
		Name:         name,
	}
	s.outcomes = append(s.outcomes, outcome)
	return &outcome, nil
}

func (s *stubRepo) ListOutcomesByInstrument(ctx context.Context, instrumentID uint64) ([]models.Outcome, error) {
	var out []models.Outcome
	for _, o := range s.outcomes {
		if o.InstrumentID == instrumentID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubRepo) InsertSnapshots(ctx context.Context, batch []models.Snapshot) error {
	if s.insertSnapshotErr != nil {
		return s.insertSnapshotErr
	}
	s.snapshots = append(s.snapshots, batch...)
	return nil
}

// ListSnapshotsSince mirrors the store's newest-first ordering.
func (s *stubRepo) ListSnapshotsSince(ctx context.Context, instrumentID uint64, since time.Time) ([]models.Snapshot, error) {
	var out []models.Snapshot
	for _, snap := range s.snapshots {
		if snap.InstrumentID == instrumentID && !snap.TS.Before(since) {
			out = append(out, snap)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *stubRepo) ListSnapshotsRange(ctx context.Context, instrumentID uint64, from time.Time) ([]models.Snapshot, error) {
	var out []models.Snapshot
	for _, snap := range s.snapshots {
		if snap.InstrumentID == instrumentID && !snap.TS.Before(from) {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *stubRepo) InsertAlert(ctx context.Context, item *models.Alert) error {
	s.nextAlertID++
	item.ID = s.nextAlertID
	s.alerts = append(s.alerts, *item)
	return nil
}

func (s *stubRepo) GetAlertByID(ctx context.Context, id uint64) (*models.Alert, error) {
	for _, a := range s.alerts {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *stubRepo) ListAlerts(ctx context.Context, params repository.ListAlertsParams) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range s.alerts {
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		if params.InstrumentID != nil && a.InstrumentID != *params.InstrumentID {
			continue
		}
		out = append(out, a)
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubRepo) ListAlertsByImpact(ctx context.Context, instrumentID uint64) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range s.alerts {
		if a.InstrumentID == instrumentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) FindActiveAlertSince(ctx context.Context, instrumentID uint64, outcomeID uint64, since time.Time) (*models.Alert, error) {
	for _, a := range s.alerts {
		if a.InstrumentID != instrumentID || a.Status != models.AlertStatusActive {
			continue
		}
		if a.OutcomeID == nil || *a.OutcomeID != outcomeID {
			continue
		}
		if a.TS.Before(since) {
			continue
		}
		a := a
		return &a, nil
	}
	return nil, nil
}

func (s *stubRepo) UpdateAlertStatus(ctx context.Context, id uint64, status string) error {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Status = status
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (s *stubRepo) ReplaceTrendingCategories(ctx context.Context, items []models.TrendingCategory) error {
	s.trending = append([]models.TrendingCategory(nil), items...)
	return nil
}

func (s *stubRepo) ListTrendingCategories(ctx context.Context) ([]models.TrendingCategory, error) {
	return s.trending, nil
}

var _ repository.Repository = (*stubRepo)(nil)
