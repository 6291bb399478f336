package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"polytracker/internal/models"
	"polytracker/internal/repository"
)

// AlertLedger persists candidate shifts as alert rows and owns the single
// forward status edge active -> acknowledged. Nothing here ever expires or
// deletes an alert; retention is external housekeeping.
type AlertLedger struct {
	Repo   repository.Repository
	Logger *zap.Logger

	Now func() time.Time
}

func (l *AlertLedger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now().UTC()
}

// Record inserts one active alert row per candidate, all stamped with the
// same time. Each candidate is an independent row: a failed insert is logged
// and the rest still go through.
func (l *AlertLedger) Record(ctx context.Context, candidates []CandidateShift) error {
	if len(candidates) == 0 {
		return nil
	}
	now := l.now()
	var errs []error
	for _, cand := range candidates {
		outcomeID := cand.OutcomeID
		impact := cand.VolumeImpact
		alert := models.Alert{
			InstrumentID:    cand.InstrumentID,
			OutcomeID:       &outcomeID,
			PrevProbability: cand.PrevProbability,
			NewProbability:  cand.NewProbability,
			Delta:           cand.Delta,
			DeltaPercent:    cand.DeltaPercent,
			Volume:          cand.Volume,
			VolumeImpact:    &impact,
			TS:              now,
			Status:          models.AlertStatusActive,
		}
		if err := l.Repo.InsertAlert(ctx, &alert); err != nil {
			if l.Logger != nil {
				l.Logger.Warn("alert insert failed",
					zap.Uint64("instrument_id", cand.InstrumentID),
					zap.Uint64("outcome_id", cand.OutcomeID),
					zap.Error(err),
				)
			}
			errs = append(errs, fmt.Errorf("outcome %d: %w", cand.OutcomeID, err))
		}
	}
	return errors.Join(errs...)
}

// Acknowledge flips an alert to acknowledged. Acknowledging an
// already-acknowledged alert is a no-op success; only a missing id is an
// error.
func (l *AlertLedger) Acknowledge(ctx context.Context, alertID uint64) error {
	alert, err := l.Repo.GetAlertByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert.Status == models.AlertStatusAcknowledged {
		return nil
	}
	return l.Repo.UpdateAlertStatus(ctx, alertID, models.AlertStatusAcknowledged)
}
