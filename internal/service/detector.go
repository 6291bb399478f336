package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"polytracker/internal/config"
	"polytracker/internal/models"
	"polytracker/internal/repository"
)

// CandidateShift is a detected, not-yet-persisted probability shift. The
// ledger turns candidates into alert rows; the detector itself never writes.
type CandidateShift struct {
	InstrumentID    uint64
	OutcomeID       uint64
	PrevProbability float64
	NewProbability  float64
	Delta           float64
	DeltaPercent    float64
	Volume          *float64
	VolumeImpact    float64
}

// ShiftDetector compares the temporal extremes of a lookback window per
// outcome and flags moves that clear either the absolute or the relative
// threshold. Comparing window extremes rather than adjacent samples makes
// the detector width-sensitive and smooths single-tick noise.
type ShiftDetector struct {
	Repo   repository.Repository
	Config config.AlertsConfig
	Logger *zap.Logger

	// Now is overridable in tests; defaults to time.Now UTC.
	Now func() time.Time
}

func (d *ShiftDetector) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d *ShiftDetector) window() time.Duration {
	if d.Config.DetectionWindow > 0 {
		return d.Config.DetectionWindow
	}
	return time.Hour
}

func (d *ShiftDetector) cooldown() time.Duration {
	if d.Config.Cooldown > 0 {
		return d.Config.Cooldown
	}
	return 15 * time.Minute
}

func (d *ShiftDetector) absThreshold() float64 {
	if d.Config.AbsoluteDeltaThreshold > 0 {
		return d.Config.AbsoluteDeltaThreshold
	}
	return 0.05
}

func (d *ShiftDetector) relThreshold() float64 {
	if d.Config.RelativeDeltaThreshold > 0 {
		return d.Config.RelativeDeltaThreshold
	}
	return 0.20
}

// Detect returns one candidate per outcome whose probability shifted enough
// inside the window. Outcomes under cooldown or under the volume floor are
// skipped.
func (d *ShiftDetector) Detect(ctx context.Context, instrumentID uint64) ([]CandidateShift, error) {
	now := d.now()
	since := now.Add(-d.window())

	snapshots, err := d.Repo.ListSnapshotsSince(ctx, instrumentID, since)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	if len(snapshots) < 2 {
		return nil, nil
	}

	// Partition by outcome; rows arrive newest-first, so index 0 is the
	// latest sample and the last index the oldest in window.
	byOutcome := map[uint64][]models.Snapshot{}
	for _, snap := range snapshots {
		byOutcome[snap.OutcomeID] = append(byOutcome[snap.OutcomeID], snap)
	}

	cooldownCutoff := now.Add(-d.cooldown())
	var candidates []CandidateShift
	for outcomeID, series := range byOutcome {
		if len(series) < 2 {
			continue
		}
		latest := series[0]
		previous := series[len(series)-1]

		// Missing volume means no filtering, not suppression.
		if latest.Volume != nil && *latest.Volume < d.Config.MinVolumeThreshold {
			continue
		}

		// Cooldown is evaluated against persisted alert state, per
		// (instrument, outcome), never in memory.
		recent, err := d.Repo.FindActiveAlertSince(ctx, instrumentID, outcomeID, cooldownCutoff)
		if err != nil {
			return nil, fmt.Errorf("cooldown probe: %w", err)
		}
		if recent != nil {
			continue
		}

		delta := latest.Probability - previous.Probability
		deltaPercent := 0.0
		if previous.Probability > 0 {
			deltaPercent = delta / previous.Probability * 100
		}

		absoluteShift := math.Abs(delta) >= d.absThreshold()
		relativeShift := math.Abs(deltaPercent) >= d.relThreshold()*100
		if !absoluteShift && !relativeShift {
			continue
		}

		volume := 0.0
		if latest.Volume != nil {
			volume = *latest.Volume
		}
		candidates = append(candidates, CandidateShift{
			InstrumentID:    instrumentID,
			OutcomeID:       outcomeID,
			PrevProbability: previous.Probability,
			NewProbability:  latest.Probability,
			Delta:           delta,
			DeltaPercent:    deltaPercent,
			Volume:          latest.Volume,
			VolumeImpact:    math.Abs(delta) * volume,
		})
	}

	if len(candidates) > 0 && d.Logger != nil {
		d.Logger.Info("shift candidates detected",
			zap.Uint64("instrument_id", instrumentID),
			zap.Int("count", len(candidates)),
		)
	}
	return candidates, nil
}
