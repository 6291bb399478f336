package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"polytracker/internal/client/gamma"
	"polytracker/internal/models"
	"polytracker/internal/repository"
)

// SnapshotBatch is the result of one ingestion call: every row shares the
// same timestamp and was committed in a single insert.
type SnapshotBatch struct {
	InstrumentID uint64
	TS           time.Time
	Snapshots    []models.Snapshot
}

// SnapshotIngestService fetches current market state, normalizes outcome
// prices into probabilities summing to one, lazily resolves outcomes and
// appends one snapshot batch per instrument.
type SnapshotIngestService struct {
	Repo   repository.Repository
	Source MarketDataSource
	Logger *zap.Logger

	Now func() time.Time
}

func (s *SnapshotIngestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Ingest runs one ingestion cycle for a single instrument. An unavailable
// source means no writes at all; the scheduler retries on its next tick.
func (s *SnapshotIngestService) Ingest(ctx context.Context, instrumentID uint64) (*SnapshotBatch, error) {
	instrument, err := s.Repo.GetInstrumentByID(ctx, instrumentID)
	if err != nil {
		return nil, err
	}

	state, err := s.Source.FetchInstrumentState(ctx, instrument.Slug)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", instrument.Slug, err)
	}
	if len(state.Outcomes) == 0 {
		return nil, fmt.Errorf("fetch %q: empty outcome set", instrument.Slug)
	}

	probs := NormalizeProbabilities(state.Outcomes)

	ts := s.now()
	batch := make([]models.Snapshot, 0, len(state.Outcomes))
	for i, outcome := range state.Outcomes {
		resolved, err := s.Repo.GetOrCreateOutcome(ctx, instrumentID, outcome.TokenID, outcome.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve outcome %q: %w", outcome.TokenID, err)
		}
		batch = append(batch, models.Snapshot{
			InstrumentID: instrumentID,
			OutcomeID:    resolved.ID,
			Probability:  probs[i],
			Volume:       outcome.Volume,
			Liquidity:    outcome.Liquidity,
			TS:           ts,
		})
	}

	if err := s.Repo.InsertSnapshots(ctx, batch); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	// Best-effort refresh of the instrument's observed aggregates; a failure
	// here does not invalidate the committed batch.
	var volume, liquidity *decimal.Decimal
	if state.Volume > 0 {
		v := decimal.NewFromFloat(state.Volume)
		volume = &v
	}
	if state.Liquidity > 0 {
		v := decimal.NewFromFloat(state.Liquidity)
		liquidity = &v
	}
	if err := s.Repo.UpdateInstrumentObserved(ctx, instrumentID, volume, liquidity, state.Raw); err != nil && s.Logger != nil {
		s.Logger.Warn("instrument observed update failed",
			zap.Uint64("instrument_id", instrumentID),
			zap.Error(err),
		)
	}

	return &SnapshotBatch{InstrumentID: instrumentID, TS: ts, Snapshots: batch}, nil
}

// NormalizeProbabilities maps raw prices to probabilities that sum to one.
// A non-positive price sum falls back to the uniform distribution.
func NormalizeProbabilities(outcomes []gamma.MarketOutcome) []float64 {
	total := 0.0
	for _, o := range outcomes {
		total += o.Price
	}
	probs := make([]float64, len(outcomes))
	if total > 0 {
		for i, o := range outcomes {
			probs[i] = o.Price / total
		}
		return probs
	}
	if len(outcomes) == 0 {
		return probs
	}
	uniform := 1.0 / float64(len(outcomes))
	for i := range probs {
		probs[i] = uniform
	}
	return probs
}
