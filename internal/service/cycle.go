package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"polytracker/internal/apperr"
	"polytracker/internal/repository"
)

// Cycle orchestrates one scheduler tick: ingest a fresh snapshot batch, then
// detect shifts against the committed store and record them. Within one
// instrument the batch is fully committed before the detector reads;
// failures of one instrument never abort the others.
type Cycle struct {
	Repo     repository.Repository
	Ingest   *SnapshotIngestService
	Detector *ShiftDetector
	Ledger   *AlertLedger
	Logger   *zap.Logger
}

// RunInstrument refreshes and evaluates a single instrument.
func (c *Cycle) RunInstrument(ctx context.Context, instrumentID uint64) error {
	if _, err := c.Ingest.Ingest(ctx, instrumentID); err != nil {
		return err
	}
	candidates, err := c.Detector.Detect(ctx, instrumentID)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}
	return c.Ledger.Record(ctx, candidates)
}

// Run processes every tracked instrument in turn. Per-instrument failures
// are logged and skipped; only a failure to enumerate instruments is
// returned.
func (c *Cycle) Run(ctx context.Context) error {
	instruments, err := c.Repo.ListInstruments(ctx)
	if err != nil {
		return fmt.Errorf("list instruments: %w", err)
	}
	for _, instrument := range instruments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.RunInstrument(ctx, instrument.ID); err != nil {
			if c.Logger != nil {
				level := c.Logger.Warn
				if apperr.IsUnavailable(err) {
					// Routine upstream hiccup; the next tick retries.
					level = c.Logger.Info
				}
				level("instrument cycle failed",
					zap.Uint64("instrument_id", instrument.ID),
					zap.String("slug", instrument.Slug),
					zap.Error(err),
				)
			}
			continue
		}
	}
	return nil
}
