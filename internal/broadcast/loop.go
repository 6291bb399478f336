package broadcast

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// run is the body of one per-instrument broadcast loop. Fetch failures are
// logged and the loop sleeps until the next tick; only cancellation ends it.
func (r *Registry) run(ctx context.Context, lp *loop) {
	defer close(lp.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		view, err := r.source.FetchView(ctx, lp.slug)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if r.logger != nil {
				r.logger.Warn("broadcast fetch failed",
					zap.Uint64("instrument_id", lp.instrumentID),
					zap.Error(err),
				)
			}
			continue
		}

		update := Update{
			Type:         "market_update",
			InstrumentID: lp.instrumentID,
			Timestamp:    time.Now().UTC(),
			Data:         *view,
		}

		// Push outside the sink lock; a broken subscriber is detached on the
		// spot, which may cancel this loop if it was the last one.
		for _, sink := range lp.snapshotSinks() {
			if err := sink.Send(ctx, update); err != nil {
				if r.logger != nil {
					r.logger.Info("subscriber push failed, detaching",
						zap.Uint64("instrument_id", lp.instrumentID),
						zap.Error(err),
					)
				}
				r.Detach(lp.instrumentID, sink)
			}
		}
	}
}
