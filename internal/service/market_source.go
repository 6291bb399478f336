package service

import (
	"context"
	"encoding/json"

	"polytracker/internal/client/gamma"
)

// InstrumentState is the current upstream state of one instrument: its
// canonical outcome tuples plus event-level aggregates.
type InstrumentState struct {
	Outcomes  []gamma.MarketOutcome
	Volume    float64
	Liquidity float64
	Raw       json.RawMessage
}

// MarketDataSource supplies current market state for an instrument slug.
// Fetch failures surface as apperr.ErrUnavailable; present-but-broken
// payloads as apperr.MalformedDataError.
type MarketDataSource interface {
	FetchInstrumentState(ctx context.Context, slugOrID string) (*InstrumentState, error)
}

// GammaSource adapts the Gamma client to MarketDataSource.
type GammaSource struct {
	Client *gamma.Client
}

func (s *GammaSource) FetchInstrumentState(ctx context.Context, slugOrID string) (*InstrumentState, error) {
	ev, err := s.Client.GetEvent(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	outcomes, err := gamma.ExtractOutcomes(ev.Raw)
	if err != nil {
		return nil, err
	}
	return &InstrumentState{
		Outcomes:  outcomes,
		Volume:    ev.Volume,
		Liquidity: ev.Liquidity,
		Raw:       ev.Raw,
	}, nil
}
