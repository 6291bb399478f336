package broadcast

import (
	"context"
	"encoding/json"
	"time"
)

// Update is one push message delivered to every subscriber of an instrument.
type Update struct {
	Type         string     `json:"type"`
	InstrumentID uint64     `json:"instrument_id"`
	Timestamp    time.Time  `json:"timestamp"`
	Data         UpdateData `json:"data"`
}

type UpdateData struct {
	Outcomes     []OutcomeView     `json:"outcomes"`
	RecentTrades []json.RawMessage `json:"recent_trades"`
	Volume24h    float64           `json:"volume_24h"`
	Liquidity    float64           `json:"liquidity"`
}

// OutcomeView is presentation state: raw price shown as-is, not the
// store-side normalized probability.
type OutcomeView struct {
	TokenID     string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Probability float64 `json:"prob"`
	Volume      float64 `json:"volume"`
	Liquidity   float64 `json:"liquidity"`
}

// Sink carries updates to one subscriber. A failed Send detaches the sink.
type Sink interface {
	Send(ctx context.Context, update Update) error
	Close() error
}

// ViewSource builds the presentation payload for one instrument slug.
type ViewSource interface {
	FetchView(ctx context.Context, slug string) (*UpdateData, error)
}
