package broadcast

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"polytracker/internal/client/clob"
	"polytracker/internal/service"
)

// MarketView assembles the broadcast payload from the market data source
// plus recent CLOB trades. Trade fetch failures degrade to an empty trade
// list rather than failing the whole view.
type MarketView struct {
	Source     service.MarketDataSource
	Trades     *clob.Client
	TradeLimit int
	Logger     *zap.Logger
}

func (v *MarketView) FetchView(ctx context.Context, slug string) (*UpdateData, error) {
	state, err := v.Source.FetchInstrumentState(ctx, slug)
	if err != nil {
		return nil, err
	}

	outcomes := make([]OutcomeView, 0, len(state.Outcomes))
	for _, outcome := range state.Outcomes {
		volume := 0.0
		if outcome.Volume != nil {
			volume = *outcome.Volume
		}
		liquidity := 0.0
		if outcome.Liquidity != nil {
			liquidity = *outcome.Liquidity
		}
		outcomes = append(outcomes, OutcomeView{
			TokenID:     outcome.TokenID,
			Name:        outcome.Name,
			Price:       outcome.Price,
			Probability: outcome.Price,
			Volume:      volume,
			Liquidity:   liquidity,
		})
	}

	trades := []json.RawMessage{}
	if v.Trades != nil {
		limit := v.TradeLimit
		if limit <= 0 {
			limit = 10
		}
		items, err := v.Trades.GetTrades(ctx, slug, limit)
		if err != nil {
			if v.Logger != nil {
				v.Logger.Debug("trade fetch failed", zap.String("slug", slug), zap.Error(err))
			}
		} else {
			trades = items
		}
	}

	return &UpdateData{
		Outcomes:     outcomes,
		RecentTrades: trades,
		Volume24h:    state.Volume,
		Liquidity:    state.Liquidity,
	}, nil
}
