package gamma

import (
	"bytes"
	"encoding/json"
	"strconv"

	"polytracker/internal/apperr"
)

// ExtractOutcomes turns a raw event payload into canonical outcome tuples.
//
// Gamma has shipped two encodings over time: a legacy list of outcome
// objects (`outcomes: [{id, title, price}, ...]`) and the current parallel
// string arrays (`outcomes: "[\"Yes\",\"No\"]"` with matching
// `outcomePrices` and `clobTokenIds`). Both are handled here and nowhere
// else. A single unusable outcome is dropped; an event with no usable
// outcomes at all is a MalformedDataError.
func ExtractOutcomes(eventRaw []byte) ([]MarketOutcome, error) {
	var doc struct {
		Markets   []json.RawMessage `json:"markets"`
		Outcomes  json.RawMessage   `json:"outcomes"`
		Volume    flexFloat         `json:"volume"`
		Liquidity flexFloat         `json:"liquidity"`
	}
	if err := json.Unmarshal(eventRaw, &doc); err != nil {
		return nil, &apperr.MalformedDataError{Field: "event", Reason: err.Error()}
	}

	markets := doc.Markets
	if len(markets) == 0 && len(doc.Outcomes) > 0 {
		// Some responses are a single market document, not an event wrapper.
		markets = []json.RawMessage{json.RawMessage(eventRaw)}
	}
	if len(markets) == 0 {
		return nil, &apperr.MalformedDataError{Field: "markets"}
	}

	var all []MarketOutcome
	for _, m := range markets {
		outs, err := parseMarketOutcomes(m, float64(doc.Volume), float64(doc.Liquidity))
		if err != nil {
			// One malformed market must not abort its siblings.
			continue
		}
		all = append(all, outs...)
	}
	if len(all) == 0 {
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: "no usable outcomes in any market"}
	}
	return all, nil
}

func parseMarketOutcomes(marketRaw json.RawMessage, eventVolume, eventLiquidity float64) ([]MarketOutcome, error) {
	var market struct {
		Outcomes      json.RawMessage `json:"outcomes"`
		OutcomePrices json.RawMessage `json:"outcomePrices"`
		ClobTokenIDs  json.RawMessage `json:"clobTokenIds"`
		Volume        flexFloat       `json:"volume"`
		Liquidity     flexFloat       `json:"liquidity"`
	}
	if err := json.Unmarshal(marketRaw, &market); err != nil {
		return nil, &apperr.MalformedDataError{Field: "market", Reason: err.Error()}
	}
	if len(market.Outcomes) == 0 {
		return nil, &apperr.MalformedDataError{Field: "outcomes"}
	}

	// Market-level figures fall back to the event-level ones; both may be
	// absent, in which case the pointers stay nil.
	volume := float64(market.Volume)
	if volume == 0 {
		volume = eventVolume
	}
	liquidity := float64(market.Liquidity)
	if liquidity == 0 {
		liquidity = eventLiquidity
	}
	var volPtr, liqPtr *float64
	if volume > 0 {
		volPtr = &volume
	}
	if liquidity > 0 {
		liqPtr = &liquidity
	}

	trimmed := bytes.TrimSpace(market.Outcomes)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		return parseLegacyOutcomes(trimmed, volPtr, liqPtr)
	case len(trimmed) > 0 && trimmed[0] == '"':
		return parseParallelOutcomes(trimmed, market.OutcomePrices, market.ClobTokenIDs, volPtr, liqPtr)
	default:
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: "unrecognized encoding"}
	}
}

// parseLegacyOutcomes handles `outcomes: [{id, title, price}, ...]`.
func parseLegacyOutcomes(raw []byte, volume, liquidity *float64) ([]MarketOutcome, error) {
	var items []struct {
		ID        string    `json:"id"`
		OutcomeID string    `json:"outcome_id"`
		Title     string    `json:"title"`
		Name      string    `json:"name"`
		Price     flexFloat `json:"price"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: err.Error()}
	}

	outs := make([]MarketOutcome, 0, len(items))
	for _, item := range items {
		tokenID := item.ID
		if tokenID == "" {
			tokenID = item.OutcomeID
		}
		name := item.Title
		if name == "" {
			name = item.Name
		}
		if tokenID == "" || name == "" {
			// Skip the malformed outcome, keep its siblings.
			continue
		}
		outs = append(outs, MarketOutcome{
			TokenID:   tokenID,
			Name:      name,
			Price:     float64(item.Price),
			Volume:    volume,
			Liquidity: liquidity,
		})
	}
	if len(outs) == 0 {
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: "no usable outcomes"}
	}
	return outs, nil
}

// parseParallelOutcomes handles the string-array triple: names, prices and
// token ids are each a JSON array encoded inside a JSON string, index-aligned.
func parseParallelOutcomes(namesRaw, pricesRaw, tokensRaw json.RawMessage, volume, liquidity *float64) ([]MarketOutcome, error) {
	names, err := decodeStringArray(namesRaw)
	if err != nil {
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: err.Error()}
	}
	if len(names) == 0 {
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: "empty outcome list"}
	}
	prices, err := decodeStringArray(pricesRaw)
	if err != nil {
		return nil, &apperr.MalformedDataError{Field: "outcomePrices", Reason: err.Error()}
	}
	tokens, err := decodeStringArray(tokensRaw)
	if err != nil {
		return nil, &apperr.MalformedDataError{Field: "clobTokenIds", Reason: err.Error()}
	}

	outs := make([]MarketOutcome, 0, len(names))
	for i, name := range names {
		if name == "" || i >= len(tokens) || tokens[i] == "" {
			continue
		}
		var price float64
		if i < len(prices) {
			price, _ = strconv.ParseFloat(prices[i], 64)
		}
		outs = append(outs, MarketOutcome{
			TokenID:   tokens[i],
			Name:      name,
			Price:     price,
			Volume:    volume,
			Liquidity: liquidity,
		})
	}
	if len(outs) == 0 {
		return nil, &apperr.MalformedDataError{Field: "outcomes", Reason: "no usable outcomes"}
	}
	return outs, nil
}

// decodeStringArray decodes a JSON array that may itself be wrapped in a
// JSON string (`"[\"a\",\"b\"]"`).
func decodeStringArray(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, err
		}
		trimmed = []byte(inner)
	}
	var items []string
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	return items, nil
}
