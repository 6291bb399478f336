package gamma

import (
	"errors"
	"testing"

	"polytracker/internal/apperr"
)

func TestExtractOutcomes_ParallelEncoding(t *testing.T) {
	raw := []byte(`{
		"slug": "test-event",
		"volume": "2500.5",
		"markets": [{
			"outcomes": "[\"Yes\",\"No\"]",
			"outcomePrices": "[\"0.62\",\"0.38\"]",
			"clobTokenIds": "[\"tok-a\",\"tok-b\"]",
			"volume": "1200"
		}]
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("outcomes=%d want 2", len(outs))
	}
	if outs[0].TokenID != "tok-a" || outs[0].Name != "Yes" || outs[0].Price != 0.62 {
		t.Fatalf("outs[0]=%+v", outs[0])
	}
	if outs[1].TokenID != "tok-b" || outs[1].Name != "No" || outs[1].Price != 0.38 {
		t.Fatalf("outs[1]=%+v", outs[1])
	}
	if outs[0].Volume == nil || *outs[0].Volume != 1200 {
		t.Fatalf("volume=%v want market-level 1200", outs[0].Volume)
	}
}

func TestExtractOutcomes_LegacyEncoding(t *testing.T) {
	raw := []byte(`{
		"markets": [{
			"outcomes": [
				{"id": "tok-a", "title": "Yes", "price": "0.7"},
				{"id": "tok-b", "title": "No", "price": 0.3}
			]
		}]
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("outcomes=%d want 2", len(outs))
	}
	if outs[0].Price != 0.7 || outs[1].Price != 0.3 {
		t.Fatalf("prices=%v,%v", outs[0].Price, outs[1].Price)
	}
}

func TestExtractOutcomes_LegacyFallbackKeys(t *testing.T) {
	raw := []byte(`{
		"markets": [{
			"outcomes": [
				{"outcome_id": "tok-a", "name": "Yes", "price": 0.5},
				{"outcome_id": "tok-b", "name": "No", "price": 0.5}
			]
		}]
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if outs[0].TokenID != "tok-a" || outs[0].Name != "Yes" {
		t.Fatalf("outs[0]=%+v", outs[0])
	}
}

func TestExtractOutcomes_SkipsMalformedSibling(t *testing.T) {
	raw := []byte(`{
		"markets": [{
			"outcomes": [
				{"id": "", "title": "Broken", "price": 0.5},
				{"id": "tok-b", "title": "Fine", "price": 0.5}
			]
		}]
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(outs) != 1 {
		t.Fatalf("outcomes=%d want 1", len(outs))
	}
	if outs[0].TokenID != "tok-b" {
		t.Fatalf("kept=%q want tok-b", outs[0].TokenID)
	}
}

func TestExtractOutcomes_EventLevelVolumeFallback(t *testing.T) {
	raw := []byte(`{
		"volume": 3000,
		"liquidity": "800",
		"markets": [{
			"outcomes": "[\"Yes\",\"No\"]",
			"outcomePrices": "[\"0.5\",\"0.5\"]",
			"clobTokenIds": "[\"a\",\"b\"]"
		}]
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if outs[0].Volume == nil || *outs[0].Volume != 3000 {
		t.Fatalf("volume=%v want event-level 3000", outs[0].Volume)
	}
	if outs[0].Liquidity == nil || *outs[0].Liquidity != 800 {
		t.Fatalf("liquidity=%v want event-level 800", outs[0].Liquidity)
	}
}

func TestExtractOutcomes_SingleMarketDocument(t *testing.T) {
	raw := []byte(`{
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.9\",\"0.1\"]",
		"clobTokenIds": "[\"a\",\"b\"]"
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("outcomes=%d want 2", len(outs))
	}
}

func TestExtractOutcomes_NoUsableOutcomes(t *testing.T) {
	raw := []byte(`{"markets": [{"outcomes": "[]"}]}`)
	_, err := ExtractOutcomes(raw)
	var malformed *apperr.MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("err=%v want MalformedDataError", err)
	}
}

func TestExtractOutcomes_MissingPricesDefaultZero(t *testing.T) {
	raw := []byte(`{
		"markets": [{
			"outcomes": "[\"Yes\",\"No\"]",
			"clobTokenIds": "[\"a\",\"b\"]"
		}]
	}`)

	outs, err := ExtractOutcomes(raw)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	for _, o := range outs {
		if o.Price != 0 {
			t.Fatalf("price=%v want 0 when outcomePrices is absent", o.Price)
		}
	}
}

func TestFlexFloat(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`1.5`, 1.5},
		{`"2.25"`, 2.25},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tc := range cases {
		var f flexFloat
		if err := f.UnmarshalJSON([]byte(tc.raw)); err != nil {
			t.Fatalf("raw=%s err=%v", tc.raw, err)
		}
		if float64(f) != tc.want {
			t.Fatalf("raw=%s got=%v want=%v", tc.raw, float64(f), tc.want)
		}
	}
}
