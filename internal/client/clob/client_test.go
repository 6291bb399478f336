package clob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"polytracker/internal/apperr"
)

func TestDecodeTradeList_BareArray(t *testing.T) {
	items, err := decodeTradeList([]byte(`[{"price":"0.6"},{"price":"0.4"}]`), 10)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items=%d want 2", len(items))
	}
}

func TestDecodeTradeList_DataWrapper(t *testing.T) {
	items, err := decodeTradeList([]byte(`{"data":[{"price":"0.6"}]}`), 10)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items=%d want 1", len(items))
	}
}

func TestDecodeTradeList_LimitApplied(t *testing.T) {
	items, err := decodeTradeList([]byte(`[{},{},{},{}]`), 2)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items=%d want 2", len(items))
	}
}

func TestDecodeTradeList_Garbage(t *testing.T) {
	if _, err := decodeTradeList([]byte(`<html>`), 10); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book" || r.URL.Query().Get("token_id") != "tok-a" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"market":"m1","bids":[{"price":"0.59","size":"100"}],"asks":[{"price":"0.61","size":"80"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	book, err := client.GetBook(context.Background(), "tok-a")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if book.Market != "m1" || len(book.Bids) != 1 || len(book.Asks) != 1 {
		t.Fatalf("book=%+v", book)
	}
}

func TestGetTrades_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	_, err := client.GetTrades(context.Background(), "m1", 5)
	if !apperr.IsUnavailable(err) {
		t.Fatalf("err=%v want unavailable", err)
	}
}
