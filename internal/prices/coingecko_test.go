package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCoinGecko_DailyPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/coins/bitcoin/market_chart") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vs_currency") != "usd" || q.Get("days") != "365" || q.Get("interval") != "daily" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}

		// Two points on 2024-01-15 (the later one must win) and one on
		// 2024-01-16. Timestamps are Unix ms.
		w.Write([]byte(`{"prices":[
			[1705276800000, 42000.0],
			[1705320000000, 42500.0],
			[1705363200000, 43000.0]
		]}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL)
	series, err := client.DailyPrices(context.Background(), "btc", 365)
	if err != nil {
		t.Fatalf("DailyPrices failed: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("expected 2 days, got %d: %v", len(series), series)
	}
	if series["2024-01-15"] != 42500.0 {
		t.Errorf("expected last point of day to win, got %v", series["2024-01-15"])
	}
	if series["2024-01-16"] != 43000.0 {
		t.Errorf("expected 43000 on 2024-01-16, got %v", series["2024-01-16"])
	}
}

func TestCoinGecko_RateLimitMeansEmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL)
	series, err := client.DailyPrices(context.Background(), "eth", 365)
	if err != nil {
		t.Fatalf("expected rate limit to degrade to empty series, got %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected empty series, got %v", series)
	}
}

func TestCoinGecko_ServerErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL)
	if _, err := client.DailyPrices(context.Background(), "sol", 365); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestCoinGecko_UnknownAsset(t *testing.T) {
	client := NewCoinGeckoClient("http://invalid.example")
	if _, err := client.DailyPrices(context.Background(), "doge", 365); err == nil {
		t.Fatal("expected error for unmapped asset")
	}
}
