package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

func TestValidateAddress(t *testing.T) {
	valid := []string{
		testAddress,
		"0xABCDEF1234567890abcdef1234567890ABCDEF12",
	}
	for _, a := range valid {
		if err := ValidateAddress(a); err != nil {
			t.Errorf("ValidateAddress(%q): unexpected error %v", a, err)
		}
	}

	invalid := []string{
		"",
		"1234567890abcdef1234567890abcdef12345678",     // no prefix
		"0x1234567890abcdef1234567890abcdef1234567",    // too short
		"0x1234567890abcdef1234567890abcdef123456789a", // too long
		"0x1234567890abcdef1234567890abcdef1234567g",   // non-hex
	}
	for _, a := range invalid {
		if err := ValidateAddress(a); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%q): expected ErrInvalidAddress, got %v", a, err)
		}
	}
}

func TestUserFills_DecodesWireFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["type"] != "userFills" {
			t.Errorf("expected type userFills, got %v", req["type"])
		}
		if req["user"] != testAddress {
			t.Errorf("expected user %s, got %v", testAddress, req["user"])
		}
		if req["aggregateByTime"] != true {
			t.Error("expected aggregateByTime true")
		}

		w.Write([]byte(`[
			{"closedPnl":"12.5","coin":"ETH","crossed":true,"dir":"Close Long",
			 "hash":"0xaa","oid":77,"px":"2400.1","side":"A","startPosition":"1.5",
			 "sz":"0.5","time":1700000000000,"fee":"0.4","feeToken":"USDC","tid":9001}
		]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	fills, err := client.UserFills(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("UserFills failed: %v", err)
	}
	if len(fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(fills))
	}

	f := fills[0]
	if f.Coin != "ETH" || f.ClosedPnl != "12.5" || f.Side != "A" {
		t.Errorf("unexpected fill: %+v", f)
	}
	if f.Time != 1700000000000 || f.Tid != 9001 || f.Oid != 77 {
		t.Errorf("unexpected fill identifiers: %+v", f)
	}
}

func TestUserLedger_DecodesWireFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["type"] != "userNonFundingLedgerUpdates" {
			t.Errorf("expected type userNonFundingLedgerUpdates, got %v", req["type"])
		}

		w.Write([]byte(`[
			{"time":1690000000000,"hash":"0xbb","delta":{"type":"deposit","usdc":"1000"}},
			{"time":1691000000000,"hash":"0xcc","delta":{"type":"withdraw","usdc":"-250"}}
		]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	entries, err := client.UserLedger(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("UserLedger failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Delta.Type != "deposit" || entries[0].Delta.Usdc != "1000" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestUserFills_NonArrayResponseMeansEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"unknown user"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	fills, err := client.UserFills(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("expected non-array response to be treated as empty, got %v", err)
	}
	if len(fills) != 0 {
		t.Errorf("expected 0 fills, got %d", len(fills))
	}
}

func TestUserFills_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond),
	)

	if _, err := client.UserFills(context.Background(), testAddress); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestUserFills_ExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(1),
		WithRetryDelay(time.Millisecond),
	)

	if _, err := client.UserFills(context.Background(), testAddress); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestUserFills_RejectsInvalidAddress(t *testing.T) {
	// Must fail before any network traffic happens.
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected request for invalid address")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	if _, err := client.UserFills(context.Background(), "nonsense"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}
