// Package main provides the wrapped API server:
// - GET /api/wrapped: full wallet analysis (stats, what-if, personality)
// - GET /api/wrapped/latest: last persisted result for a wallet
// - POST /api/share + GET /api/share: share token encode/decode
// - GET /api/mids: live mid prices from the venue websocket
// - /health, /status, /metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/hyperliquid"
	"trading-wrapped/internal/observability"
	"trading-wrapped/internal/prices"
	"trading-wrapped/internal/share"
	"trading-wrapped/internal/storage"
	chstore "trading-wrapped/internal/storage/clickhouse"
	"trading-wrapped/internal/storage/memory"
	"trading-wrapped/internal/storage/migrations"
	pgstore "trading-wrapped/internal/storage/postgres"
	"trading-wrapped/internal/wrapped"
)

// Server holds the API server components.
type Server struct {
	service *wrapped.Service
	logger  *log.Logger

	// State
	mu           sync.Mutex
	started      time.Time
	analyses     int
	lastAnalysis time.Time

	// Live mids, fed by the venue websocket
	midsMu sync.RWMutex
	mids   map[string]string
	midsAt time.Time
}

func main() {
	// Load .env file if exists; system env vars take precedence
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("SERVER_ADDR", ":8080"), "HTTP listen address")
	venueEndpoint := flag.String("venue-endpoint", os.Getenv("HYPERLIQUID_ENDPOINT"), "Hyperliquid info endpoint (default public API)")
	coingeckoEndpoint := flag.String("coingecko-endpoint", os.Getenv("COINGECKO_ENDPOINT"), "CoinGecko API base URL (default public API)")
	stooqEndpoint := flag.String("stooq-endpoint", os.Getenv("STOOQ_ENDPOINT"), "Stooq CSV endpoint (default public API)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	wsEndpoint := flag.String("ws-endpoint", envOr("HYPERLIQUID_WS_ENDPOINT", hyperliquid.DefaultWSEndpoint), "Hyperliquid websocket endpoint (empty disables live mids)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	priceDays := flag.Int("price-days", wrapped.DefaultPriceDays, "Reference price window in days")
	cacheTTL := flag.Duration("price-cache-ttl", prices.DefaultCacheTTL, "Reference price cache TTL")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	snapshots, priceStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create price sources: per-asset router behind a shared TTL cache
	priceSource := prices.NewCache(&prices.Router{
		Crypto: prices.NewCoinGeckoClient(*coingeckoEndpoint),
		Stock:  prices.NewStooqClient(*stooqEndpoint),
	}, prices.WithCacheTTL(*cacheTTL))

	// Create service
	service := wrapped.New(wrapped.Options{
		Venue:      hyperliquid.NewHTTPClient(*venueEndpoint),
		Prices:     priceSource,
		Snapshots:  snapshots,
		PriceStore: priceStore,
		PriceDays:  *priceDays,
		Logger:     logger,
	})

	server := &Server{
		service: service,
		logger:  logger,
		started: time.Now(),
	}

	// Live mids feed. A websocket failure only disables /api/mids.
	if *wsEndpoint != "" {
		midsClient, err := hyperliquid.NewMidsClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Printf("Live mids disabled, websocket connect failed: %v", err)
		} else {
			defer midsClient.Close()
			go server.consumeMids(midsClient)
		}
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates snapshot and price stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.SnapshotStore, storage.PriceStore, func(), error) {
	if useMemory {
		return memory.NewSnapshotStore(), memory.NewPriceStore(), func() {}, nil
	}

	// PostgreSQL (snapshots)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse (daily prices)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewSnapshotStore(pool), chstore.NewPriceStore(chConn), cleanup, nil
}

// routes builds the HTTP handler.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/wrapped", s.handleWrapped)
	mux.HandleFunc("/api/wrapped/latest", s.handleLatest)
	mux.HandleFunc("/api/share", s.handleShare)
	mux.HandleFunc("/api/mids", s.handleMids)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	return mux
}

// handleWrapped runs the full analysis for a wallet.
// GET /api/wrapped?address=0x...&tz=Europe/Kyiv
func (s *Server) handleWrapped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address parameter is required")
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown timezone %q", tz))
			return
		}
		loc = parsed
	}

	snapshot, err := s.service.Analyze(r.Context(), address, loc)
	if err != nil {
		if errors.Is(err, hyperliquid.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, "invalid wallet address")
			return
		}
		s.logger.Printf("analysis for %s failed: %v", address, err)
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}

	s.mu.Lock()
	s.analyses++
	s.lastAnalysis = time.Now()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

// handleLatest returns the last persisted result without re-analyzing.
// GET /api/wrapped/latest?address=0x...
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address parameter is required")
		return
	}

	snapshot, err := s.service.Latest(r.Context(), address)
	if err != nil {
		switch {
		case errors.Is(err, hyperliquid.ErrInvalidAddress):
			writeError(w, http.StatusBadRequest, "invalid wallet address")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "no analysis found for address")
		default:
			s.logger.Printf("latest lookup for %s failed: %v", address, err)
			writeError(w, http.StatusInternalServerError, "lookup failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// sharePayload is the POST /api/share request body.
type sharePayload struct {
	Stats       *domain.Stats      `json:"stats"`
	Personality domain.Personality `json:"personality"`
	Slide       share.Slide        `json:"slide,omitempty"`
}

// handleShare encodes (POST) or decodes (GET) a share token.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload sharePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !share.ValidSlide(payload.Slide) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown slide %q", payload.Slide))
			return
		}

		token, err := s.service.Share(&domain.ResultSnapshot{
			Stats:       payload.Stats,
			Personality: payload.Personality,
		}, payload.Slide)
		if err != nil {
			writeError(w, http.StatusBadRequest, "snapshot has no stats")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})

	case http.MethodGet:
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "token parameter is required")
			return
		}
		snapshot, err := s.service.DecodeShare(token)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid share token")
			return
		}
		writeJSON(w, http.StatusOK, snapshot)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// consumeMids drains the websocket stream into the server's mids cache.
func (s *Server) consumeMids(client *hyperliquid.MidsClient) {
	for update := range client.Updates() {
		s.midsMu.Lock()
		s.mids = update.Mids
		s.midsAt = time.Now()
		s.midsMu.Unlock()
	}
}

// MidsResponse is the JSON response for /api/mids endpoint.
type MidsResponse struct {
	Mids      map[string]string `json:"mids"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// handleMids returns the latest mid prices pushed by the venue.
// GET /api/mids
func (s *Server) handleMids(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.midsMu.RLock()
	mids := s.mids
	updatedAt := s.midsAt
	s.midsMu.RUnlock()

	if len(mids) == 0 {
		writeError(w, http.StatusServiceUnavailable, "no mid prices received yet")
		return
	}

	writeJSON(w, http.StatusOK, MidsResponse{Mids: mids, UpdatedAt: updatedAt})
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	Analyses     int       `json:"analyses"`
	LastAnalysis time.Time `json:"last_analysis,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.started).String(),
		Analyses:     s.analyses,
		LastAnalysis: s.lastAnalysis,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
