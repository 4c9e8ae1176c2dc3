// Package web exposes the simulator over HTTP: a JSON API for the trading
// UI and an SSE stream of portfolio-value snapshots.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/services/ledger"
	"go.uber.org/zap"
)

const snapshotPollInterval = 2 * time.Second

// Simulation is the application surface the HTTP layer needs.
type Simulation interface {
	Assets() []*domain.Asset
	Portfolio(ctx context.Context) *domain.Portfolio
	SubmitTrade(ctx context.Context, symbol string, side domain.Side, quantity decimal.Decimal) (*domain.Portfolio, error)
	OrderBook(symbol string) (*domain.OrderBook, bool)
	History() []domain.PortfolioSnapshot
	SnapshotsAfter(index uint64) ([]domain.PortfolioSnapshotRecord, error)
}

// Server exposes HTTP endpoints serving the HTML UI, the JSON API and an
// SSE stream.
type Server struct {
	Addr   string
	Sim    Simulation
	logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, sim Simulation, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Sim: sim, logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/assets", s.handleAssets)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/trade", s.handleTrade)
	mux.HandleFunc("/api/orderbook", s.handleOrderBook)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/portfolio/stream", s.handlePortfolioStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Assets())
}

// handlePortfolio returns current state. Reading the portfolio reconciles
// missed hours first, so a page opened after a long absence already shows
// the advanced prices.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Portfolio(r.Context()))
}

type tradeRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	side := domain.Side(req.Side)
	if side != domain.SideBuy && side != domain.SideSell {
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || quantity.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "quantity must be a positive number")
		return
	}

	portfolio, err := s.Sim.SubmitTrade(r.Context(), req.Symbol, side, quantity)
	if err != nil {
		s.writeTradeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

// writeTradeError maps business rejections to 422 so the UI can show them
// inline; anything else is a client mistake or a server fault.
func (s *Server) writeTradeError(w http.ResponseWriter, req tradeRequest, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientShares):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrSubmissionInFlight),
		errors.Is(err, ledger.ErrThrottled):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Warn("trade rejected",
			zap.String("symbol", req.Symbol),
			zap.String("side", req.Side),
			zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol query parameter required")
		return
	}
	book, ok := s.Sim.OrderBook(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.History())
}

func (s *Server) handlePortfolioStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat every 30s so proxies keep the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendSnapshots := func() error {
		records, err := s.Sim.SnapshotsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: portfolio\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendSnapshots(); err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		s.logger.Warn("portfolio stream initial load failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendSnapshots(); err != nil {
				s.logger.Warn("portfolio stream poll failed", zap.Error(err))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
