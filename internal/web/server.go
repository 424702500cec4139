// Package web exposes the dashboard HTTP API: exchange balance proxy,
// balance history, comment feed, live snapshot stream and health probe.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vadiminshakov/walletboard/internal/domain"
	"github.com/vadiminshakov/walletboard/internal/gateway"
	"github.com/vadiminshakov/walletboard/internal/stats"
	"github.com/vadiminshakov/walletboard/internal/storage/comments"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

const snapshotPollInterval = 2 * time.Second

const (
	msgBalanceQueryFailed = "futures balance query failed"
	msgSummaryFailed      = "account summary query failed"
	msgHistoryFailed      = "balance history is unavailable"
	msgCommentsFailed     = "comment feed is unavailable"
)

type balanceGateway interface {
	FuturesBalance(ctx context.Context) (domain.FuturesBalance, bool, error)
}

type historyStore interface {
	Load() ([]domain.BalanceSnapshot, error)
	Append(balance float64) (domain.BalanceSnapshot, error)
}

type commentStore interface {
	List() ([]domain.CommentView, error)
	Append(content string) (domain.CommentView, error)
}

type snapshotJournal interface {
	Save(snapshot domain.BalanceSnapshot) error
	SnapshotsAfter(index uint64) ([]domain.BalanceSnapshotRecord, error)
}

// Server exposes the HTTP API and the HTML dashboard.
type Server struct {
	Addr string

	logger   *zap.Logger
	gateway  balanceGateway
	history  historyStore
	comments commentStore
	journal  snapshotJournal
}

// NewServer creates a new web server instance. The journal may be nil,
// in which case the live stream route reports unavailable.
func NewServer(addr string, logger *zap.Logger, gw balanceGateway,
	history historyStore, commentFeed commentStore, journal snapshotJournal) *Server {
	return &Server{
		Addr:     addr,
		logger:   logger,
		gateway:  gw,
		history:  history,
		comments: commentFeed,
		journal:  journal,
	}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
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

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via ACME.
// It also starts an HTTP server on port 80 to handle ACME HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	// HTTP server on port 80 for ACME challenges and HTTP->HTTPS redirects.
	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = httpsSrv.Shutdown(shutdownCtx)
	}()

	errCh := make(chan error, 2)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	go func() {
		if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/balance", s.handleBalance)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/balance-history", s.handleBalanceHistory)
	mux.HandleFunc("/api/balance-history/stats", s.handleBalanceHistoryStats)
	mux.HandleFunc("/api/comments", s.handleComments)
	mux.HandleFunc("/api/balance/stream", s.handleBalanceStream)
	mux.HandleFunc("/health", s.handleHealth)

	return s.withAccessLog(mux)
}

// withAccessLog tags every request with an id and logs its outcome.
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		if s.logger != nil {
			s.logger.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)))
		}
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type balanceEntry struct {
	Asset  string  `json:"asset"`
	Free   float64 `json:"free"`
	Locked float64 `json:"locked"`
	Total  float64 `json:"total"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	balance, found, err := s.gateway.FuturesBalance(r.Context())
	if err != nil {
		s.writeGatewayError(w, err, msgBalanceQueryFailed)
		return
	}

	entries := []balanceEntry{}
	if found {
		entries = append(entries, balanceEntry{
			Asset:  domain.FuturesAssetLabel,
			Free:   balance.Free.InexactFloat64(),
			Locked: balance.Locked.InexactFloat64(),
			Total:  balance.Total.InexactFloat64(),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"balances": entries,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	balance, found, err := s.gateway.FuturesBalance(r.Context())
	if err != nil {
		s.writeGatewayError(w, err, msgSummaryFailed)
		return
	}

	futuresUsdt := 0.0
	if found {
		futuresUsdt = balance.Total.InexactFloat64()
	}

	snapshot, err := s.history.Append(futuresUsdt)
	if err != nil {
		s.logger.Error("append balance history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, msgSummaryFailed)
		return
	}

	// journaling feeds the live stream only, its failure never fails the request
	if s.journal != nil {
		if err := s.journal.Save(snapshot); err != nil {
			s.logger.Error("journal balance snapshot", zap.Error(err))
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"summary": domain.Summary{
			CoinCount:          1,
			FuturesUsdtBalance: futuresUsdt,
			PnlRate:            nil,
		},
	})
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshots, err := s.history.Load()
	if err != nil {
		s.logger.Error("load balance history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, msgHistoryFailed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": snapshots,
	})
}

func (s *Server) handleBalanceHistoryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshots, err := s.history.Load()
	if err != nil {
		s.logger.Error("load balance history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, msgHistoryFailed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stats":  stats.Compute(snapshots),
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		views, err := s.comments.List()
		if err != nil {
			s.logger.Error("list comments", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, msgCommentsFailed)
			return
		}
		s.writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
			return
		}

		view, err := s.comments.Append(req.Content)
		if err != nil {
			if errors.Is(err, comments.ErrEmptyContent) {
				s.writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "content is empty"})
				return
			}
			s.logger.Error("append comment", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, msgCommentsFailed)
			return
		}
		s.writeJSON(w, http.StatusOK, view)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBalanceStream(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "snapshot journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendSnapshots := func() error {
		records, err := s.journal.SnapshotsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: balance\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendSnapshots(); err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		s.logger.Error("balance stream initial load", zap.Error(err))
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
				s.logger.Error("balance stream poll", zap.Error(err))
			}
		}
	}
}

// writeGatewayError distinguishes missing credentials from upstream
// failures. Raw errors stay in the log, clients see fixed messages.
func (s *Server) writeGatewayError(w http.ResponseWriter, err error, genericMsg string) {
	if errors.Is(err, gateway.ErrCredentialsMissing) {
		s.writeError(w, http.StatusInternalServerError, gateway.ErrCredentialsMissing.Error())
		return
	}

	s.logger.Error("exchange query", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, genericMsg)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && s.logger != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}
