package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/walletboard/internal/domain"
	"github.com/vadiminshakov/walletboard/internal/gateway"
	"github.com/vadiminshakov/walletboard/internal/storage/comments"
	"github.com/vadiminshakov/walletboard/internal/storage/history"
	"go.uber.org/zap"
)

type fakeGateway struct {
	balance domain.FuturesBalance
	found   bool
	err     error
}

func (f fakeGateway) FuturesBalance(context.Context) (domain.FuturesBalance, bool, error) {
	return f.balance, f.found, f.err
}

type fakeJournal struct {
	saveErr error
	saved   []domain.BalanceSnapshot
}

func (f *fakeJournal) Save(snapshot domain.BalanceSnapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, snapshot)
	return nil
}

func (f *fakeJournal) SnapshotsAfter(uint64) ([]domain.BalanceSnapshotRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T, gw balanceGateway) (*Server, *history.Store, *comments.Store) {
	t.Helper()

	dir := t.TempDir()

	historyStore, err := history.NewStore(filepath.Join(dir, "balance_history.json"))
	require.NoError(t, err)

	commentStore, err := comments.NewStore(filepath.Join(dir, "comments.json"))
	require.NoError(t, err)

	srv := NewServer(":0", zap.NewNop(), gw, historyStore, commentStore, nil)

	return srv, historyStore, commentStore
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	return payload
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestBalanceWithUsdtEntry(t *testing.T) {
	gw := fakeGateway{
		balance: domain.NewFuturesBalance(decimal.RequireFromString("100.5"), decimal.RequireFromString("40.25")),
		found:   true,
	}
	srv, _, _ := newTestServer(t, gw)

	rec := doRequest(t, srv, http.MethodGet, "/api/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "ok", payload["status"])

	balances := payload["balances"].([]any)
	require.Len(t, balances, 1)

	entry := balances[0].(map[string]any)
	require.Equal(t, "USDT (Futures)", entry["asset"])
	require.Equal(t, 100.5, entry["total"])
	require.Equal(t, 40.25, entry["free"])
	require.Equal(t, 60.25, entry["locked"])
}

func TestBalanceWithoutUsdtEntry(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{found: false})

	rec := doRequest(t, srv, http.MethodGet, "/api/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "ok", payload["status"])
	require.Empty(t, payload["balances"])
}

func TestBalanceMissingCredentials(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{err: gateway.ErrCredentialsMissing})

	rec := doRequest(t, srv, http.MethodGet, "/api/balance", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "error", payload["status"])
	require.NotEmpty(t, payload["message"])
}

func TestBalanceUpstreamErrorIsNotExposed(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{err: errors.New("secret upstream detail")})

	rec := doRequest(t, srv, http.MethodGet, "/api/balance", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "error", payload["status"])
	require.Equal(t, msgBalanceQueryFailed, payload["message"])
	require.NotContains(t, rec.Body.String(), "secret upstream detail")
}

func TestSummaryAppendsHistorySnapshot(t *testing.T) {
	gw := fakeGateway{
		balance: domain.NewFuturesBalance(decimal.NewFromInt(42), decimal.NewFromInt(42)),
		found:   true,
	}
	srv, historyStore, _ := newTestServer(t, gw)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "ok", payload["status"])

	summary := payload["summary"].(map[string]any)
	require.Equal(t, float64(1), summary["coin_count"])
	require.Equal(t, 42.0, summary["futures_usdt_balance"])
	require.Nil(t, summary["pnl_rate"])

	snapshots, err := historyStore.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, 42.0, snapshots[0].Balance)
}

func TestSummaryTreatsMissingUsdtAsZero(t *testing.T) {
	srv, historyStore, _ := newTestServer(t, fakeGateway{found: false})

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody(t, rec)["summary"].(map[string]any)
	require.Equal(t, 0.0, summary["futures_usdt_balance"])

	snapshots, err := historyStore.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, 0.0, snapshots[0].Balance)
}

func TestSummarySurvivesJournalWriteFailure(t *testing.T) {
	gw := fakeGateway{
		balance: domain.NewFuturesBalance(decimal.NewFromInt(7), decimal.NewFromInt(7)),
		found:   true,
	}

	dir := t.TempDir()
	historyStore, err := history.NewStore(filepath.Join(dir, "balance_history.json"))
	require.NoError(t, err)
	commentStore, err := comments.NewStore(filepath.Join(dir, "comments.json"))
	require.NoError(t, err)

	journal := &fakeJournal{saveErr: errors.New("disk full")}
	srv := NewServer(":0", zap.NewNop(), gw, historyStore, commentStore, journal)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
	require.Empty(t, journal.saved)

	snapshots, err := historyStore.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, 7.0, snapshots[0].Balance)
}

func TestSummaryJournalsSnapshot(t *testing.T) {
	gw := fakeGateway{
		balance: domain.NewFuturesBalance(decimal.NewFromInt(9), decimal.NewFromInt(9)),
		found:   true,
	}

	dir := t.TempDir()
	historyStore, err := history.NewStore(filepath.Join(dir, "balance_history.json"))
	require.NoError(t, err)
	commentStore, err := comments.NewStore(filepath.Join(dir, "comments.json"))
	require.NoError(t, err)

	journal := &fakeJournal{}
	srv := NewServer(":0", zap.NewNop(), gw, historyStore, commentStore, journal)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, journal.saved, 1)
	require.Equal(t, 9.0, journal.saved[0].Balance)
}

func TestBalanceHistoryRoute(t *testing.T) {
	srv, historyStore, _ := newTestServer(t, fakeGateway{})

	_, err := historyStore.Append(1.5)
	require.NoError(t, err)
	_, err = historyStore.Append(2.5)
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodGet, "/api/balance-history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "ok", payload["status"])

	historyList := payload["history"].([]any)
	require.Len(t, historyList, 2)
	require.Equal(t, 1.5, historyList[0].(map[string]any)["balance"])
	require.Equal(t, 2.5, historyList[1].(map[string]any)["balance"])
}

func TestBalanceHistoryStatsRoute(t *testing.T) {
	srv, historyStore, _ := newTestServer(t, fakeGateway{})

	for _, b := range []float64{100, 50, 75} {
		_, err := historyStore.Append(b)
		require.NoError(t, err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/balance-history/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "ok", payload["status"])

	result := payload["stats"].(map[string]any)
	require.Equal(t, float64(3), result["count"])
	require.Equal(t, 75.0, result["latest"])
	require.Equal(t, 50.0, result["min"])
	require.Equal(t, 100.0, result["max"])
}

func TestPostCommentLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{})

	rec := doRequest(t, srv, http.MethodPost, "/api/comments", `{"content":" hello "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	created := decodeBody(t, rec)
	require.Equal(t, float64(1), created["id"])
	require.Equal(t, "Anonymous1", created["nick"])
	require.Equal(t, "hello", created["content"])
	require.NotEmpty(t, created["created_at"])

	rec = doRequest(t, srv, http.MethodGet, "/api/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, created, list[0])
}

func TestPostEmptyCommentRejected(t *testing.T) {
	srv, _, commentStore := newTestServer(t, fakeGateway{})

	rec := doRequest(t, srv, http.MethodPost, "/api/comments", `{"content":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "content is empty", decodeBody(t, rec)["detail"])

	stored, err := commentStore.Load()
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestPostCommentInvalidBody(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{})

	rec := doRequest(t, srv, http.MethodPost, "/api/comments", `{broken`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{})

	for _, path := range []string{"/api/balance", "/api/summary", "/api/balance-history"} {
		rec := doRequest(t, srv, http.MethodPost, path, "")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}

	rec := doRequest(t, srv, http.MethodDelete, "/api/comments", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStreamUnavailableWithoutJournal(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{})

	rec := doRequest(t, srv, http.MethodGet, "/api/balance/stream", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIndexServesDashboard(t *testing.T) {
	srv, _, _ := newTestServer(t, fakeGateway{})

	rec := doRequest(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "walletboard")

	rec = doRequest(t, srv, http.MethodPost, "/", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
