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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tanonw/paperdesk/internal/domain"
	"github.com/tanonw/paperdesk/internal/events"
	"github.com/tanonw/paperdesk/internal/services/ledger"
	"github.com/tanonw/paperdesk/internal/storage/favorites"
)

type stubProvider struct {
	ticker   *domain.TickerStats
	gotDepth int
	gotLimit int
}

func (s *stubProvider) Ticker24h(ctx context.Context, pair domain.Pair) (*domain.TickerStats, error) {
	if s.ticker == nil {
		return nil, errors.New("exchange unreachable")
	}
	return s.ticker, nil
}

func (s *stubProvider) OrderBook(_ context.Context, _ domain.Pair, depth int) (*domain.OrderBook, error) {
	s.gotDepth = depth
	return nil, errors.New("exchange unreachable")
}

func (s *stubProvider) RecentTrades(_ context.Context, _ domain.Pair, limit int) ([]domain.MarketTrade, error) {
	s.gotLimit = limit
	return nil, errors.New("exchange unreachable")
}

func (s *stubProvider) Klines(context.Context, domain.Pair, string, int) ([]domain.MarketCandle, error) {
	return nil, errors.New("exchange unreachable")
}

func newTestServer(t *testing.T) (*Server, *ledger.Ledger) {
	t.Helper()
	broadcaster := events.NewLedgerBroadcaster(8)
	holdings := map[string]decimal.Decimal{
		"BTC": decimal.NewFromFloat(0.005),
		"ETH": decimal.Zero,
	}
	book := ledger.New("USDT", decimal.NewFromInt(2500), holdings, 30, broadcaster, zap.NewNop())
	favStore := favorites.NewStore(
		filepath.Join(t.TempDir(), "favorites.json"),
		[]string{"BTC", "ETH"}, []string{"BTC", "ETH"}, zap.NewNop())
	s := NewServer(":0", book, &stubProvider{}, favStore, broadcaster, DefaultLimits, zap.NewNop())
	return s, book
}

func TestHandleSnapshot(t *testing.T) {
	s, book := newTestServer(t)
	book.ApplyPriceUpdate(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50000)})

	rec := httptest.NewRecorder()
	s.handleSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var view snapshotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "2500", view.Cash)
	assert.Equal(t, "0.005", view.Holdings["BTC"])
	assert.Equal(t, "2750", view.TotalValue)
}

func TestHandleTrade(t *testing.T) {
	s, book := newTestServer(t)
	book.ApplyPriceUpdate(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50000)})

	body := `{"side":"BUY","asset":"BTC","quantity":"0.01"}`
	rec := httptest.NewRecorder()
	s.handleTrade(rec, httptest.NewRequest(http.MethodPost, "/api/trade", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var view tradeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "BUY", view.Side)
	assert.Equal(t, "500", view.Notional)
	assert.True(t, book.Snapshot().Cash.Equal(decimal.NewFromInt(2000)))
}

func TestHandleTrade_ValidationErrors(t *testing.T) {
	s, book := newTestServer(t)
	book.ApplyPriceUpdate(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50000)})

	tests := []struct {
		name    string
		body    string
		status  int
		errName string
	}{
		{"bad side", `{"side":"HOLD","asset":"BTC","quantity":"1"}`, http.StatusBadRequest, ""},
		{"bad quantity", `{"side":"BUY","asset":"BTC","quantity":"abc"}`, http.StatusUnprocessableEntity, "InvalidAmount"},
		{"negative quantity", `{"side":"BUY","asset":"BTC","quantity":"-1"}`, http.StatusUnprocessableEntity, "InvalidAmount"},
		{"price unknown", `{"side":"BUY","asset":"ETH","quantity":"1"}`, http.StatusUnprocessableEntity, "PriceUnavailable"},
		{"too expensive", `{"side":"BUY","asset":"BTC","quantity":"1"}`, http.StatusUnprocessableEntity, "InsufficientCash"},
		{"sell too much", `{"side":"SELL","asset":"BTC","quantity":"1"}`, http.StatusUnprocessableEntity, "InsufficientHoldings"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handleTrade(rec, httptest.NewRequest(http.MethodPost, "/api/trade", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
			if tc.errName != "" {
				var payload map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
				assert.Equal(t, tc.errName, payload["error"])
			}
		})
	}

	// validation failures never mutate the ledger
	assert.True(t, book.Snapshot().Cash.Equal(decimal.NewFromInt(2500)))
}

func TestHandleDepositWithdraw(t *testing.T) {
	s, book := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleDeposit(rec, httptest.NewRequest(http.MethodPost, "/api/deposit", strings.NewReader(`{"amount":"500"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, book.Snapshot().Cash.Equal(decimal.NewFromInt(3000)))

	rec = httptest.NewRecorder()
	s.handleWithdraw(rec, httptest.NewRequest(http.MethodPost, "/api/withdraw", strings.NewReader(`{"amount":"5000"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, book.Snapshot().Cash.Equal(decimal.NewFromInt(3000)))
}

func TestHandleFavorites(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleFavoritesPut(rec, httptest.NewRequest(http.MethodPut, "/api/favorites",
		strings.NewReader(`{"favorites":["ETH","SHIB"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handleFavoritesGet(rec, httptest.NewRequest(http.MethodGet, "/api/favorites", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var payload favoritesPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []string{"ETH"}, payload.Favorites)
}

func TestHandleTicker_UnavailableSkipsCycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleTicker(rec, httptest.NewRequest(http.MethodGet, "/api/market/ticker?asset=BTC", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMarketQueryLimitsClampedToConfig(t *testing.T) {
	s, _ := newTestServer(t)
	stub := &stubProvider{}
	s.market = stub

	rec := httptest.NewRecorder()
	s.handleDepth(rec, httptest.NewRequest(http.MethodGet, "/api/market/depth?asset=BTC&limit=5000", nil))
	assert.Equal(t, DefaultLimits.BookDepth, stub.gotDepth)

	rec = httptest.NewRecorder()
	s.handleMarketTrades(rec, httptest.NewRequest(http.MethodGet, "/api/market/trades?asset=BTC&limit=3", nil))
	assert.Equal(t, 3, stub.gotLimit)
}

func TestHandleHistory(t *testing.T) {
	s, book := newTestServer(t)
	book.ApplyPriceUpdate(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50000)})
	_, err := book.ExecuteTrade(domain.SideBuy, "BTC", decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var views []tradeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "BTC", views[0].Asset)
}
