// Package web exposes the desk over HTTP: JSON endpoints for ledger state,
// market data and user intents, plus an SSE stream of ledger updates that
// every view consumes instead of holding its own state copy.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanonw/paperdesk/internal/domain"
	"github.com/tanonw/paperdesk/internal/events"
	"github.com/tanonw/paperdesk/internal/services/ledger"
	"github.com/tanonw/paperdesk/internal/services/market"
	"github.com/tanonw/paperdesk/internal/services/market/indicators"
	"github.com/tanonw/paperdesk/internal/storage/favorites"
)

const heartbeatInterval = 30 * time.Second

// Limits carries the configured defaults for market data queries; request
// query parameters may narrow but not replace them.
type Limits struct {
	KlineInterval string
	KlineLimit    int
	BookDepth     int
	TradesLimit   int
}

// DefaultLimits mirrors the configuration defaults.
var DefaultLimits = Limits{
	KlineInterval: "1h",
	KlineLimit:    50,
	BookDepth:     10,
	TradesLimit:   50,
}

// Server exposes HTTP endpoints serving ledger state and the SSE stream.
type Server struct {
	addr        string
	ledger      *ledger.Ledger
	market      market.Provider
	favorites   *favorites.Store
	broadcaster *events.LedgerBroadcaster
	limits      Limits
	logger      *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, l *ledger.Ledger, m market.Provider, f *favorites.Store,
	b *events.LedgerBroadcaster, limits Limits, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.KlineInterval == "" {
		limits.KlineInterval = DefaultLimits.KlineInterval
	}
	if limits.KlineLimit < 1 {
		limits.KlineLimit = DefaultLimits.KlineLimit
	}
	if limits.BookDepth < 1 {
		limits.BookDepth = DefaultLimits.BookDepth
	}
	if limits.TradesLimit < 1 {
		limits.TradesLimit = DefaultLimits.TradesLimit
	}
	return &Server{
		addr:        addr,
		ledger:      l,
		market:      m,
		favorites:   f,
		broadcaster: b,
		limits:      limits,
		logger:      logger,
	}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/trade", s.handleTrade)
	mux.HandleFunc("POST /api/deposit", s.handleDeposit)
	mux.HandleFunc("POST /api/withdraw", s.handleWithdraw)
	mux.HandleFunc("GET /api/favorites", s.handleFavoritesGet)
	mux.HandleFunc("PUT /api/favorites", s.handleFavoritesPut)
	mux.HandleFunc("GET /api/market/ticker", s.handleTicker)
	mux.HandleFunc("GET /api/market/depth", s.handleDepth)
	mux.HandleFunc("GET /api/market/trades", s.handleMarketTrades)
	mux.HandleFunc("GET /api/market/klines", s.handleKlines)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /events/market", s.handleMarketEvents)

	server := &http.Server{
		Addr:              s.addr,
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

// snapshotView is the JSON shape of a ledger snapshot. Decimal fields are
// strings to avoid float precision loss in the browser.
type snapshotView struct {
	Timestamp  time.Time         `json:"ts"`
	Cash       string            `json:"cash"`
	Holdings   map[string]string `json:"holdings"`
	Prices     map[string]string `json:"prices"`
	TotalValue string            `json:"total_value"`
}

type tradeView struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Side      string    `json:"side"`
	Asset     string    `json:"asset"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price"`
	Notional  string    `json:"notional"`
}

func newSnapshotView(snap domain.LedgerSnapshot) snapshotView {
	holdings := make(map[string]string, len(snap.Holdings))
	for asset, qty := range snap.Holdings {
		holdings[asset] = qty.String()
	}
	prices := make(map[string]string, len(snap.Prices))
	for asset, price := range snap.Prices {
		prices[asset] = price.String()
	}
	return snapshotView{
		Timestamp:  snap.Timestamp,
		Cash:       snap.Cash.String(),
		Holdings:   holdings,
		Prices:     prices,
		TotalValue: snap.TotalValue.String(),
	}
}

func newTradeView(record domain.TradeRecord) tradeView {
	return tradeView{
		ID:        record.ID,
		Timestamp: record.Timestamp,
		Side:      record.Side.String(),
		Asset:     record.Asset,
		Quantity:  record.Quantity.String(),
		Price:     record.Price.String(),
		Notional:  record.Notional.String(),
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSnapshotView(s.ledger.Snapshot()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records := s.ledger.History()
	views := make([]tradeView, len(records))
	for i, record := range records {
		views[i] = newTradeView(record)
	}
	writeJSON(w, http.StatusOK, views)
}

type tradeRequest struct {
	Side     string `json:"side"`
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	side, ok := domain.ParseSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		s.writeLedgerError(w, domain.ErrInvalidAmount)
		return
	}

	record, err := s.ledger.ExecuteTrade(side, req.Asset, quantity)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTradeView(record))
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleCashOp(w, r, s.ledger.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleCashOp(w, r, s.ledger.Withdraw)
}

func (s *Server) handleCashOp(w http.ResponseWriter, r *http.Request, op func(decimal.Decimal) error) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		s.writeLedgerError(w, domain.ErrInvalidAmount)
		return
	}
	if err := op(amount); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotView(s.ledger.Snapshot()))
}

type favoritesPayload struct {
	Favorites []string `json:"favorites"`
}

func (s *Server) handleFavoritesGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, favoritesPayload{Favorites: s.favorites.Load()})
}

func (s *Server) handleFavoritesPut(w http.ResponseWriter, r *http.Request) {
	var req favoritesPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.favorites.Save(req.Favorites); err != nil {
		// persistence failure is soft: report it but keep the desk running
		s.logger.Warn("failed to save favorites", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "favorites not saved")
		return
	}
	writeJSON(w, http.StatusOK, favoritesPayload{Favorites: s.favorites.Load()})
}

func (s *Server) pairParam(r *http.Request) domain.Pair {
	asset := r.URL.Query().Get("asset")
	return domain.Pair{From: asset, To: s.ledger.Quote()}
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	stats, err := s.market.Ticker24h(r.Context(), s.pairParam(r))
	if err != nil {
		s.skipCycle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"pair":           stats.Pair.String(),
		"last_price":     stats.LastPrice.String(),
		"price_change":   stats.PriceChange.String(),
		"change_percent": stats.ChangePercent.String(),
		"bid":            stats.BidPrice.String(),
		"ask":            stats.AskPrice.String(),
		"high":           stats.HighPrice.String(),
		"low":            stats.LowPrice.String(),
		"quote_volume":   stats.QuoteVolume.String(),
	})
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	depth := intParam(r, "limit", s.limits.BookDepth)
	book, err := s.market.OrderBook(r.Context(), s.pairParam(r), depth)
	if err != nil {
		s.skipCycle(w, r, err)
		return
	}
	type level [2]string
	view := struct {
		Pair string  `json:"pair"`
		Bids []level `json:"bids"`
		Asks []level `json:"asks"`
	}{Pair: book.Pair.String()}
	for _, b := range book.Bids {
		view.Bids = append(view.Bids, level{b.Price.String(), b.Quantity.String()})
	}
	for _, a := range book.Asks {
		view.Asks = append(view.Asks, level{a.Price.String(), a.Quantity.String()})
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMarketTrades(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", s.limits.TradesLimit)
	trades, err := s.market.RecentTrades(r.Context(), s.pairParam(r), limit)
	if err != nil {
		s.skipCycle(w, r, err)
		return
	}
	type tradeRow struct {
		Time         time.Time `json:"ts"`
		Price        string    `json:"price"`
		Quantity     string    `json:"quantity"`
		IsBuyerMaker bool      `json:"is_buyer_maker"`
	}
	rows := make([]tradeRow, len(trades))
	for i, t := range trades {
		rows[i] = tradeRow{Time: t.Time, Price: t.Price.String(), Quantity: t.Quantity.String(), IsBuyerMaker: t.IsBuyerMaker}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleKlines(w http.ResponseWriter, r *http.Request) {
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = s.limits.KlineInterval
	}
	limit := intParam(r, "limit", s.limits.KlineLimit)
	candles, err := s.market.Klines(r.Context(), s.pairParam(r), interval, limit)
	if err != nil {
		s.skipCycle(w, r, err)
		return
	}

	overlay := indicators.BuildChartOverlay(candles)
	type candleRow struct {
		OpenTime time.Time `json:"open_time"`
		Open     string    `json:"open"`
		High     string    `json:"high"`
		Low      string    `json:"low"`
		Close    string    `json:"close"`
		Volume   string    `json:"volume"`
	}
	view := struct {
		Candles []candleRow `json:"candles"`
		SMA20   []string    `json:"sma20,omitempty"`
		EMA50   []string    `json:"ema50,omitempty"`
	}{}
	for _, c := range candles {
		view.Candles = append(view.Candles, candleRow{
			OpenTime: c.OpenTime,
			Open:     c.Open.String(),
			High:     c.High.String(),
			Low:      c.Low.String(),
			Close:    c.Close.String(),
			Volume:   c.Volume.String(),
		})
	}
	for _, v := range overlay.SMA20 {
		view.SMA20 = append(view.SMA20, v.String())
	}
	for _, v := range overlay.EMA50 {
		view.EMA50 = append(view.EMA50, v.String())
	}
	writeJSON(w, http.StatusOK, view)
}

// handleEvents streams ledger updates as SSE. The current snapshot is sent
// first so a reconnecting view renders without waiting for the next change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat periodically so proxies keep the connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	sub := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(sub)

	writeEvent := func(name string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn("failed to encode event", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: %s\n", name)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	writeEvent("snapshot", newSnapshotView(s.ledger.Snapshot()))

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case update, ok := <-sub:
			if !ok {
				return
			}
			writeEvent("ledger", update)
		}
	}
}

type marketFrame struct {
	name    string
	payload any
}

// handleMarketEvents streams live ticker and trade frames for one asset over
// SSE. The websocket subscriptions live only as long as the client connection,
// so hiding a view closes its streams and showing it again reopens them.
func (s *Server) handleMarketEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	pair := s.pairParam(r)

	frames := make(chan marketFrame, 64)
	push := func(name string, payload any) {
		select {
		case frames <- marketFrame{name: name, payload: payload}:
		default:
		}
	}

	tickerStream, err := market.StreamTicker(pair, func(stats domain.TickerStats) {
		push("ticker", map[string]string{
			"pair":           stats.Pair.String(),
			"last_price":     stats.LastPrice.String(),
			"change_percent": stats.ChangePercent.String(),
			"high":           stats.HighPrice.String(),
			"low":            stats.LowPrice.String(),
		})
	}, s.logger)
	if err != nil {
		s.skipCycle(w, r, err)
		return
	}
	defer tickerStream.Stop()

	tradeStream, err := market.StreamTrades(pair, func(trade domain.MarketTrade) {
		push("trade", map[string]any{
			"ts":             trade.Time,
			"price":          trade.Price.String(),
			"quantity":       trade.Quantity.String(),
			"is_buyer_maker": trade.IsBuyerMaker,
		})
	}, s.logger)
	if err != nil {
		s.skipCycle(w, r, err)
		return
	}
	defer tradeStream.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case frame := <-frames:
			data, err := json.Marshal(frame.payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\n", frame.name)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// writeLedgerError maps ledger validation errors to a 422 with a stable
// error name so views can render an inline status message.
func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": errorName(err)})
}

// skipCycle is the HTTP rendering of "skip this refresh": the client keeps
// showing the previous data.
func (s *Server) skipCycle(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug("market data unavailable", zap.String("path", r.URL.Path), zap.Error(err))
	w.WriteHeader(http.StatusNoContent)
}

func errorName(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, domain.ErrPriceUnavailable):
		return "PriceUnavailable"
	case errors.Is(err, domain.ErrInsufficientCash):
		return "InsufficientCash"
	case errors.Is(err, domain.ErrInsufficientHoldings):
		return "InsufficientHoldings"
	case errors.Is(err, domain.ErrUnknownAsset):
		return "UnknownAsset"
	default:
		return "Internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// intParam reads a positive integer query parameter clamped to max; missing,
// malformed or out-of-range values yield max.
func intParam(r *http.Request, name string, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return max
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 || n > max {
		return max
	}
	return n
}
