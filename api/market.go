package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/market"
)

// dateLayout is the wire format for date query parameters.
const dateLayout = "2006-01-02"

// MarketHandler handles the market data endpoints.
type MarketHandler struct {
	loader *market.Loader
	logger log.Logger
}

// NewMarketHandler creates a new market data handler.
func NewMarketHandler(loader *market.Loader, logger log.Logger) *MarketHandler {
	return &MarketHandler{loader: loader, logger: logger}
}

// RegisterRoutes registers market routes on the given mux.
func (h *MarketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/market/meta", h.meta)
	mux.HandleFunc("GET /api/market/stocks", h.stocks)
	mux.HandleFunc("GET /api/market/fx", h.fx)
}

// metaResponse carries everything the dashboard needs to build its
// filter controls.
type metaResponse struct {
	Tickers          []string `json:"tickers"`
	Currencies       []string `json:"currencies"`
	Metrics          []string `json:"metrics"`
	MinDate          string   `json:"min_date"`
	MaxDate          string   `json:"max_date"`
	DefaultStartDate string   `json:"default_start_date"`
}

// meta returns filter metadata: the ticker and currency lists, the
// selectable metrics, and the frame's date bounds.
func (h *MarketHandler) meta(w http.ResponseWriter, r *http.Request) {
	stocks, _, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("loading market data", "error", err)
		writeError(w, http.StatusServiceUnavailable, "warehouse_unavailable", "market data unavailable")
		return
	}

	resp := metaResponse{
		Tickers:    market.Tickers,
		Currencies: market.Currencies,
		Metrics: []string{
			string(market.MetricDayOverDayChange),
			string(market.MetricPostmarketClose),
			string(market.MetricNasdaqVolume),
		},
	}
	if min, max, ok := market.DateBounds(stocks); ok {
		resp.MinDate = min.Format(dateLayout)
		resp.MaxDate = max.Format(dateLayout)
		resp.DefaultStartDate = market.DefaultStartDate(max).Format(dateLayout)
	}

	writeJSON(w, http.StatusOK, resp)
}

// stocksResponse is the stock frame endpoint payload.
type stocksResponse struct {
	Metric  market.Metric        `json:"metric"`
	Records []market.StockRecord `json:"records"`
}

// stocks returns the pivoted stock frame, filtered by the optional
// start, end, tickers, and metric query parameters.
func (h *MarketHandler) stocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	metric, err := market.ParseMetric(q.Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_metric", err.Error())
		return
	}

	start, err := parseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "end must be YYYY-MM-DD")
		return
	}

	stocks, _, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("loading market data", "error", err)
		writeError(w, http.StatusServiceUnavailable, "warehouse_unavailable", "market data unavailable")
		return
	}

	records := market.FilterStocks(stocks, start, end, csvParam(q.Get("tickers")))
	writeJSON(w, http.StatusOK, stocksResponse{Metric: metric, Records: records})
}

// fxResponse is the FX endpoint payload.
type fxResponse struct {
	BaseCurrency string            `json:"base_currency"`
	Records      []market.FxRecord `json:"records"`
}

// fx returns the EUR exchange rate frame, filtered by the optional
// currencies query parameter. An empty selection returns all currencies.
func (h *MarketHandler) fx(w http.ResponseWriter, r *http.Request) {
	_, rates, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("loading market data", "error", err)
		writeError(w, http.StatusServiceUnavailable, "warehouse_unavailable", "market data unavailable")
		return
	}

	records := market.FilterFx(rates, csvParam(r.URL.Query().Get("currencies")))
	writeJSON(w, http.StatusOK, fxResponse{BaseCurrency: market.BaseCurrency, Records: records})
}

// parseDate parses an optional YYYY-MM-DD parameter; empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// csvParam splits a comma-separated parameter, dropping empty entries.
func csvParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
