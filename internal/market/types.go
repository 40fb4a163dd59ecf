// Package market loads and transforms the financial timeseries served
// by the dashboard: daily stock price facts pivoted into per-day records
// with a day-over-day change column, and EUR foreign-exchange rates.
package market

import (
	"fmt"
	"time"
)

// Measure names of the two stock price variables the dashboard uses.
const (
	MeasureNasdaqVolume    = "Nasdaq Volume"
	MeasurePostmarketClose = "Post-Market Close"
)

// FX filter constants.
const BaseCurrency = "EUR"

// MinFxDate is the earliest FX observation loaded.
var MinFxDate = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

// Tickers is the fixed allow-list of tracked tickers.
var Tickers = []string{"AAPL", "MSFT", "AMZN", "GOOGL", "META", "TSLA", "NVDA"}

// Currencies is the fixed list of quote currencies shown on the FX page.
// An empty user selection falls back to this full list.
var Currencies = []string{
	"British Pound Sterling",
	"Canadian Dollar",
	"United States Dollar",
	"Japanese Yen",
	"Polish Zloty",
	"Turkish Lira",
	"Swiss Franc",
}

// Fact is one long-format stock price observation as stored in the
// warehouse: a single (ticker, date, variable) measurement.
type Fact struct {
	Ticker   string
	Date     time.Time
	Variable string
	Value    float64
}

// StockRecord is one pivoted row of the stock frame.
// DayOverDayChange is nil at each ticker's first observed date; measure
// pointers are nil when the source had no row for that variable.
type StockRecord struct {
	Ticker           string    `json:"ticker"`
	Date             time.Time `json:"date"`
	NasdaqVolume     *float64  `json:"nasdaq_volume"`
	PostmarketClose  *float64  `json:"postmarket_close"`
	DayOverDayChange *float64  `json:"day_over_day_change"`
}

// FxRecord is one foreign-exchange rate observation.
// ExchangeRate carries the renamed variable_name label from the source.
type FxRecord struct {
	BaseCurrency  string    `json:"base_currency"`
	QuoteCurrency string    `json:"quote_currency_name"`
	Date          time.Time `json:"date"`
	ExchangeRate  string    `json:"exchange_rate"`
	Value         float64   `json:"value"`
}

// Metric identifies a selectable stock chart metric.
type Metric string

const (
	MetricDayOverDayChange Metric = "day_over_day_change"
	MetricPostmarketClose  Metric = "postmarket_close"
	MetricNasdaqVolume     Metric = "nasdaq_volume"
)

// ParseMetric validates a metric name from user input.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricDayOverDayChange, MetricPostmarketClose, MetricNasdaqVolume:
		return Metric(s), nil
	case "":
		return MetricDayOverDayChange, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Value extracts the metric's value from a record; nil when unset.
func (m Metric) Value(r StockRecord) *float64 {
	switch m {
	case MetricPostmarketClose:
		return r.PostmarketClose
	case MetricNasdaqVolume:
		return r.NasdaqVolume
	default:
		return r.DayOverDayChange
	}
}
