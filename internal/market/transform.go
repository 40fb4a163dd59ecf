package market

import (
	"slices"
	"strings"
	"time"
)

// Pivot aggregates long-format facts into one record per (ticker, date),
// taking the max value observed per measure. Max tolerates duplicate
// source rows for the same key.
func Pivot(facts []Fact) []StockRecord {
	type key struct {
		ticker string
		date   time.Time
	}

	byKey := make(map[key]*StockRecord)
	for _, f := range facts {
		k := key{ticker: f.Ticker, date: f.Date}
		rec, ok := byKey[k]
		if !ok {
			rec = &StockRecord{Ticker: f.Ticker, Date: f.Date}
			byKey[k] = rec
		}

		switch f.Variable {
		case MeasureNasdaqVolume:
			rec.NasdaqVolume = maxValue(rec.NasdaqVolume, f.Value)
		case MeasurePostmarketClose:
			rec.PostmarketClose = maxValue(rec.PostmarketClose, f.Value)
		}
	}

	records := make([]StockRecord, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, *rec)
	}
	sortByTickerDate(records)
	return records
}

func maxValue(current *float64, v float64) *float64 {
	if current == nil || v > *current {
		return &v
	}
	return current
}

func sortByTickerDate(records []StockRecord) {
	slices.SortFunc(records, func(a, b StockRecord) int {
		if c := strings.Compare(a.Ticker, b.Ticker); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
}

// WithDayOverDay computes the day-over-day postmarket close change,
// (close[t] - close[t-1]) / close[t-1], within each ticker's
// chronologically ordered series. The lag is strict: the previous ROW's
// close is used even when it is nil, so the first observation of every
// ticker stays nil and a gap in the close series also leaves the next
// row's change undefined. Records must be sorted by (ticker, date),
// which Pivot guarantees.
func WithDayOverDay(records []StockRecord) []StockRecord {
	var prevTicker string
	var prevClose *float64

	for i := range records {
		r := &records[i]
		if r.Ticker != prevTicker {
			prevTicker = r.Ticker
			prevClose = nil
		}

		// A zero previous close leaves the change undefined rather
		// than producing an infinity from the division.
		if prevClose != nil && r.PostmarketClose != nil && *prevClose != 0 {
			change := (*r.PostmarketClose - *prevClose) / *prevClose
			r.DayOverDayChange = &change
		}
		prevClose = r.PostmarketClose
	}
	return records
}

// BuildStockFrame pivots raw facts and adds the day-over-day column.
func BuildStockFrame(facts []Fact) []StockRecord {
	return WithDayOverDay(Pivot(facts))
}

// DateBounds returns the earliest and latest dates in the frame.
// ok is false for an empty frame.
func DateBounds(records []StockRecord) (min, max time.Time, ok bool) {
	for _, r := range records {
		if !ok {
			min, max, ok = r.Date, r.Date, true
			continue
		}
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, ok
}

// DefaultStartDate is the default lower bound of the date-range picker:
// thirty days before the most recent observation.
func DefaultStartDate(max time.Time) time.Time {
	return max.AddDate(0, 0, -30)
}

// FilterStocks returns the records within [start, end] (inclusive, zero
// values disable a bound) whose ticker is in the selection. An empty
// ticker selection keeps all tickers.
func FilterStocks(records []StockRecord, start, end time.Time, tickers []string) []StockRecord {
	out := make([]StockRecord, 0, len(records))
	for _, r := range records {
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		if len(tickers) > 0 && !slices.Contains(tickers, r.Ticker) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterFx returns the records whose quote currency is in the selection.
// An empty selection falls back to the full fixed currency list.
func FilterFx(records []FxRecord, currencies []string) []FxRecord {
	selection := currencies
	if len(selection) == 0 {
		selection = Currencies
	}

	out := make([]FxRecord, 0, len(records))
	for _, r := range records {
		if slices.Contains(selection, r.QuoteCurrency) {
			out = append(out, r)
		}
	}
	return out
}
