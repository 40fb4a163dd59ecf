package market

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// stockFactsSQL selects the long-format facts for the fixed ticker
// allow-list and the two dashboard measures. Pivoting and the lag
// computation happen locally in BuildStockFrame.
const stockFactsSQL = `
SELECT ticker, date, variable_name, value
FROM stock_price_timeseries
WHERE ticker = ANY($1)
  AND variable_name = ANY($2)
`

// fxRatesSQL selects FX observations for one base currency from a
// minimum date, exposing variable_name under its dashboard label.
const fxRatesSQL = `
SELECT base_currency_id, quote_currency_name, date, variable_name AS exchange_rate, value
FROM fx_rates_timeseries
WHERE base_currency_id = $1
  AND date >= $2
ORDER BY quote_currency_name, date
`

// PGQuerier implements Querier against the warehouse.
type PGQuerier struct {
	pool *pgxpool.Pool
}

// NewPGQuerier creates a warehouse-backed querier.
func NewPGQuerier(pool *pgxpool.Pool) *PGQuerier {
	return &PGQuerier{pool: pool}
}

// StockFacts implements Querier.
func (q *PGQuerier) StockFacts(ctx context.Context) ([]Fact, error) {
	measures := []string{MeasureNasdaqVolume, MeasurePostmarketClose}

	rows, err := q.pool.Query(ctx, stockFactsSQL, Tickers, measures)
	if err != nil {
		return nil, fmt.Errorf("querying stock facts: %w", err)
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.Ticker, &f.Date, &f.Variable, &f.Value); err != nil {
			return nil, fmt.Errorf("scanning stock fact: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stock facts: %w", err)
	}
	return facts, nil
}

// FxRates implements Querier.
func (q *PGQuerier) FxRates(ctx context.Context) ([]FxRecord, error) {
	rows, err := q.pool.Query(ctx, fxRatesSQL, BaseCurrency, MinFxDate)
	if err != nil {
		return nil, fmt.Errorf("querying fx rates: %w", err)
	}
	defer rows.Close()

	var records []FxRecord
	for rows.Next() {
		var r FxRecord
		if err := rows.Scan(&r.BaseCurrency, &r.QuoteCurrency, &r.Date, &r.ExchangeRate, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning fx rate: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading fx rates: %w", err)
	}
	return records, nil
}
