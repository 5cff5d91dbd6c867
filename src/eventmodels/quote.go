package eventmodels

import (
	"fmt"
	"time"
)

type QuoteWindow struct {
	Start time.Time
	End   time.Time
}

func (w QuoteWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: quote window start and end are required", ErrInvalidParameter)
	}

	if w.Start.After(w.End) {
		return fmt.Errorf("%w: quote window start %v is after end %v", ErrInvalidParameter, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}

	return nil
}

// NewRecentQuoteWindow covers the lookback period ending at now.
func NewRecentQuoteWindow(now time.Time, lookback time.Duration) QuoteWindow {
	return QuoteWindow{
		Start: now.Add(-lookback),
		End:   now,
	}
}

func NewUnixQuoteWindow(start, end int64) QuoteWindow {
	return QuoteWindow{
		Start: time.Unix(start, 0).UTC(),
		End:   time.Unix(end, 0).UTC(),
	}
}

type Quote struct {
	Symbol StockSymbol
	Window QuoteWindow
	AsOf   time.Time
	Close  float64
}

func (q *Quote) ToDTO() *QuoteDTO {
	return &QuoteDTO{
		Symbol: q.Symbol.String(),
		Close:  q.Close,
		AsOf:   q.AsOf.UTC().Format(time.RFC3339),
	}
}

type QuoteDTO struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
	AsOf   string  `json:"as_of"`
}

// DailyBar is the backend-neutral shape every resolver reduces its rows to.
type DailyBar struct {
	Timestamp time.Time
	Close     float64
}
