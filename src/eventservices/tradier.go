package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

const tradierSource = "TradierQuoteResolver"

type TradierQuoteResolver struct {
	HistoryURL  string
	BearerToken string
	Client      *http.Client
}

func (t *TradierQuoteResolver) Resolve(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (*eventmodels.Quote, error) {
	if err := validateResolveArgs(tradierSource, symbol, window); err != nil {
		return nil, err
	}

	ctx, span := startResolveSpan(ctx, tradierSource, symbol, window)
	defer span.End()

	dto, err := t.fetchHistory(ctx, symbol, window)
	if err != nil {
		span.RecordError(err)
		return nil, eventmodels.NewQuoteNotFoundError(tradierSource, symbol, err)
	}

	bars, err := dto.ToModel()
	if err != nil {
		span.RecordError(err)
		return nil, eventmodels.NewQuoteNotFoundError(tradierSource, symbol, err)
	}

	return latestClose(tradierSource, symbol, window, bars)
}

func (t *TradierQuoteResolver) fetchHistory(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (*eventmodels.TradierMarketsHistoryResponseDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.HistoryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetchHistory: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("symbol", symbol.String())
	q.Add("interval", "daily")
	q.Add("start", window.Start.Format(time.DateOnly))
	q.Add("end", window.End.Format(time.DateOnly))

	req.URL.RawQuery = q.Encode()
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", t.BearerToken))

	log.WithContext(ctx).Debugf("fetching tradier history for %s", symbol)

	res, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetchHistory: failed to fetch history: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetchHistory: failed to fetch history, http code %v", res.Status)
	}

	var dto eventmodels.TradierMarketsHistoryResponseDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("fetchHistory: failed to decode json: %w", err)
	}

	return &dto, nil
}

func NewTradierQuoteResolver(historyURL, bearerToken string, client *http.Client) *TradierQuoteResolver {
	if client == nil {
		client = newDefaultHTTPClient()
	}

	return &TradierQuoteResolver{
		HistoryURL:  historyURL,
		BearerToken: bearerToken,
		Client:      client,
	}
}
