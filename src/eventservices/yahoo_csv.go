package eventservices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

const yahooCsvSource = "YahooCsvQuoteResolver"

// YahooCsvQuoteResolver downloads the daily history CSV. URLTemplate takes the symbol and
// the window as unix seconds, in that order.
type YahooCsvQuoteResolver struct {
	URLTemplate string
	Client      *http.Client
}

func (y *YahooCsvQuoteResolver) Resolve(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (*eventmodels.Quote, error) {
	if err := validateResolveArgs(yahooCsvSource, symbol, window); err != nil {
		return nil, err
	}

	ctx, span := startResolveSpan(ctx, yahooCsvSource, symbol, window)
	defer span.End()

	rows, err := y.fetchCsv(ctx, symbol, window)
	if err != nil {
		span.RecordError(err)
		return nil, eventmodels.NewQuoteNotFoundError(yahooCsvSource, symbol, err)
	}

	bars := make([]eventmodels.DailyBar, 0, len(rows))
	for _, row := range rows {
		bar, ok, err := row.ToModel()
		if err != nil {
			span.RecordError(err)
			return nil, eventmodels.NewQuoteNotFoundError(yahooCsvSource, symbol, err)
		}

		if ok {
			bars = append(bars, bar)
		}
	}

	return latestClose(yahooCsvSource, symbol, window, bars)
}

func (y *YahooCsvQuoteResolver) fetchCsv(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) ([]*eventmodels.YahooCsvCandleDTO, error) {
	u := fmt.Sprintf(y.URLTemplate, url.PathEscape(symbol.String()), window.Start.Unix(), window.End.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("fetchCsv: failed to create request: %w", err)
	}

	req.Header.Add("Accept", "text/csv")

	log.WithContext(ctx).Debugf("fetching yahoo csv from %v", req.URL.String())

	res, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetchCsv: failed to fetch csv: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetchCsv: failed to fetch csv, http code %v", res.Status)
	}

	var rows []*eventmodels.YahooCsvCandleDTO
	if err := gocsv.Unmarshal(res.Body, &rows); err != nil {
		return nil, fmt.Errorf("fetchCsv: failed to unmarshal csv: %w", err)
	}

	return rows, nil
}

func NewYahooCsvQuoteResolver(urlTemplate string, client *http.Client) *YahooCsvQuoteResolver {
	if client == nil {
		client = newDefaultHTTPClient()
	}

	if urlTemplate == "" {
		urlTemplate = eventmodels.DefaultYahooCsvURLTemplate
	}

	return &YahooCsvQuoteResolver{
		URLTemplate: urlTemplate,
		Client:      client,
	}
}
