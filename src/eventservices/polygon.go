package eventservices

import (
	"context"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

const polygonSource = "PolygonQuoteResolver"

type PolygonQuoteResolver struct {
	Client *polygon.Client
}

func (p *PolygonQuoteResolver) Resolve(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (*eventmodels.Quote, error) {
	if err := validateResolveArgs(polygonSource, symbol, window); err != nil {
		return nil, err
	}

	ctx, span := startResolveSpan(ctx, polygonSource, symbol, window)
	defer span.End()

	params := models.ListAggsParams{
		Ticker:     symbol.String(),
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(window.Start),
		To:         models.Millis(window.End),
	}.WithOrder(models.Asc).WithAdjusted(true)

	log.WithContext(ctx).Debugf("fetching polygon daily bars for %s", symbol)

	iter := p.Client.ListAggs(ctx, params)

	var bars []eventmodels.DailyBar
	for iter.Next() {
		bars = append(bars, eventmodels.DailyBar{
			Timestamp: time.Time(iter.Item().Timestamp),
			Close:     iter.Item().Close,
		})
	}

	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return nil, eventmodels.NewQuoteNotFoundError(polygonSource, symbol, err)
	}

	return latestClose(polygonSource, symbol, window, bars)
}

func NewPolygonQuoteResolver(apiKey string, client *http.Client) *PolygonQuoteResolver {
	if client == nil {
		client = newDefaultHTTPClient()
	}

	return &PolygonQuoteResolver{
		Client: polygon.NewWithClient(apiKey, client),
	}
}
