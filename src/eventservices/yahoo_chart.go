package eventservices

import (
	"context"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

const yahooChartSource = "YahooChartQuoteResolver"

type ChartBarsFetcher func(params *chart.Params) ([]*finance.ChartBar, error)

type YahooChartQuoteResolver struct {
	FetchBars ChartBarsFetcher
}

func fetchYahooChartBars(params *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(params)

	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	return bars, nil
}

func toDatetime(t time.Time) *datetime.Datetime {
	t = t.UTC()
	return &datetime.Datetime{
		Month: int(t.Month()),
		Day:   t.Day(),
		Year:  t.Year(),
	}
}

func (y *YahooChartQuoteResolver) Resolve(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (*eventmodels.Quote, error) {
	if err := validateResolveArgs(yahooChartSource, symbol, window); err != nil {
		return nil, err
	}

	ctx, span := startResolveSpan(ctx, yahooChartSource, symbol, window)
	defer span.End()

	// the chart api works in whole days; ask for one past the end and trim below
	params := &chart.Params{
		Symbol:   symbol.String(),
		Start:    toDatetime(window.Start),
		End:      toDatetime(window.End.AddDate(0, 0, 1)),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx

	log.WithContext(ctx).Debugf("fetching yahoo chart bars for %s", symbol)

	chartBars, err := y.FetchBars(params)
	if err != nil {
		span.RecordError(err)
		return nil, eventmodels.NewQuoteNotFoundError(yahooChartSource, symbol, err)
	}

	bars := make([]eventmodels.DailyBar, 0, len(chartBars))
	for _, b := range chartBars {
		if b == nil {
			continue
		}

		ts := time.Unix(int64(b.Timestamp), 0).UTC()
		if ts.After(window.End) {
			continue
		}

		closePrice, _ := b.Close.Float64()
		bars = append(bars, eventmodels.DailyBar{Timestamp: ts, Close: closePrice})
	}

	return latestClose(yahooChartSource, symbol, window, bars)
}

func NewYahooChartQuoteResolver() *YahooChartQuoteResolver {
	return &YahooChartQuoteResolver{
		FetchBars: fetchYahooChartBars,
	}
}
