package eventservices

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// QuoteResolver returns the latest daily close of a symbol within a window. Every failure
// wraps eventmodels.ErrQuoteNotFound, except an invalid symbol or window which wraps
// eventmodels.ErrInvalidParameter. Implementations never retry.
type QuoteResolver interface {
	Resolve(ctx context.Context, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (*eventmodels.Quote, error)
}

type QuoteResolverSecrets struct {
	PolygonApiKey      string
	TradierBearerToken string
}

func NewQuoteResolver(config *eventmodels.PricingConfigYAML, secrets QuoteResolverSecrets, client *http.Client) (QuoteResolver, error) {
	switch config.QuoteSource {
	case eventmodels.QuoteSourcePolygon:
		if secrets.PolygonApiKey == "" {
			return nil, fmt.Errorf("NewQuoteResolver: missing POLYGON_API_KEY for quote source %s", config.QuoteSource)
		}
		return NewPolygonQuoteResolver(secrets.PolygonApiKey, client), nil
	case eventmodels.QuoteSourceYahoo:
		return NewYahooChartQuoteResolver(), nil
	case eventmodels.QuoteSourceYahooCsv:
		return NewYahooCsvQuoteResolver(config.YahooCsvURLTemplate, client), nil
	case eventmodels.QuoteSourceTradier:
		if secrets.TradierBearerToken == "" {
			return nil, fmt.Errorf("NewQuoteResolver: missing TRADIER_BEARER_TOKEN for quote source %s", config.QuoteSource)
		}
		return NewTradierQuoteResolver(config.TradierHistoryURL, secrets.TradierBearerToken, client), nil
	default:
		return nil, fmt.Errorf("NewQuoteResolver: unknown quote source %q", config.QuoteSource)
	}
}

func validateResolveArgs(source string, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) error {
	if err := symbol.Validate(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	if err := window.Validate(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	return nil
}

// latestClose picks the bar with the newest timestamp, ignoring bars without a usable close.
func latestClose(source string, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow, bars []eventmodels.DailyBar) (*eventmodels.Quote, error) {
	var latest *eventmodels.DailyBar
	for i := range bars {
		b := &bars[i]
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			continue
		}

		if latest == nil || b.Timestamp.After(latest.Timestamp) {
			latest = b
		}
	}

	if latest == nil {
		return nil, eventmodels.NewQuoteNotFoundError(source, symbol, fmt.Errorf("no bars between %s and %s", window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly)))
	}

	return &eventmodels.Quote{
		Symbol: symbol,
		Window: window,
		AsOf:   latest.Timestamp,
		Close:  latest.Close,
	}, nil
}

func startResolveSpan(ctx context.Context, source string, symbol eventmodels.StockSymbol, window eventmodels.QuoteWindow) (context.Context, trace.Span) {
	tracer := otel.Tracer("eventservices")
	return tracer.Start(ctx, source+".Resolve", trace.WithAttributes(
		attribute.String("symbol", symbol.String()),
		attribute.String("window.start", window.Start.Format(time.RFC3339)),
		attribute.String("window.end", window.End.Format(time.RFC3339)),
	))
}

func newDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}
