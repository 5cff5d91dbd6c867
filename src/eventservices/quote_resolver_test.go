package eventservices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// rewriteTransport sends every request to target, keeping the path and query.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newRewriteClient(t *testing.T, srv *httptest.Server) *http.Client {
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &http.Client{Transport: rewriteTransport{target: target}, Timeout: 5 * time.Second}
}

var testWindow = eventmodels.QuoteWindow{
	Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
}

func TestLatestClose(t *testing.T) {
	symbol := eventmodels.NewStockSymbol("AAPL")

	t.Run("picks newest bar regardless of order", func(t *testing.T) {
		bars := []eventmodels.DailyBar{
			{Timestamp: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Close: 170},
			{Timestamp: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), Close: 172.5},
			{Timestamp: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Close: 171},
		}

		q, err := latestClose("test", symbol, testWindow, bars)
		require.NoError(t, err)
		assert.Equal(t, 172.5, q.Close)
		assert.Equal(t, symbol, q.Symbol)
		assert.Equal(t, testWindow, q.Window)
	})

	t.Run("skips bars without a positive close", func(t *testing.T) {
		bars := []eventmodels.DailyBar{
			{Timestamp: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Close: 170},
			{Timestamp: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), Close: 0},
		}

		q, err := latestClose("test", symbol, testWindow, bars)
		require.NoError(t, err)
		assert.Equal(t, 170.0, q.Close)
	})

	t.Run("no bars is not found", func(t *testing.T) {
		q, err := latestClose("test", symbol, testWindow, nil)
		assert.Nil(t, q)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})
}

func TestPolygonQuoteResolver(t *testing.T) {
	t.Run("returns latest close", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/v2/aggs/ticker/AAPL/range/1/day/") {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ticker":"AAPL","status":"OK","queryCount":2,"resultsCount":2,"adjusted":true,"results":[`+
				`{"v":100,"vw":170.1,"o":169,"c":170.5,"h":171,"l":168,"t":1709528400000,"n":10},`+
				`{"v":100,"vw":172.1,"o":171,"c":173.25,"h":174,"l":170,"t":1709614800000,"n":10}],"request_id":"abc"}`)
		}))
		defer srv.Close()

		resolver := NewPolygonQuoteResolver("test-key", newRewriteClient(t, srv))

		q, err := resolver.Resolve(context.Background(), "AAPL", testWindow)
		require.NoError(t, err)
		assert.Equal(t, 173.25, q.Close)
		assert.Equal(t, int64(1709614800), q.AsOf.Unix())
	})

	t.Run("empty result set is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ticker":"ZZZZ","status":"OK","queryCount":0,"resultsCount":0,"adjusted":true,"request_id":"abc"}`)
		}))
		defer srv.Close()

		resolver := NewPolygonQuoteResolver("test-key", newRewriteClient(t, srv))

		q, err := resolver.Resolve(context.Background(), "ZZZZ", testWindow)
		assert.Nil(t, q)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})

	t.Run("http error is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"status":"ERROR","request_id":"abc","error":"boom"}`)
		}))
		defer srv.Close()

		resolver := NewPolygonQuoteResolver("test-key", newRewriteClient(t, srv))

		_, err := resolver.Resolve(context.Background(), "AAPL", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})

	t.Run("inverted window is an invalid parameter", func(t *testing.T) {
		resolver := NewPolygonQuoteResolver("test-key", nil)

		_, err := resolver.Resolve(context.Background(), "AAPL", eventmodels.QuoteWindow{Start: testWindow.End, End: testWindow.Start})
		assert.ErrorIs(t, err, eventmodels.ErrInvalidParameter)
		assert.NotErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})
}

func TestTradierQuoteResolver(t *testing.T) {
	t.Run("returns latest close and sends query", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
			assert.Equal(t, "daily", r.URL.Query().Get("interval"))
			assert.Equal(t, "2024-03-01", r.URL.Query().Get("start"))
			assert.Equal(t, "2024-03-08", r.URL.Query().Get("end"))

			fmt.Fprint(w, `{"history":{"day":[{"date":"2024-03-06","open":1,"high":2,"low":0.5,"close":507.75,"volume":10},{"date":"2024-03-07","open":1,"high":2,"low":0.5,"close":514.81,"volume":10}]}}`)
		}))
		defer srv.Close()

		resolver := NewTradierQuoteResolver(srv.URL, "token", srv.Client())

		q, err := resolver.Resolve(context.Background(), "SPY", testWindow)
		require.NoError(t, err)
		assert.Equal(t, 514.81, q.Close)
		assert.Equal(t, "2024-03-07", q.AsOf.Format(time.DateOnly))
	})

	t.Run("null history is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"history":null}`)
		}))
		defer srv.Close()

		resolver := NewTradierQuoteResolver(srv.URL, "token", srv.Client())

		_, err := resolver.Resolve(context.Background(), "ZZZZ", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})

	t.Run("unauthorized is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		resolver := NewTradierQuoteResolver(srv.URL, "token", srv.Client())

		_, err := resolver.Resolve(context.Background(), "SPY", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})
}

func TestYahooCsvQuoteResolver(t *testing.T) {
	t.Run("returns the last row close", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v7/finance/download/MSFT", r.URL.Path)
			assert.Equal(t, fmt.Sprintf("%d", testWindow.Start.Unix()), r.URL.Query().Get("period1"))
			assert.Equal(t, fmt.Sprintf("%d", testWindow.End.Unix()), r.URL.Query().Get("period2"))

			fmt.Fprint(w, "Date,Open,High,Low,Close,Adj Close,Volume\n"+
				"2024-03-06,402.0,405.0,400.0,402.09,402.09,100\n"+
				"2024-03-07,406.0,410.0,405.0,409.14,409.14,100\n"+
				"2024-03-08,null,null,null,null,null,null\n")
		}))
		defer srv.Close()

		resolver := NewYahooCsvQuoteResolver(srv.URL+"/v7/finance/download/%s?period1=%d&period2=%d&interval=1d", srv.Client())

		q, err := resolver.Resolve(context.Background(), "MSFT", testWindow)
		require.NoError(t, err)
		assert.Equal(t, 409.14, q.Close)
	})

	t.Run("header only is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "Date,Open,High,Low,Close,Adj Close,Volume\n")
		}))
		defer srv.Close()

		resolver := NewYahooCsvQuoteResolver(srv.URL+"/%s?period1=%d&period2=%d", srv.Client())

		_, err := resolver.Resolve(context.Background(), "MSFT", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})

	t.Run("unknown ticker 404 is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "404 Not Found: No data found, symbol may be delisted")
		}))
		defer srv.Close()

		resolver := NewYahooCsvQuoteResolver(srv.URL+"/%s?period1=%d&period2=%d", srv.Client())

		_, err := resolver.Resolve(context.Background(), "ZZZZ", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})

	t.Run("transport failure is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		u := srv.URL
		srv.Close()

		resolver := NewYahooCsvQuoteResolver(u+"/%s?period1=%d&period2=%d", nil)

		_, err := resolver.Resolve(context.Background(), "MSFT", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})
}

func TestYahooChartQuoteResolver(t *testing.T) {
	bar := func(ts time.Time, c float64) *finance.ChartBar {
		return &finance.ChartBar{
			Close:     decimal.NewFromFloat(c),
			Timestamp: int(ts.Unix()),
		}
	}

	t.Run("returns latest close inside the window", func(t *testing.T) {
		var captured *chart.Params
		resolver := &YahooChartQuoteResolver{
			FetchBars: func(params *chart.Params) ([]*finance.ChartBar, error) {
				captured = params
				return []*finance.ChartBar{
					bar(time.Date(2024, 3, 6, 14, 30, 0, 0, time.UTC), 180.5),
					bar(time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC), 181.25),
					bar(time.Date(2024, 3, 8, 14, 30, 0, 0, time.UTC), 999),
				}, nil
			},
		}

		q, err := resolver.Resolve(context.Background(), "nvda", testWindow)
		require.NoError(t, err)
		assert.Equal(t, 181.25, q.Close)

		require.NotNil(t, captured)
		assert.Equal(t, "NVDA", captured.Symbol)
		assert.Equal(t, 9, captured.End.Day)
	})

	t.Run("fetch error is not found", func(t *testing.T) {
		resolver := &YahooChartQuoteResolver{
			FetchBars: func(params *chart.Params) ([]*finance.ChartBar, error) {
				return nil, errors.New("remote-error")
			},
		}

		_, err := resolver.Resolve(context.Background(), "NVDA", testWindow)
		assert.ErrorIs(t, err, eventmodels.ErrQuoteNotFound)
	})
}

func TestNewQuoteResolver(t *testing.T) {
	cfg := eventmodels.NewDefaultPricingConfig()

	t.Run("polygon requires api key", func(t *testing.T) {
		cfg.QuoteSource = eventmodels.QuoteSourcePolygon
		_, err := NewQuoteResolver(cfg, QuoteResolverSecrets{}, nil)
		assert.Error(t, err)

		r, err := NewQuoteResolver(cfg, QuoteResolverSecrets{PolygonApiKey: "k"}, nil)
		require.NoError(t, err)
		assert.IsType(t, &PolygonQuoteResolver{}, r)
	})

	t.Run("tradier requires token", func(t *testing.T) {
		cfg.QuoteSource = eventmodels.QuoteSourceTradier
		_, err := NewQuoteResolver(cfg, QuoteResolverSecrets{}, nil)
		assert.Error(t, err)
	})

	t.Run("yahoo sources", func(t *testing.T) {
		cfg.QuoteSource = eventmodels.QuoteSourceYahoo
		r, err := NewQuoteResolver(cfg, QuoteResolverSecrets{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &YahooChartQuoteResolver{}, r)

		cfg.QuoteSource = eventmodels.QuoteSourceYahooCsv
		r, err = NewQuoteResolver(cfg, QuoteResolverSecrets{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &YahooCsvQuoteResolver{}, r)
	})
}
