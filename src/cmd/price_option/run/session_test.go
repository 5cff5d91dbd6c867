package run

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventservices"
)

var sessionToday = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// newPricingServer answers like the pricing api. Only AAPL and literal prices resolve.
func newPricingServer(t *testing.T, calls *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls = append(*calls, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/quote/AAPL":
			fmt.Fprint(w, `{"symbol":"AAPL","close":150,"as_of":"2024-03-14T00:00:00Z"}`)
		case strings.HasPrefix(r.URL.Path, "/stock/AAPL/"), strings.HasPrefix(r.URL.Path, "/stock/150/"):
			fmt.Fprint(w, `{"call":50.508}`)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"type":"quote_unavailable","message":"quote not found"}`)
		}
	}))
}

func newTestSession(input string, client PricingClient, manualFallback bool) (*Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	s := NewSession(NewPrompter(strings.NewReader(input), out), client, manualFallback)
	s.Now = func() time.Time { return sessionToday }
	return s, out
}

func TestSessionPricesAndExits(t *testing.T) {
	var calls []string
	srv := newPricingServer(t, &calls)
	defer srv.Close()

	input := strings.Join([]string{
		"maybe",
		"y",
		"zzzz", "aapl",
		"2024", "02", "30",
		"2024", "09", "11",
		"-100", "100",
		"0.2",
		"0.01",
		"N",
	}, "\n") + "\n"

	s, out := newTestSession(input, eventservices.NewOptionPricingClient(srv.URL, srv.Client()), false)
	require.NoError(t, s.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "You need to enter either Y or N")
	assert.Contains(t, output, "Ticker cannot be found")
	assert.Contains(t, output, "not an existing date")
	assert.Contains(t, output, "positive value for strike")
	assert.Contains(t, output, "$50.51")
	assert.Contains(t, output, "Goodbye!")

	// 2024-03-15 to 2024-09-11 is 180 days
	assert.Contains(t, calls, fmt.Sprintf("/stock/AAPL/100/%s/0.2/0.01", formatYears(180.0/365)))
}

func TestSessionManualFallback(t *testing.T) {
	var calls []string
	srv := newPricingServer(t, &calls)
	defer srv.Close()

	input := strings.Join([]string{
		"Y",
		"MSFT",
		"2025", "03", "15",
		"100",
		"0.2",
		"0.01",
		"150",
		"n",
	}, "\n") + "\n"

	s, out := newTestSession(input, eventservices.NewOptionPricingClient(srv.URL, srv.Client()), true)
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "a manual price will be requested")
	assert.Contains(t, out.String(), "$150.00")
	assert.Contains(t, calls, "/stock/150/100/1/0.2/0.01")
}

func TestSessionWithoutFallbackReportsUnavailable(t *testing.T) {
	var calls []string
	srv := newPricingServer(t, &calls)
	defer srv.Close()

	s, out := newTestSession("y\nMSFT\n", eventservices.NewOptionPricingClient(srv.URL, srv.Client()), false)
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Ticker cannot be found")
	assert.NotContains(t, out.String(), "manual price")
}

func formatYears(v float64) string {
	return fmt.Sprintf("%v", v)
}
