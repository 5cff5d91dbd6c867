package optionsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/eventproducers"
	"github.com/jiaming2012/option-pricer/src/eventservices"
	"github.com/jiaming2012/option-pricer/src/pricing"
)

const (
	stockRoute       = "/stock/{underlying}/{strike}/{time_to_expiration}/{volatility}/{risk_free_rate}"
	legacyStockRoute = "/stock/{underlying}/{period_start}/{period_end}/{strike}/{time_to_expiration}/{volatility}/{risk_free_rate}"
	quoteRoute       = "/quote/{symbol}"
	healthRoute      = "/health"
)

type Handler struct {
	Resolver eventservices.QuoteResolver
	Now      func() time.Time
	Lookback time.Duration
	Timeout  time.Duration

	tracer   trace.Tracer
	requests metric.Int64Counter
}

func NewHandler(resolver eventservices.QuoteResolver, lookback, timeout time.Duration) (*Handler, error) {
	requests, err := otel.Meter("optionsapi").Int64Counter("pricing.requests",
		metric.WithDescription("Pricing api requests by route and outcome"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("NewHandler: failed to create request counter: %w", err)
	}

	return &Handler{
		Resolver: resolver,
		Now:      time.Now,
		Lookback: lookback,
		Timeout:  timeout,
		tracer:   otel.Tracer("optionsapi"),
		requests: requests,
	}, nil
}

func toWebError(err error) *eventmodels.WebError {
	switch {
	case errors.Is(err, eventmodels.ErrMalformedRequest):
		return eventmodels.NewParserError(err)
	case errors.Is(err, eventmodels.ErrInvalidParameter), errors.Is(err, pricing.ErrInvalidParameter):
		return eventmodels.NewWebError(http.StatusBadRequest, "invalid_parameter", err.Error(), err)
	case errors.Is(err, eventmodels.ErrQuoteNotFound):
		return eventmodels.NewWebError(http.StatusServiceUnavailable, "quote_unavailable", err.Error(), err)
	default:
		return eventmodels.NewWebError(http.StatusInternalServerError, "internal", err.Error(), err)
	}
}

func (h *Handler) startRequest(w http.ResponseWriter, r *http.Request, name string) (context.Context, trace.Span, *log.Entry) {
	requestID := uuid.New()
	w.Header().Set("X-Request-Id", requestID.String())

	ctx, span := h.tracer.Start(r.Context(), name, trace.WithAttributes(attribute.String("request_id", requestID.String())))

	logger := log.WithContext(ctx).WithFields(log.Fields{
		"request_id": requestID.String(),
		"path":       r.URL.Path,
	})

	return ctx, span, logger
}

func (h *Handler) respondError(ctx context.Context, route string, span trace.Span, logger *log.Entry, err error, w http.ResponseWriter) {
	webErr := toWebError(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, webErr.Type)
	h.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route), attribute.String("outcome", webErr.Type)))

	if webErr.StatusCode >= http.StatusInternalServerError {
		logger.Errorf("%s: %v", webErr.Type, err)
	} else {
		logger.Warnf("%s: %v", webErr.Type, err)
	}

	if respErr := eventproducers.SetErrorResponse(webErr.Type, webErr.StatusCode, err, w); respErr != nil {
		logger.Errorf("failed to set error response: %v", respErr)
	}
}

func (h *Handler) resolve(ctx context.Context, symbol eventmodels.StockSymbol, window *eventmodels.QuoteWindow) (*eventmodels.Quote, error) {
	w := eventmodels.NewRecentQuoteWindow(h.Now(), h.Lookback)
	if window != nil {
		w = *window
	}

	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	return h.Resolver.Resolve(ctx, symbol, w)
}

func (h *Handler) priceCall(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.startRequest(w, r, "optionsapi.priceCall")
	defer span.End()

	var dto eventmodels.OptionPriceRequestDTO
	if err := dto.ParseHTTPRequest(r); err != nil {
		h.respondError(ctx, stockRoute, span, logger, err, w)
		return
	}

	req, err := dto.ToModel()
	if err != nil {
		h.respondError(ctx, stockRoute, span, logger, err, w)
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(ctx, stockRoute, span, logger, err, w)
		return
	}

	var underlyingPrice float64
	if req.Underlying.IsLiteral() {
		underlyingPrice = *req.Underlying.Price
	} else {
		quote, err := h.resolve(ctx, req.Underlying.Symbol, req.Window)
		if err != nil {
			h.respondError(ctx, stockRoute, span, logger, err, w)
			return
		}

		underlyingPrice = quote.Close
		logger = logger.WithField("as_of", quote.AsOf.Format(time.DateOnly))
	}

	call, err := pricing.PriceCall(underlyingPrice, req.Strike, req.TimeToExpiration, req.RiskFreeRate, req.Volatility)
	if err != nil {
		h.respondError(ctx, stockRoute, span, logger, err, w)
		return
	}

	logger.WithFields(log.Fields{
		"underlying": req.Underlying.String(),
		"price":      underlyingPrice,
		"strike":     req.Strike,
		"call":       call,
	}).Info("priced call")

	h.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("route", stockRoute), attribute.String("outcome", "ok")))

	if err := eventproducers.SetResponse(&eventmodels.OptionPriceResultDTO{Call: call}, w); err != nil {
		logger.Errorf("failed to set response: %v", err)
	}
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.startRequest(w, r, "optionsapi.getQuote")
	defer span.End()

	symbol := eventmodels.NewStockSymbol(mux.Vars(r)["symbol"])

	quote, err := h.resolve(ctx, symbol, nil)
	if err != nil {
		h.respondError(ctx, quoteRoute, span, logger, err, w)
		return
	}

	h.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("route", quoteRoute), attribute.String("outcome", "ok")))

	if err := eventproducers.SetResponse(quote.ToDTO(), w); err != nil {
		logger.Errorf("failed to set response: %v", err)
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func health(w http.ResponseWriter, r *http.Request) {
	if err := eventproducers.SetResponse(&healthResponse{Status: "ok"}, w); err != nil {
		log.Errorf("health: failed to set response: %v", err)
	}
}

func SetupHandler(router *mux.Router, h *Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		router.Handle(pattern, otelhttp.WithRouteTag(pattern, fn)).Methods(http.MethodGet)
	}

	handle(stockRoute, h.priceCall)
	handle(legacyStockRoute, h.priceCall)
	handle(quoteRoute, h.getQuote)
	handle(healthRoute, health)
}
