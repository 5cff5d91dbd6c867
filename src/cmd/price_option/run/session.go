package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/eventservices"
	"github.com/jiaming2012/option-pricer/src/utils"
)

type PricingClient interface {
	FetchCallPrice(ctx context.Context, underlying eventmodels.Underlying, strike, timeToExpiration, volatility, riskFreeRate float64) (*eventmodels.OptionPriceResultDTO, error)
	FetchQuote(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.QuoteDTO, error)
}

type Session struct {
	Prompter       *Prompter
	Client         PricingClient
	Now            func() time.Time
	ManualFallback bool
}

func NewSession(prompter *Prompter, client PricingClient, manualFallback bool) *Session {
	return &Session{
		Prompter:       prompter,
		Client:         client,
		Now:            time.Now,
		ManualFallback: manualFallback,
	}
}

// Run asks Y/N until the operator answers N or input ends.
func (s *Session) Run(ctx context.Context) error {
	for {
		answer, err := s.Prompter.Ask("Press 'Y' to run the program, and 'N' to exit the program: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			result, err := s.PriceOnce(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}

				fmt.Fprintf(s.Prompter.Out, "Failed to price option: %v\n", err)
				continue
			}

			fmt.Fprint(s.Prompter.Out, result.String())
		case "n":
			fmt.Fprintln(s.Prompter.Out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.Prompter.Out, "You need to enter either Y or N")
		}
	}
}

func (s *Session) askTicker(ctx context.Context) (eventmodels.StockSymbol, error) {
	for {
		symbol, err := askUntilValid(s.Prompter, "Enter a ticker: ", ValidateTicker)
		if err != nil {
			return "", err
		}

		_, err = s.Client.FetchQuote(ctx, symbol)
		if err == nil {
			return symbol, nil
		}

		if s.ManualFallback && eventservices.IsQuoteUnavailable(err) {
			fmt.Fprintf(s.Prompter.Out, "No recent quote for %s, a manual price will be requested\n", symbol)
			return symbol, nil
		}

		fmt.Fprintf(s.Prompter.Out, "Ticker cannot be found: %v\n", err)
	}
}

func (s *Session) askExpiration() (time.Time, error) {
	for {
		year, err := s.Prompter.Ask("Enter the expiration year in the form YYYY: ")
		if err != nil {
			return time.Time{}, err
		}

		month, err := s.Prompter.Ask("Enter the expiration month in the form MM: ")
		if err != nil {
			return time.Time{}, err
		}

		day, err := s.Prompter.Ask("Enter the expiration day in the form DD: ")
		if err != nil {
			return time.Time{}, err
		}

		exp, err := ValidateExpirationDate(year, month, day, s.Now())
		if err == nil {
			return exp, nil
		}

		fmt.Fprintln(s.Prompter.Out, err)
	}
}

func (s *Session) PriceOnce(ctx context.Context) (*PricingResult, error) {
	symbol, err := s.askTicker(ctx)
	if err != nil {
		return nil, err
	}

	expiration, err := s.askExpiration()
	if err != nil {
		return nil, err
	}

	strike, err := askUntilValid(s.Prompter, "Enter the strike value: ", ValidateStrike)
	if err != nil {
		return nil, err
	}

	volatility, err := askUntilValid(s.Prompter, "Enter the implied volatility of the asset as a decimal (e.g. 0.2 represents 20%): ", ValidateVolatility)
	if err != nil {
		return nil, err
	}

	riskFreeRate, err := askUntilValid(s.Prompter, "Enter the current risk free rate of interest as a decimal (e.g. 0.2 represents 20%): ", ValidateRiskFreeRate)
	if err != nil {
		return nil, err
	}

	result := &PricingResult{
		Underlying:       symbol.String(),
		Strike:           strike,
		TimeToExpiration: utils.YearsUntil(expiration, s.Now()),
		Volatility:       volatility,
		RiskFreeRate:     riskFreeRate,
	}

	dto, err := s.Client.FetchCallPrice(ctx, eventmodels.NewSymbolUnderlying(symbol), strike, result.TimeToExpiration, volatility, riskFreeRate)
	if err != nil && s.ManualFallback && eventservices.IsQuoteUnavailable(err) {
		price, askErr := askUntilValid(s.Prompter, fmt.Sprintf("Enter the current price of %s: ", symbol), ValidateUnderlyingPrice)
		if askErr != nil {
			return nil, askErr
		}

		result.UnderlyingPrice = &price
		dto, err = s.Client.FetchCallPrice(ctx, eventmodels.NewLiteralUnderlying(price), strike, result.TimeToExpiration, volatility, riskFreeRate)
	}

	if err != nil {
		return nil, fmt.Errorf("PriceOnce: %w", err)
	}

	result.Call = dto.Call
	return result, nil
}
