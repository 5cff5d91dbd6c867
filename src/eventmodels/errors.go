package eventmodels

import (
	"errors"
	"fmt"
)

var ErrInvalidParameter = errors.New("invalid parameter")
var ErrMalformedRequest = errors.New("malformed request")
var ErrQuoteNotFound = errors.New("quote not found")

// NewQuoteNotFoundError folds every resolver failure into ErrQuoteNotFound so callers
// only need a single errors.Is check.
func NewQuoteNotFoundError(source string, symbol StockSymbol, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w for %s", source, ErrQuoteNotFound, symbol)
	}

	return fmt.Errorf("%s: %w for %s: %v", source, ErrQuoteNotFound, symbol, cause)
}
