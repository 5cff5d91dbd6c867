package eventmodels

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var stockSymbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=:]{1,16}$`)

type StockSymbol string

func (s StockSymbol) String() string {
	return strings.ToUpper(string(s))
}

func (s StockSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s StockSymbol) Validate() error {
	if !stockSymbolPattern.MatchString(s.String()) {
		return fmt.Errorf("%w: invalid stock symbol %q", ErrInvalidParameter, string(s))
	}

	return nil
}

func NewStockSymbol(s string) StockSymbol {
	return StockSymbol(strings.ToUpper(strings.TrimSpace(s)))
}
