package run

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type PricingResult struct {
	Underlying       string
	UnderlyingPrice  *float64
	Strike           float64
	TimeToExpiration float64
	Volatility       float64
	RiskFreeRate     float64
	Call             float64
}

func formatDollars(p *message.Printer, v float64) string {
	rounded := decimal.NewFromFloat(v).Round(2)
	return fmt.Sprintf("$%s", p.Sprintf("%.2f", rounded.InexactFloat64()))
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(2).String() + "%"
}

func (r *PricingResult) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Underlying", "Strike", "Years", "Volatility", "Rate", "Call"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)

	underlying := r.Underlying
	if r.UnderlyingPrice != nil {
		underlying = fmt.Sprintf("%s (%s)", underlying, formatDollars(p, *r.UnderlyingPrice))
	}

	table.Append([]string{
		underlying,
		formatDollars(p, r.Strike),
		decimal.NewFromFloat(r.TimeToExpiration).StringFixed(4),
		formatPercent(r.Volatility),
		formatPercent(r.RiskFreeRate),
		formatDollars(p, r.Call),
	})

	table.Render()
	return display.String()
}
