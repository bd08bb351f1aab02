package export

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fundview-dev/fundview/internal/model"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as en-US dollars with no fraction digits,
// e.g. "$12,000". NoValue renders as an empty string.
func FormatCurrency(v model.Optional[decimal.Decimal]) string {
	if !v.Valid {
		return ""
	}
	n := v.V.Round(0).IntPart()
	if n < 0 {
		return usd.Sprintf("-$%d", -n)
	}
	return usd.Sprintf("$%d", n)
}

// FormatNumber renders a plain number, at most two fraction digits.
// NoValue renders as an empty string.
func FormatNumber(v model.Optional[decimal.Decimal]) string {
	if !v.Valid {
		return ""
	}
	return v.V.Round(2).String()
}
