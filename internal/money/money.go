// Package money renders decimal amounts for Spanish-speaking crews.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the display locale for amounts.
var Locale = language.Spanish

// Euro formats d with two decimals and a trailing euro sign, e.g. "342,94 €".
// Rounding is half away from zero and exact at any magnitude: only the
// integer part goes through the locale printer for digit grouping.
func Euro(d decimal.Decimal) string {
	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = message.NewPrinter(Locale).Sprintf("%d", n)
	}
	return sign + whole + "," + cents + " €"
}

// Rate formats a percentage with a decimal comma, e.g. "6,5 %".
func Rate(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1) + " %"
}
