package format

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.EuropeanSpanish)

// Price renders an amount as a localized EUR currency string.
func Price(amount float64) string {
	return printer.Sprint(currency.Symbol(currency.EUR.Amount(amount)))
}
