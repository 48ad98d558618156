package internal

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency represents a currency with its formatting rules
type Currency struct {
	Code    string // "CLP", "USD", "EUR"
	unit    currency.Unit
	tag     language.Tag
	printer *message.Printer
}

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"CLP": "$",
	"CLF": "UF",
}

// defaultLocaleForCurrency provides fallback locales when no locale is configured
var defaultLocaleForCurrency = map[string]language.Tag{
	"CLP": language.MustParse("es-CL"),
	"CLF": language.MustParse("es-CL"),
	"USD": language.AmericanEnglish,
	"EUR": language.Spanish,
	"ARS": language.MustParse("es-AR"),
	"PEN": language.MustParse("es-PE"),
	"MXN": language.LatinAmericanSpanish,
}

// GetCurrency returns the Currency for a code, formatted with its home locale
func GetCurrency(code string) Currency {
	code = strings.ToUpper(code)
	tag, ok := defaultLocaleForCurrency[code]
	if !ok {
		tag = language.English
	}
	return GetCurrencyWithLocale(code, tag)
}

// GetCurrencyWithLocale returns a Currency with a specific locale for formatting.
// Unknown currency codes are printed using the code as symbol.
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(code)

	// unknown codes keep the zero Unit and print the code itself
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.Unit{}
	}

	return Currency{
		Code:    code,
		unit:    unit,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
}

// CurrencyFromConfig resolves the configured currency and locale
func CurrencyFromConfig(cfg *Config) Currency {
	if cfg == nil {
		return GetCurrency("CLP")
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return GetCurrency(cfg.Currency)
	}
	return GetCurrencyWithLocale(cfg.Currency, tag)
}

// getSymbol returns the currency symbol, using overrides where needed
func (c Currency) getSymbol() string {
	if sym, ok := symbolOverrides[c.Code]; ok {
		return sym
	}
	if c.unit == (currency.Unit{}) {
		return c.Code
	}
	return c.printer.Sprint(currency.NarrowSymbol(c.unit))
}

// isPrefix returns true if this currency symbol should be placed before the amount.
// x/text does not expose CLDR symbol positioning, so this is kept by hand.
func (c Currency) isPrefix() bool {
	switch c.Code {
	case "CLP", "CLF", "USD", "ARS", "MXN", "PEN":
		return true
	default:
		return false
	}
}

// Format formats an amount with the currency symbol, without decimals
func (c Currency) Format(amount decimal.Decimal) string {
	formatted := c.printer.Sprint(number.Decimal(amount.Round(0).IntPart(), number.MaxFractionDigits(0)))
	symbol := c.getSymbol()

	if c.isPrefix() {
		if amount.IsNegative() {
			return "-" + symbol + strings.TrimPrefix(formatted, "-")
		}
		return symbol + formatted
	}
	return formatted + " " + symbol
}

// FormatCount formats a plain count with locale grouping
func (c Currency) FormatCount(n decimal.Decimal) string {
	return c.printer.Sprint(number.Decimal(n.IntPart(), number.MaxFractionDigits(0)))
}

// FormatValue formats a bucket value according to the view mode
func (c Currency) FormatValue(v decimal.Decimal, mode ViewMode) string {
	if mode == ViewAmount {
		return c.Format(v)
	}
	return c.FormatCount(v)
}

// FormatPercent formats a share with one decimal, e.g. "12.5%"
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}
