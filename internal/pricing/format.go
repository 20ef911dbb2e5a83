package pricing

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	currencyShort  = "DH"
	currencyArabic = "درهم"
)

var locales = map[domain.Language]language.Tag{
	domain.Arabic:  language.MustParse("ar-MA"),
	domain.French:  language.MustParse("fr-FR"),
	domain.English: language.MustParse("en-US"),
}

// Format renders amount with the grouping rules of lang and at most two
// fraction digits, followed by the currency label.
func Format(amount float64, lang domain.Language) string {
	return FormatNumber(amount, lang) + " " + CurrencyLabel(lang, false)
}

func FormatNumber(amount float64, lang domain.Language) string {
	tag, ok := locales[lang]
	if !ok {
		tag = locales[domain.DefaultLanguage]
	}
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}

func CurrencyLabel(lang domain.Language, short bool) string {
	if !short && lang == domain.Arabic {
		return currencyArabic
	}
	return currencyShort
}

// FormatRange always uses the short currency label on both ends.
func FormatRange(minPrice, maxPrice float64, lang domain.Language) string {
	low := FormatNumber(minPrice, lang) + " " + CurrencyLabel(lang, true)
	high := FormatNumber(maxPrice, lang) + " " + CurrencyLabel(lang, true)
	return low + " - " + high
}
