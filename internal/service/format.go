package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is the locale amounts are formatted in when none is configured.
const DefaultLocale = "vi-VN"

// AmountFormatter renders money amounts with the grouping and decimal
// separators of one locale. No fraction digits are forced; up to three are
// kept.
type AmountFormatter struct {
	printer *message.Printer
}

// NewAmountFormatter creates a formatter for a BCP 47 locale tag. An
// unparseable tag falls back to DefaultLocale.
func NewAmountFormatter(locale string) *AmountFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &AmountFormatter{printer: message.NewPrinter(tag)}
}

// Format renders v, e.g. 1234567.5 → "1.234.567,5" in vi-VN.
func (f *AmountFormatter) Format(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
