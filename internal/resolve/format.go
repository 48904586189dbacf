package resolve

import (
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// Default locale/currency pair applied when none is configured
const (
	DefaultLocale   = "es-DO"
	DefaultCurrency = "DOP"
)

// Formatter applies named formats (currency, date, time) to resolved values
// for a single configured locale+currency pair. It never fails: malformed
// input degrades to an empty or zero-valued string.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter creates a formatter for the given locale and ISO currency
// code, falling back to es-DO / DOP when either cannot be parsed.
func NewFormatter(locale, currencyCode string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.MustParseISO(DefaultCurrency)
	}

	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

// Format dispatches a value to the formatting rule named by kind. An unknown
// kind falls back to raw coercion.
func (f *Formatter) Format(value interface{}, kind templateformat.FormatKind) string {
	switch kind {
	case templateformat.FormatCurrency:
		return f.Currency(value)
	case templateformat.FormatDate:
		return f.Date(value)
	case templateformat.FormatTime:
		return f.Time(value)
	default:
		return Stringify(value)
	}
}

// Currency renders a numeric value in the configured currency convention.
// Non-numeric or missing input formats as the zero amount.
func (f *Formatter) Currency(value interface{}) string {
	amount, ok := toNumber(value)
	if !ok {
		amount = 0
	}

	return f.printer.Sprintf("%v", currency.NarrowSymbol(f.unit.Amount(amount)))
}

// Date renders a value coerced to a timestamp as dd/mm/yyyy. Missing or
// unparseable input yields an empty string.
func (f *Formatter) Date(value interface{}) string {
	ts, ok := toTime(value)
	if !ok {
		return ""
	}
	return ts.Format("02/01/2006")
}

// Time renders the clock portion of a value coerced to a timestamp.
func (f *Formatter) Time(value interface{}) string {
	ts, ok := toTime(value)
	if !ok {
		return ""
	}
	return ts.Format("3:04 PM")
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		// Epoch value: treat anything past ~2001-09 as milliseconds.
		if v <= 0 {
			return time.Time{}, false
		}
		if v > 1e12 {
			return time.UnixMilli(int64(v)), true
		}
		return time.Unix(int64(v), 0), true
	default:
		return time.Time{}, false
	}
}
