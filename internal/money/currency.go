package money

import (
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Profile describes how one currency is displayed. Locale drives grouping via
// x/text; when Locale is language.Und the manual separator fields are used
// instead, so a displayable string is always produced.
type Profile struct {
	Code         string
	Symbol       string
	Locale       language.Tag
	Places       int32
	SymbolFirst  bool
	ThousandsSep string
	DecimalSep   string
}

var profiles = map[string]Profile{
	"USD": {Code: "USD", Symbol: "$", Locale: language.AmericanEnglish, Places: 2, SymbolFirst: true, ThousandsSep: ",", DecimalSep: "."},
	"EUR": {Code: "EUR", Symbol: "€", Locale: language.German, Places: 2, SymbolFirst: false, ThousandsSep: ".", DecimalSep: ","},
	"GBP": {Code: "GBP", Symbol: "£", Locale: language.BritishEnglish, Places: 2, SymbolFirst: true, ThousandsSep: ",", DecimalSep: "."},
	"INR": {Code: "INR", Symbol: "₹", Locale: language.Und, Places: 2, SymbolFirst: true, ThousandsSep: ",", DecimalSep: "."},
	"AED": {Code: "AED", Symbol: "AED ", Locale: language.Und, Places: 2, SymbolFirst: true, ThousandsSep: ",", DecimalSep: "."},
}

var (
	defaultMu   sync.RWMutex
	defaultCode = "USD"
)

// SetDefaultCurrency sets the process-wide currency used when no option is
// given. Unknown codes are ignored.
func SetDefaultCurrency(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := profiles[code]; !ok {
		return
	}
	defaultMu.Lock()
	defaultCode = code
	defaultMu.Unlock()
}

// DefaultCurrency returns the process-wide currency code.
func DefaultCurrency() string {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCode
}

type options struct {
	currency     string
	showDecimals bool
}

type Option func(*options)

// WithCurrency selects a currency profile by ISO code for one call.
func WithCurrency(code string) Option {
	return func(o *options) { o.currency = strings.ToUpper(strings.TrimSpace(code)) }
}

// WithoutDecimals renders the integer amount (no cents).
func WithoutDecimals() Option {
	return func(o *options) { o.showDecimals = false }
}

func resolve(opts []Option) (Profile, options) {
	o := options{currency: DefaultCurrency(), showDecimals: true}
	for _, fn := range opts {
		fn(&o)
	}
	p, ok := profiles[o.currency]
	if !ok {
		p = profiles[DefaultCurrency()]
	}
	return p, o
}

// Format renders amount in the selected currency. Display code never fails:
// any amount formats to some string.
func Format(amount decimal.Decimal, opts ...Option) string {
	p, o := resolve(opts)
	places := p.Places
	if !o.showDecimals {
		places = 0
	}
	rounded := amount.Round(places)
	body := localized(rounded, p, places)
	if p.SymbolFirst {
		return p.Symbol + body
	}
	return body + " " + p.Symbol
}

// FormatString formats a raw numeric string; anything unparseable renders as
// the zero amount rather than an error.
func FormatString(raw string, opts ...Option) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		d = decimal.Zero
	}
	return Format(d, opts...)
}

// FormatFloat formats a float64; NaN and infinities render as the zero amount.
func FormatFloat(f float64, opts ...Option) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Format(decimal.Zero, opts...)
	}
	return Format(decimal.NewFromFloat(f), opts...)
}

// localized renders the number body, preferring x/text locale grouping and
// falling back to manual separator insertion when no locale tag is configured.
func localized(d decimal.Decimal, p Profile, places int32) string {
	if p.Locale != language.Und {
		f, _ := d.Float64()
		pr := message.NewPrinter(p.Locale)
		return pr.Sprint(number.Decimal(f,
			number.MinFractionDigits(int(places)),
			number.MaxFractionDigits(int(places))))
	}
	return manual(d, p, places)
}

// manual groups the integer part in threes using the profile separators.
func manual(d decimal.Decimal, p Profile, places int32) string {
	s := d.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(p.ThousandsSep)
		}
		b.WriteRune(r)
	}
	out := b.String()
	if fracPart != "" {
		out += p.DecimalSep + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Parse extracts a numeric amount from a display string. Symbols and grouping
// are discarded; a decimal comma is normalized. Garbage parses to zero — this
// is a display-layer helper and must never fail.
func Parse(display string) decimal.Decimal {
	var b strings.Builder
	for _, r := range display {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Zero
	}
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	if lastComma > lastDot {
		// comma is the decimal separator; dots were grouping
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", -1)
		// keep only the last decimal point
		if n := strings.Count(s, "."); n > 1 {
			i := strings.LastIndexByte(s, '.')
			s = strings.ReplaceAll(s[:i], ".", "") + s[i:]
		}
	} else {
		hadComma := lastComma >= 0
		s = strings.ReplaceAll(s, ",", "")
		switch dots := strings.Count(s, "."); {
		case dots > 1:
			// no decimal comma and several dots: dot-grouped integer
			s = strings.ReplaceAll(s, ".", "")
		case dots == 1 && !hadComma:
			// a lone dot followed by exactly three digits is grouping, not
			// cents; money strings never carry three decimal places
			if i := strings.IndexByte(s, '.'); len(s)-i-1 == 3 {
				s = strings.ReplaceAll(s, ".", "")
			}
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
