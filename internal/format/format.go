// Package format renders numbers, money and dates the same way for every
// output channel, so preview, PDF, image and ledger totals match digit for digit.
//
// The locale is fixed: comma thousands separator, dot decimal separator.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	thousandsSep = ","
	decimalSep   = "."

	isoDate     = "2006-01-02"
	displayDate = "January 2, 2006"
)

// Currency renders amount with exactly two fraction digits and grouped thousands.
// NaN and infinities render as "NaN", "Inf" and "-Inf".
func Currency(amount float64) string {
	if s, ok := nonFinite(amount); ok {
		return s
	}
	return group(decimal.NewFromFloat(amount).StringFixed(2))
}

// Number renders v with grouped thousands and at most three fraction digits.
func Number(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return group(decimal.NewFromFloat(v).Round(3).String())
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Inf", true
	case math.IsInf(v, -1):
		return "-Inf", true
	}
	return "", false
}

// Money prefixes the formatted amount with a currency symbol.
func Money(symbol string, amount float64) string {
	s := Currency(amount)
	if strings.HasPrefix(s, "-") {
		return "-" + symbol + s[1:]
	}
	return symbol + s
}

// Date turns a YYYY-MM-DD value into "January 2, 2006". Empty input yields
// an empty string; anything unparsable is returned unchanged.
func Date(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDate)
}

// ISODate formats t the way date fields are stored.
func ISODate(t time.Time) string {
	return t.Format(isoDate)
}

// group inserts thousands separators into a plain decimal string such as "-1234.50".
func group(plain string) string {
	sign := ""
	if strings.HasPrefix(plain, "-") {
		sign, plain = "-", plain[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(plain, ".")

	var b strings.Builder
	b.WriteString(sign)
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(thousandsSep)
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteString(decimalSep)
		b.WriteString(fracPart)
	}
	return b.String()
}
