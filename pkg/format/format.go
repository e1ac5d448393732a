// Package format turns raw market quantities into display strings.
// All functions are pure and never panic.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"CNY": "CN¥",
	"AUD": "A$",
	"CAD": "CA$",
}

func symbolFor(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "USD"
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code + " "
}

// Currency formats value as a money amount in the given ISO code (default USD).
// Values below 1 (negatives included) keep 4 to 6 fractional digits, everything else exactly 2.
func Currency(value float64, code string) string {
	sym := symbolFor(code)
	if value == 0 {
		return sym + "0.00"
	}
	if math.IsNaN(value) {
		return sym + "NaN"
	}
	if math.IsInf(value, 0) {
		if value < 0 {
			return "-" + sym + "∞"
		}
		return sym + "∞"
	}

	minFrac, maxFrac := 2, 2
	if value < 1 {
		minFrac, maxFrac = 4, 6
	}

	d := decimal.NewFromFloat(value).Round(int32(maxFrac))
	// The sign comes from value: a tiny negative still rounds to "-$0.0000"
	sign := ""
	if value < 0 {
		sign = "-"
		d = d.Abs()
	}
	return sign + sym + groupedFixed(d, minFrac, maxFrac)
}

// Signed is Currency with an explicit "+" for non-negative values.
func Signed(value float64, code string) string {
	if value >= 0 {
		return "+" + Currency(value, code)
	}
	return Currency(value, code)
}

// groupedFixed renders a non-negative decimal with thousands separators and
// between minFrac and maxFrac fractional digits (trailing zeros trimmed down to minFrac).
func groupedFixed(d decimal.Decimal, minFrac, maxFrac int) string {
	fixed := d.StringFixed(int32(maxFrac))
	intPart, frac, _ := strings.Cut(fixed, ".")
	for len(frac) > minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	// Grouping goes through int64; anything larger is printed ungrouped.
	if n := d.Truncate(0); n.LessThan(decimal.New(1, 18)) {
		intPart = printer.Sprintf("%d", n.IntPart())
	}
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}

// Percentage renders value with two decimals, a leading "+" for non-negative values and a "%" suffix.
func Percentage(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "—%"
	}
	s := decimal.NewFromFloat(value).StringFixed(2)
	if value >= 0 {
		return "+" + s + "%"
	}
	if !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s + "%"
}

var magnitudes = []struct {
	threshold float64
	suffix    string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// MarketCap abbreviates large dollar amounts (T/B/M/K); below 1,000 it falls back to Currency.
func MarketCap(value float64) string {
	for _, m := range magnitudes {
		if value >= m.threshold {
			scaled := value / m.threshold
			if math.IsInf(scaled, 0) {
				break
			}
			return "$" + decimal.NewFromFloat(scaled).StringFixed(2) + m.suffix
		}
	}
	return Currency(value, "USD")
}

// Volume is MarketCap under another name.
func Volume(value float64) string {
	return MarketCap(value)
}
