// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/theirongolddev/savemoney/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// MoneyFormat describes how amounts are written and read back.
type MoneyFormat struct {
	Symbol    string
	Thousands string
	Decimal   string
}

// DefaultMoneyFormat writes Indonesian rupiah, e.g. "Rp 1.500.000".
var DefaultMoneyFormat = MoneyFormat{Symbol: "Rp", Thousands: ".", Decimal: ","}

// MoneyFormatFor builds a MoneyFormat from display settings.
func MoneyFormatFor(d config.DisplayConfig) MoneyFormat {
	return MoneyFormat{Symbol: d.CurrencySymbol, Thousands: d.ThousandsSep, Decimal: d.DecimalSep}
}

// groupThousands inserts sep between every three digits of a digit string.
// It works on the decimal's string form so no digits are lost to float64.
func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func (f MoneyFormat) decimalSep() string {
	if f.Decimal == "" || f.Decimal == f.Thousands {
		return "."
	}
	return f.Decimal
}

// FormatMoney renders d with the currency symbol and grouping separators.
// Whole amounts carry no fractional part; other amounts show two places.
// e.g., 1500000 -> "Rp 1.500.000", -2500.5 -> "-Rp 2.500,50"
func FormatMoney(d decimal.Decimal, f MoneyFormat) string {
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	out := groupThousands(whole, f.Thousands)
	if frac != "00" {
		out += f.decimalSep() + frac
	}

	if f.Symbol == "" {
		return sign + out
	}
	return sign + f.Symbol + " " + out
}

// FormatAmountInput renders d exactly, without a symbol, for prefilling
// inputs. ParseAmount reads the result back to the same value.
func FormatAmountInput(d decimal.Decimal, f MoneyFormat) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	whole, frac, _ := strings.Cut(d.Abs().String(), ".")
	out := groupThousands(whole, f.Thousands)
	if frac != "" {
		out += f.decimalSep() + frac
	}
	return sign + out
}

// FormatSignedMoney prefixes income with "+" and expense with "-".
func FormatSignedMoney(d decimal.Decimal, expense bool, f MoneyFormat) string {
	if expense {
		return "-" + FormatMoney(d.Abs(), f)
	}
	return "+" + FormatMoney(d.Abs(), f)
}

// FormatShortMoney abbreviates large amounts for chart labels.
// e.g., 1500000 -> "1.5M", 500000 -> "500K", 750 -> "750"
func FormatShortMoney(d decimal.Decimal) string {
	v := d.InexactFloat64()
	abs := v
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.0fK", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// ErrEmptyAmount is returned by ParseAmount when no digits are present.
var ErrEmptyAmount = errors.New("amount has no digits")

// ParseAmount reads user input such as "8.000.000", "Rp 25.000" or
// "1.250,50". Everything except digits and the decimal separator is
// dropped, so grouping separators and currency symbols are ignored.
func ParseAmount(s string, f MoneyFormat) (decimal.Decimal, error) {
	decSep, _ := utf8.DecodeRuneInString(f.Decimal)
	if f.Decimal == "" {
		decSep = '.'
	}
	thousands, _ := utf8.DecodeRuneInString(f.Thousands)

	var b strings.Builder
	negative := strings.HasPrefix(strings.TrimSpace(s), "-")
	seenDecimal := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == decSep && r != thousands && !seenDecimal:
			seenDecimal = true
			b.WriteByte('.')
		}
	}

	digits := strings.TrimSuffix(b.String(), ".")
	if digits == "" || digits == "." {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatCount adds grouping commas to a count.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// SectionHeader names a day relative to now: todayLabel, "Yesterday", or
// the full date.
func SectionHeader(day, now time.Time, todayLabel string) string {
	if todayLabel == "" {
		todayLabel = "Today"
	}
	day = day.In(now.Location())
	y, m, d := day.Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && d == nd {
		return todayLabel
	}
	py, pm, pd := now.AddDate(0, 0, -1).Date()
	if y == py && m == pm && d == pd {
		return "Yesterday"
	}
	return day.Format("Monday, 2 January 2006")
}

// FormatDate renders a transaction timestamp for tables.
func FormatDate(t time.Time) string {
	return t.Format("02 Jan 2006 15:04")
}

// ShortID shortens a UUID for display. Commands accept any unique prefix.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// InputDateLayout is the layout date prompts and flags accept and prefill.
const InputDateLayout = "2006-01-02 15:04"

var inputDateLayouts = []string{InputDateLayout, "2006-01-02", time.RFC3339}

// ParseDate reads a date typed by the user in loc. Blank input returns the
// zero time so callers can apply their own default.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range inputDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
}
