package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		f    MoneyFormat
		want string
	}{
		{"1500000", DefaultMoneyFormat, "Rp 1.500.000"},
		{"0", DefaultMoneyFormat, "Rp 0"},
		{"999", DefaultMoneyFormat, "Rp 999"},
		{"-25000", DefaultMoneyFormat, "-Rp 25.000"},
		{"2500.5", DefaultMoneyFormat, "Rp 2.500,50"},
		{"1234567.891", MoneyFormat{Symbol: "$", Thousands: ",", Decimal: "."}, "$ 1,234,567.89"},
		{"1234567", MoneyFormat{}, "1234567"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.in), tt.f)
		if got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyBeyondFloatPrecision(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"9007199254740993", "Rp 9.007.199.254.740.993"},
		{"123456789012345678901", "Rp 123.456.789.012.345.678.901"},
		{"-0.001", "Rp 0"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in), DefaultMoneyFormat); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmountInputRoundTrip(t *testing.T) {
	formats := []MoneyFormat{
		DefaultMoneyFormat,
		{Symbol: "$", Thousands: ",", Decimal: "."},
		{},
	}
	inputs := []string{"10.125", "8000000", "-2500.5", "0.001", "123456789012345678901.75"}
	for _, f := range formats {
		for _, in := range inputs {
			want := decimal.RequireFromString(in)
			text := FormatAmountInput(want, f)
			got, err := ParseAmount(text, f)
			if err != nil {
				t.Errorf("ParseAmount(%q) error: %v", text, err)
				continue
			}
			if !got.Equal(want) {
				t.Errorf("FormatAmountInput(%s) = %q, parses back to %s", in, text, got)
			}
		}
	}
	if got := FormatAmountInput(decimal.RequireFromString("1234567.891"), DefaultMoneyFormat); got != "1.234.567,891" {
		t.Errorf("FormatAmountInput = %q, want %q", got, "1.234.567,891")
	}
}

func TestFormatShortMoney(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1500000", "1.5M"},
		{"500000", "500K"},
		{"750", "750"},
		{"2000000000", "2.0B"},
	}
	for _, tt := range tests {
		if got := FormatShortMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatShortMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8.000.000", "8000000"},
		{"Rp 25.000", "25000"},
		{"1.250,50", "1250.5"},
		{"42", "42"},
		{",5", "0.5"},
		{"-3.000", "-3000"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in, DefaultMoneyFormat)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseAmount("Rp", DefaultMoneyFormat); !errors.Is(err, ErrEmptyAmount) {
		t.Fatalf("ParseAmount(Rp) err = %v, want ErrEmptyAmount", err)
	}

	us := MoneyFormat{Thousands: ",", Decimal: "."}
	got, err := ParseAmount("1,234.5", us)
	if err != nil || !got.Equal(decimal.RequireFromString("1234.5")) {
		t.Fatalf("ParseAmount(us) = %s, %v; want 1234.5", got, err)
	}
}

func TestSectionHeader(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2025, 3, 15, 23, 0, 0, 0, time.UTC), "Today"},
		{time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "Yesterday"},
		{time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), "Saturday, 1 March 2025"},
	}
	for _, tt := range tests {
		if got := SectionHeader(tt.day, now, ""); got != tt.want {
			t.Errorf("SectionHeader(%s) = %q, want %q", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
	if got := SectionHeader(now, now, "Hari ini"); got != "Hari ini" {
		t.Fatalf("custom today label = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2025-03-15", want: time.Date(2025, 3, 15, 0, 0, 0, 0, wib)},
		{in: " 2025-03-15 18:30 ", want: time.Date(2025, 3, 15, 18, 30, 0, 0, wib)},
		{in: "2025-03-15T18:30:00Z", want: time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC)},
		{in: "15/03/2025", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in, wib)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDate(%q) err = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q) err = %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
