package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 100 ", "100", true},
		{"0", "", false},
		{"-5", "", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			}
			if got.String() != tc.want {
				t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("ParseAmount(%q) expected error", tc.in)
		}
	}
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(decimal.NewFromInt(50), decimal.NewFromInt(1000))
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("50%% of 1000 = %s, want 500", got)
	}
	got = PercentOf(decimal.NewFromInt(30), decimal.NewFromInt(1000))
	if !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("30%% of 1000 = %s, want 300", got)
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(decimal.NewFromInt(500)); got != "$500" {
		t.Fatalf("got %q, want $500", got)
	}
	if got := FormatUSD(decimal.NewFromFloat(12.5)); got != "$12.50" {
		t.Fatalf("got %q, want $12.50", got)
	}
}

func TestMonthKey(t *testing.T) {
	d := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	if got := MonthKey(d); got != "January-2025" {
		t.Fatalf("got %q, want January-2025", got)
	}
}
