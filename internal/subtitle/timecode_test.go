package subtitle

import (
	"math"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"00:01:02,500", 62500 * time.Millisecond},
		{"00:01:02.500", 62500 * time.Millisecond},
		{"01:00:00.000", time.Hour},
		{"0:00:01.50", 1500 * time.Millisecond},
		{"01:05.250", 65250 * time.Millisecond},
		{"42", 42 * time.Second},
		{"3,5", 3500 * time.Millisecond},
		{" 00:00:01.000 ", time.Second},
		{"", 0},
		{"garbage", 0},
		{"aa:bb:cc", 0},
		{"00:xx.000", 0},
		{"NaN", 0},
		{"9999999999:00:00.000", time.Duration(math.MaxInt64)},
		{"-9999999999:00:00.000", time.Duration(math.MinInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseTime(tt.in); got != tt.want {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{62500 * time.Millisecond, "00:01:02.500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03.004"},
		{-1500 * time.Millisecond, "-00:00:01.500"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
