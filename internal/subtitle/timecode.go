package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTime converts HH:MM:SS.mmm, MM:SS.mmm or a bare seconds value into
// a duration. Either '.' or ',' may separate the fraction. Input that
// cannot be parsed yields 0 rather than an error.
func ParseTime(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.Replace(s, ",", ".", 1)
	parts := strings.Split(s, ":")

	var seconds float64
	switch len(parts) {
	case 3:
		h, errH := parseFloat(parts[0])
		m, errM := parseFloat(parts[1])
		sec, errS := parseFloat(parts[2])
		if errH != nil || errM != nil || errS != nil {
			return 0
		}
		seconds = h*3600 + m*60 + sec
	case 2:
		m, errM := parseFloat(parts[0])
		sec, errS := parseFloat(parts[1])
		if errM != nil || errS != nil {
			return 0
		}
		seconds = m*60 + sec
	default:
		sec, err := parseFloat(parts[0])
		if err != nil {
			return 0
		}
		seconds = sec
	}

	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	ns := math.Round(seconds * float64(time.Second))
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// FormatTimestamp renders d as HH:MM:SS.mmm
func FormatTimestamp(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, m, s, ms)
}
