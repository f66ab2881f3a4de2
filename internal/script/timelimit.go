package script

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timeLimitPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(\pL*)`)

// ParseTimeLimit reads the first number in a free-text target such as
// "1 min", "<= 30 mins" or "90s". A bare number counts as minutes. Anything
// without a number, or with an unknown unit, yields (0, false).
func ParseTimeLimit(s string) (time.Duration, bool) {
	m := timeLimitPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "", "m", "min", "mins", "minute", "minutes", "phut", "phút":
		unit = time.Minute
	case "s", "sec", "secs", "second", "seconds", "giay", "giây":
		unit = time.Second
	case "h", "hr", "hrs", "hour", "hours", "gio", "giờ":
		unit = time.Hour
	default:
		return 0, false
	}
	return time.Duration(n * float64(unit)), true
}
