package normalize

import (
	"fmt"
	"regexp"
)

// The upstream reports durations as ISO-8601-style strings of the shape
// P[n]DT[n]H[n]M[n].[fff]S. Every component is optional, but at least one
// must be present; the fractional part carries up to millisecond precision.
var durationPattern = regexp.MustCompile(
	`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d{1,3}))?S)?)?$`,
)

const (
	msPerSecond = uint64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// ParseDurationMS converts an upstream duration string to total
// milliseconds. Absent components contribute zero; a string with no
// components at all is malformed.
func ParseDurationMS(s string) (uint64, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrDuration)
	}
	days, hours, minutes, seconds, fraction := m[1], m[2], m[3], m[4], m[5]
	if days == "" && hours == "" && minutes == "" && seconds == "" {
		return 0, fmt.Errorf("%q has no components: %w", s, ErrDuration)
	}

	var total uint64
	total += digits(days) * msPerDay
	total += digits(hours) * msPerHour
	total += digits(minutes) * msPerMinute
	total += digits(seconds) * msPerSecond
	total += fractionMS(fraction)
	return total, nil
}

// digits parses a matched decimal group; the regexp guarantees the shape.
func digits(s string) uint64 {
	var n uint64
	for i := 0; i < len(s); i++ {
		n = n*10 + uint64(s[i]-'0')
	}
	return n
}

// fractionMS scales a 1-3 digit fraction to milliseconds ("5" -> 500).
func fractionMS(s string) uint64 {
	n := digits(s)
	for i := len(s); i < 3; i++ {
		n *= 10
	}
	return n
}
