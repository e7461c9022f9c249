package ttml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTime converts a TTML time expression into milliseconds.
//
// Accepted forms are SS[.fff], MM:SS[.fff], HH:MM:SS[.fff] and
// <seconds>[.fraction]s. Clock fractions are 1-3 digits, right-padded to
// milliseconds. Minutes must be below 60, and so must seconds whenever the
// expression has more than one component.
func ParseTime(s string) (int64, error) {
	if v, ok := strings.CutSuffix(s, "s"); ok {
		return parseOffsetSeconds(s, v)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, invalidTime(s, "too many components")
	}

	var hours, minutes uint64
	var err error
	switch len(parts) {
	case 3:
		if hours, err = parseComponent(parts[0]); err != nil {
			return 0, invalidTime(s, "bad hours")
		}
		if minutes, err = parseComponent(parts[1]); err != nil {
			return 0, invalidTime(s, "bad minutes")
		}
	case 2:
		if minutes, err = parseComponent(parts[0]); err != nil {
			return 0, invalidTime(s, "bad minutes")
		}
	}

	whole, frac, hasFrac := strings.Cut(parts[len(parts)-1], ".")
	seconds, err := parseComponent(whole)
	if err != nil {
		return 0, invalidTime(s, "bad seconds")
	}

	var ms uint64
	if hasFrac {
		if ms, err = parseFraction(frac); err != nil {
			return 0, invalidTime(s, err.Error())
		}
	}

	if minutes >= 60 {
		return 0, invalidTime(s, fmt.Sprintf("minutes %d out of range", minutes))
	}
	if len(parts) > 1 && seconds >= 60 {
		return 0, invalidTime(s, fmt.Sprintf("seconds %d out of range", seconds))
	}
	if hours >= math.MaxInt64/3_600_000 || seconds > math.MaxInt64/4_000 {
		return 0, invalidTime(s, "out of range")
	}

	return int64(hours*3_600_000 + minutes*60_000 + seconds*1000 + ms), nil
}

// parseOffsetSeconds handles the "12.345s" form.
func parseOffsetSeconds(s, v string) (int64, error) {
	if v == "" || strings.HasPrefix(v, ".") || strings.HasSuffix(v, ".") {
		return 0, invalidTime(s, "malformed seconds")
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(secs) {
		return 0, invalidTime(s, "seconds are not a number")
	}
	if secs < 0 || math.Signbit(secs) {
		return 0, invalidTime(s, "negative time")
	}
	ms := math.Round(secs * 1000)
	if ms >= math.MaxInt64 {
		return 0, invalidTime(s, "out of range")
	}
	return int64(ms), nil
}

// parseComponent accepts only a non-empty run of ASCII digits.
func parseComponent(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty component")
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseFraction(frac string) (uint64, error) {
	if frac == "" || len(frac) > 3 {
		return 0, fmt.Errorf("fraction %q must have 1 to 3 digits", frac)
	}
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return 0, fmt.Errorf("fraction %q is not numeric", frac)
		}
	}
	v, _ := strconv.ParseUint(frac, 10, 64)
	for n := len(frac); n < 3; n++ {
		v *= 10
	}
	return v, nil
}

func invalidTime(s, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidTime, s, reason)
}
