package controller

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders a number in the controller's fixed 7-character
// decimal form: not zero-suppressed, one fractional digit, sign in front of
// the padding, e.g. 100.0 → "00100.0" and -150.0 → "-0150.0".
func FormatValue(v float64) string {
	return fmt.Sprintf("%07.1f", v)
}

// ParseValue converts a frame payload to a number. The controller pads
// with leading zeros (or spaces on some models), so the payload is trimmed
// before parsing.
func ParseValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("controller: empty value")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("controller: parse value %q: %w", raw, err)
	}

	return v, nil
}
