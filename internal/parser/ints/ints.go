// Package ints provides lenient helpers for extracting numeric values from
// free-form report cells. Parsing reads the longest numeric prefix of the
// input and ignores whatever follows it, so "12abc" is 12 and "3.5 km" is 3.5.
//
// Both helpers fail soft: a cell with no numeric prefix reports ok=false
// instead of an error, which callers translate into a "no valid data" value.
package ints

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// LeadingInt parses the leading integer of s.
//
// Leading whitespace is skipped, an optional '+' or '-' sign is accepted, and
// the run of ASCII digits that follows is converted. Anything after the digit
// run (a decimal point, letters, a thousands separator) ends the number.
// A "0x" or "0X" prefix switches to hexadecimal digits; "0x" with no hex
// digit after it is not a number. Values beyond the int64 range are clamped.
func LeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	sign := s[:i]
	base, digit := 10, isDigit
	if strings.HasPrefix(s[i:], "0x") || strings.HasPrefix(s[i:], "0X") {
		base, digit = 16, isHexDigit
		i += 2
	}
	start := i
	for i < len(s) && digit(s[i]) {
		i++
	}
	if i == start {
		return 0, false
	}

	n, err := strconv.ParseInt(sign+s[start:i], base, 64)
	if err != nil {
		// Only range errors are possible here.
		if s[0] == '-' {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	return n, true
}

// LeadingFloat parses the leading decimal floating point number of s.
//
// Accepted shapes are `[sign] digits [. digits] [e|E [sign] digits]`, a
// leading-dot fraction such as ".5", and the literal "Infinity". An exponent
// marker that is not followed by digits is not part of the number.
func LeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if neg {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0, false
	}
	end := i

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// ParseFloat returns ±Inf alongside a range error.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
