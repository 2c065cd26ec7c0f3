// Package textutil holds the byte-level helpers the numeric engine relies on:
// character classes, bounded decimal parsing, integer formatting and
// memmove-style copies.
package textutil

import (
	"errors"
	"math/bits"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	// ErrSyntax reports a non-digit byte inside a digit run.
	ErrSyntax = errors.New("invalid decimal digit")
	// ErrRange reports a digit run whose value does not fit in uint64.
	ErrRange = errors.New("decimal value out of range")
)

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsSpace reports whether c is one of the six C-locale whitespace bytes.
func IsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// Len returns the length of s up to (not including) the first NUL byte.
func Len(s string) int {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return i
	}
	return len(s)
}

// ParseDigits converts a run consisting only of decimal digits into a uint64.
// An empty run is zero.
func ParseDigits(s string) (uint64, error) {
	var v uint64
	for i := range len(s) {
		c := s[i]
		if !IsDigit(c) {
			return 0, ErrSyntax
		}
		hi, lo := bits.Mul64(v, 10)
		if hi != 0 {
			return 0, ErrRange
		}
		sum, carry := bits.Add64(lo, uint64(c-'0'), 0)
		if carry != 0 {
			return 0, ErrRange
		}
		v = sum
	}
	return v, nil
}

// FormatUint renders v in base 10.
func FormatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// PadUint renders v in base 10, left-padded with zeros to at least n digits.
func PadUint(v uint64, n int) string {
	s := FormatUint(v)
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

// Fold maps fullwidth and other compatibility forms to their canonical
// width and composes the result, so "１２３" reads as "123".
func Fold(s string) string {
	return norm.NFC.String(width.Fold.String(s))
}
