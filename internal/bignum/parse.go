package bignum

import (
	"fmt"

	"fortio.org/safecast"

	"limbs/internal/limbstore"
	"limbs/internal/textutil"
)

const (
	// ChunkDigits is the number of decimal digits folded in per step.
	ChunkDigits = 9
	// ChunkBase is 10^ChunkDigits.
	ChunkBase uint32 = 1_000_000_000
)

// Parse builds a BigInt from decimal text: optional leading whitespace, an
// optional sign, then a run of digits. Anything after the digit run is
// ignored. Text without digits yields the canonical zero; only a refused
// growth is reported as an error.
func Parse(s string, opts ...limbstore.Option) (*BigInt, error) {
	s = s[:textutil.Len(s)]
	i := 0
	for i < len(s) && textutil.IsSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	j := i
	for j < len(s) && textutil.IsDigit(s[j]) {
		j++
	}
	digits := s[i:j]
	if digits == "" {
		return Zero(opts...)
	}

	b, err := Zero(opts...)
	if err != nil {
		return nil, fmt.Errorf("bignum: parse: %w", err)
	}
	if err := b.foldDecimal(digits); err != nil {
		b.Release()
		return nil, fmt.Errorf("bignum: parse: %w", err)
	}
	b.Normalize()
	if !b.IsZero() {
		b.neg = neg
	}
	return b, nil
}

// foldDecimal evaluates digits with Horner's rule in base 10^9. The first
// group takes len(digits) mod 9 digits (or 9), every later group exactly 9.
func (b *BigInt) foldDecimal(digits string) error {
	first := len(digits) % ChunkDigits
	if first == 0 {
		first = ChunkDigits
	}
	for pos, size := 0, first; pos < len(digits); pos, size = pos+size, ChunkDigits {
		v, err := textutil.ParseDigits(digits[pos : pos+size])
		if err != nil {
			return err
		}
		chunk, err := safecast.Conv[uint32](v)
		if err != nil {
			return err
		}
		if err := b.MulSmall(ChunkBase); err != nil {
			return err
		}
		if err := b.AddSmall(chunk); err != nil {
			return err
		}
	}
	return nil
}
