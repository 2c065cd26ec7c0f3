// Package bignum implements a sign-magnitude arbitrary-precision integer on
// top of a growable base-2^32 limb store.
//
// A BigInt is built once, by Parse or FromInt64, and then mutated in place
// by MulSmall and AddSmall. Values are not safe for concurrent use.
package bignum

import (
	"errors"
	"fmt"

	"limbs/internal/limbstore"
)

// ErrReleased indicates an operation on a released BigInt.
var ErrReleased = errors.New("bignum: use of released value")

// BigInt represents a big signed integer.
type BigInt struct {
	// Limbs are base-2^32 little-endian magnitude (limb 0 is least significant).
	//
	// Canonical zero is one zero limb with neg == false.
	st  *limbstore.Store
	neg bool
}

// Zero returns the canonical zero.
func Zero(opts ...limbstore.Option) (*BigInt, error) {
	st, err := limbstore.New(1, opts...)
	if err != nil {
		return nil, err
	}
	st.SetLen(1)
	return &BigInt{st: st}, nil
}

// FromInt64 creates a BigInt holding v. The magnitude is |v|, so
// math.MinInt64 is stored as 2^63 with a negative sign.
func FromInt64(v int64, opts ...limbstore.Option) (*BigInt, error) {
	st, err := limbstore.New(2, opts...)
	if err != nil {
		return nil, fmt.Errorf("bignum: from int64: %w", err)
	}
	var mag uint64
	neg := v < 0
	if neg {
		mag = uint64(-(v + 1)) //nolint:gosec // G115: -(v+1) is non-negative and fits in uint64 here.
		mag++
	} else {
		mag = uint64(v)
	}
	lo := uint32(mag)       //nolint:gosec // G115: truncation is intentional (low limb).
	hi := uint32(mag >> 32) //nolint:gosec // G115: truncation is intentional (high limb).
	st.Set(0, lo)
	st.Set(1, hi)
	if hi != 0 {
		st.SetLen(2)
	} else {
		st.SetLen(1)
	}
	return &BigInt{st: st, neg: neg}, nil
}

// Sign returns -1 for negative values and +1 otherwise (zero included).
func (b *BigInt) Sign() int {
	if b.neg {
		return -1
	}
	return 1
}

// Len returns the number of significant limbs.
func (b *BigInt) Len() int { return b.st.Len() }

// Cap returns the number of allocated limbs.
func (b *BigInt) Cap() int { return b.st.Cap() }

// Grows returns how many times the limb store has grown.
func (b *BigInt) Grows() int { return b.st.Grows() }

// Limbs returns a copy of the significant limbs, least significant first.
func (b *BigInt) Limbs() []uint32 {
	w := b.st.Words()
	if w == nil {
		return nil
	}
	out := make([]uint32, len(w))
	copy(out, w)
	return out
}

// IsZero reports whether every significant limb is zero.
func (b *BigInt) IsZero() bool {
	for _, w := range b.st.Words() {
		if w != 0 {
			return false
		}
	}
	return true
}

// Released reports whether Release was called.
func (b *BigInt) Released() bool {
	return b == nil || b.st.Released()
}

// Release frees the limb buffer; the value must not be used afterwards.
func (b *BigInt) Release() {
	if b == nil {
		return
	}
	b.st.Release()
	b.neg = false
}

// Normalize drops redundant high zero limbs and clears the sign of zero.
func (b *BigInt) Normalize() {
	if b.Released() {
		return
	}
	b.st.Trim()
	if b.IsZero() {
		b.neg = false
	}
}

// Clone returns an independent copy with the same limb options.
func (b *BigInt) Clone() (*BigInt, error) {
	if b.Released() {
		return nil, ErrReleased
	}
	o := b.st.Options()
	st, err := limbstore.New(b.st.Cap(), limbstore.WithPolicy(o.Policy), limbstore.WithMaxLimbs(o.MaxLimbs))
	if err != nil {
		return nil, err
	}
	st.SetLen(b.st.Len())
	copy(st.Words(), b.st.Words())
	return &BigInt{st: st, neg: b.neg}, nil
}
