package bignum

import (
	"fmt"
	"math"
)

// MulSmall multiplies b by m in place. A non-zero final carry becomes a new
// most significant limb. m == 0 zeroes every limb without shrinking Len;
// call Normalize for the canonical form.
//
// If the limb store cannot grow, b is left unchanged and the error wraps
// limbstore.ErrMaxLimbs.
func (b *BigInt) MulSmall(m uint32) error {
	if b.Released() {
		return ErrReleased
	}
	w := b.st.Words()
	if n := len(w); n > 0 && b.st.Headroom() == 0 && mulMayCarry(w[n-1], m) && mulCarryOut(w, m) != 0 {
		if err := b.st.Reserve(); err != nil {
			return fmt.Errorf("bignum: mul %d: %w", m, err)
		}
		w = b.st.Words()
	}

	var carry uint64
	for i := range w {
		prod := uint64(w[i])*uint64(m) + carry
		w[i] = uint32(prod) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = prod >> 32
	}
	if carry != 0 {
		if err := b.st.Append(uint32(carry)); err != nil { //nolint:gosec // G115: carry < 2^32.
			// Unreachable: the slot was reserved above.
			return fmt.Errorf("bignum: mul %d: %w", m, err)
		}
	}
	return nil
}

// AddSmall adds n to b's magnitude in place, propagating the carry through
// every limb and appending a new limb when it runs off the top.
//
// If the limb store cannot grow, b is left unchanged and the error wraps
// limbstore.ErrMaxLimbs.
func (b *BigInt) AddSmall(n uint32) error {
	if b.Released() {
		return ErrReleased
	}
	w := b.st.Words()
	if len(w) == 0 {
		return b.st.Append(n)
	}
	if b.st.Headroom() == 0 && addCarriesOut(w, n) {
		if err := b.st.Reserve(); err != nil {
			return fmt.Errorf("bignum: add %d: %w", n, err)
		}
		w = b.st.Words()
	}

	sum := uint64(w[0]) + uint64(n)
	w[0] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
	carry := sum >> 32
	for i := 1; carry != 0 && i < len(w); i++ {
		sum = uint64(w[i]) + carry
		w[i] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = sum >> 32
	}
	if carry != 0 {
		if err := b.st.Append(uint32(carry)); err != nil { //nolint:gosec // G115: carry is 1.
			return fmt.Errorf("bignum: add %d: %w", n, err)
		}
	}
	return nil
}

// mulMayCarry reports whether multiplying a top limb by m can produce a
// carry out of it. The carry coming into the top limb is at most m-1.
func mulMayCarry(top, m uint32) bool {
	if m == 0 {
		return false
	}
	return uint64(top)*uint64(m)+uint64(m-1) > math.MaxUint32
}

// mulCarryOut returns the final carry of w*m without writing anything.
func mulCarryOut(w []uint32, m uint32) uint64 {
	var carry uint64
	for _, v := range w {
		carry = (uint64(v)*uint64(m) + carry) >> 32
	}
	return carry
}

// addCarriesOut reports whether adding n to w overflows every limb.
func addCarriesOut(w []uint32, n uint32) bool {
	if uint64(w[0])+uint64(n) <= math.MaxUint32 {
		return false
	}
	for _, v := range w[1:] {
		if v != math.MaxUint32 {
			return false
		}
	}
	return true
}
