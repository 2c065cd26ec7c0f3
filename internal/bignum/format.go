package bignum

import (
	"strings"

	"limbs/internal/textutil"
)

// String renders b in base 10 with a leading '-' for negative values.
func (b *BigInt) String() string {
	if b.Released() {
		return "<released>"
	}
	s := formatMagnitude(b.st.Words())
	if b.neg && s != "0" {
		return "-" + s
	}
	return s
}

// formatMagnitude peels base-10^9 groups off a scratch copy of limbs by
// repeated short division.
func formatMagnitude(limbs []uint32) string {
	cur := make([]uint32, len(limbs))
	copy(cur, limbs)
	cur = trimLimbs(cur)
	if len(cur) == 0 {
		return "0"
	}

	var parts []uint32
	for len(cur) > 0 {
		var r uint32
		cur, r = divModSmall(cur, ChunkBase)
		parts = append(parts, r)
	}

	var sb strings.Builder
	sb.Grow(len(parts) * ChunkDigits)
	sb.WriteString(textutil.FormatUint(uint64(parts[len(parts)-1])))
	for i := len(parts) - 2; i >= 0; i-- {
		sb.WriteString(textutil.PadUint(uint64(parts[i]), ChunkDigits))
	}
	return sb.String()
}

// divModSmall divides limbs by d in place and returns the trimmed quotient
// and the remainder.
func divModSmall(limbs []uint32, d uint32) ([]uint32, uint32) {
	var rem uint64
	for i := len(limbs) - 1; i >= 0; i-- {
		cur := (rem << 32) | uint64(limbs[i])
		limbs[i] = uint32(cur / uint64(d)) //nolint:gosec // G115: quotient fits in uint32.
		rem = cur % uint64(d)
	}
	return trimLimbs(limbs), uint32(rem) //nolint:gosec // G115: remainder fits in uint32.
}

func trimLimbs(limbs []uint32) []uint32 {
	for len(limbs) > 0 && limbs[len(limbs)-1] == 0 {
		limbs = limbs[:len(limbs)-1]
	}
	return limbs
}
