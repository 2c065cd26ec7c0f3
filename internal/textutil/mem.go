package textutil

// Move copies min(len(dst), len(src)) bytes from src to dst and returns the
// count. Overlapping slices are handled like memmove.
func Move(dst, src []byte) int {
	return copy(dst, src)
}

// Zero clears every byte of b.
func Zero(b []byte) {
	clear(b)
}

// MoveWords is Move for limb slices.
func MoveWords(dst, src []uint32) int {
	return copy(dst, src)
}

// ZeroWords clears every word of w.
func ZeroWords(w []uint32) {
	clear(w)
}
