// Package limbstore provides the resizable limb buffer underneath bignum
// values: base-2^32 little-endian words with a logical length and an
// allocated capacity.
package limbstore

import (
	"errors"
	"fmt"

	"limbs/internal/textutil"
)

// DefaultMaxLimbs caps the capacity of a single store.
const DefaultMaxLimbs = 1_000_000

// MinGrowth is the smallest capacity increment of a growth event.
const MinGrowth = 2

var (
	// ErrMaxLimbs indicates the numeric size limit was exceeded.
	ErrMaxLimbs = errors.New("numeric size limit exceeded")
	// ErrReleased indicates use of a store after Release.
	ErrReleased = errors.New("limb store released")
)

// Policy selects how Grow enlarges the capacity.
type Policy uint8

const (
	// Geometric doubles the capacity (at least MinGrowth more slots).
	Geometric Policy = iota
	// Fixed adds exactly MinGrowth slots per event.
	Fixed
)

// String returns the string representation of Policy.
func (p Policy) String() string {
	switch p {
	case Geometric:
		return "geometric"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "geometric", "GEOMETRIC", "":
		return Geometric, nil
	case "fixed", "FIXED":
		return Fixed, nil
	default:
		return Geometric, fmt.Errorf("invalid growth policy: %q (expected: geometric|fixed)", s)
	}
}

// Options configures a Store.
type Options struct {
	Policy   Policy
	MaxLimbs int
}

// Option mutates Options.
type Option func(*Options)

// WithPolicy selects the growth policy.
func WithPolicy(p Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithMaxLimbs sets the capacity limit; n <= 0 keeps DefaultMaxLimbs.
func WithMaxLimbs(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxLimbs = n
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Policy: Geometric, MaxLimbs: DefaultMaxLimbs}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Store owns a limb buffer. The zero value is unusable; use New.
//
// words always has len == capacity; only words[:n] is significant.
type Store struct {
	words []uint32
	n     int
	opts  Options
	grows int
}

// New allocates a store with the given capacity (at least one slot) and
// length zero.
func New(capacity int, opts ...Option) (*Store, error) {
	o := buildOptions(opts)
	if capacity < 1 {
		capacity = 1
	}
	if capacity > o.MaxLimbs {
		return nil, fmt.Errorf("%w: %d limbs requested, limit %d", ErrMaxLimbs, capacity, o.MaxLimbs)
	}
	return &Store{words: make([]uint32, capacity), opts: o}, nil
}

// Len returns the number of significant limbs.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.n
}

// Cap returns the number of allocated limbs.
func (s *Store) Cap() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Grows returns the number of successful growth events.
func (s *Store) Grows() int {
	if s == nil {
		return 0
	}
	return s.grows
}

// Options returns the options the store was created with.
func (s *Store) Options() Options { return s.opts }

// Released reports whether Release was called.
func (s *Store) Released() bool {
	return s == nil || s.words == nil
}

// Words returns the significant limbs. The slice aliases the store and is
// invalidated by the next growth.
func (s *Store) Words() []uint32 {
	if s.Released() {
		return nil
	}
	return s.words[:s.n]
}

// At returns limb i; i must be below Cap.
func (s *Store) At(i int) uint32 { return s.words[i] }

// Set stores v at limb i; i must be below Cap.
func (s *Store) Set(i int, v uint32) { s.words[i] = v }

// SetLen changes the logical length; n must not exceed Cap.
func (s *Store) SetLen(n int) {
	if n < 0 || n > len(s.words) {
		panic(fmt.Sprintf("limbstore: length %d out of range [0, %d]", n, len(s.words)))
	}
	s.n = n
}

// Headroom returns Cap - Len.
func (s *Store) Headroom() int {
	return s.Cap() - s.Len()
}

func (s *Store) nextCap() int {
	c := len(s.words)
	step := MinGrowth
	if s.opts.Policy == Geometric && c > step {
		step = c
	}
	next := c + step
	if next > s.opts.MaxLimbs {
		next = s.opts.MaxLimbs
	}
	return next
}

// Grow enlarges the capacity by one growth step. The first Cap limbs are
// preserved and the new slots are zero. On error the store is unchanged.
func (s *Store) Grow() error {
	if s.Released() {
		return ErrReleased
	}
	next := s.nextCap()
	if next <= len(s.words) {
		return fmt.Errorf("%w: capacity %d, limit %d", ErrMaxLimbs, len(s.words), s.opts.MaxLimbs)
	}
	words := make([]uint32, next)
	textutil.MoveWords(words, s.words)
	s.words = words
	s.grows++
	return nil
}

// Reserve grows the store only when no free slot is left. On success at
// least one slot above Len is available.
func (s *Store) Reserve() error {
	if s.Released() {
		return ErrReleased
	}
	if s.n < len(s.words) {
		return nil
	}
	return s.Grow()
}

// Append stores v as the new most significant limb, growing if needed.
func (s *Store) Append(v uint32) error {
	if err := s.Reserve(); err != nil {
		return err
	}
	s.words[s.n] = v
	s.n++
	return nil
}

// Trim drops zero limbs above limb 0. A store of length zero is left alone.
func (s *Store) Trim() {
	for s.n > 1 && s.words[s.n-1] == 0 {
		s.n--
	}
}

// Release drops the buffer. Further use reports ErrReleased or panics on
// direct indexing.
func (s *Store) Release() {
	if s == nil {
		return
	}
	textutil.ZeroWords(s.words)
	s.words = nil
	s.n = 0
}
