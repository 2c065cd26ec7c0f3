package textutil

import (
	"errors"
	"testing"
)

func TestCharClasses(t *testing.T) {
	for c := 0; c < 256; c++ {
		b := byte(c)
		wantDigit := b >= '0' && b <= '9'
		if IsDigit(b) != wantDigit {
			t.Fatalf("IsDigit(%q) = %v, want %v", b, IsDigit(b), wantDigit)
		}
	}
	for _, b := range []byte(" \t\n\v\f\r") {
		if !IsSpace(b) {
			t.Fatalf("IsSpace(%q) = false", b)
		}
	}
	for _, b := range []byte("a0-+_\x00") {
		if IsSpace(b) {
			t.Fatalf("IsSpace(%q) = true", b)
		}
	}
}

func TestLen(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"ab\x00cd", 2},
		{"\x00", 0},
	}
	for _, tc := range cases {
		if got := Len(tc.in); got != tc.want {
			t.Fatalf("Len(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseDigits(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
		err  error
	}{
		{"", 0, nil},
		{"0", 0, nil},
		{"000000001", 1, nil},
		{"999999999", 999_999_999, nil},
		{"18446744073709551615", 18446744073709551615, nil},
		{"18446744073709551616", 0, ErrRange},
		{"99999999999999999999", 0, ErrRange},
		{"12a4", 0, ErrSyntax},
		{"-1", 0, ErrSyntax},
	}
	for _, tc := range cases {
		got, err := ParseDigits(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("ParseDigits(%q) err = %v, want %v", tc.in, err, tc.err)
		}
		if tc.err == nil && got != tc.want {
			t.Fatalf("ParseDigits(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatUint(1_000_000_000); got != "1000000000" {
		t.Fatalf("FormatUint = %q", got)
	}
	if got := PadUint(42, 9); got != "000000042" {
		t.Fatalf("PadUint(42, 9) = %q", got)
	}
	if got := PadUint(1234567890, 9); got != "1234567890" {
		t.Fatalf("PadUint(1234567890, 9) = %q", got)
	}
}

func TestMoveOverlap(t *testing.T) {
	buf := []byte("abcdef")
	n := Move(buf[2:], buf[:4])
	if n != 4 || string(buf) != "ababcd" {
		t.Fatalf("forward overlap: n=%d buf=%q", n, buf)
	}
	buf = []byte("abcdef")
	Move(buf[:4], buf[2:])
	if string(buf) != "cdefef" {
		t.Fatalf("backward overlap: buf=%q", buf)
	}
	Zero(buf[1:3])
	if buf[0] != 'c' || buf[1] != 0 || buf[2] != 0 || buf[3] != 'f' {
		t.Fatalf("Zero: buf=%q", buf)
	}

	w := []uint32{1, 2, 3, 4}
	MoveWords(w[1:], w)
	if w[0] != 1 || w[1] != 1 || w[2] != 2 || w[3] != 3 {
		t.Fatalf("MoveWords: %v", w)
	}
	ZeroWords(w)
	for i, v := range w {
		if v != 0 {
			t.Fatalf("ZeroWords: w[%d] = %d", i, v)
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold("１２３"); got != "123" {
		t.Fatalf("Fold fullwidth = %q", got)
	}
	if got := Fold("－４２"); got != "-42" {
		t.Fatalf("Fold fullwidth minus = %q", got)
	}
	if got := Fold("  7 "); got != "  7 " {
		t.Fatalf("Fold ascii = %q", got)
	}
}
