// Package eval runs small programs against bignum values: a source value
// followed by a list of limb primitives.
//
//	12345678901234567890 mul:1000000000 add:7
//	i64:-42 mul:3
package eval

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"limbs/internal/textutil"
)

// ErrSyntax wraps every malformed-job error.
var ErrSyntax = errors.New("invalid job")

// OpKind selects the primitive an Op applies.
type OpKind uint8

const (
	OpMul OpKind = iota + 1
	OpAdd
)

// String returns the string representation of OpKind.
func (k OpKind) String() string {
	switch k {
	case OpMul:
		return "mul"
	case OpAdd:
		return "add"
	default:
		return "unknown"
	}
}

// Op is one primitive with its 32-bit operand. Both kinds act on the
// magnitude; the sign of the value is never changed.
type Op struct {
	Kind OpKind
	Arg  uint32
}

func (o Op) String() string {
	return o.Kind.String() + ":" + textutil.FormatUint(uint64(o.Arg))
}

// ParseOp parses "mul:N", "add:N" or the short forms "*N" and "+N".
func ParseOp(s string) (Op, error) {
	var kind OpKind
	var arg string
	switch {
	case strings.HasPrefix(s, "mul:"):
		kind, arg = OpMul, s[len("mul:"):]
	case strings.HasPrefix(s, "add:"):
		kind, arg = OpAdd, s[len("add:"):]
	case strings.HasPrefix(s, "*"):
		kind, arg = OpMul, s[1:]
	case strings.HasPrefix(s, "+"):
		kind, arg = OpAdd, s[1:]
	default:
		return Op{}, fmt.Errorf("%w: unknown operation %q (expected mul:N or add:N)", ErrSyntax, s)
	}
	if arg == "" {
		return Op{}, fmt.Errorf("%w: missing operand in %q", ErrSyntax, s)
	}
	v, err := textutil.ParseDigits(arg)
	if err != nil {
		return Op{}, fmt.Errorf("%w: operand %q: %w", ErrSyntax, arg, err)
	}
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		return Op{}, fmt.Errorf("%w: operand %q does not fit in 32 bits", ErrSyntax, arg)
	}
	return Op{Kind: kind, Arg: n}, nil
}

// SourceKind tells how a job's starting value is constructed.
type SourceKind uint8

const (
	SourceText  SourceKind = iota + 1 // decimal text, tolerant parse
	SourceInt64                       // "i64:" prefix, must fit int64
)

// String returns the string representation of SourceKind.
func (k SourceKind) String() string {
	switch k {
	case SourceText:
		return "text"
	case SourceInt64:
		return "int64"
	default:
		return "unknown"
	}
}

// Job is one line of a program.
type Job struct {
	Line   int
	Source SourceKind
	Text   string // decimal text without the i64: prefix
	Int    int64  // set for SourceInt64
	Ops    []Op
}

// ParseLine parses one program line. Blank lines and lines starting with
// '#' report ok == false.
func ParseLine(line string, lineNo int) (job Job, ok bool, err error) {
	line = textutil.Fold(line)
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Job{}, false, nil
	}
	job, err = NewJob(fields[0], fields[1:])
	if err != nil {
		return Job{}, false, fmt.Errorf("line %d: %w", lineNo, err)
	}
	job.Line = lineNo
	return job, true, nil
}

// NewJob builds a job from a source token and operation tokens.
func NewJob(source string, ops []string) (Job, error) {
	job := Job{Source: SourceText, Text: source}
	if rest, found := strings.CutPrefix(source, "i64:"); found {
		v, err := parseInt64(rest)
		if err != nil {
			return Job{}, err
		}
		job = Job{Source: SourceInt64, Text: rest, Int: v}
	}
	for _, tok := range ops {
		op, err := ParseOp(tok)
		if err != nil {
			return Job{}, err
		}
		job.Ops = append(job.Ops, op)
	}
	return job, nil
}

func parseInt64(s string) (int64, error) {
	neg := false
	digits := s
	if digits != "" && (digits[0] == '-' || digits[0] == '+') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: empty int64 literal", ErrSyntax)
	}
	mag, err := textutil.ParseDigits(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: int64 literal %q: %w", ErrSyntax, s, err)
	}
	if neg {
		if mag == 1<<63 {
			return -1 << 63, nil
		}
		v, err := safecast.Conv[int64](mag)
		if err != nil {
			return 0, fmt.Errorf("%w: %q overflows int64", ErrSyntax, s)
		}
		return -v, nil
	}
	v, err := safecast.Conv[int64](mag)
	if err != nil {
		return 0, fmt.Errorf("%w: %q overflows int64", ErrSyntax, s)
	}
	return v, nil
}
