package eval

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"slices"
	"strings"
	"testing"

	"limbs/internal/limbstore"
	"limbs/internal/trace"
)

func TestParseOp(t *testing.T) {
	cases := []struct {
		in   string
		want Op
	}{
		{"mul:10", Op{OpMul, 10}},
		{"add:0", Op{OpAdd, 0}},
		{"*4294967295", Op{OpMul, 4294967295}},
		{"+1", Op{OpAdd, 1}},
	}
	for _, tc := range cases {
		got, err := ParseOp(tc.in)
		if err != nil {
			t.Fatalf("ParseOp(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseOp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"div:2", "mul:", "add:-1", "mul:4294967296", "*x"} {
		if _, err := ParseOp(bad); !errors.Is(err, ErrSyntax) {
			t.Fatalf("ParseOp(%q) err = %v, want ErrSyntax", bad, err)
		}
	}
}

func TestParseLine(t *testing.T) {
	job, ok, err := ParseLine("  -42 mul:3 +5  # trailing comment", 7)
	if err != nil || !ok {
		t.Fatalf("ParseLine: ok=%v err=%v", ok, err)
	}
	if job.Line != 7 || job.Source != SourceText || job.Text != "-42" {
		t.Fatalf("job = %+v", job)
	}
	if !slices.Equal(job.Ops, []Op{{OpMul, 3}, {OpAdd, 5}}) {
		t.Fatalf("ops = %v", job.Ops)
	}

	for _, skip := range []string{"", "   ", "# only a comment"} {
		if _, ok, err := ParseLine(skip, 1); ok || err != nil {
			t.Fatalf("ParseLine(%q) ok=%v err=%v", skip, ok, err)
		}
	}

	job, ok, err = ParseLine("i64:-9223372036854775808 mul:2", 2)
	if err != nil || !ok || job.Source != SourceInt64 || job.Int != -1<<63 {
		t.Fatalf("int64 job = %+v ok=%v err=%v", job, ok, err)
	}

	if _, _, err := ParseLine("i64:9223372036854775808", 3); !errors.Is(err, ErrSyntax) || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("int64 overflow err = %v", err)
	}

	job, ok, err = ParseLine("１２３ ＊２", 4)
	if err != nil || !ok || job.Text != "123" || !slices.Equal(job.Ops, []Op{{OpMul, 2}}) {
		t.Fatalf("fullwidth job = %+v err=%v", job, err)
	}
}

func TestRunMatchesReference(t *testing.T) {
	job, _, err := ParseLine("-18446744073709551615 mul:4294967295 add:1 mul:1000000000 add:999999999", 1)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	res, err := New(Options{Steps: true}).Run(context.Background(), job, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want, _ := new(big.Int).SetString("18446744073709551615", 10)
	want.Mul(want, big.NewInt(4294967295))
	want.Add(want, big.NewInt(1))
	want.Mul(want, big.NewInt(1000000000))
	want.Add(want, big.NewInt(999999999))
	want.Neg(want)
	if res.Value != want.String() {
		t.Fatalf("Value = %s, want %s", res.Value, want)
	}
	if res.Sign != -1 || len(res.Steps) != 4 {
		t.Fatalf("sign=%d steps=%d", res.Sign, len(res.Steps))
	}
	if res.Steps[0].Len != 3 {
		t.Fatalf("step 0 len = %d, want 3", res.Steps[0].Len)
	}
}

func TestRunInt64Source(t *testing.T) {
	job, _, err := ParseLine("i64:4294967295 add:1", 1)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	res, err := New(Options{}).Run(context.Background(), job, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Value != "4294967296" || !slices.Equal(res.Limbs, []uint32{0, 1}) || res.Steps != nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunAddsToMagnitude(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"-5 add:10", "-15"},
		{"i64:-1 add:1", "-2"},
		{"-4294967295 +1", "-4294967296"},
		{"5 add:10", "15"},
	}
	ev := New(Options{})
	for _, tc := range cases {
		job, _, err := ParseLine(tc.line, 1)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", tc.line, err)
		}
		res, err := ev.Run(context.Background(), job, 0)
		if err != nil {
			t.Fatalf("Run(%q): %v", tc.line, err)
		}
		if res.Value != tc.want {
			t.Fatalf("%q = %s, want %s", tc.line, res.Value, tc.want)
		}
	}
}

func TestRunReportsLimit(t *testing.T) {
	job, _, err := ParseLine("1 *4294967295 *4294967295 *4294967295", 5)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	ev := New(Options{Store: []limbstore.Option{limbstore.WithMaxLimbs(2)}})
	_, err = ev.Run(context.Background(), job, 0)
	if !errors.Is(err, limbstore.ErrMaxLimbs) {
		t.Fatalf("err = %v, want ErrMaxLimbs", err)
	}
	if !strings.Contains(err.Error(), "line 5: op 3") {
		t.Fatalf("err %q should name line and op", err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job, _, _ := ParseLine("5 add:1", 1)
	if _, err := New(Options{}).Run(ctx, job, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunTracesOps(t *testing.T) {
	var buf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText))
	job, _, _ := ParseLine("4294967295 add:1", 9)
	if _, err := New(Options{}).Run(ctx, job, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"→ job:9", "← add {grew=1, len=2}", "← job:9 {grows=1, limbs=2}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace missing %q:\n%s", want, out)
		}
	}
}
