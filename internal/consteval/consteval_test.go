package consteval

import (
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
)

func num(v int64) ast.Expr    { return &ast.Num{Value: v} }
func name(n string) ast.Expr { return &ast.Name{Ident: n} }

func TestEvalArithmetic(t *testing.T) {
	expr := &ast.BinOp{X: name("WIDTH"), Op: ast.OpAdd, Y: num(1)}
	got, err := Eval(expr, Scope{"WIDTH": 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestEvalUndeclaredNameFails(t *testing.T) {
	if _, err := Eval(name("UNKNOWN"), Scope{}); err == nil {
		t.Fatal("expected a NonStaticError for an undeclared name")
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	expr := &ast.BinOp{X: num(1), Op: ast.OpDiv, Y: num(0)}
	if _, err := Eval(expr, nil); err == nil {
		t.Fatal("expected an error for division by zero")
	}
}

func TestRangeDefaultStep(t *testing.T) {
	got, err := Range([]ast.Expr{num(4)}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRangeNegativeStep(t *testing.T) {
	got, err := Range([]ast.Expr{num(5), num(1), num(-2)}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{5, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRangeZeroStepRejected(t *testing.T) {
	if _, err := Range([]ast.Expr{num(1), num(2), num(0)}, nil, 0); err == nil {
		t.Fatal("expected an error for a zero step")
	}
}

func TestWidthForValue(t *testing.T) {
	cases := []struct {
		v    int64
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{7, 3},
		{8, 4},
		{255, 8},
	}
	for _, c := range cases {
		if got := WidthForValue(c.v); got != c.want {
			t.Errorf("WidthForValue(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}
