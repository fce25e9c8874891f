package gowick_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gowick"
)

// ============================================================
// Operator expressions
// ============================================================

func TestOp_Sum(t *testing.T) {
	c := ccSpaces(t)
	T1 := mustOp(t, c, "t", "v+ o")
	T2 := mustOp(t, c, "t", "v+ v+ o o")
	T := mustOp(t, c, "t", "v+ o", "v+ v+ o o")
	if !T.Equal(T1.Plus(T2)) {
		t.Errorf("want %s, got %s", T, T1.Plus(T2))
	}
	if !T.Minus(T2).Equal(T1) {
		t.Errorf("want %s, got %s", T1, T.Minus(T2))
	}
	assert.Equal(t, 2, T.Len())
}

func TestOp_Unique(t *testing.T) {
	c := ccSpaces(t)
	op1, err := c.Op("a", []string{"v+ o+ o v", "o+ v+ v o"}, true)
	require.NoError(t, err)
	op2 := mustOp(t, c, "a", "v+ o+ v o")
	if !op1.Equal(op2) {
		t.Errorf("want %s, got %s", op2, op1)
	}
	dup := mustOp(t, c, "a", "v+ o+ o v", "o+ v+ v o")
	if !dup.Equal(op2.Scale(gowick.RInt(2))) {
		t.Errorf("without unique the components add up, got %s", dup)
	}
}

func TestOp_Errors(t *testing.T) {
	c := ccSpaces(t)
	if _, err := c.Op("t", []string{"x+ o"}, false); !errors.Is(err, gowick.ErrParse) {
		t.Errorf("want ErrParse, got %v", err)
	}
	if _, err := c.Op("t", []string{"v+ o!"}, false); !errors.Is(err, gowick.ErrParse) {
		t.Errorf("want ErrParse, got %v", err)
	}
	if _, err := c.GenOp("f", 1, "oq", "ov", true); !gowick.IsParse(err) {
		t.Errorf("want parse error, got %v", err)
	}
	if _, err := c.GenOp("f", -1, "ov", "ov", true); !gowick.IsParse(err) {
		t.Errorf("want parse error, got %v", err)
	}
}

func TestOp_Composite(t *testing.T) {
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "o", gowick.Occupied, []string{"i", "j"})
	mustAdd(t, c, "v", gowick.Unoccupied, []string{"a", "b"})
	mustAdd(t, c, "h", gowick.Composite, []string{"p", "q"}, "o", "v")

	got := mustOp(t, c, "f", "h+ v")
	want := mustOp(t, c, "f", "o+ v", "v+ v")
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestOp_String(t *testing.T) {
	c := ccSpaces(t)
	A := mustOp(t, c, "a", "v+ v")
	B := mustOp(t, c, "b", "o+ o")
	C := mustOp(t, c, "c", "o+ o")

	prod := C.Mul(B).Mul(A)
	if got := prod.String(); got != "+ c { o+ o } b { o+ o } a { v+ v }" {
		t.Errorf("want + c { o+ o } b { o+ o } a { v+ v }, got %s", got)
	}
	if got := prod.Canonicalize().String(); got != "+ a { v+ v } c { o+ o } b { o+ o }" {
		t.Errorf("want + a { v+ v } c { o+ o } b { o+ o }, got %s", got)
	}

	V := mustOp(t, c, "v", "o+ o+ v v")
	if got := V.String(); got != "+ 1/4 v { o+ o+ v v }" {
		t.Errorf("want + 1/4 v { o+ o+ v v }, got %s", got)
	}
	assert.Equal(t, `1 \hat{v}^{o o}_{v v}`, V.LaTeX(" + "))
}

func TestOp_Adjoint(t *testing.T) {
	c := ccSpaces(t)
	T1 := mustOp(t, c, "t", "v+ o")
	if got := T1.Adjoint().String(); got != "+ t { o+ v }" {
		t.Errorf("want + t { o+ v }, got %s", got)
	}
	A := mustOp(t, c, "a", "v+ v")
	B := mustOp(t, c, "b", "o+ o")
	want := B.Adjoint().Mul(A.Adjoint())
	if !A.Mul(B).Adjoint().Equal(want) {
		t.Errorf("want %s, got %s", want, A.Mul(B).Adjoint())
	}
}

func TestGenOp(t *testing.T) {
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "c", gowick.Occupied, []string{"m", "n"})
	mustAdd(t, c, "v", gowick.Unoccupied, []string{"e", "f"})
	mustAdd(t, c, "a", gowick.General, []string{"u", "v", "w", "x", "y", "z"})

	F, err := c.GenOp("f", 1, "cav", "cav", false)
	require.NoError(t, err)
	if F.Len() != 6 {
		t.Errorf("want 6 one-body terms, got %d", F.Len())
	}
	V, err := c.GenOp("v", 2, "cav", "cav", true)
	require.NoError(t, err)
	if V.Len() != 36 {
		t.Errorf("want 36 two-body terms, got %d", V.Len())
	}
}

// ============================================================
// Commutators and BCH
// ============================================================

func TestCommutator(t *testing.T) {
	c := ccSpaces(t)
	A := mustOp(t, c, "a", "v+ o")
	B := mustOp(t, c, "b", "o+ v")
	got := gowick.Commutator(A, B)
	want := A.Mul(B).Minus(B.Mul(A))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
	if !gowick.Commutator(A).Equal(A) {
		t.Error("a single argument is returned unchanged")
	}
}

func TestBCHSeries(t *testing.T) {
	c := ccSpaces(t)
	C := mustOp(t, c, "c", "o+ o")
	D := mustOp(t, c, "d", "v+ v")

	got, err := gowick.BCHSeries(C, D, 2)
	require.NoError(t, err)
	if n := got.Canonicalize().Len(); n != 1 {
		t.Errorf("commuting operators leave one term, got %d:\n%s", n, got.Canonicalize())
	}

	H := mustOp(t, c, "h", "o+ v")
	T := mustOp(t, c, "t", "v+ o")
	two, err := gowick.BCHSeries(H, T, 2)
	require.NoError(t, err)
	want := H.Plus(gowick.Commutator(H, T)).Plus(gowick.Commutator(H, T, T).Scale(gowick.R(1, 2)))
	if !two.Equal(want) {
		t.Errorf("want\n%s\ngot\n%s", want, two)
	}

	zero, err := gowick.BCHSeries(H, T, 0)
	require.NoError(t, err)
	assert.True(t, zero.Equal(H))

	if _, err := gowick.BCHSeries(H, T, -1); !gowick.IsState(err) {
		t.Errorf("want state error, got %v", err)
	}
}
