package gowick_test

import (
	"context"
	"testing"

	"github.com/njchilds90/gowick"
)

// ccSpaces declares the occupied/unoccupied pair used by the
// single-reference derivations.
func ccSpaces(t *testing.T) *gowick.SpaceContext {
	t.Helper()
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "o", gowick.Occupied, []string{"i", "j", "k", "l", "m", "n"})
	mustAdd(t, c, "v", gowick.Unoccupied, []string{"a", "b", "c", "d", "e", "f"})
	return c
}

func mustAdd(t *testing.T, c *gowick.SpaceContext, label string, typ gowick.SpaceType, indices []string, compositeOf ...string) {
	t.Helper()
	if err := c.AddSpace(label, gowick.Fermion, typ, indices, compositeOf...); err != nil {
		t.Fatalf("AddSpace(%s): %v", label, err)
	}
}

func mustOp(t *testing.T, c *gowick.SpaceContext, label string, components ...string) *gowick.OperatorExpression {
	t.Helper()
	e, err := c.Op(label, components, false)
	if err != nil {
		t.Fatalf("Op(%s, %v): %v", label, components, err)
	}
	return e
}

func mustGenOp(t *testing.T, c *gowick.SpaceContext, label string, rank int, cre, ann string) *gowick.OperatorExpression {
	t.Helper()
	e, err := c.GenOp(label, rank, cre, ann, true)
	if err != nil {
		t.Fatalf("GenOp(%s): %v", label, err)
	}
	return e
}

func contract(t *testing.T, w *gowick.WickTheorem, factor gowick.Rational, e *gowick.OperatorExpression, minRank, maxRank int) *gowick.Expression {
	t.Helper()
	r, err := w.Contract(context.Background(), factor, e, minRank, maxRank)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	return r
}

// sumEquations adds up the right-hand sides of eqs.
func sumEquations(c *gowick.SpaceContext, eqs []gowick.Equation) *gowick.Expression {
	e := gowick.NewExpression(c)
	for _, q := range eqs {
		e.AddExpression(q.RHSExpression(), gowick.RInt(1))
	}
	return e
}

func assertExprEqual(t *testing.T, want, got *gowick.Expression) {
	t.Helper()
	if !want.Equal(got) {
		t.Errorf("want\n%s\ngot\n%s", want, got)
	}
}
