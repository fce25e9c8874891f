package gowick

import (
	"strings"
)

// ============================================================
// Many-body equations
// ============================================================

// Equation is one contribution lhs += factor · rhs to a residual tensor.
type Equation struct {
	LHS    Tensor
	RHS    SymbolicTerm
	Factor Rational
	ctx    *SpaceContext
}

// RHSExpression returns factor · rhs as a single-term expression.
func (q Equation) RHSExpression() *Expression {
	e := NewExpression(q.ctx)
	e.Add(q.RHS, q.Factor)
	return e
}

func (q Equation) Equal(o Equation) bool {
	return q.LHS.Equal(o.LHS) && q.RHS.Equal(o.RHS) && q.Factor.Equal(o.Factor)
}

func (q Equation) String() string {
	return strings.Join([]string{
		q.ctx.FormatTensor(q.LHS),
		"+=",
		q.Factor.String(),
		q.ctx.FormatSymbolicTerm(q.RHS),
	}, " ")
}

func (q Equation) LaTeX() string {
	return q.ctx.TensorLaTeX(q.LHS) + ` \mathrel{+}= ` + q.Factor.LaTeX() + " " + q.ctx.SymbolicTermLaTeX(q.RHS)
}

// ToManyBodyEquations turns every term into an equation for the tensor
// label whose indices are the term's uncontracted operators: annihilator
// indices go down, creator indices up. Equations are grouped by the space
// labels of the lower and upper indices, e.g. "oo|vv", and keep expression
// order within a group.
func (e *Expression) ToManyBodyEquations(label string) map[string][]Equation {
	out := map[string][]Equation{}
	for _, t := range e.Terms() {
		var lower, upper []Index
		for k := len(t.Ops) - 1; k >= 0; k-- {
			if !t.Ops[k].IsCreation() {
				lower = append(lower, t.Ops[k].Index)
			}
		}
		for _, o := range t.Ops {
			if o.IsCreation() {
				upper = append(upper, o.Index)
			}
		}
		rhs := NewSymbolicTerm(false, nil, t.Tensors)
		eq := Equation{
			LHS:    NewTensor(label, lower, upper, Antisymmetric),
			RHS:    rhs,
			Factor: t.Coeff,
			ctx:    e.ctx,
		}
		key := e.signature(lower) + "|" + e.signature(upper)
		out[key] = append(out[key], eq)
	}
	return out
}

func (e *Expression) signature(idx []Index) string {
	var b strings.Builder
	for _, i := range idx {
		b.WriteString(e.ctx.Label(i.Space))
	}
	return b.String()
}
