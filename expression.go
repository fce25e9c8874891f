package gowick

import (
	"sort"
	"strings"
)

// ============================================================
// Expression
// ============================================================

type exprEntry struct {
	term  SymbolicTerm
	coeff Rational
}

// Expression is a sum of distinct symbolic terms with rational
// coefficients. Terms whose coefficient cancels to zero are dropped.
// Iteration and printing follow SymbolicTerm order.
type Expression struct {
	ctx   *SpaceContext
	terms map[string]*exprEntry
}

func NewExpression(ctx *SpaceContext) *Expression {
	return &Expression{ctx: ctx, terms: map[string]*exprEntry{}}
}

// Context returns the space registry used to print the expression.
func (e *Expression) Context() *SpaceContext { return e.ctx }

// Add accumulates c·t. The term is copied.
func (e *Expression) Add(t SymbolicTerm, c Rational) {
	if c.IsZero() {
		return
	}
	k := t.key()
	if en, ok := e.terms[k]; ok {
		en.coeff = en.coeff.Add(c)
		if en.coeff.IsZero() {
			delete(e.terms, k)
		}
		return
	}
	e.terms[k] = &exprEntry{term: t.clone(), coeff: c}
}

func (e *Expression) AddTerm(t Term) { e.Add(t.SymbolicTerm, t.Coeff) }

// AddExpression accumulates scale·o.
func (e *Expression) AddExpression(o *Expression, scale Rational) {
	for _, en := range o.terms {
		e.Add(en.term, en.coeff.Mul(scale))
	}
}

func (e *Expression) Len() int     { return len(e.terms) }
func (e *Expression) IsZero() bool { return len(e.terms) == 0 }

// Terms returns the terms in canonical order.
func (e *Expression) Terms() []Term {
	out := make([]Term, 0, len(e.terms))
	for _, en := range e.terms {
		out = append(out, Term{Coeff: en.coeff, SymbolicTerm: en.term.clone()})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].SymbolicTerm.Compare(out[b].SymbolicTerm) < 0 })
	return out
}

// Coefficient returns the coefficient of t, or zero.
func (e *Expression) Coefficient(t SymbolicTerm) Rational {
	if en, ok := e.terms[t.key()]; ok {
		return en.coeff
	}
	return Rational{}
}

func (e *Expression) Equal(o *Expression) bool {
	if len(e.terms) != len(o.terms) {
		return false
	}
	for k, en := range e.terms {
		on, ok := o.terms[k]
		if !ok || !on.coeff.Equal(en.coeff) {
			return false
		}
	}
	return true
}

func (e *Expression) Clone() *Expression {
	r := NewExpression(e.ctx)
	r.AddExpression(e, RInt(1))
	return r
}

func (e *Expression) Scale(c Rational) *Expression {
	r := NewExpression(e.ctx)
	r.AddExpression(e, c)
	return r
}

func (e *Expression) Sub(o *Expression) *Expression {
	r := e.Clone()
	r.AddExpression(o, RInt(-1))
	return r
}

// Mul distributes the product over both sums.
func (e *Expression) Mul(o *Expression) (*Expression, error) {
	r := NewExpression(e.ctx)
	for _, a := range e.Terms() {
		for _, b := range o.Terms() {
			t, err := a.SymbolicTerm.Mul(b.SymbolicTerm)
			if err != nil {
				return nil, err
			}
			r.Add(t, a.Coeff.Mul(b.Coeff))
		}
	}
	return r, nil
}

func (e *Expression) Adjoint() *Expression {
	r := NewExpression(e.ctx)
	for _, en := range e.terms {
		r.Add(en.term.Adjoint(), en.coeff)
	}
	return r
}

func (e *Expression) Reindex(m map[Index]Index) *Expression {
	r := NewExpression(e.ctx)
	for _, en := range e.terms {
		t := en.term.clone()
		t.Reindex(m)
		r.Add(t, en.coeff)
	}
	return r
}

// Canonicalize returns a new expression with every term in canonical form
// and equivalent terms merged.
func (e *Expression) Canonicalize() *Expression {
	r := NewExpression(e.ctx)
	for _, en := range e.terms {
		t := en.term.clone()
		sign := t.Canonicalize()
		r.Add(t, en.coeff.MulInt(int64(sign)))
	}
	return r
}

// String prints one term per line. The first coefficient is unsigned, the
// rest carry an explicit sign.
func (e *Expression) String() string {
	terms := e.Terms()
	lines := make([]string, len(terms))
	for k, t := range terms {
		lines[k] = joinCoeff(t.Coeff.Format(k > 0), e.ctx.FormatSymbolicTerm(t.SymbolicTerm))
	}
	return strings.Join(lines, "\n")
}

// LaTeX joins the terms with sep.
func (e *Expression) LaTeX(sep string) string {
	terms := e.Terms()
	lines := make([]string, len(terms))
	for k, t := range terms {
		coeff := ""
		switch {
		case t.Coeff.IsOne():
			if k > 0 {
				coeff = "+"
			}
		case t.Coeff.Equal(RInt(-1)):
			coeff = "-"
		default:
			coeff = t.Coeff.LaTeX()
			if k > 0 && t.Coeff.Sign() > 0 {
				coeff = "+" + coeff
			}
		}
		body := e.ctx.SymbolicTermLaTeX(t.SymbolicTerm)
		if body == "" {
			body = "1"
			if coeff != "" && coeff != "+" && coeff != "-" {
				body = ""
			}
		}
		lines[k] = strings.TrimSpace(coeff + " " + body)
	}
	return strings.Join(lines, sep)
}
