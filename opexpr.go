package gowick

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// OperatorProduct and OperatorExpression
// ============================================================

// OperatorProduct is an ordered product of diagrammatic operators.
type OperatorProduct []Operator

func (p OperatorProduct) NumOps() int {
	n := 0
	for _, o := range p {
		n += o.NumOps()
	}
	return n
}

func (p OperatorProduct) Compare(q OperatorProduct) int {
	for k := 0; k < len(p) && k < len(q); k++ {
		if c := p[k].Compare(q[k]); c != 0 {
			return c
		}
	}
	return cmpInt(len(p), len(q))
}

func (p OperatorProduct) key() string {
	var b strings.Builder
	for _, o := range p {
		b.WriteString(o.Label)
		b.WriteByte('{')
		for s := 0; s < MaxSpaces; s++ {
			b.WriteString(strconv.Itoa(o.Graph.cre[s]))
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(o.Graph.ann[s]))
			b.WriteByte(';')
		}
		b.WriteByte('}')
	}
	return b.String()
}

// Canonicalize bubble-sorts commuting neighbours into order and returns the
// product with the sign of the reordering.
func (p OperatorProduct) Canonicalize() (OperatorProduct, int) {
	q := append(OperatorProduct(nil), p...)
	nperm := 0
	for i := 0; i+1 < len(q); i++ {
		for j := 0; j+1 < len(q)-i; j++ {
			if commutes(q[j+1], q[j]) && q[j+1].Compare(q[j]) < 0 {
				nperm += q[j].NumOps() * q[j+1].NumOps()
				q[j], q[j+1] = q[j+1], q[j]
			}
		}
	}
	if nperm%2 == 0 {
		return q, 1
	}
	return q, -1
}

type opEntry struct {
	prod  OperatorProduct
	coeff Rational
}

// OperatorExpression is a sum of operator products with rational
// coefficients.
type OperatorExpression struct {
	ctx   *SpaceContext
	terms map[string]*opEntry
}

func NewOperatorExpression(ctx *SpaceContext) *OperatorExpression {
	return &OperatorExpression{ctx: ctx, terms: map[string]*opEntry{}}
}

func (e *OperatorExpression) Context() *SpaceContext { return e.ctx }

func (e *OperatorExpression) Add(p OperatorProduct, c Rational) {
	if c.IsZero() {
		return
	}
	k := p.key()
	if en, ok := e.terms[k]; ok {
		en.coeff = en.coeff.Add(c)
		if en.coeff.IsZero() {
			delete(e.terms, k)
		}
		return
	}
	e.terms[k] = &opEntry{prod: append(OperatorProduct(nil), p...), coeff: c}
}

func (e *OperatorExpression) AddExpression(o *OperatorExpression, scale Rational) {
	for _, en := range o.terms {
		e.Add(en.prod, en.coeff.Mul(scale))
	}
}

func (e *OperatorExpression) Contains(p OperatorProduct) bool {
	_, ok := e.terms[p.key()]
	return ok
}

func (e *OperatorExpression) Len() int { return len(e.terms) }

// OperatorTerm is one product of an OperatorExpression with its coefficient.
type OperatorTerm struct {
	Coeff   Rational
	Product OperatorProduct
}

func (e *OperatorExpression) Terms() []OperatorTerm {
	out := make([]OperatorTerm, 0, len(e.terms))
	for _, en := range e.terms {
		out = append(out, OperatorTerm{Coeff: en.coeff, Product: append(OperatorProduct(nil), en.prod...)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Product.Compare(out[b].Product) < 0 })
	return out
}

func (e *OperatorExpression) Equal(o *OperatorExpression) bool {
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

func (e *OperatorExpression) Clone() *OperatorExpression { return e.Scale(RInt(1)) }

func (e *OperatorExpression) Scale(c Rational) *OperatorExpression {
	r := NewOperatorExpression(e.ctx)
	r.AddExpression(e, c)
	return r
}

// Plus returns e + o.
func (e *OperatorExpression) Plus(o *OperatorExpression) *OperatorExpression {
	r := e.Clone()
	r.AddExpression(o, RInt(1))
	return r
}

// Minus returns e - o.
func (e *OperatorExpression) Minus(o *OperatorExpression) *OperatorExpression {
	r := e.Clone()
	r.AddExpression(o, RInt(-1))
	return r
}

// Mul concatenates every product of e with every product of o.
func (e *OperatorExpression) Mul(o *OperatorExpression) *OperatorExpression {
	r := NewOperatorExpression(e.ctx)
	for _, a := range e.terms {
		for _, b := range o.terms {
			p := make(OperatorProduct, 0, len(a.prod)+len(b.prod))
			p = append(p, a.prod...)
			p = append(p, b.prod...)
			r.Add(p, a.coeff.Mul(b.coeff))
		}
	}
	return r
}

// Canonicalize reorders commuting operators within each product and merges
// the products that become equal.
func (e *OperatorExpression) Canonicalize() *OperatorExpression {
	r := NewOperatorExpression(e.ctx)
	for _, en := range e.terms {
		p, sign := en.prod.Canonicalize()
		r.Add(p, en.coeff.MulInt(int64(sign)))
	}
	return r
}

// Adjoint reverses each product and takes the adjoint of every operator.
func (e *OperatorExpression) Adjoint() *OperatorExpression {
	r := NewOperatorExpression(e.ctx)
	for _, en := range e.terms {
		p := make(OperatorProduct, len(en.prod))
		for k, o := range en.prod {
			p[len(p)-1-k] = o.Adjoint()
		}
		r.Add(p, en.coeff)
	}
	return r
}

func (e *OperatorExpression) String() string {
	terms := e.Terms()
	lines := make([]string, len(terms))
	for k, t := range terms {
		var b strings.Builder
		b.WriteString(t.Coeff.Format(true))
		for _, o := range t.Product {
			b.WriteByte(' ')
			b.WriteString(e.ctx.FormatOperator(o))
		}
		lines[k] = b.String()
	}
	return strings.Join(lines, "\n")
}

// LaTeX joins the products with sep.
func (e *OperatorExpression) LaTeX(sep string) string {
	terms := e.Terms()
	lines := make([]string, len(terms))
	for k, t := range terms {
		parts := []string{t.Coeff.LaTeX()}
		for _, o := range t.Product {
			parts = append(parts, e.ctx.OperatorLaTeX(o))
		}
		lines[k] = strings.Join(parts, " ")
	}
	return strings.Join(lines, sep)
}

// ============================================================
// Builders
// ============================================================

var componentRe = regexp.MustCompile(`([a-zA-Z][+^]?)`)

// Op builds the sum of one diagrammatic operator per component. A
// component lists space labels, with "+" marking creators, e.g. "v+ v+ o o".
// Composite-space labels expand into one operator per constituent choice.
// With unique set, components that count to an operator already present
// are skipped.
func (c *SpaceContext) Op(label string, components []string, unique bool) (*OperatorExpression, error) {
	const op = "Op"
	n := c.NumSpaces()
	r := NewOperatorExpression(c)
	for _, comp := range components {
		tokens := componentRe.FindAllString(comp, -1)
		if rest := strings.TrimSpace(componentRe.ReplaceAllString(comp, "")); rest != "" {
			return nil, newError(ErrParse, op, "stray characters %q in component %q", rest, comp)
		}
		type leg struct {
			spaces []int
			cre    bool
		}
		legs := make([]leg, 0, len(tokens))
		for _, tok := range tokens {
			id, err := c.LabelToSpace(tok[:1])
			if err != nil {
				return nil, newError(ErrParse, op, "unknown space %q in component %q", tok[:1], comp)
			}
			choices := []int{id}
			if sp := c.Space(id); sp.Type == Composite {
				choices = sp.Constituent
			}
			legs = append(legs, leg{spaces: choices, cre: len(tok) > 1})
		}
		// walk every constituent assignment with an odometer
		pick := make([]int, len(legs))
		for {
			cre, ann := make([]int, n), make([]int, n)
			for k, l := range legs {
				if l.cre {
					cre[l.spaces[pick[k]]]++
				} else {
					ann[l.spaces[pick[k]]]++
				}
			}
			prod := OperatorProduct{NewOperator(label, cre, ann)}
			if !unique || !r.Contains(prod) {
				r.Add(prod, RInt(1))
			}
			k := len(legs) - 1
			for ; k >= 0; k-- {
				pick[k]++
				if pick[k] < len(legs[k].spaces) {
					break
				}
				pick[k] = 0
			}
			if k < 0 {
				break
			}
		}
	}
	return r, nil
}

// GenOp builds the sum of every rank-body operator with creators drawn from
// creSpaces and annihilators from annSpaces, each a string of space labels.
// Creator spaces are taken in non-decreasing and annihilator spaces in
// non-increasing id order. With diagonal unset, components whose creator and
// annihilator spaces coincide are dropped.
func (c *SpaceContext) GenOp(label string, rank int, creSpaces, annSpaces string, diagonal bool) (*OperatorExpression, error) {
	const op = "GenOp"
	if rank < 0 {
		return nil, newError(ErrParse, op, "negative rank %d", rank)
	}
	resolve := func(s string) ([]int, error) {
		var ids []int
		for _, ch := range strings.ReplaceAll(s, " ", "") {
			id, err := c.LabelToSpace(string(ch))
			if err != nil {
				return nil, newError(ErrParse, op, "unknown space %q", string(ch))
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	creIDs, err := resolve(creSpaces)
	if err != nil {
		return nil, err
	}
	annIDs, err := resolve(annSpaces)
	if err != nil {
		return nil, err
	}
	cres := monotoneTuples(creIDs, rank, true)
	anns := monotoneTuples(annIDs, rank, false)
	var components []string
	for _, le := range cres {
		for _, re := range anns {
			if !diagonal && equalInts(le, re) {
				continue
			}
			parts := make([]string, 0, 2*rank)
			for _, s := range le {
				parts = append(parts, c.Label(s)+"+")
			}
			for _, s := range re {
				parts = append(parts, c.Label(s))
			}
			components = append(components, strings.Join(parts, " "))
		}
	}
	return c.Op(label, components, false)
}

// monotoneTuples lists the rank-tuples over ids, in product order, whose
// entries are non-decreasing (or non-increasing).
func monotoneTuples(ids []int, rank int, increasing bool) [][]int {
	var out [][]int
	cur := make([]int, 0, rank)
	var rec func()
	rec = func() {
		if len(cur) == rank {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for _, id := range ids {
			if n := len(cur); n > 0 {
				if increasing && id < cur[n-1] || !increasing && id > cur[n-1] {
					continue
				}
			}
			cur = append(cur, id)
			rec()
			cur = cur[:len(cur)-1]
		}
	}
	rec()
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// ============================================================
// Commutators and BCH
// ============================================================

// Commutator returns the nested commutator [[A,B],C]... of its arguments.
func Commutator(a *OperatorExpression, rest ...*OperatorExpression) *OperatorExpression {
	r := a
	for _, b := range rest {
		r = r.Mul(b).Minus(b.Mul(r))
	}
	return r
}

// BCHSeries returns A + [A,B] + 1/2 [[A,B],B] + ... through order n.
func BCHSeries(a, b *OperatorExpression, n int) (*OperatorExpression, error) {
	if n < 0 {
		return nil, newError(ErrInvalidState, "BCHSeries", "negative order %d", n)
	}
	result := a.Clone()
	temp := a
	for k := 1; k <= n; k++ {
		comm := Commutator(temp, b).Scale(R(1, int64(k)))
		result.AddExpression(comm, RInt(1))
		temp = comm
	}
	return result, nil
}
