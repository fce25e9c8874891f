package gowick

import (
	"strings"
)

// ============================================================
// GraphMatrix and diagrammatic Operator
// ============================================================

// GraphMatrix counts creation and annihilation operators per space.
type GraphMatrix struct {
	cre [MaxSpaces]int
	ann [MaxSpaces]int
}

// NewGraphMatrix builds a matrix from per-space counts. Missing trailing
// spaces count as zero.
func NewGraphMatrix(cre, ann []int) GraphMatrix {
	var g GraphMatrix
	copy(g.cre[:], cre)
	copy(g.ann[:], ann)
	return g
}

func (g GraphMatrix) Cre(s int) int { return g.cre[s] }
func (g GraphMatrix) Ann(s int) int { return g.ann[s] }

func (g *GraphMatrix) SetCre(s, n int) { g.cre[s] = n }
func (g *GraphMatrix) SetAnn(s, n int) { g.ann[s] = n }

// NumOps is the total number of operators.
func (g GraphMatrix) NumOps() int {
	n := 0
	for s := 0; s < MaxSpaces; s++ {
		n += g.cre[s] + g.ann[s]
	}
	return n
}

func (g GraphMatrix) IsZero() bool { return g == GraphMatrix{} }

func (g GraphMatrix) Add(o GraphMatrix) GraphMatrix {
	for s := 0; s < MaxSpaces; s++ {
		g.cre[s] += o.cre[s]
		g.ann[s] += o.ann[s]
	}
	return g
}

func (g GraphMatrix) Sub(o GraphMatrix) GraphMatrix {
	for s := 0; s < MaxSpaces; s++ {
		g.cre[s] -= o.cre[s]
		g.ann[s] -= o.ann[s]
	}
	return g
}

// Fits reports whether every count of o is at most the matching count of g.
func (g GraphMatrix) Fits(o GraphMatrix) bool {
	for s := 0; s < MaxSpaces; s++ {
		if o.cre[s] > g.cre[s] || o.ann[s] > g.ann[s] {
			return false
		}
	}
	return true
}

func (g GraphMatrix) Adjoint() GraphMatrix { return GraphMatrix{cre: g.ann, ann: g.cre} }

// Compare is lexicographic over the per-space (cre, ann) pairs.
func (g GraphMatrix) Compare(o GraphMatrix) int {
	for s := 0; s < MaxSpaces; s++ {
		if g.cre[s] != o.cre[s] {
			return cmpInt(g.cre[s], o.cre[s])
		}
		if g.ann[s] != o.ann[s] {
			return cmpInt(g.ann[s], o.ann[s])
		}
	}
	return 0
}

// Operator is a diagrammatic operator: a label and the operator counts of
// its implied antisymmetric tensor.
type Operator struct {
	Label string
	Graph GraphMatrix
}

func NewOperator(label string, cre, ann []int) Operator {
	return Operator{Label: label, Graph: NewGraphMatrix(cre, ann)}
}

func (o Operator) Cre(s int) int { return o.Graph.cre[s] }
func (o Operator) Ann(s int) int { return o.Graph.ann[s] }
func (o Operator) NumOps() int   { return o.Graph.NumOps() }

// Factor is 1/prod_s(cre_s! ann_s!).
func (o Operator) Factor() Rational {
	d := int64(1)
	for s := 0; s < MaxSpaces; s++ {
		d *= factorial(o.Graph.cre[s]) * factorial(o.Graph.ann[s])
	}
	return R(1, d)
}

func (o Operator) Adjoint() Operator { return Operator{Label: o.Label, Graph: o.Graph.Adjoint()} }

// Compare orders by label and then by graph matrix.
func (o Operator) Compare(p Operator) int {
	if c := strings.Compare(o.Label, p.Label); c != 0 {
		return c
	}
	return o.Graph.Compare(p.Graph)
}

// commutes reports whether no space pairs an annihilator of one operator
// with a creator of the other.
func commutes(a, b Operator) bool {
	n := 0
	for s := 0; s < MaxSpaces; s++ {
		n += a.Graph.ann[s]*b.Graph.cre[s] + a.Graph.cre[s]*b.Graph.ann[s]
	}
	return n == 0
}

// FormatOperator prints "label { o+ v+ v o }" with creators by ascending
// space and annihilators by descending space, prefixed by the factor when
// it is not one.
func (c *SpaceContext) FormatOperator(o Operator) string {
	n := c.NumSpaces()
	var parts []string
	if f := o.Factor(); !f.IsOne() {
		parts = append(parts, f.Format(false))
	}
	parts = append(parts, o.Label, "{")
	for s := 0; s < n; s++ {
		for k := 0; k < o.Cre(s); k++ {
			parts = append(parts, c.Label(s)+"+")
		}
	}
	for s := n - 1; s >= 0; s-- {
		for k := 0; k < o.Ann(s); k++ {
			parts = append(parts, c.Label(s))
		}
	}
	parts = append(parts, "}")
	return strings.Join(parts, " ")
}

// OperatorLaTeX renders the operator as a hatted symbol.
func (c *SpaceContext) OperatorLaTeX(o Operator) string {
	n := c.NumSpaces()
	var cre, ann []string
	for s := 0; s < n; s++ {
		for k := 0; k < o.Cre(s); k++ {
			cre = append(cre, c.Label(s))
		}
	}
	for s := n - 1; s >= 0; s-- {
		for k := 0; k < o.Ann(s); k++ {
			ann = append(ann, c.Label(s))
		}
	}
	return `\hat{` + o.Label + `}^{` + strings.Join(cre, " ") + `}_{` + strings.Join(ann, " ") + `}`
}
