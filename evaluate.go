package gowick

import (
	"sort"
	"strconv"
)

// ============================================================
// Evaluating a contraction
// ============================================================

// legTable maps (operator, space, creation, n) to the position of the n-th
// such second-quantized operator in the expanded operator string.
type legTable [][MaxSpaces][2][]int

func legSide(cre bool) int {
	if cre {
		return 0
	}
	return 1
}

// expandOperators writes each diagrammatic operator out as its tensor and
// its string of second-quantized operators, creators by ascending space and
// annihilators by descending space. Indices are numbered per space across
// the whole product.
func expandOperators(tab spaceTable, ops OperatorProduct) ([]Tensor, []SQOperator, legTable) {
	var next [MaxSpaces]int
	var tensors []Tensor
	var sqops []SQOperator
	legs := make(legTable, len(ops))
	for o, op := range ops {
		var lower, upper []Index
		for s := 0; s < tab.n; s++ {
			legs[o][s][0] = make([]int, op.Cre(s))
			for c := 0; c < op.Cre(s); c++ {
				idx := Index{Space: s, Pos: next[s]}
				next[s]++
				legs[o][s][0][c] = len(sqops)
				sqops = append(sqops, SQOperator{Kind: Creation, Field: tab.fields[s], Index: idx})
				lower = append(lower, idx)
			}
		}
		for s := tab.n - 1; s >= 0; s-- {
			legs[o][s][1] = make([]int, op.Ann(s))
			for a := op.Ann(s) - 1; a >= 0; a-- {
				idx := Index{Space: s, Pos: next[s]}
				next[s]++
				legs[o][s][1][a] = len(sqops)
				sqops = append(sqops, SQOperator{Kind: Annihilation, Field: tab.fields[s], Index: idx})
				upper = append(upper, idx)
			}
		}
		for l, r := 0, len(upper)-1; l < r; l, r = l+1, r-1 {
			upper[l], upper[r] = upper[r], upper[l]
		}
		tensors = append(tensors, Tensor{Label: op.Label, Lower: lower, Upper: upper, Symmetry: Antisymmetric})
	}
	return tensors, sqops, legs
}

// legPositions returns the string positions of the creators (or
// annihilators) consumed by c, taking the leftmost unused legs of each
// operator first and advancing offset.
func legPositions(c ElementaryContraction, spaces []int, offset []GraphMatrix, legs legTable, cre bool) []int {
	side := legSide(cre)
	var out []int
	for _, s := range spaces {
		for v, g := range c {
			n, off := g.ann[s], offset[v].ann[s]
			if cre {
				n, off = g.cre[s], offset[v].cre[s]
			}
			for i := 0; i < n; i++ {
				out = append(out, legs[v][s][side][off+i])
			}
			if cre {
				offset[v].cre[s] = off + n
			} else {
				offset[v].ann[s] = off + n
			}
		}
	}
	return out
}

// evaluateContraction turns a composite contraction of ops into a symbolic
// term and its scalar prefactor (sign, operator factors and the
// combinatorial multiplicity, times factor).
func evaluateContraction(tab spaceTable, ops OperatorProduct, contractions CompositeContraction, factor Rational) (SymbolicTerm, Rational) {
	tensors, sqops, legs := expandOperators(tab, ops)
	offset := make([]GraphMatrix, len(ops))
	order := make([]int, len(sqops))
	for k := range order {
		order[k] = -1
	}
	next := 0
	contracted := 0
	sign := 1
	relabel := map[Index]Index{}

	for _, c := range contractions {
		spaces := c.spaces()
		rank := c.NumOps()
		contracted += rank
		crePos := legPositions(c, spaces, offset, legs, true)
		annPos := legPositions(c, spaces, offset, legs, false)
		for _, p := range crePos {
			order[p] = next
			next++
		}
		for _, p := range annPos {
			order[p] = next
			next++
		}

		switch tab.types[spaces[0]] {
		case Occupied:
			relabel[sqops[annPos[0]].Index] = sqops[crePos[0]].Index
		case Unoccupied:
			relabel[sqops[crePos[0]].Index] = sqops[annPos[0]].Index
			sign = -sign
		case General:
			upper := make([]Index, len(crePos))
			for k, p := range crePos {
				upper[k] = sqops[p].Index
			}
			lower := make([]Index, len(annPos))
			for k, p := range annPos {
				lower[len(annPos)-1-k] = sqops[p].Index
			}
			label := "lambda" + strconv.Itoa(rank/2)
			if rank == 2 {
				if crePos[0] < annPos[0] {
					label = "gamma1"
				} else {
					label = "eta1"
					sign = -sign
				}
			}
			tensors = append(tensors, Tensor{Label: label, Lower: lower, Upper: upper, Symmetry: Antisymmetric})
		}
	}

	for _, kind := range []OpKind{Creation, Annihilation} {
		for s := 0; s < tab.n; s++ {
			for i, op := range sqops {
				if order[i] == -1 && op.Index.Space == s && op.Kind == kind {
					order[i] = next
					next++
				}
			}
		}
	}
	sign *= permutationSign(order)

	byOrder := identityPerm(len(sqops))
	sort.Slice(byOrder, func(a, b int) bool { return order[byOrder[a]] < order[byOrder[b]] })
	var free []SQOperator
	for _, i := range byOrder[contracted:] {
		free = append(free, sqops[i])
	}

	term := SymbolicTerm{Ops: free, Tensors: tensors}
	term.Reindex(relabel)

	for _, op := range ops {
		factor = factor.Mul(op.Factor())
	}
	factor = factor.Mul(combinatorialFactor(ops, contractions)).MulInt(int64(sign))
	return term, factor
}

// combinatorialFactor counts the equivalent ways of picking the contracted
// legs from each operator, divided by the number of orderings of repeated
// elementary contractions.
func combinatorialFactor(ops OperatorProduct, contractions CompositeContraction) Rational {
	free := make([]GraphMatrix, len(ops))
	for k, o := range ops {
		free[k] = o.Graph
	}
	num := int64(1)
	for _, c := range contractions {
		for v, g := range c {
			for s := 0; s < MaxSpaces; s++ {
				num *= binomial(free[v].cre[s], g.cre[s]) * binomial(free[v].ann[s], g.ann[s])
			}
			free[v] = free[v].Sub(g)
		}
	}
	den := int64(1)
	counted := make([]bool, len(contractions))
	for i := range contractions {
		if counted[i] {
			continue
		}
		m := 0
		for j := i; j < len(contractions); j++ {
			if !counted[j] && contractions[j].Compare(contractions[i]) == 0 {
				counted[j] = true
				m++
			}
		}
		den *= factorial(m)
	}
	return R(num, den)
}
