package gowick

// ============================================================
// Contraction graph canonicalization
// ============================================================

// canonicalizeGraph picks, among every reordering of commuting operators
// and every ordering of the elementary contractions, the minimal
// representation of the contraction graph, so that topologically equivalent
// contractions evaluate to the same term. Operators must carry an even
// number of second-quantized operators, which makes the reordering sign
// trivial.
func canonicalizeGraph(ops OperatorProduct, contractions CompositeContraction) (OperatorProduct, CompositeContraction, error) {
	for _, o := range ops {
		if o.NumOps()%2 != 0 {
			return nil, nil, newError(ErrRankNotSupported, "canonicalizeGraph",
				"operator %q has an odd number of second-quantized operators", o.Label)
		}
	}
	nops := len(ops)
	commutable := make([][]bool, nops)
	for i := range commutable {
		commutable[i] = make([]bool, nops)
		for j := range commutable[i] {
			commutable[i][j] = contractionsCommute(i, j, contractions)
		}
	}

	var opsPerms [][]int
	p := identityPerm(nops)
	for {
		if permutationReachable(p, commutable) {
			opsPerms = append(opsPerms, append([]int(nil), p...))
		}
		if !nextPermutation(p) {
			break
		}
	}
	var conPerms [][]int
	q := identityPerm(len(contractions))
	for {
		conPerms = append(conPerms, append([]int(nil), q...))
		if !nextPermutation(q) {
			break
		}
	}

	bestO, bestC := 0, 0
	for o := range opsPerms {
		for c := range conPerms {
			if graphLess(opsPerms[o], conPerms[c], opsPerms[bestO], conPerms[bestC], ops, contractions) {
				bestO, bestC = o, c
			}
		}
	}

	bestOps := make(OperatorProduct, nops)
	for k, o := range opsPerms[bestO] {
		bestOps[k] = ops[o]
	}
	bestContr := make(CompositeContraction, len(contractions))
	for k, c := range conPerms[bestC] {
		e := newElementary(nops)
		for v, o := range opsPerms[bestO] {
			e[v] = contractions[c][o]
		}
		bestContr[k] = e
	}
	return bestOps, bestContr, nil
}

// contractionsCommute reports whether operators i and j may trade places:
// no pair contraction links a creator of one to an annihilator of the
// other.
func contractionsCommute(i, j int, contractions CompositeContraction) bool {
	for _, el := range contractions {
		if el.NumOps() != 2 {
			continue
		}
		for s := 0; s < MaxSpaces; s++ {
			if el[i].cre[s]*el[j].ann[s] > 0 || el[i].ann[s]*el[j].cre[s] > 0 {
				return false
			}
		}
	}
	return true
}

// permutationReachable bubble-sorts perm and reports whether every swap
// exchanged operators that commute.
func permutationReachable(perm []int, commutable [][]bool) bool {
	p := append([]int(nil), perm...)
	n := len(p)
	for i := 0; i+1 < n; i++ {
		for j := 0; j+1 < n-i; j++ {
			if p[j+1] < p[j] {
				if !commutable[p[j+1]][p[j]] {
					return false
				}
				p[j], p[j+1] = p[j+1], p[j]
			}
		}
	}
	return true
}

// graphLess orders graphs by their permuted operators and then by their
// permuted contractions, the latter preferring larger leg counts first.
func graphLess(lo, lc, ro, rc []int, ops OperatorProduct, contractions CompositeContraction) bool {
	for i := range lo {
		if c := ops[lo[i]].Compare(ops[ro[i]]); c != 0 {
			return c < 0
		}
	}
	for j := range lc {
		l, r := contractions[lc[j]], contractions[rc[j]]
		for i := range lo {
			if c := l[lo[i]].Compare(r[ro[i]]); c != 0 {
				return c > 0
			}
		}
	}
	return false
}
