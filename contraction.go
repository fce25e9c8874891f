package gowick

// ============================================================
// Elementary contractions
// ============================================================

// ElementaryContraction records, per operator of a product, how many of its
// creators and annihilators a single contraction consumes.
type ElementaryContraction []GraphMatrix

// CompositeContraction is a multiset of elementary contractions applied
// together.
type CompositeContraction []ElementaryContraction

func newElementary(nops int) ElementaryContraction { return make(ElementaryContraction, nops) }

func (e ElementaryContraction) NumOps() int {
	n := 0
	for _, g := range e {
		n += g.NumOps()
	}
	return n
}

func (e ElementaryContraction) Compare(o ElementaryContraction) int {
	for k := 0; k < len(e) && k < len(o); k++ {
		if c := e[k].Compare(o[k]); c != 0 {
			return c
		}
	}
	return cmpInt(len(e), len(o))
}

// spaces lists, in ascending order, the spaces the contraction touches.
func (e ElementaryContraction) spaces() []int {
	var out []int
	for s := 0; s < MaxSpaces; s++ {
		for _, g := range e {
			if g.cre[s]+g.ann[s] > 0 {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (w *WickTheorem) elementaryContractions(tab spaceTable, ops OperatorProduct, cfg engineConfig) ([]ElementaryContraction, error) {
	var out []ElementaryContraction
	nops := len(ops)
	for s := 0; s < tab.n; s++ {
		switch tab.types[s] {
		case Occupied:
			// a+ ... a
			for l := 0; l < nops; l++ {
				for r := l + 1; r < nops; r++ {
					if ops[l].Cre(s)*ops[r].Ann(s) > 0 {
						c := newElementary(nops)
						c[l].cre[s] = 1
						c[r].ann[s] = 1
						out = append(out, c)
					}
				}
			}
		case Unoccupied:
			// a ... a+
			for l := 0; l < nops; l++ {
				for r := l + 1; r < nops; r++ {
					if ops[l].Ann(s)*ops[r].Cre(s) > 0 {
						c := newElementary(nops)
						c[l].ann[s] = 1
						c[r].cre[s] = 1
						out = append(out, c)
					}
				}
			}
		case General:
			if cfg.interGeneral {
				continue
			}
			gen, err := generalContractions(ops, []int{s}, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, gen...)
		}
	}
	if cfg.interGeneral {
		general := tab.ofType(General)
		if len(general) == 2 {
			gen, err := generalContractions(ops, general, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, gen...)
		} else {
			for _, s := range general {
				gen, err := generalContractions(ops, []int{s}, cfg)
				if err != nil {
					return nil, err
				}
				out = append(out, gen...)
			}
		}
	}
	return out, nil
}

// generalContractions enumerates cumulant contractions with k creators and
// k annihilators spread over at least two operators. With two spaces the
// legs may mix spaces as long as the contraction conserves Ms, the first
// space carrying spin up and the second spin down.
func generalContractions(ops OperatorProduct, spaces []int, cfg engineConfig) ([]ElementaryContraction, error) {
	nops := len(ops)
	creOf := make([]int, nops)
	annOf := make([]int, nops)
	sumCre, sumAnn := 0, 0
	for a, o := range ops {
		for _, s := range spaces {
			creOf[a] += o.Cre(s)
			annOf[a] += o.Ann(s)
		}
		sumCre += creOf[a]
		sumAnn += annOf[a]
	}
	maxHalfLegs := min(sumCre, sumAnn)
	if maxHalfLegs > cfg.maxCumulant {
		if !cfg.cumulantCapped {
			return nil, newError(ErrRankNotSupported, "Contract",
				"operators admit cumulants of order %d, above the supported %d", maxHalfLegs, MaxSupportedCumulant)
		}
		maxHalfLegs = cfg.maxCumulant
	}

	var out []ElementaryContraction
	for halfLegs := 1; halfLegs <= maxHalfLegs; halfLegs++ {
		var creLegs, annLegs [][]int
		for _, part := range integerPartitions(halfLegs, nops) {
			for _, perm := range distinctArrangements(part, nops) {
				creOK, annOK := true, true
				for a := 0; a < nops; a++ {
					if creOf[a] < perm[a] {
						creOK = false
					}
					if annOf[a] < perm[a] {
						annOK = false
					}
				}
				if creOK {
					creLegs = append(creLegs, perm)
				}
				if annOK {
					annLegs = append(annLegs, perm)
				}
			}
		}
		for _, cl := range creLegs {
			for _, al := range annLegs {
				touched := 0
				for a := 0; a < nops; a++ {
					if cl[a]+al[a] > 0 {
						touched++
					}
				}
				if touched < 2 {
					continue
				}
				if len(spaces) == 1 {
					s := spaces[0]
					c := newElementary(nops)
					for a := 0; a < nops; a++ {
						c[a].cre[s] = cl[a]
						c[a].ann[s] = al[a]
					}
					out = append(out, c)
					continue
				}
				out = append(out, splitLegs(ops, spaces, cl, al)...)
			}
		}
	}
	return out, nil
}

// splitLegs distributes the per-operator leg counts over two spaces in every
// way the operators allow and keeps the Ms-conserving splits.
func splitLegs(ops OperatorProduct, spaces []int, creLegs, annLegs []int) []ElementaryContraction {
	s0, s1 := spaces[0], spaces[1]
	nops := len(ops)
	creSplit := make([][][2]int, nops)
	annSplit := make([][][2]int, nops)
	for a, o := range ops {
		for i := 0; i <= creLegs[a]; i++ {
			if i <= o.Cre(s0) && creLegs[a]-i <= o.Cre(s1) {
				creSplit[a] = append(creSplit[a], [2]int{i, creLegs[a] - i})
			}
		}
		for i := 0; i <= annLegs[a]; i++ {
			if i <= o.Ann(s0) && annLegs[a]-i <= o.Ann(s1) {
				annSplit[a] = append(annSplit[a], [2]int{i, annLegs[a] - i})
			}
		}
	}

	var out []ElementaryContraction
	na := make([]int, nops)
	for {
		nc := make([]int, nops)
		for {
			c := newElementary(nops)
			ms := 0
			for a := 0; a < nops; a++ {
				cs, as := creSplit[a][nc[a]], annSplit[a][na[a]]
				c[a].cre[s0], c[a].cre[s1] = cs[0], cs[1]
				c[a].ann[s0], c[a].ann[s1] = as[0], as[1]
				ms += cs[0] - cs[1] - (as[0] - as[1])
			}
			if ms == 0 {
				out = append(out, c)
			}
			if !odometer(nc, creSplit) {
				break
			}
		}
		if !odometer(na, annSplit) {
			break
		}
	}
	return out
}

// odometer advances counter over the choice lists, first digit fastest, and
// reports false after the last combination.
func odometer(counter []int, choices [][][2]int) bool {
	for a := range counter {
		if counter[a] < len(choices[a])-1 {
			counter[a]++
			return true
		}
		counter[a] = 0
	}
	return false
}

// ============================================================
// Composite contractions
// ============================================================

// compositeContractions enumerates, by backtracking, every multiset of
// elementary contractions that fits the operators and leaves a number of
// uncontracted operators inside [minRank, maxRank]. Each result lists
// elementary contraction ids in non-decreasing order.
func compositeContractions(ops OperatorProduct, el []ElementaryContraction, minRank, maxRank int) [][]int {
	free := make([]GraphMatrix, len(ops))
	for k, o := range ops {
		free[k] = o.Graph
	}
	var out [][]int
	var chosen []int
	var backtrack func()
	backtrack = func() {
		nfree := 0
		for _, g := range free {
			nfree += g.NumOps()
		}
		if nfree >= minRank && nfree <= maxRank {
			out = append(out, append([]int(nil), chosen...))
		}
		start := 0
		if len(chosen) > 0 {
			start = chosen[len(chosen)-1]
		}
		for c := start; c < len(el); c++ {
			fits := true
			for a := range free {
				if !free[a].Fits(el[c][a]) {
					fits = false
					break
				}
			}
			if !fits {
				continue
			}
			chosen = append(chosen, c)
			for a := range free {
				free[a] = free[a].Sub(el[c][a])
			}
			backtrack()
			for a := range free {
				free[a] = free[a].Add(el[c][a])
			}
			chosen = chosen[:len(chosen)-1]
		}
	}
	backtrack()
	return out
}
