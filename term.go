package gowick

import (
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// SymbolicTerm and Term
// ============================================================

// SymbolicTerm is a product of tensors times a string of second-quantized
// operators. NormalOrdered marks operator strings written inside braces.
type SymbolicTerm struct {
	NormalOrdered bool
	Ops           []SQOperator
	Tensors       []Tensor
}

// NewSymbolicTerm copies its arguments.
func NewSymbolicTerm(normalOrdered bool, ops []SQOperator, tensors []Tensor) SymbolicTerm {
	t := SymbolicTerm{NormalOrdered: normalOrdered, Ops: append([]SQOperator(nil), ops...)}
	for _, x := range tensors {
		t.Tensors = append(t.Tensors, x.clone())
	}
	return t
}

func (t SymbolicTerm) clone() SymbolicTerm { return NewSymbolicTerm(t.NormalOrdered, t.Ops, t.Tensors) }

// Compare orders by the tensor list and then by the operator string.
func (t SymbolicTerm) Compare(o SymbolicTerm) int {
	if c := compareTensors(t.Tensors, o.Tensors); c != 0 {
		return c
	}
	return compareSQOps(t.Ops, o.Ops)
}

func (t SymbolicTerm) Equal(o SymbolicTerm) bool { return t.Compare(o) == 0 }

// Mul concatenates tensors and operators. Labeled normal-ordered factors
// cannot be multiplied.
func (t SymbolicTerm) Mul(o SymbolicTerm) (SymbolicTerm, error) {
	if t.NormalOrdered || o.NormalOrdered {
		return SymbolicTerm{}, newError(ErrInvalidState, "SymbolicTerm.Mul", "product of normal-ordered terms")
	}
	r := t.clone()
	r.Ops = append(r.Ops, o.Ops...)
	for _, x := range o.Tensors {
		r.Tensors = append(r.Tensors, x.clone())
	}
	return r, nil
}

// Adjoint reverses the operator string and swaps tensor index lists.
func (t SymbolicTerm) Adjoint() SymbolicTerm {
	r := SymbolicTerm{NormalOrdered: t.NormalOrdered}
	for _, x := range t.Tensors {
		r.Tensors = append(r.Tensors, x.Adjoint())
	}
	for k := len(t.Ops) - 1; k >= 0; k-- {
		r.Ops = append(r.Ops, t.Ops[k].Adjoint())
	}
	return r
}

func (t *SymbolicTerm) Reindex(m map[Index]Index) {
	for k := range t.Tensors {
		t.Tensors[k].reindex(m)
	}
	for k, o := range t.Ops {
		if j, ok := m[o.Index]; ok {
			t.Ops[k].Index = j
		}
	}
}

// IsVacuumNormalOrdered reports whether the operator string is already in
// canonical order.
func (t SymbolicTerm) IsVacuumNormalOrdered() bool {
	return sort.SliceIsSorted(t.Ops, func(a, b int) bool { return t.Ops[a].Less(t.Ops[b]) })
}

func (t SymbolicTerm) isCreationThenAnnihilation() bool {
	for k := 1; k < len(t.Ops); k++ {
		if t.Ops[k].IsCreation() && !t.Ops[k-1].IsCreation() {
			return false
		}
	}
	return true
}

// key identifies a term up to the flags that do not take part in equality.
func (t SymbolicTerm) key() string {
	var b strings.Builder
	writeIdx := func(idx []Index) {
		for _, i := range idx {
			b.WriteString(strconv.Itoa(i.Space))
			b.WriteByte('.')
			b.WriteString(strconv.Itoa(i.Pos))
			b.WriteByte(',')
		}
	}
	for _, x := range t.Tensors {
		b.WriteString(x.Label)
		b.WriteByte('_')
		writeIdx(x.Lower)
		b.WriteByte('^')
		writeIdx(x.Upper)
		b.WriteByte(';')
	}
	b.WriteByte('|')
	for _, o := range t.Ops {
		if o.IsCreation() {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
		if o.Field == Boson {
			b.WriteByte('b')
		}
		writeIdx([]Index{o.Index})
	}
	return b.String()
}

func (c *SpaceContext) FormatSymbolicTerm(t SymbolicTerm) string {
	parts := make([]string, 0, len(t.Tensors)+len(t.Ops)+2)
	for _, x := range t.Tensors {
		parts = append(parts, c.FormatTensor(x))
	}
	if len(t.Ops) > 0 {
		if t.NormalOrdered {
			parts = append(parts, "{")
		}
		for _, o := range t.Ops {
			parts = append(parts, c.FormatSQOp(o))
		}
		if t.NormalOrdered {
			parts = append(parts, "}")
		}
	}
	return strings.Join(parts, " ")
}

// SymbolicTermLaTeX collapses a creation-then-annihilation string into a
// single \hat{a}^{...}_{...} symbol.
func (c *SpaceContext) SymbolicTermLaTeX(t SymbolicTerm) string {
	parts := make([]string, 0, len(t.Tensors)+3)
	for _, x := range t.Tensors {
		parts = append(parts, c.TensorLaTeX(x))
	}
	if len(t.Ops) > 0 {
		if t.NormalOrdered {
			parts = append(parts, `\{`)
		}
		if t.isCreationThenAnnihilation() {
			var cre, ann []string
			for _, o := range t.Ops {
				if o.IsCreation() {
					cre = append(cre, c.IndexLaTeX(o.Index))
				} else {
					ann = append([]string{c.IndexLaTeX(o.Index)}, ann...)
				}
			}
			parts = append(parts, `\hat{a}^{`+strings.Join(cre, " ")+"}_{"+strings.Join(ann, " ")+"}")
		} else {
			for _, o := range t.Ops {
				parts = append(parts, c.SQOpLaTeX(o))
			}
		}
		if t.NormalOrdered {
			parts = append(parts, `\}`)
		}
	}
	return strings.Join(parts, " ")
}

// ============================================================
// Canonicalization
// ============================================================

type connection struct {
	label  string
	counts [MaxSpaces]int
}

func compareConnections(a, b []connection) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := strings.Compare(a[k].label, b[k].label); c != 0 {
			return c
		}
		if c := compareCounts(a[k].counts, b[k].counts); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}

// connectivity lists, for every other tensor, how many of x's upper (or
// lower) indices it carries on the opposite side, per space.
func (t SymbolicTerm) connectivity(x Tensor, upper bool) []connection {
	mine := x.Lower
	if upper {
		mine = x.Upper
	}
	set := make(map[Index]bool, len(mine))
	for _, i := range mine {
		set[i] = true
	}
	var out []connection
	for _, y := range t.Tensors {
		if y.Equal(x) {
			continue
		}
		theirs := y.Upper
		if upper {
			theirs = y.Lower
		}
		var common []Index
		seen := map[Index]bool{}
		for _, i := range theirs {
			if set[i] && !seen[i] {
				common = append(common, i)
				seen[i] = true
			}
		}
		out = append(out, connection{label: y.Label, counts: indexCounts(common)})
	}
	sort.Slice(out, func(a, b int) bool {
		if c := strings.Compare(out[a].label, out[b].label); c != 0 {
			return c < 0
		}
		return compareCounts(out[a].counts, out[b].counts) < 0
	})
	return out
}

// slotRef locates one occurrence of an index: a tensor slot group
// (kind 0, tensor position, side), an operator (kind 1, OpKind) or
// nowhere (kind 2).
type slotRef struct {
	kind, pos, side int
}

func compareSlotRefs(a, b slotRef) int {
	if c := cmpInt(a.kind, b.kind); c != 0 {
		return c
	}
	if c := cmpInt(a.pos, b.pos); c != 0 {
		return c
	}
	return cmpInt(a.side, b.side)
}

type tensorScore struct {
	label     string
	rank      int
	numLower  [MaxSpaces]int
	numUpper  [MaxSpaces]int
	lowerConn []connection
	upperConn []connection
	tensor    Tensor
}

func compareScores(a, b tensorScore) int {
	if c := strings.Compare(a.label, b.label); c != 0 {
		return c
	}
	if c := cmpInt(a.rank, b.rank); c != 0 {
		return c
	}
	if c := compareCounts(a.numLower, b.numLower); c != 0 {
		return c
	}
	if c := compareCounts(a.numUpper, b.numUpper); c != 0 {
		return c
	}
	if c := compareConnections(a.lowerConn, b.lowerConn); c != 0 {
		return c
	}
	if c := compareConnections(a.upperConn, b.upperConn); c != 0 {
		return c
	}
	return a.tensor.Compare(b.tensor)
}

// Canonicalize brings the term to canonical form in place and returns the
// sign picked up on the way. Tensors are ordered by a structural score,
// indices are renumbered (operator indices first, then summed indices, per
// space), and tensor index lists and the operator string are sorted.
func (t *SymbolicTerm) Canonicalize() int {
	scores := make([]tensorScore, len(t.Tensors))
	for k, x := range t.Tensors {
		scores[k] = tensorScore{
			label:     x.Label,
			rank:      x.Rank(),
			numLower:  indexCounts(x.Lower),
			numUpper:  indexCounts(x.Upper),
			lowerConn: t.connectivity(x, false),
			upperConn: t.connectivity(x, true),
			tensor:    x,
		}
	}
	sort.SliceStable(scores, func(a, b int) bool { return compareScores(scores[a], scores[b]) < 0 })
	for k := range scores {
		t.Tensors[k] = scores[k].tensor
	}

	var sqopCount, tensCount [MaxSpaces]int
	isOp := map[Index]bool{}
	for _, o := range t.Ops {
		tensCount[o.Index.Space]++
		isOp[o.Index] = true
	}
	occ := map[Index][]slotRef{}
	for k, x := range t.Tensors {
		for _, i := range x.Lower {
			occ[i] = append(occ[i], slotRef{kind: 0, pos: k, side: 0})
		}
		for _, i := range x.Upper {
			occ[i] = append(occ[i], slotRef{kind: 0, pos: k, side: 1})
		}
	}
	for _, o := range t.Ops {
		occ[o.Index] = append(occ[o.Index], slotRef{kind: 1, pos: int(o.Kind)})
	}
	partner := func(i Index, here slotRef) slotRef {
		for _, r := range occ[i] {
			if r != here {
				return r
			}
		}
		return slotRef{kind: 2}
	}

	relabel := map[Index]Index{}
	assign := func(i Index) {
		if _, ok := relabel[i]; ok {
			return
		}
		s := i.Space
		if isOp[i] {
			relabel[i] = Index{Space: s, Pos: sqopCount[s]}
			sqopCount[s]++
			return
		}
		relabel[i] = Index{Space: s, Pos: tensCount[s]}
		tensCount[s]++
	}
	// Indices sharing a sorted slot group are numbered by where their
	// other end sits, so relabelings that only permute such a group land
	// on the same key.
	assignGroup := func(idx []Index, here slotRef, sorted bool) {
		order := idx
		if sorted && len(idx) > 1 {
			order = append([]Index(nil), idx...)
			sort.SliceStable(order, func(a, b int) bool {
				return compareSlotRefs(partner(order[a], here), partner(order[b], here)) < 0
			})
		}
		for _, i := range order {
			assign(i)
		}
	}
	for k, x := range t.Tensors {
		sorted := x.Symmetry != Nonsymmetric
		assignGroup(x.Lower, slotRef{kind: 0, pos: k, side: 0}, sorted)
		assignGroup(x.Upper, slotRef{kind: 0, pos: k, side: 1}, sorted)
	}
	t.Reindex(relabel)

	sign := 1
	for k := range t.Tensors {
		sign *= t.Tensors[k].canonicalize()
	}
	return sign * sortSQOps(t.Ops)
}

// Term is a SymbolicTerm with a coefficient.
type Term struct {
	Coeff Rational
	SymbolicTerm
}

// Canonicalize folds the canonicalization sign into the coefficient.
func (t *Term) Canonicalize() {
	t.Coeff = t.Coeff.MulInt(int64(t.SymbolicTerm.Canonicalize()))
}

func (c *SpaceContext) FormatTerm(t Term) string {
	return joinCoeff(t.Coeff.Format(false), c.FormatSymbolicTerm(t.SymbolicTerm))
}

// joinCoeff places a formatted coefficient in front of a term body.
func joinCoeff(coeff, body string) string {
	if body == "" {
		if coeff == "" || coeff == "+" || coeff == "-" {
			return coeff + "1"
		}
		return coeff
	}
	if coeff == "" || coeff == "+" || coeff == "-" {
		return coeff + body
	}
	return coeff + " " + body
}
