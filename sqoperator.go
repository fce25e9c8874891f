package gowick

import (
	"sort"
	"strings"
)

// ============================================================
// Second-quantized operators
// ============================================================

type OpKind int

const (
	Creation OpKind = iota
	Annihilation
)

func (k OpKind) String() string {
	if k == Creation {
		return "creation"
	}
	return "annihilation"
}

// SQOperator is a single creation or annihilation operator.
type SQOperator struct {
	Kind  OpKind
	Field FieldType
	Index Index
}

// Cre and Ann build fermionic operators.
func Cre(i Index) SQOperator { return SQOperator{Kind: Creation, Field: Fermion, Index: i} }
func Ann(i Index) SQOperator { return SQOperator{Kind: Annihilation, Field: Fermion, Index: i} }

func (o SQOperator) IsCreation() bool { return o.Kind == Creation }

// Compare orders creators before annihilators, creators by ascending index
// and annihilators by descending index.
func (o SQOperator) Compare(p SQOperator) int {
	if o.IsCreation() != p.IsCreation() {
		if o.IsCreation() {
			return -1
		}
		return 1
	}
	if c := o.Index.Compare(p.Index); c != 0 {
		if o.IsCreation() {
			return c
		}
		return -c
	}
	return cmpInt(int(o.Field), int(p.Field))
}

func (o SQOperator) Less(p SQOperator) bool { return o.Compare(p) < 0 }

func (o SQOperator) Adjoint() SQOperator {
	if o.IsCreation() {
		o.Kind = Annihilation
	} else {
		o.Kind = Creation
	}
	return o
}

// CommutatorFactor is the sign picked up when o and p trade places.
func (o SQOperator) CommutatorFactor(p SQOperator) int {
	if o.Field == Fermion && p.Field == Fermion {
		return -1
	}
	return 1
}

// isQuasiCreation reports whether o creates a quasiparticle with respect to
// the reference: annihilators of occupied spaces, creators elsewhere.
func (t spaceTable) isQuasiCreation(o SQOperator) bool {
	if t.types[o.Index.Space] == Occupied {
		return !o.IsCreation()
	}
	return o.IsCreation()
}

// normalOrderedLess is Less with quasiparticle creation in place of
// creation.
func (t spaceTable) normalOrderedLess(a, b SQOperator) bool {
	qa, qb := t.isQuasiCreation(a), t.isQuasiCreation(b)
	if qa != qb {
		return qa
	}
	if qa {
		return a.Index.Less(b.Index)
	}
	return b.Index.Less(a.Index)
}

func (c *SpaceContext) FormatSQOp(o SQOperator) string {
	var b strings.Builder
	b.WriteString(o.Field.Symbol())
	if o.IsCreation() {
		b.WriteByte('+')
	} else {
		b.WriteByte('-')
	}
	b.WriteByte('(')
	b.WriteString(c.FormatIndex(o.Index))
	b.WriteByte(')')
	return b.String()
}

func (c *SpaceContext) SQOpLaTeX(o SQOperator) string {
	s := `\hat{` + o.Field.Symbol() + `}`
	if o.IsCreation() {
		s += "^"
	} else {
		s += "_"
	}
	return s + "{" + c.IndexLaTeX(o.Index) + "}"
}

func compareSQOps(a, b []SQOperator) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := a[k].Compare(b[k]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}

// sortSQOps sorts ops canonically and returns the sign of the reordering.
// Only exchanges of two fermions contribute.
func sortSQOps(ops []SQOperator) int {
	perm := identityPerm(len(ops))
	sort.SliceStable(perm, func(a, b int) bool { return ops[perm[a]].Less(ops[perm[b]]) })
	inv := 0
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] > perm[j] && ops[perm[i]].Field == Fermion && ops[perm[j]].Field == Fermion {
				inv++
			}
		}
	}
	sorted := make([]SQOperator, len(ops))
	for k, p := range perm {
		sorted[k] = ops[p]
	}
	copy(ops, sorted)
	if inv%2 == 0 {
		return 1
	}
	return -1
}
