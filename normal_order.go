package gowick

// ============================================================
// Vacuum normal ordering
// ============================================================

// VacuumNormalOrdered rewrites every term as a sum of terms whose operator
// strings are in canonical order, generating a Kronecker delta for each
// quasiparticle pair of one space that is moved past each other. With
// onlySameIndex set, only pairs carrying the same index contract.
func (e *Expression) VacuumNormalOrdered(onlySameIndex bool) (*Expression, error) {
	for _, en := range e.terms {
		if en.term.NormalOrdered {
			return nil, newError(ErrInvalidState, "VacuumNormalOrdered",
				"term %q is labeled normal ordered", e.ctx.FormatSymbolicTerm(en.term))
		}
	}
	tab := e.ctx.snapshot()
	r := NewExpression(e.ctx)
	for _, en := range e.terms {
		tab.normalOrder(en.term.clone(), en.coeff, onlySameIndex, r)
	}
	return r, nil
}

// IsVacuumNormalOrdered reports whether every term is in canonical order.
func (e *Expression) IsVacuumNormalOrdered() bool {
	for _, en := range e.terms {
		if !en.term.IsVacuumNormalOrdered() {
			return false
		}
	}
	return true
}

func (tab spaceTable) normalOrder(t SymbolicTerm, c Rational, onlySameIndex bool, out *Expression) {
	ops := t.Ops
	for i := 0; i+1 < len(ops); i++ {
		if ops[i] == ops[i+1] && ops[i].Field == Fermion {
			return
		}
	}
	pos := -1
	for i := 0; i+1 < len(ops); i++ {
		if ops[i+1].Less(ops[i]) {
			pos = i
			break
		}
	}
	if pos < 0 {
		out.Add(t, c)
		return
	}
	a, b := ops[pos], ops[pos+1]

	swapped := t.clone()
	swapped.Ops[pos], swapped.Ops[pos+1] = b, a
	tab.normalOrder(swapped, c.MulInt(int64(a.CommutatorFactor(b))), onlySameIndex, out)

	if tab.isQuasiCreation(a) == tab.isQuasiCreation(b) || a.Index.Space != b.Index.Space {
		return
	}
	same := a.Index == b.Index
	if onlySameIndex && !same {
		return
	}
	removed := SymbolicTerm{Tensors: t.clone().Tensors}
	removed.Ops = append(removed.Ops, ops[:pos]...)
	removed.Ops = append(removed.Ops, ops[pos+2:]...)
	if !same {
		// the creator of the pair carries the upper index
		upper, lower := a.Index, b.Index
		if b.IsCreation() {
			upper, lower = b.Index, a.Index
		}
		removed.Tensors = append(removed.Tensors, Tensor{
			Label:    "delta",
			Upper:    []Index{upper},
			Lower:    []Index{lower},
			Symmetry: Nonsymmetric,
		})
	}
	tab.normalOrder(removed, c, onlySameIndex, out)
}
