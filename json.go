package gowick

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

func (c *SpaceContext) indicesToJSON(idx []Index) []interface{} {
	out := make([]interface{}, len(idx))
	for k, i := range idx {
		out[k] = c.FormatIndex(i)
	}
	return out
}

func (c *SpaceContext) tensorToJSON(t Tensor) map[string]interface{} {
	return map[string]interface{}{
		"label":    t.Label,
		"lower":    c.indicesToJSON(t.Lower),
		"upper":    c.indicesToJSON(t.Upper),
		"symmetry": t.Symmetry.String(),
	}
}

func (c *SpaceContext) symbolicTermToJSON(t SymbolicTerm) map[string]interface{} {
	tensors := make([]interface{}, len(t.Tensors))
	for k, x := range t.Tensors {
		tensors[k] = c.tensorToJSON(x)
	}
	ops := make([]interface{}, len(t.Ops))
	for k, o := range t.Ops {
		ops[k] = c.FormatSQOp(o)
	}
	return map[string]interface{}{
		"tensors":        tensors,
		"ops":            ops,
		"normal_ordered": t.NormalOrdered,
	}
}

func (e *Expression) toJSON() map[string]interface{} {
	terms := e.Terms()
	out := make([]interface{}, len(terms))
	for k, t := range terms {
		m := e.ctx.symbolicTermToJSON(t.SymbolicTerm)
		m["coeff"] = t.Coeff.String()
		out[k] = m
	}
	return map[string]interface{}{"type": "expression", "terms": out}
}

// ToJSON encodes the expression as {"type":"expression","terms":[...]} with
// terms in canonical order.
func (e *Expression) ToJSON() (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ExpressionFromJSON decodes the object written by ToJSON. Numbers decoded
// by encoding/json are accepted as coefficients.
func (c *SpaceContext) ExpressionFromJSON(data map[string]interface{}) (*Expression, error) {
	const op = "ExpressionFromJSON"
	if data == nil {
		return nil, newError(ErrParse, op, "expression must be an object")
	}
	if typ, _ := data["type"].(string); typ != "expression" {
		return nil, newError(ErrParse, op, "field 'type' must be \"expression\"")
	}
	raw, ok := data["terms"].([]interface{})
	if !ok {
		return nil, newError(ErrParse, op, "field 'terms' must be an array")
	}
	e := NewExpression(c)
	for k, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, newError(ErrParse, op, "terms[%d] must be an object", k)
		}
		t, err := c.termFromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("terms[%d]: %w", k, err)
		}
		e.AddTerm(t)
	}
	return e, nil
}

func (c *SpaceContext) termFromJSON(m map[string]interface{}) (Term, error) {
	const op = "ExpressionFromJSON"
	coeff := RInt(1)
	switch v := m["coeff"].(type) {
	case nil:
	case string:
		r, err := ParseRational(v)
		if err != nil {
			return Term{}, err
		}
		coeff = r
	case float64:
		if v != float64(int64(v)) {
			return Term{}, newError(ErrParse, op, "numeric coeff %v must be an integer; use \"p/q\"", v)
		}
		coeff = RInt(int64(v))
	default:
		return Term{}, newError(ErrParse, op, "coeff must be a string or number")
	}

	var t SymbolicTerm
	t.NormalOrdered, _ = m["normal_ordered"].(bool)
	tensors, _ := m["tensors"].([]interface{})
	for k, raw := range tensors {
		tm, ok := raw.(map[string]interface{})
		if !ok {
			return Term{}, newError(ErrParse, op, "tensors[%d] must be an object", k)
		}
		x, err := c.tensorFromJSON(tm)
		if err != nil {
			return Term{}, err
		}
		t.Tensors = append(t.Tensors, x)
	}
	ops, _ := m["ops"].([]interface{})
	for k, raw := range ops {
		s, ok := raw.(string)
		if !ok {
			return Term{}, newError(ErrParse, op, "ops[%d] must be a string", k)
		}
		parsed, err := c.ParseTerm(s)
		if err != nil {
			return Term{}, err
		}
		if len(parsed.Ops) != 1 || len(parsed.Tensors) != 0 {
			return Term{}, newError(ErrParse, op, "ops[%d] %q is not a single operator", k, s)
		}
		t.Ops = append(t.Ops, parsed.Ops[0])
	}
	return Term{Coeff: coeff, SymbolicTerm: t}, nil
}

func (c *SpaceContext) tensorFromJSON(m map[string]interface{}) (Tensor, error) {
	const op = "ExpressionFromJSON"
	label, _ := m["label"].(string)
	if label == "" {
		return Tensor{}, newError(ErrParse, op, "tensor label must be a non-empty string")
	}
	sym := Antisymmetric
	if s, ok := m["symmetry"].(string); ok {
		var err error
		if sym, err = ParseSymmetry(s); err != nil {
			return Tensor{}, err
		}
	}
	indices := func(field string) ([]Index, error) {
		raw, _ := m[field].([]interface{})
		out := make([]Index, 0, len(raw))
		for k, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, newError(ErrParse, op, "%s.%s[%d] must be a string", label, field, k)
			}
			i, err := c.ParseIndex(s)
			if err != nil {
				return nil, err
			}
			out = append(out, i)
		}
		return out, nil
	}
	lower, err := indices("lower")
	if err != nil {
		return Tensor{}, err
	}
	upper, err := indices("upper")
	if err != nil {
		return Tensor{}, err
	}
	return NewTensor(label, lower, upper, sym), nil
}

func (q Equation) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"lhs":    q.ctx.tensorToJSON(q.LHS),
		"rhs":    q.ctx.symbolicTermToJSON(q.RHS),
		"factor": q.Factor.String(),
		"string": q.String(),
	}
}

// EquationsToJSON encodes the result of ToManyBodyEquations.
func EquationsToJSON(eqs map[string][]Equation) map[string]interface{} {
	out := make(map[string]interface{}, len(eqs))
	for k, list := range eqs {
		encoded := make([]interface{}, len(list))
		for i, q := range list {
			encoded[i] = q.toJSON()
		}
		out[k] = encoded
	}
	return out
}
