package gowick

import (
	"regexp"
	"strings"
)

// ============================================================
// Parsing
// ============================================================

var (
	sqopRe   = regexp.MustCompile(`([ab])([+-])\(([a-zA-Z]_?\d+)\)`)
	factorRe = regexp.MustCompile(`^([+-]?)(\d+(?:/\d+)?)?(?:\s+|$)`)
	signRe   = regexp.MustCompile(`^([+-])`)
)

// ParseTerm reads one line of the text form:
//
//	[<rational>] tensor... [{] op... [}]
//
// A bare sign may be glued to the first tensor ("-f^{o0}_{v0}"). Tensors are
// antisymmetric.
func (c *SpaceContext) ParseTerm(line string) (Term, error) {
	const op = "ParseTerm"
	s := strings.TrimSpace(line)
	coeff := RInt(1)
	if m := factorRe.FindStringSubmatch(s); m != nil && m[0] != "" {
		v, err := ParseRational(m[1] + m[2])
		if err != nil {
			return Term{}, err
		}
		coeff = v
		s = s[len(m[0]):]
	} else if m := signRe.FindStringSubmatch(s); m != nil {
		if m[1] == "-" {
			coeff = RInt(-1)
		}
		s = s[1:]
	}

	var t SymbolicTerm
	rest := s
	for _, m := range tensorRe.FindAllStringSubmatch(s, -1) {
		x, err := c.tensorFromMatch(m, Antisymmetric)
		if err != nil {
			return Term{}, err
		}
		t.Tensors = append(t.Tensors, x)
		rest = strings.Replace(rest, m[0], " ", 1)
	}
	for _, m := range sqopRe.FindAllStringSubmatch(rest, -1) {
		idx, err := c.ParseIndex(m[3])
		if err != nil {
			return Term{}, err
		}
		field := c.FieldType(idx.Space)
		if field.Symbol() != m[1] {
			return Term{}, newError(ErrParse, op, "operator %q does not match the statistics of its space", m[0])
		}
		kind := Creation
		if m[2] == "-" {
			kind = Annihilation
		}
		t.Ops = append(t.Ops, SQOperator{Kind: kind, Field: field, Index: idx})
		rest = strings.Replace(rest, m[0], " ", 1)
	}
	if strings.Contains(rest, "{") && strings.Contains(rest, "}") {
		t.NormalOrdered = true
		rest = strings.NewReplacer("{", " ", "}", " ").Replace(rest)
	}
	if strings.TrimSpace(rest) != "" {
		return Term{}, newError(ErrParse, op, "unexpected input %q in %q", strings.TrimSpace(rest), line)
	}
	return Term{Coeff: coeff, SymbolicTerm: t}, nil
}

// ParseExpression reads one term per non-empty line and sums them.
func (c *SpaceContext) ParseExpression(s string) (*Expression, error) {
	e := NewExpression(c)
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := c.ParseTerm(line)
		if err != nil {
			return nil, err
		}
		e.AddTerm(t)
	}
	return e, nil
}

// MustParseExpression panics on malformed input. It is meant for literals in
// tests and examples.
func (c *SpaceContext) MustParseExpression(s string) *Expression {
	e, err := c.ParseExpression(s)
	if err != nil {
		panic(err)
	}
	return e
}
