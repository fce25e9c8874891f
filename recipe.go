package gowick

import (
	"fmt"
	"strings"
)

// ============================================================
// Operator recipes
// ============================================================

// Recipe describes how to build an OperatorExpression. Exactly one of Ref,
// Op, GenOp, Sum, Product, Commutator and BCH is set; Factor, when
// non-empty, scales the result. Recipes decode from both YAML derivation
// files and JSON tool parameters.
type Recipe struct {
	Ref        string     `yaml:"ref,omitempty" json:"ref,omitempty"`
	Op         *OpSpec    `yaml:"op,omitempty" json:"op,omitempty"`
	GenOp      *GenOpSpec `yaml:"gen_op,omitempty" json:"gen_op,omitempty"`
	Sum        []Recipe   `yaml:"sum,omitempty" json:"sum,omitempty"`
	Product    []Recipe   `yaml:"product,omitempty" json:"product,omitempty"`
	Commutator []Recipe   `yaml:"commutator,omitempty" json:"commutator,omitempty"`
	BCH        *BCHSpec   `yaml:"bch,omitempty" json:"bch,omitempty"`
	Factor     string     `yaml:"factor,omitempty" json:"factor,omitempty"`
}

// OpSpec is the argument list of SpaceContext.Op.
type OpSpec struct {
	Label      string   `yaml:"label" json:"label" validate:"required"`
	Components []string `yaml:"components" json:"components" validate:"required,min=1"`
	Unique     bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// GenOpSpec is the argument list of SpaceContext.GenOp.
type GenOpSpec struct {
	Label    string `yaml:"label" json:"label" validate:"required"`
	Rank     int    `yaml:"rank" json:"rank" validate:"gte=0"`
	Cre      string `yaml:"cre" json:"cre"`
	Ann      string `yaml:"ann" json:"ann"`
	Diagonal bool   `yaml:"diagonal,omitempty" json:"diagonal,omitempty"`
}

// BCHSpec expands BCHSeries(H, T, Order).
type BCHSpec struct {
	H     Recipe `yaml:"h" json:"h"`
	T     Recipe `yaml:"t" json:"t"`
	Order int    `yaml:"order" json:"order" validate:"gte=0"`
}

func (r Recipe) kinds() []string {
	var k []string
	if r.Ref != "" {
		k = append(k, "ref")
	}
	if r.Op != nil {
		k = append(k, "op")
	}
	if r.GenOp != nil {
		k = append(k, "gen_op")
	}
	if r.Sum != nil {
		k = append(k, "sum")
	}
	if r.Product != nil {
		k = append(k, "product")
	}
	if r.Commutator != nil {
		k = append(k, "commutator")
	}
	if r.BCH != nil {
		k = append(k, "bch")
	}
	return k
}

// BuildRecipe evaluates r. Ref names resolve against named.
func (c *SpaceContext) BuildRecipe(r Recipe, named map[string]*OperatorExpression) (*OperatorExpression, error) {
	const op = "BuildRecipe"
	kinds := r.kinds()
	if len(kinds) != 1 {
		return nil, newError(ErrParse, op, "recipe must set exactly one of ref, op, gen_op, sum, product, commutator, bch (got %s)",
			strings.Join(kinds, ", "))
	}
	var (
		out *OperatorExpression
		err error
	)
	switch kinds[0] {
	case "ref":
		e, ok := named[r.Ref]
		if !ok {
			return nil, newError(ErrParse, op, "unknown operator %q", r.Ref)
		}
		out = e.Clone()
	case "op":
		out, err = c.Op(r.Op.Label, r.Op.Components, r.Op.Unique)
	case "gen_op":
		g := r.GenOp
		out, err = c.GenOp(g.Label, g.Rank, g.Cre, g.Ann, g.Diagonal)
	case "sum":
		out = NewOperatorExpression(c)
		for k, sub := range r.Sum {
			e, err := c.BuildRecipe(sub, named)
			if err != nil {
				return nil, fmt.Errorf("sum[%d]: %w", k, err)
			}
			out.AddExpression(e, RInt(1))
		}
	case "product", "commutator":
		list := r.Product
		if kinds[0] == "commutator" {
			list = r.Commutator
		}
		if len(list) == 0 {
			return nil, newError(ErrParse, op, "%s needs at least one factor", kinds[0])
		}
		parts := make([]*OperatorExpression, len(list))
		for k, sub := range list {
			if parts[k], err = c.BuildRecipe(sub, named); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", kinds[0], k, err)
			}
		}
		if kinds[0] == "commutator" {
			out = Commutator(parts[0], parts[1:]...)
		} else {
			out = parts[0]
			for _, p := range parts[1:] {
				out = out.Mul(p)
			}
		}
	case "bch":
		h, err := c.BuildRecipe(r.BCH.H, named)
		if err != nil {
			return nil, fmt.Errorf("bch.h: %w", err)
		}
		t, err := c.BuildRecipe(r.BCH.T, named)
		if err != nil {
			return nil, fmt.Errorf("bch.t: %w", err)
		}
		out, err = BCHSeries(h, t, r.BCH.Order)
		if err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	if r.Factor != "" {
		f, err := ParseRational(r.Factor)
		if err != nil {
			return nil, err
		}
		out = out.Scale(f)
	}
	return out, nil
}
