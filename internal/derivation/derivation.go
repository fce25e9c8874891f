// Package derivation reads YAML derivation files and runs them: declare the
// spaces, build the named operators and the expression, contract it, and
// group the result into residual equations.
//
// A derivation for the CCSD energy looks like
//
//	spaces:
//	  - {label: o, type: occupied, indices: [i, j, k, l, m, n]}
//	  - {label: v, type: unoccupied, indices: [a, b, c, d, e, f]}
//	operators:
//	  - {name: F, gen_op: {label: f, rank: 1, cre: ov, ann: ov, diagonal: true}}
//	  - {name: T2, op: {label: t, components: ["v+ v+ o o"]}}
//	expression: {product: [{ref: F}, {ref: T2}]}
//	min_rank: 0
//	max_rank: 0
package derivation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gowick"
)

// Space declares one orbital space.
type Space struct {
	Label       string   `yaml:"label" validate:"required,len=1,alpha"`
	Type        string   `yaml:"type" validate:"required,oneof=occupied unoccupied general composite"`
	Field       string   `yaml:"field" validate:"omitempty,oneof=fermion boson"`
	Indices     []string `yaml:"indices"`
	CompositeOf []string `yaml:"composite_of"`
}

// Named binds a recipe to a name later recipes can reference.
type Named struct {
	Name          string `yaml:"name" validate:"required"`
	gowick.Recipe `yaml:",inline"`
}

// Engine overrides the configured engine toggles for one derivation.
type Engine struct {
	CanonicalizeGraph *bool `yaml:"canonicalize_graph"`
	InterGeneral      *bool `yaml:"inter_general"`
	MaxCumulant       int   `yaml:"max_cumulant" validate:"gte=0,lte=6"`
}

type Derivation struct {
	Spaces     []Space       `yaml:"spaces" validate:"required,min=1,dive"`
	Operators  []Named       `yaml:"operators" validate:"dive"`
	Expression gowick.Recipe `yaml:"expression"`
	Factor     string        `yaml:"factor"`
	MinRank    int           `yaml:"min_rank" validate:"gte=0"`
	MaxRank    int           `yaml:"max_rank" validate:"gtefield=MinRank"`
	Label      string        `yaml:"label"`
	Engine     *Engine       `yaml:"engine"`
}

var validate = validator.New()

// Parse decodes and validates a derivation document.
func Parse(data []byte) (*Derivation, error) {
	var d Derivation
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse derivation: %w", err)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("invalid derivation: %w", err)
	}
	seen := map[string]bool{}
	for _, n := range d.Operators {
		if seen[n.Name] {
			return nil, fmt.Errorf("invalid derivation: operator %q defined twice", n.Name)
		}
		seen[n.Name] = true
	}
	return &d, nil
}

func Load(path string) (*Derivation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read derivation %s: %w", path, err)
	}
	return Parse(data)
}

// Declare registers the spaces on c, which is reset first.
func (d *Derivation) Declare(c *gowick.SpaceContext) error {
	c.Reset()
	for _, s := range d.Spaces {
		typ, err := gowick.ParseSpaceType(s.Type)
		if err != nil {
			return err
		}
		field, err := gowick.ParseFieldType(s.Field)
		if err != nil {
			return err
		}
		if err := c.AddSpace(s.Label, field, typ, s.Indices, s.CompositeOf...); err != nil {
			return fmt.Errorf("space %q: %w", s.Label, err)
		}
	}
	return nil
}

// Build evaluates the named operators in order and then the expression.
func (d *Derivation) Build(c *gowick.SpaceContext) (*gowick.OperatorExpression, error) {
	named := map[string]*gowick.OperatorExpression{}
	for _, n := range d.Operators {
		e, err := c.BuildRecipe(n.Recipe, named)
		if err != nil {
			return nil, fmt.Errorf("operator %q: %w", n.Name, err)
		}
		named[n.Name] = e
	}
	e, err := c.BuildRecipe(d.Expression, named)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	return e, nil
}

// Result is the outcome of a derivation run.
type Result struct {
	Spaces     *gowick.SpaceContext
	Operators  *gowick.OperatorExpression
	Expression *gowick.Expression
	Equations  map[string][]gowick.Equation
	Stats      gowick.Stats
}

// Run declares, builds and contracts d on a fresh registry. opts configure
// the engine before the derivation's own overrides apply.
func Run(ctx context.Context, d *Derivation, opts ...gowick.Option) (*Result, error) {
	spaces := gowick.NewSpaceContext()
	if err := d.Declare(spaces); err != nil {
		return nil, err
	}
	ops, err := d.Build(spaces)
	if err != nil {
		return nil, err
	}
	factor := gowick.RInt(1)
	if d.Factor != "" {
		if factor, err = gowick.ParseRational(d.Factor); err != nil {
			return nil, err
		}
	}
	w := gowick.NewWickTheorem(spaces, opts...)
	if e := d.Engine; e != nil {
		if e.CanonicalizeGraph != nil {
			w.SetCanonicalizeGraph(*e.CanonicalizeGraph)
		}
		if e.InterGeneral != nil {
			w.SetInterGeneral(*e.InterGeneral)
		}
		if e.MaxCumulant > 0 {
			if err := w.SetMaxCumulant(e.MaxCumulant); err != nil {
				return nil, err
			}
		}
	}
	expr, err := w.Contract(ctx, factor, ops, d.MinRank, d.MaxRank)
	if err != nil {
		return nil, err
	}
	label := d.Label
	if label == "" {
		label = "R"
	}
	return &Result{
		Spaces:     spaces,
		Operators:  ops,
		Expression: expr,
		Equations:  expr.ToManyBodyEquations(label),
		Stats:      w.Stats(),
	}, nil
}

// Render formats the result as "text", "latex" or "json".
func (r *Result) Render(format string) (string, error) {
	keys := make([]string, 0, len(r.Equations))
	for k := range r.Equations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch format {
	case "", "text":
		var b strings.Builder
		b.WriteString(r.Expression.String())
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n# %s\n", k)
			for _, q := range r.Equations[k] {
				b.WriteString(q.String())
				b.WriteByte('\n')
			}
		}
		return b.String(), nil
	case "latex":
		var lines []string
		for _, k := range keys {
			for _, q := range r.Equations[k] {
				lines = append(lines, q.LaTeX())
			}
		}
		return r.Expression.LaTeX(" \\\\\n") + "\n\n" + strings.Join(lines, " \\\\\n") + "\n", nil
	case "json":
		exprJSON, err := r.Expression.ToJSON()
		if err != nil {
			return "", err
		}
		b, err := json.MarshalIndent(map[string]interface{}{
			"expression": json.RawMessage(exprJSON),
			"equations":  gowick.EquationsToJSON(r.Equations),
		}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	}
	return "", fmt.Errorf("unknown format %q (want text, latex or json)", format)
}
