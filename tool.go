package gowick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Session is the state shared by tool calls: one space registry and the
// engine contracting over it. Calls that change the registry are
// serialized against every other call.
type Session struct {
	mu      sync.RWMutex
	spaces  *SpaceContext
	opts    []Option
	theorem *WickTheorem
}

// NewSession starts with an empty registry. opts configure every engine
// the session creates.
func NewSession(opts ...Option) *Session {
	spaces := NewSpaceContext()
	return &Session{
		spaces:  spaces,
		opts:    opts,
		theorem: NewWickTheorem(spaces, opts...),
	}
}

func (s *Session) Spaces() *SpaceContext { return s.spaces }

// ToolSchemas lists the tools HandleToolCall understands.
func ToolSchemas() []ToolSchema {
	return append([]ToolSchema(nil), toolSpecs...)
}

// HandleToolCall runs req with a background context.
func (s *Session) HandleToolCall(req ToolRequest) ToolResponse {
	return s.HandleToolCallContext(context.Background(), req)
}

func (s *Session) HandleToolCallContext(ctx context.Context, req ToolRequest) ToolResponse {
	switch req.Tool {
	case "reset_space", "add_space":
		s.mu.Lock()
		defer s.mu.Unlock()
	default:
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	p := toolParams(req.Params)
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respondOps := func(e *OperatorExpression) ToolResponse {
		return ToolResponse{Result: operatorExpressionJSON(e), LaTeX: e.LaTeX(` \\ `), String: e.String()}
	}
	respondExpr := func(e *Expression) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: e.LaTeX(` \\ `), String: e.String()}
	}

	switch req.Tool {
	case "reset_space":
		s.spaces.Reset()
		return ToolResponse{Result: map[string]interface{}{"spaces": 0}, String: "spaces reset"}

	case "add_space":
		label, err := p.str("label")
		if err != nil {
			return fail(err)
		}
		typName, err := p.str("type")
		if err != nil {
			return fail(err)
		}
		typ, err := ParseSpaceType(typName)
		if err != nil {
			return fail(err)
		}
		field, err := ParseFieldType(p.optStr("field", "fermion"))
		if err != nil {
			return fail(err)
		}
		indices, err := p.strs("indices")
		if err != nil {
			return fail(err)
		}
		var parts []string
		if p.has("composite_of") {
			if parts, err = p.strs("composite_of"); err != nil {
				return fail(err)
			}
		}
		if err := s.spaces.AddSpace(label, field, typ, indices, parts...); err != nil {
			return fail(err)
		}
		return ToolResponse{Result: map[string]interface{}{"spaces": s.spaces.NumSpaces()}, String: s.spaces.String()}

	case "spaces":
		return ToolResponse{Result: s.spaces.ToMap(), String: s.spaces.String()}

	case "op":
		label, err := p.str("label")
		if err != nil {
			return fail(err)
		}
		components, err := p.strs("components")
		if err != nil {
			return fail(err)
		}
		e, err := s.spaces.Op(label, components, p.optBool("unique", false))
		if err != nil {
			return fail(err)
		}
		return respondOps(e)

	case "gen_op":
		label, err := p.str("label")
		if err != nil {
			return fail(err)
		}
		rank, err := p.integer("rank")
		if err != nil {
			return fail(err)
		}
		cre, err := p.str("cre")
		if err != nil {
			return fail(err)
		}
		ann, err := p.str("ann")
		if err != nil {
			return fail(err)
		}
		e, err := s.spaces.GenOp(label, rank, cre, ann, p.optBool("diagonal", false))
		if err != nil {
			return fail(err)
		}
		return respondOps(e)

	case "commutator":
		recipes, err := p.recipes("operators")
		if err != nil {
			return fail(err)
		}
		if len(recipes) < 2 {
			return fail(fmt.Errorf("commutator needs at least two operators"))
		}
		e, err := s.spaces.BuildRecipe(Recipe{Commutator: recipes}, nil)
		if err != nil {
			return fail(err)
		}
		return respondOps(e)

	case "bch_series":
		h, err := p.recipe("h")
		if err != nil {
			return fail(err)
		}
		t, err := p.recipe("t")
		if err != nil {
			return fail(err)
		}
		order, err := p.integer("order")
		if err != nil {
			return fail(err)
		}
		e, err := s.spaces.BuildRecipe(Recipe{BCH: &BCHSpec{H: h, T: t, Order: order}}, nil)
		if err != nil {
			return fail(err)
		}
		return respondOps(e)

	case "contract", "manybody_equations":
		expr, err := s.contract(ctx, p)
		if err != nil {
			return fail(err)
		}
		if req.Tool == "contract" {
			return respondExpr(expr)
		}
		label := p.optStr("label", "R")
		eqs := expr.ToManyBodyEquations(label)
		var lines, latex []string
		for _, key := range sortedEquationKeys(eqs) {
			for _, q := range eqs[key] {
				lines = append(lines, q.String())
				latex = append(latex, q.LaTeX())
			}
		}
		return ToolResponse{Result: EquationsToJSON(eqs), LaTeX: strings.Join(latex, ` \\ `), String: strings.Join(lines, "\n")}

	case "vacuum_normal_order":
		e, err := p.expression(s.spaces, "expression")
		if err != nil {
			return fail(err)
		}
		r, err := e.VacuumNormalOrdered(p.optBool("only_same_index", false))
		if err != nil {
			return fail(err)
		}
		return respondExpr(r)

	case "canonicalize":
		e, err := p.expression(s.spaces, "expression")
		if err != nil {
			return fail(err)
		}
		return respondExpr(e.Canonicalize())

	case "mcp_spec":
		return ToolResponse{String: MCPToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// contract builds the "expr" recipe and contracts it. Engine toggles in the
// request apply to this call only.
func (s *Session) contract(ctx context.Context, p toolParams) (*Expression, error) {
	r, err := p.recipe("expr")
	if err != nil {
		return nil, err
	}
	ops, err := s.spaces.BuildRecipe(r, nil)
	if err != nil {
		return nil, err
	}
	factor, err := ParseRational(p.optStr("factor", "1"))
	if err != nil {
		return nil, err
	}
	minRank, err := p.integer("min_rank")
	if err != nil {
		return nil, err
	}
	maxRank, err := p.integer("max_rank")
	if err != nil {
		return nil, err
	}
	w := s.theorem
	if p.has("canonicalize_graph") || p.has("inter_general") || p.has("max_cumulant") {
		base := s.theorem.config()
		w = NewWickTheorem(s.spaces, s.opts...)
		w.SetCanonicalizeGraph(p.optBool("canonicalize_graph", base.canonicalizeGraph))
		w.SetInterGeneral(p.optBool("inter_general", base.interGeneral))
		if p.has("max_cumulant") {
			n, err := p.integer("max_cumulant")
			if err != nil {
				return nil, err
			}
			if err := w.SetMaxCumulant(n); err != nil {
				return nil, err
			}
		}
	}
	return w.Contract(ctx, factor, ops, minRank, maxRank)
}

func sortedEquationKeys(eqs map[string][]Equation) []string {
	keys := make([]string, 0, len(eqs))
	for k := range eqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func operatorExpressionJSON(e *OperatorExpression) map[string]interface{} {
	terms := e.Terms()
	out := make([]interface{}, len(terms))
	for k, t := range terms {
		ops := make([]interface{}, len(t.Product))
		for i, o := range t.Product {
			ops[i] = e.ctx.FormatOperator(o)
		}
		out[k] = map[string]interface{}{"coeff": t.Coeff.String(), "operators": ops}
	}
	return map[string]interface{}{"type": "operator_expression", "terms": out}
}

// ============================================================
// Parameter access
// ============================================================

type toolParams map[string]interface{}

func (p toolParams) has(key string) bool { _, ok := p[key]; return ok }

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p toolParams) optStr(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

func (p toolParams) optBool(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

func (p toolParams) integer(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing param: %s", key)
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("param %s must be an integer", key)
	}
	return int(f), nil
}

func (p toolParams) strs(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	result := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be string", key, i)
		}
		result[i] = s
	}
	return result, nil
}

// decodeRecipe re-encodes a decoded JSON value and reads it strictly as a
// Recipe.
func decodeRecipe(v interface{}, into interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return newError(ErrParse, "decodeRecipe", "%v", err)
	}
	return nil
}

func (p toolParams) recipe(key string) (Recipe, error) {
	v, ok := p[key]
	if !ok {
		return Recipe{}, fmt.Errorf("missing param: %s", key)
	}
	var r Recipe
	if err := decodeRecipe(v, &r); err != nil {
		return Recipe{}, fmt.Errorf("param %s: %w", key, err)
	}
	return r, nil
}

func (p toolParams) recipes(key string) ([]Recipe, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	var r []Recipe
	if err := decodeRecipe(v, &r); err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return r, nil
}

// expression accepts either the text form or the object written by
// Expression.ToJSON.
func (p toolParams) expression(c *SpaceContext, key string) (*Expression, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	switch x := v.(type) {
	case string:
		return c.ParseExpression(x)
	case map[string]interface{}:
		return c.ExpressionFromJSON(x)
	}
	return nil, fmt.Errorf("param %s must be a string or expression object", key)
}

// ============================================================
// Tool schema
// ============================================================

// ToolSchema describes one tool's input. Properties map parameter names to
// JSON schema types.
type ToolSchema struct {
	Name        string
	Description string
	Required    []string
	Properties  map[string]string
}

var toolSpecs = []ToolSchema{
	{"reset_space", "Remove every orbital space", []string{}, map[string]string{}},
	{"add_space", "Register an orbital space. type: occupied|unoccupied|general|composite; field: fermion|boson",
		[]string{"label", "type", "indices"},
		map[string]string{"label": "string", "type": "string", "field": "string", "indices": "array", "composite_of": "array"}},
	{"spaces", "List registered spaces and their index labels", []string{}, map[string]string{}},
	{"op", "Build a diagrammatic operator from components such as \"v+ o\"", []string{"label", "components"},
		map[string]string{"label": "string", "components": "array", "unique": "boolean"}},
	{"gen_op", "Build every rank-body operator over the given creator and annihilator spaces", []string{"label", "rank", "cre", "ann"},
		map[string]string{"label": "string", "rank": "integer", "cre": "string", "ann": "string", "diagonal": "boolean"}},
	{"commutator", "Nested commutator of operator recipes", []string{"operators"}, map[string]string{"operators": "array"}},
	{"bch_series", "H + [H,T] + 1/2 [[H,T],T] + ... through order", []string{"h", "t", "order"},
		map[string]string{"h": "object", "t": "object", "order": "integer"}},
	{"contract", "Apply Wick's theorem to an operator recipe and keep terms with rank in [min_rank, max_rank]",
		[]string{"expr", "min_rank", "max_rank"},
		map[string]string{"expr": "object", "factor": "string", "min_rank": "integer", "max_rank": "integer",
			"canonicalize_graph": "boolean", "inter_general": "boolean", "max_cumulant": "integer"}},
	{"manybody_equations", "Contract an operator recipe and group the result into residual equations",
		[]string{"expr", "min_rank", "max_rank"},
		map[string]string{"expr": "object", "factor": "string", "min_rank": "integer", "max_rank": "integer", "label": "string",
			"canonicalize_graph": "boolean", "inter_general": "boolean", "max_cumulant": "integer"}},
	{"vacuum_normal_order", "Rewrite an expression in vacuum normal order", []string{"expression"},
		map[string]string{"expression": "string", "only_same_index": "boolean"}},
	{"canonicalize", "Bring every term of an expression to canonical form", []string{"expression"},
		map[string]string{"expression": "string"}},
	{"mcp_spec", "Return this tool schema", []string{}, map[string]string{}},
}

func MCPToolSpec() string {
	tools := make([]map[string]interface{}, len(toolSpecs))
	for k, t := range toolSpecs {
		tools[k] = ts(t.Name, t.Description, t.Required, t.Properties)
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
