package gowick_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gowick"
)

// ============================================================
// Orbital spaces
// ============================================================

func TestAddSpace(t *testing.T) {
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "c", gowick.Occupied, []string{"m", "n"})
	mustAdd(t, c, "a", gowick.General, []string{"u", "v", "w", "x", "y", "z"})
	mustAdd(t, c, "v", gowick.Unoccupied, []string{"e", "f"})
	mustAdd(t, c, "h", gowick.Composite, []string{"i", "j", "k", "l"}, "c", "a")
	mustAdd(t, c, "p", gowick.Composite, []string{"a", "b", "c", "d"}, "a", "v")

	if c.NumSpaces() != 5 {
		t.Errorf("want 5 spaces, got %d", c.NumSpaces())
	}
	assert.Equal(t, []string{"c", "a", "v", "h", "p"}, c.Labels())
	assert.Equal(t, []int{3, 4}, c.IndicesOfType(gowick.Composite))
	assert.Equal(t, []string{"e", "f"}, c.ToMap()["v"])

	h := c.Space(3)
	assert.Equal(t, []int{0, 1}, h.Constituent)
	if !strings.Contains(c.String(), "h fermion composite {i,j,k,l} = c+a") {
		t.Errorf("unexpected listing:\n%s", c)
	}
}

func TestAddSpace_Errors(t *testing.T) {
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "o", gowick.Occupied, []string{"i", "j"})

	tests := []struct {
		name        string
		label       string
		typ         gowick.SpaceType
		indices     []string
		compositeOf []string
		want        error
	}{
		{"duplicate label", "o", gowick.Occupied, []string{"k"}, nil, gowick.ErrDuplicateSpace},
		{"duplicate index", "v", gowick.Unoccupied, []string{"i"}, nil, gowick.ErrDuplicateSpace},
		{"repeated index", "v", gowick.Unoccupied, []string{"a", "a"}, nil, gowick.ErrDuplicateSpace},
		{"long label", "vv", gowick.Unoccupied, []string{"a"}, nil, gowick.ErrParse},
		{"unknown constituent", "p", gowick.Composite, []string{"p"}, []string{"x"}, gowick.ErrUnknownSpace},
		{"composite without constituents", "p", gowick.Composite, []string{"p"}, nil, gowick.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddSpace(tt.label, gowick.Fermion, tt.typ, tt.indices, tt.compositeOf...)
			if !errors.Is(err, tt.want) {
				t.Errorf("want %v, got %v", tt.want, err)
			}
		})
	}
	if c.NumSpaces() != 1 {
		t.Errorf("failed declarations must not register, got %d spaces", c.NumSpaces())
	}
}

func TestAddSpace_TooMany(t *testing.T) {
	c := gowick.NewSpaceContext()
	var err error
	for k := 0; k <= gowick.MaxSpaces; k++ {
		err = c.AddSpace(string(rune('A'+k)), gowick.Fermion, gowick.General, nil)
	}
	if !errors.Is(err, gowick.ErrRankNotSupported) {
		t.Errorf("want ErrRankNotSupported, got %v", err)
	}
}

func TestReset(t *testing.T) {
	c := ccSpaces(t)
	c.Reset()
	if c.NumSpaces() != 0 {
		t.Errorf("want 0 spaces after Reset, got %d", c.NumSpaces())
	}
	mustAdd(t, c, "o", gowick.Occupied, []string{"i"})
}

func TestParseSpaceType(t *testing.T) {
	for _, s := range []string{"occupied", "unoccupied", "general", "composite"} {
		typ, err := gowick.ParseSpaceType(s)
		require.NoError(t, err)
		assert.Equal(t, s, typ.String())
	}
	if _, err := gowick.ParseSpaceType("full"); !gowick.IsParse(err) {
		t.Errorf("want parse error, got %v", err)
	}
	if _, err := gowick.ParseFieldType("photon"); !gowick.IsParse(err) {
		t.Errorf("want parse error, got %v", err)
	}
}

// ============================================================
// Errors
// ============================================================

func TestErrorClasses(t *testing.T) {
	c := gowick.NewSpaceContext()
	_, err := c.LabelToSpace("q")
	assert.True(t, gowick.IsDeclaration(err))
	assert.True(t, errors.Is(err, gowick.ErrUnknownSpace))
	assert.Equal(t, gowick.ClassDeclaration, gowick.ClassOf(err))
	assert.Contains(t, err.Error(), "LabelToSpace")

	var we *gowick.Error
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "LabelToSpace", we.Op)

	assert.Equal(t, gowick.ClassUnknown, gowick.ClassOf(errors.New("other")))
	assert.Equal(t, gowick.ClassUnknown, gowick.ClassOf(nil))
	assert.False(t, gowick.IsParse(nil))
	assert.Equal(t, "capability", gowick.ClassCapability.String())
}

// ============================================================
// Indices
// ============================================================

func indexSpaces(t *testing.T) *gowick.SpaceContext {
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "o", gowick.Occupied, []string{"i", "j", "k"})
	mustAdd(t, c, "a", gowick.General, []string{"u", "v"})
	mustAdd(t, c, "v", gowick.Unoccupied, []string{"a", "b", "c"})
	return c
}

func TestIndex(t *testing.T) {
	c := indexSpaces(t)

	i, err := c.ParseIndex("o0")
	require.NoError(t, err)
	assert.Equal(t, gowick.Index{Space: 0, Pos: 0}, i)
	if got := c.IndexLaTeX(i); got != "i" {
		t.Errorf("want i, got %s", got)
	}

	j, err := c.ParseIndex("a_10")
	require.NoError(t, err)
	if got := c.FormatIndex(j); got != "a10" {
		t.Errorf("want a10, got %s", got)
	}
	if got := c.IndexLaTeX(j); got != "a_{10}" {
		t.Errorf("want a_{10}, got %s", got)
	}

	if !i.Less(j) {
		t.Error("o0 should order before a10")
	}
	for _, bad := range []string{"0", "oo", "q1", ""} {
		if _, err := c.ParseIndex(bad); err == nil {
			t.Errorf("ParseIndex(%q): want error", bad)
		}
	}
}

// ============================================================
// Second-quantized operators
// ============================================================

func TestSQOperator(t *testing.T) {
	c := gowick.NewSpaceContext()
	mustAdd(t, c, "c", gowick.Occupied, []string{"i", "j"})
	require.NoError(t, c.AddSpace("p", gowick.Boson, gowick.Unoccupied, []string{"w"}))

	c0 := gowick.Index{Space: 0, Pos: 0}
	c1 := gowick.Index{Space: 0, Pos: 1}
	if got := c.FormatSQOp(gowick.Cre(c0)); got != "a+(c0)" {
		t.Errorf("want a+(c0), got %s", got)
	}
	boson := gowick.SQOperator{Kind: gowick.Creation, Field: gowick.Boson, Index: gowick.Index{Space: 1}}
	if got := c.FormatSQOp(boson); got != "b+(p0)" {
		t.Errorf("want b+(p0), got %s", got)
	}

	if !gowick.Cre(c0).Less(gowick.Ann(c0)) {
		t.Error("creators order before annihilators")
	}
	if !gowick.Cre(c0).Less(gowick.Cre(c1)) {
		t.Error("creators order by ascending index")
	}
	if !gowick.Ann(c1).Less(gowick.Ann(c0)) {
		t.Error("annihilators order by descending index")
	}
	if gowick.Cre(c0).Adjoint() != gowick.Ann(c0) {
		t.Error("adjoint of a creator is an annihilator")
	}
	assert.Equal(t, -1, gowick.Cre(c0).CommutatorFactor(gowick.Ann(c1)))
	assert.Equal(t, 1, boson.CommutatorFactor(gowick.Ann(c1)))
}

// ============================================================
// Tensors and terms
// ============================================================

func TestTensor(t *testing.T) {
	c := indexSpaces(t)
	o0 := gowick.Index{Space: 0, Pos: 0}
	a0 := gowick.Index{Space: 1, Pos: 0}
	a1 := gowick.Index{Space: 1, Pos: 1}
	v0 := gowick.Index{Space: 2, Pos: 0}
	v1 := gowick.Index{Space: 2, Pos: 1}

	x := gowick.NewTensor("T", []gowick.Index{v0, a0}, []gowick.Index{o0, a1}, gowick.Antisymmetric)
	if got := c.FormatTensor(x); got != "T^{o0,a1}_{v0,a0}" {
		t.Errorf("want T^{o0,a1}_{v0,a0}, got %s", got)
	}
	if got := c.TensorLaTeX(x); got != "T^{i v}_{a u}" {
		t.Errorf("want T^{i v}_{a u}, got %s", got)
	}
	if got := x.SymmetryFactor(); got != 1 {
		t.Errorf("want 1, got %d", got)
	}

	y := gowick.NewTensor("T", []gowick.Index{v0, v1}, []gowick.Index{a0, a1}, gowick.Antisymmetric)
	if got := y.SymmetryFactor(); got != 4 {
		t.Errorf("want 4, got %d", got)
	}
	adj := y.Adjoint()
	assert.Equal(t, y.Upper, adj.Lower)

	g := gowick.NewTensor("lambda2", nil, []gowick.Index{o0}, gowick.Antisymmetric)
	if got := c.TensorLaTeX(g); got != `\lambda^{i}_{}` {
		t.Errorf("want \\lambda^{i}_{}, got %s", got)
	}

	parsed, err := c.ParseTensor("T^{o0,a1}_{v0,a0}", gowick.Antisymmetric)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(x))
	if _, err := c.ParseTensor("T^{o0}", gowick.Antisymmetric); !gowick.IsParse(err) {
		t.Errorf("want parse error, got %v", err)
	}
}

func TestTerm(t *testing.T) {
	c := ccSpaces(t)
	o0 := gowick.Index{Space: 0, Pos: 0}
	v0 := gowick.Index{Space: 1, Pos: 0}

	x := gowick.NewTensor("T", []gowick.Index{v0}, []gowick.Index{o0}, gowick.Antisymmetric)
	st := gowick.NewSymbolicTerm(true, []gowick.SQOperator{gowick.Cre(v0), gowick.Ann(o0)}, []gowick.Tensor{x})
	term := gowick.Term{Coeff: gowick.R(1, 2), SymbolicTerm: st}
	if got := c.FormatTerm(term); got != "1/2 T^{o0}_{v0} { a+(v0) a-(o0) }" {
		t.Errorf("want 1/2 T^{o0}_{v0} { a+(v0) a-(o0) }, got %s", got)
	}
	if got := c.FormatTerm(gowick.Term{Coeff: gowick.RInt(1)}); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
	if got := c.FormatTerm(gowick.Term{Coeff: gowick.RInt(-1)}); got != "-1" {
		t.Errorf("want -1, got %s", got)
	}

	if _, err := st.Mul(st); !errors.Is(err, gowick.ErrInvalidState) {
		t.Errorf("want ErrInvalidState multiplying normal-ordered terms, got %v", err)
	}

	adj := st.Adjoint()
	assert.Equal(t, []gowick.SQOperator{gowick.Cre(o0), gowick.Ann(v0)}, adj.Ops)
}

func TestTerm_CanonicalizeRelabels(t *testing.T) {
	c := ccSpaces(t)
	a := c.MustParseExpression("f^{v3}_{o5} t^{o5}_{v3}")
	b := c.MustParseExpression("f^{v0}_{o0} t^{o0}_{v0}")
	assertExprEqual(t, b, a.Canonicalize())
}

func TestTerm_CanonicalizeSign(t *testing.T) {
	c := ccSpaces(t)
	a := c.MustParseExpression("t^{o0,o1}_{v0,v1} u^{v1,v0}_{o0,o1}")
	assertExprEqual(t, c.MustParseExpression("-t^{o0,o1}_{v0,v1} u^{v0,v1}_{o0,o1}"), a.Canonicalize())
}

func TestTerm_CanonicalizeSlotSwapCancels(t *testing.T) {
	c := ccSpaces(t)
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"cancel", "-a^{}_{o0,o1} b^{o1}_{} c^{o0}_{}\n-a^{}_{o0,o1} b^{o0}_{} c^{o1}_{}", ""},
		{"merge", "a^{}_{o0,o1} b^{o0}_{} c^{o1}_{}\n-a^{}_{o0,o1} b^{o1}_{} c^{o0}_{}", "2 a^{}_{o0,o1} b^{o0}_{} c^{o1}_{}"},
		{"upper", "a^{v0,v1}_{} b^{}_{v1} c^{}_{v0}", "-a^{v0,v1}_{} b^{}_{v0} c^{}_{v1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.MustParseExpression(tt.expr).Canonicalize()
			if tt.want == "" {
				assert.True(t, got.IsZero(), "want zero, got\n%s", got)
				return
			}
			assertExprEqual(t, c.MustParseExpression(tt.want), got)
		})
	}
}
