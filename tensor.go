package gowick

import (
	"regexp"
	"strings"
)

// ============================================================
// Tensor
// ============================================================

// Symmetry is the permutational symmetry of a tensor's upper and lower
// index lists.
type Symmetry int

const (
	Antisymmetric Symmetry = iota
	Symmetric
	Nonsymmetric
)

func (s Symmetry) String() string {
	switch s {
	case Symmetric:
		return "symmetric"
	case Nonsymmetric:
		return "nonsymmetric"
	}
	return "antisymmetric"
}

func ParseSymmetry(s string) (Symmetry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "antisymmetric", "":
		return Antisymmetric, nil
	case "symmetric":
		return Symmetric, nil
	case "nonsymmetric":
		return Nonsymmetric, nil
	}
	return Antisymmetric, newError(ErrParse, "ParseSymmetry", "unknown symmetry %q", s)
}

// Tensor is a labeled array reference. Equality and ordering ignore
// Symmetry.
type Tensor struct {
	Label    string
	Lower    []Index
	Upper    []Index
	Symmetry Symmetry
}

// NewTensor copies its index slices.
func NewTensor(label string, lower, upper []Index, sym Symmetry) Tensor {
	return Tensor{
		Label:    label,
		Lower:    append([]Index(nil), lower...),
		Upper:    append([]Index(nil), upper...),
		Symmetry: sym,
	}
}

func (t Tensor) clone() Tensor { return NewTensor(t.Label, t.Lower, t.Upper, t.Symmetry) }

func (t Tensor) Rank() int { return len(t.Lower) + len(t.Upper) }

// Compare orders by label, then lower indices, then upper indices.
func (t Tensor) Compare(o Tensor) int {
	if c := strings.Compare(t.Label, o.Label); c != 0 {
		return c
	}
	if c := compareIndices(t.Lower, o.Lower); c != 0 {
		return c
	}
	return compareIndices(t.Upper, o.Upper)
}

func (t Tensor) Equal(o Tensor) bool { return t.Compare(o) == 0 }

// SymmetryFactor is the product over spaces of n_s! for the upper and the
// lower indices.
func (t Tensor) SymmetryFactor() int64 {
	return indexSymmetryFactor(t.Upper) * indexSymmetryFactor(t.Lower)
}

func (t Tensor) Adjoint() Tensor {
	return NewTensor(t.Label, t.Upper, t.Lower, t.Symmetry)
}

// canonicalize sorts both index lists in place and returns the resulting
// sign, which is nontrivial only for antisymmetric tensors. Nonsymmetric
// tensors are left alone.
func (t *Tensor) canonicalize() int {
	if t.Symmetry == Nonsymmetric {
		return 1
	}
	sign := sortIndices(t.Upper) * sortIndices(t.Lower)
	if t.Symmetry == Antisymmetric {
		return sign
	}
	return 1
}

func (t *Tensor) reindex(m map[Index]Index) {
	for k, i := range t.Upper {
		if j, ok := m[i]; ok {
			t.Upper[k] = j
		}
	}
	for k, i := range t.Lower {
		if j, ok := m[i]; ok {
			t.Lower[k] = j
		}
	}
}

func (c *SpaceContext) FormatTensor(t Tensor) string {
	return t.Label + "^{" + c.formatIndices(t.Upper, ",") + "}_{" + c.formatIndices(t.Lower, ",") + "}"
}

var greekLetters = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true, "zeta": true,
	"eta": true, "theta": true, "iota": true, "kappa": true, "lambda": true, "mu": true,
	"nu": true, "xi": true, "omicron": true, "pi": true, "rho": true, "sigma": true,
	"tau": true, "upsilon": true, "phi": true, "chi": true, "psi": true, "omega": true,
}

// TensorLaTeX strips digits from the label and typesets greek names as
// commands.
func (c *SpaceContext) TensorLaTeX(t Tensor) string {
	label := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, t.Label)
	if greekLetters[label] {
		label = `\` + label
	}
	join := func(idx []Index) string {
		parts := make([]string, len(idx))
		for k, i := range idx {
			parts[k] = c.IndexLaTeX(i)
		}
		return strings.Join(parts, " ")
	}
	return label + "^{" + join(t.Upper) + "}_{" + join(t.Lower) + "}"
}

var tensorRe = regexp.MustCompile(`([a-zA-Z0-9]+)\^\{([\w,\s]*)\}_\{([\w,\s]*)\}`)

// ParseTensor reads "label^{u0,u1}_{l0,l1}".
func (c *SpaceContext) ParseTensor(s string, sym Symmetry) (Tensor, error) {
	s = strings.TrimSpace(s)
	m := tensorRe.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return Tensor{}, newError(ErrParse, "ParseTensor", "malformed tensor %q", s)
	}
	return c.tensorFromMatch(m, sym)
}

func (c *SpaceContext) tensorFromMatch(m []string, sym Symmetry) (Tensor, error) {
	upper, err := c.parseIndexList(m[2])
	if err != nil {
		return Tensor{}, err
	}
	lower, err := c.parseIndexList(m[3])
	if err != nil {
		return Tensor{}, err
	}
	return Tensor{Label: m[1], Lower: lower, Upper: upper, Symmetry: sym}, nil
}

func (c *SpaceContext) parseIndexList(s string) ([]Index, error) {
	var out []Index
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i, err := c.ParseIndex(f)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

func compareTensors(a, b []Tensor) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := a[k].Compare(b[k]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}
