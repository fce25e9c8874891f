package gowick

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Index
// ============================================================

// Index addresses position Pos within orbital space Space.
type Index struct {
	Space int
	Pos   int
}

func (i Index) Compare(o Index) int {
	switch {
	case i.Space != o.Space:
		return cmpInt(i.Space, o.Space)
	default:
		return cmpInt(i.Pos, o.Pos)
	}
}

func (i Index) Less(o Index) bool { return i.Compare(o) < 0 }

var indexRe = regexp.MustCompile(`^([a-zA-Z])_?(\d+)$`)

// ParseIndex reads "o0" or "o_0".
func (c *SpaceContext) ParseIndex(s string) (Index, error) {
	m := indexRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Index{}, newError(ErrParse, "ParseIndex", "malformed index %q", s)
	}
	id, err := c.LabelToSpace(m[1])
	if err != nil {
		return Index{}, err
	}
	pos, err := strconv.Atoi(m[2])
	if err != nil {
		return Index{}, newError(ErrParse, "ParseIndex", "malformed index %q", s)
	}
	return Index{Space: id, Pos: pos}, nil
}

func (c *SpaceContext) FormatIndex(i Index) string {
	return c.Label(i.Space) + strconv.Itoa(i.Pos)
}

// IndexLaTeX uses the member label of the index.
func (c *SpaceContext) IndexLaTeX(i Index) string {
	return c.IndexLabel(i.Space, i.Pos)
}

func (c *SpaceContext) formatIndices(idx []Index, sep string) string {
	parts := make([]string, len(idx))
	for k, i := range idx {
		parts[k] = c.FormatIndex(i)
	}
	return strings.Join(parts, sep)
}

func compareIndices(a, b []Index) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := a[k].Compare(b[k]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}

// sortIndices sorts idx in place and returns the sign of the permutation
// applied.
func sortIndices(idx []Index) int {
	perm := identityPerm(len(idx))
	sort.SliceStable(perm, func(a, b int) bool { return idx[perm[a]].Less(idx[perm[b]]) })
	sorted := make([]Index, len(idx))
	for k, p := range perm {
		sorted[k] = idx[p]
	}
	copy(idx, sorted)
	return permutationSign(perm)
}

// indexCounts counts indices per space.
func indexCounts(idx []Index) [MaxSpaces]int {
	var n [MaxSpaces]int
	for _, i := range idx {
		n[i.Space]++
	}
	return n
}

// indexSymmetryFactor is the product over spaces of n_s!.
func indexSymmetryFactor(idx []Index) int64 {
	f := int64(1)
	for _, n := range indexCounts(idx) {
		f *= factorial(n)
	}
	return f
}

func compareCounts(a, b [MaxSpaces]int) int {
	for s := range a {
		if a[s] != b[s] {
			return cmpInt(a[s], b[s])
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
