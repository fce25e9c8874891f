package gowick

import (
	"fmt"
	"strings"
	"sync"
)

// ============================================================
// Orbital spaces
// ============================================================

// MaxSpaces is the number of orbital spaces a single registry may hold.
const MaxSpaces = 8

// FieldType is the statistics of the operators acting on a space.
type FieldType int

const (
	Fermion FieldType = iota
	Boson
)

func (f FieldType) String() string {
	if f == Boson {
		return "boson"
	}
	return "fermion"
}

// Symbol is the letter used for second-quantized operators of this type.
func (f FieldType) Symbol() string {
	if f == Boson {
		return "b"
	}
	return "a"
}

func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fermion", "":
		return Fermion, nil
	case "boson":
		return Boson, nil
	}
	return Fermion, newError(ErrParse, "ParseFieldType", "unknown field type %q", s)
}

// SpaceType is the reference-state category of a space, which decides how
// its operators contract.
type SpaceType int

const (
	// Occupied spaces are filled in the reference.
	Occupied SpaceType = iota
	// Unoccupied spaces are empty in the reference.
	Unoccupied
	// General spaces are partially occupied and contract through density
	// cumulants.
	General
	// Composite spaces are unions of previously declared spaces.
	Composite
)

func (t SpaceType) String() string {
	switch t {
	case Occupied:
		return "occupied"
	case Unoccupied:
		return "unoccupied"
	case General:
		return "general"
	case Composite:
		return "composite"
	}
	return "unknown"
}

func ParseSpaceType(s string) (SpaceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "occupied":
		return Occupied, nil
	case "unoccupied":
		return Unoccupied, nil
	case "general":
		return General, nil
	case "composite":
		return Composite, nil
	}
	return General, newError(ErrParse, "ParseSpaceType", "unknown space type %q", s)
}

// OrbitalSpace is one registered index space.
type OrbitalSpace struct {
	Label       byte
	Field       FieldType
	Type        SpaceType
	Indices     []string
	Constituent []int
}

// SpaceContext is a registry of orbital spaces. Queries take a read lock;
// Reset and AddSpace must not run while a contraction is in flight.
type SpaceContext struct {
	mu       sync.RWMutex
	spaces   []OrbitalSpace
	byLabel  map[byte]int
	byMember map[string]int
}

func NewSpaceContext() *SpaceContext {
	return &SpaceContext{byLabel: map[byte]int{}, byMember: map[string]int{}}
}

// Reset removes every registered space.
func (c *SpaceContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spaces = nil
	c.byLabel = map[byte]int{}
	c.byMember = map[string]int{}
}

// AddSpace registers a space. A composite space lists the labels of the
// spaces it spans in compositeOf.
func (c *SpaceContext) AddSpace(label string, field FieldType, typ SpaceType, indices []string, compositeOf ...string) error {
	const op = "AddSpace"
	if len(label) != 1 || !isLetter(label[0]) {
		return newError(ErrParse, op, "space label %q must be a single letter", label)
	}
	if (typ == Composite) != (len(compositeOf) > 0) {
		return newError(ErrInvalidState, op, "space %q: composite spaces and only composite spaces list constituents", label)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.spaces) >= MaxSpaces {
		return newError(ErrRankNotSupported, op, "at most %d spaces are supported", MaxSpaces)
	}
	l := label[0]
	if _, ok := c.byLabel[l]; ok {
		return newError(ErrDuplicateSpace, op, "space %q already exists", label)
	}
	seen := map[string]bool{}
	for _, idx := range indices {
		if idx == "" {
			return newError(ErrParse, op, "space %q: empty index label", label)
		}
		if s, ok := c.byMember[idx]; ok {
			return newError(ErrDuplicateSpace, op, "index %q already belongs to space %q", idx, string(c.spaces[s].Label))
		}
		if seen[idx] {
			return newError(ErrDuplicateSpace, op, "index %q listed twice in space %q", idx, label)
		}
		seen[idx] = true
	}
	var parts []int
	for _, cl := range compositeOf {
		if len(cl) != 1 {
			return newError(ErrUnknownSpace, op, "composite %q: unknown constituent %q", label, cl)
		}
		id, ok := c.byLabel[cl[0]]
		if !ok {
			return newError(ErrUnknownSpace, op, "composite %q: unknown constituent %q", label, cl)
		}
		if c.spaces[id].Type == Composite {
			return newError(ErrInvalidState, op, "composite %q: constituent %q is itself composite", label, cl)
		}
		parts = append(parts, id)
	}
	id := len(c.spaces)
	c.spaces = append(c.spaces, OrbitalSpace{
		Label:       l,
		Field:       field,
		Type:        typ,
		Indices:     append([]string(nil), indices...),
		Constituent: parts,
	})
	c.byLabel[l] = id
	for _, idx := range indices {
		c.byMember[idx] = id
	}
	return nil
}

func (c *SpaceContext) NumSpaces() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.spaces)
}

// Space returns a copy of space id. It panics on an out-of-range id.
func (c *SpaceContext) Space(id int) OrbitalSpace {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.spaces[id]
	s.Indices = append([]string(nil), s.Indices...)
	s.Constituent = append([]int(nil), s.Constituent...)
	return s
}

func (c *SpaceContext) Label(id int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || id >= len(c.spaces) {
		return "?"
	}
	return string(c.spaces[id].Label)
}

func (c *SpaceContext) SpaceType(id int) SpaceType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spaces[id].Type
}

func (c *SpaceContext) FieldType(id int) FieldType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spaces[id].Field
}

// LabelToSpace maps a one-letter label to its space id.
func (c *SpaceContext) LabelToSpace(label string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(label) == 1 {
		if id, ok := c.byLabel[label[0]]; ok {
			return id, nil
		}
	}
	return -1, newError(ErrUnknownSpace, "LabelToSpace", "no space labeled %q", label)
}

// IndexLabel returns the member label for position pos of space id, or
// "<label>_{pos}" past the end of the member list.
func (c *SpaceContext) IndexLabel(id, pos int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.spaces[id]
	if pos >= 0 && pos < len(s.Indices) {
		return s.Indices[pos]
	}
	return fmt.Sprintf("%c_{%d}", s.Label, pos)
}

// IndicesOfType lists the ids of every space of type t in declaration order.
func (c *SpaceContext) IndicesOfType(t SpaceType) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []int
	for i, s := range c.spaces {
		if s.Type == t {
			out = append(out, i)
		}
	}
	return out
}

// ToMap returns label → member labels.
func (c *SpaceContext) ToMap() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := make(map[string][]string, len(c.spaces))
	for _, s := range c.spaces {
		m[string(s.Label)] = append([]string(nil), s.Indices...)
	}
	return m
}

// Labels returns every space label in declaration order.
func (c *SpaceContext) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.spaces))
	for i, s := range c.spaces {
		out[i] = string(s.Label)
	}
	return out
}

func (c *SpaceContext) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var b strings.Builder
	for i, s := range c.spaces {
		fmt.Fprintf(&b, "%d %c %s %s {%s}", i, s.Label, s.Field, s.Type, strings.Join(s.Indices, ","))
		if len(s.Constituent) > 0 {
			labels := make([]string, len(s.Constituent))
			for k, id := range s.Constituent {
				labels[k] = string(c.spaces[id].Label)
			}
			fmt.Fprintf(&b, " = %s", strings.Join(labels, "+"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// snapshot copies the per-space data the contraction engine reads in its
// inner loops so workers never touch the lock.
func (c *SpaceContext) snapshot() spaceTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := spaceTable{n: len(c.spaces)}
	for i, s := range c.spaces {
		t.types[i] = s.Type
		t.fields[i] = s.Field
	}
	return t
}

type spaceTable struct {
	n      int
	types  [MaxSpaces]SpaceType
	fields [MaxSpaces]FieldType
}

// ofType mirrors IndicesOfType over the snapshot.
func (t spaceTable) ofType(typ SpaceType) []int {
	var out []int
	for s := 0; s < t.n; s++ {
		if t.types[s] == typ {
			out = append(out, s)
		}
	}
	return out
}

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
