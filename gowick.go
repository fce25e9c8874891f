// Package gowick derives many-body equations by applying Wick's theorem to
// products of second-quantized operators.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic canonical output, independent of worker count
//   - Occupied, unoccupied, general (cumulant) and composite orbital spaces
//   - AI/LLM friendly: JSON, LaTeX, and MCP-ready APIs
//
// A typical derivation declares spaces, builds operators, contracts their
// product and groups the result into residual equations:
//
//	spaces := gowick.NewSpaceContext()
//	_ = spaces.AddSpace("o", gowick.Fermion, gowick.Occupied, []string{"i", "j", "k"})
//	_ = spaces.AddSpace("v", gowick.Fermion, gowick.Unoccupied, []string{"a", "b", "c"})
//	f, _ := spaces.Op("f", []string{"o+ v"}, false)
//	t, _ := spaces.Op("t", []string{"v+ o"}, false)
//	w := gowick.NewWickTheorem(spaces)
//	e, _ := w.Contract(ctx, gowick.RInt(1), f.Mul(t), 0, 0)
//	fmt.Println(e) // f^{v0}_{o0} t^{o0}_{v0}
package gowick

// Version is the library version reported by the tool servers.
const Version = "0.1.0"
