package gowick

import (
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Rational: exact coefficient arithmetic
// ============================================================

// Rational is an exact fraction. The zero value is 0. Values are immutable:
// every arithmetic method returns a fresh Rational.
type Rational struct{ val *big.Rat }

// R returns p/q in lowest terms. It panics if q is zero.
func R(p, q int64) Rational {
	if q == 0 {
		panic("gowick: denominator is zero")
	}
	return Rational{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// RInt returns the integer n as a Rational.
func RInt(n int64) Rational { return Rational{val: new(big.Rat).SetInt64(n)} }

var ratZero = new(big.Rat)

func (r Rational) rat() *big.Rat {
	if r.val == nil {
		return ratZero
	}
	return r.val
}

func (r Rational) Add(o Rational) Rational { return Rational{val: new(big.Rat).Add(r.rat(), o.rat())} }
func (r Rational) Sub(o Rational) Rational { return Rational{val: new(big.Rat).Sub(r.rat(), o.rat())} }
func (r Rational) Mul(o Rational) Rational { return Rational{val: new(big.Rat).Mul(r.rat(), o.rat())} }
func (r Rational) Neg() Rational           { return Rational{val: new(big.Rat).Neg(r.rat())} }

// MulInt multiplies by a small integer.
func (r Rational) MulInt(n int64) Rational { return r.Mul(RInt(n)) }

// Div panics on division by zero.
func (r Rational) Div(o Rational) Rational {
	if o.IsZero() {
		panic("gowick: division by zero")
	}
	return Rational{val: new(big.Rat).Quo(r.rat(), o.rat())}
}

func (r Rational) IsZero() bool           { return r.rat().Sign() == 0 }
func (r Rational) IsOne() bool            { return r.rat().Cmp(big.NewRat(1, 1)) == 0 }
func (r Rational) IsInteger() bool        { return r.rat().IsInt() }
func (r Rational) Sign() int              { return r.rat().Sign() }
func (r Rational) Cmp(o Rational) int     { return r.rat().Cmp(o.rat()) }
func (r Rational) Equal(o Rational) bool  { return r.Cmp(o) == 0 }
func (r Rational) Rat() *big.Rat          { return new(big.Rat).Set(r.rat()) }
func (r Rational) Float64() float64       { f, _ := r.rat().Float64(); return f }
func (r Rational) Numerator() *big.Int    { return new(big.Int).Set(r.rat().Num()) }
func (r Rational) Denominator() *big.Int  { return new(big.Int).Set(r.rat().Denom()) }

// String renders the value as "n" or "n/d".
func (r Rational) String() string { return r.rat().RatString() }

// Format renders the value as a term prefix. Unit magnitudes collapse to a
// bare sign ("", "-" or "+") and, when signed is set, positive values carry
// a leading "+".
func (r Rational) Format(signed bool) string {
	v := r.rat()
	if v.Sign() == 0 {
		return "0"
	}
	var b strings.Builder
	if signed && v.Sign() > 0 {
		b.WriteByte('+')
	}
	if v.IsInt() {
		switch {
		case v.Num().IsInt64() && v.Num().Int64() == -1:
			b.WriteByte('-')
		case v.Num().IsInt64() && v.Num().Int64() == 1:
		default:
			b.WriteString(v.Num().String())
		}
		return b.String()
	}
	b.WriteString(v.Num().String())
	b.WriteByte('/')
	b.WriteString(v.Denom().String())
	return b.String()
}

func (r Rational) LaTeX() string {
	v := r.rat()
	if v.IsInt() {
		return v.Num().String()
	}
	sign := ""
	a := new(big.Rat).Set(v)
	if a.Sign() < 0 {
		sign = "-"
		a.Neg(a)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, a.Num().String(), a.Denom().String())
}

// ParseRational accepts "", "+", "-", "n", "-n", "n/d" and "-n/d". An empty
// magnitude means 1.
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if strings.HasPrefix(s, "/") {
		s = "1" + s
	}
	out := RInt(1)
	if s != "" {
		v, ok := new(big.Rat).SetString(s)
		if !ok {
			return Rational{}, newError(ErrParse, "ParseRational", "invalid rational %q", s)
		}
		if strings.ContainsAny(s, ".eE") {
			return Rational{}, newError(ErrParse, "ParseRational", "invalid rational %q", s)
		}
		out = Rational{val: v}
	}
	if neg {
		out = out.Neg()
	}
	return out, nil
}

// MarshalText and UnmarshalText let Rational travel through JSON and YAML as
// its string form.
func (r Rational) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rational) UnmarshalText(b []byte) error {
	v, err := ParseRational(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
