package gowick_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/njchilds90/gowick"
)

// ============================================================
// Rational tests
// ============================================================

func TestParseRational(t *testing.T) {
	tests := []struct {
		in   string
		want gowick.Rational
		str  string
	}{
		{"1/2", gowick.R(1, 2), "1/2"},
		{"+1/2", gowick.R(1, 2), "1/2"},
		{"+", gowick.RInt(1), "1"},
		{"", gowick.RInt(1), "1"},
		{"-", gowick.RInt(-1), "-1"},
		{"-12", gowick.RInt(-12), "-12"},
		{"12", gowick.RInt(12), "12"},
		{"-/2", gowick.R(-1, 2), "-1/2"},
		{"-0/2", gowick.RInt(0), "0"},
		{"10/1", gowick.RInt(10), "10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := gowick.ParseRational(tt.in)
			if err != nil {
				t.Fatalf("ParseRational(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("want %s, got %s", tt.want, got)
			}
			if got.String() != tt.str {
				t.Errorf("want %s, got %s", tt.str, got.String())
			}
		})
	}
}

func TestParseRational_Invalid(t *testing.T) {
	for _, in := range []string{"x", "1/0", "0.5", "1e3", "1/2/3"} {
		if _, err := gowick.ParseRational(in); !gowick.IsParse(err) {
			t.Errorf("ParseRational(%q): want parse error, got %v", in, err)
		}
	}
}

func TestRational_Arithmetic(t *testing.T) {
	if got := gowick.R(1, 2).Add(gowick.R(1, 2)); !got.Equal(gowick.RInt(1)) {
		t.Errorf("want 1, got %s", got)
	}
	if got := gowick.R(3, 5).Sub(gowick.R(1, 2)); !got.Equal(gowick.R(1, 10)) {
		t.Errorf("want 1/10, got %s", got)
	}
	if got := gowick.R(3, 5).Mul(gowick.R(1, 2)); !got.Equal(gowick.R(3, 10)) {
		t.Errorf("want 3/10, got %s", got)
	}
	if got := gowick.R(3, 5).Div(gowick.R(1, 2)); !got.Equal(gowick.R(6, 5)) {
		t.Errorf("want 6/5, got %s", got)
	}
	if !gowick.R(-1, -1).Equal(gowick.RInt(1)) {
		t.Error("-1/-1 should be 1")
	}
	if !gowick.R(-12, -4).Equal(gowick.RInt(3)) {
		t.Error("-12/-4 should be 3")
	}
	if !gowick.R(4, 24).Equal(gowick.R(1, 6)) {
		t.Error("4/24 should reduce to 1/6")
	}
	if math.Abs(gowick.R(1, 6).Float64()-0.1666666667) > 1e-9 {
		t.Errorf("want 0.1666666667, got %v", gowick.R(1, 6).Float64())
	}
}

func TestRational_ZeroValue(t *testing.T) {
	var z gowick.Rational
	if !z.IsZero() || z.String() != "0" {
		t.Errorf("zero value should be 0, got %s", z)
	}
	if got := z.Add(gowick.RInt(2)); !got.Equal(gowick.RInt(2)) {
		t.Errorf("want 2, got %s", got)
	}
}

func TestRational_Format(t *testing.T) {
	tests := []struct {
		r      gowick.Rational
		signed bool
		want   string
	}{
		{gowick.RInt(1), false, ""},
		{gowick.RInt(1), true, "+"},
		{gowick.RInt(-1), true, "-"},
		{gowick.R(1, 4), true, "+1/4"},
		{gowick.R(-1, 2), false, "-1/2"},
		{gowick.RInt(3), false, "3"},
	}
	for _, tt := range tests {
		if got := tt.r.Format(tt.signed); got != tt.want {
			t.Errorf("Format(%s, %v): want %q, got %q", tt.r, tt.signed, tt.want, got)
		}
	}
}

func TestRational_LaTeX(t *testing.T) {
	if got := gowick.R(2, 5).LaTeX(); got != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", got)
	}
	if got := gowick.R(-1, 2).LaTeX(); got != `-\frac{1}{2}` {
		t.Errorf("want -\\frac{1}{2}, got %s", got)
	}
}

func TestRational_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]gowick.Rational{"c": gowick.R(-3, 8)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"c":"-3/8"}` {
		t.Errorf("want {\"c\":\"-3/8\"}, got %s", b)
	}
	var back map[string]gowick.Rational
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back["c"].Equal(gowick.R(-3, 8)) {
		t.Errorf("want -3/8, got %s", back["c"])
	}
}
