package symbolic

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrate(t *testing.T) {
	// An antiderivative is correct when its exact derivative matches the
	// integrand, so each case differentiates the result and compares the
	// two numerically.
	tests := []struct {
		name string
		expr Expr
	}{
		{name: "constant", expr: Int(5)},
		{name: "variable", expr: Var("x")},
		{name: "power", expr: Pow(Var("x"), Int(3))},
		{name: "reciprocal", expr: Div(Int(1), Var("x"))},
		{name: "exponential", expr: Exp(Mul(Int(2), Var("x")))},
		{name: "sine", expr: Sin(Mul(Int(3), Var("x")))},
		{name: "cosine", expr: Cos(Var("x"))},
		{name: "scaled term", expr: Mul(Rat(3, 2), Pow(Var("x"), Int(2)))},
		{name: "polynomial sum", expr: Add(Pow(Var("x"), Int(2)), Mul(Int(4), Var("x")), Int(1))},
		{name: "x times exponential", expr: Mul(Var("x"), Exp(Mul(Int(2), Var("x"))))},
		{name: "x squared times exponential", expr: Mul(Pow(Var("x"), Int(2)), Exp(Var("x")))},
		{name: "exponential times sine", expr: Mul(Exp(Var("x")), Sin(Mul(Int(2), Var("x"))))},
		{name: "exponential times cosine", expr: Mul(Exp(Mul(Int(3), Var("x"))), Cos(Var("x")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			antideriv, ok := Integrate(tt.expr, "x")
			require.True(t, ok, "no antiderivative for %s", tt.expr)

			deriv := antideriv.Diff("x")
			for _, x := range []float64{0.4, 1.0, 2.7} {
				env := map[string]float64{"x": x}
				want, err := tt.expr.Eval(env)
				require.NoError(t, err)
				got, err := deriv.Eval(env)
				require.NoError(t, err)
				assert.InDelta(t, want, got, 1e-8, "x = %v", x)
			}
		})
	}
}

func TestIntegrate_ConstantWithOtherVariables(t *testing.T) {
	got, ok := Integrate(Var("k"), "x")
	require.True(t, ok)
	assert.Equal(t, "k*x", got.String())
}

func TestIntegrate_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
	}{
		{name: "logarithm", expr: Ln(Var("x"))},
		{name: "nonlinear trig argument", expr: Sin(Pow(Var("x"), Int(2)))},
		{name: "x times sine", expr: Mul(Var("x"), Sin(Var("x")))},
		{name: "variable exponent", expr: Pow(Int(2), Var("x"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Integrate(tt.expr, "x")
			assert.False(t, ok)
		})
	}
}

func TestSolveQuadratic(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c    *big.Rat
		wantKind   RootKind
		wantFirst  float64
		wantSecond float64
		wantAlpha  float64
		wantBeta   float64
	}{
		{
			name: "distinct rational roots",
			a: big.NewRat(1, 1), b: big.NewRat(-3, 1), c: big.NewRat(2, 1),
			wantKind:  RootsDistinctReal,
			wantFirst: 2, wantSecond: 1,
		},
		{
			name: "distinct irrational roots stay exact",
			a: big.NewRat(1, 1), b: big.NewRat(0, 1), c: big.NewRat(-2, 1),
			wantKind:  RootsDistinctReal,
			wantFirst: 1.4142135623730951, wantSecond: -1.4142135623730951,
		},
		{
			name: "repeated root",
			a: big.NewRat(1, 1), b: big.NewRat(2, 1), c: big.NewRat(1, 1),
			wantKind:  RootsRepeated,
			wantFirst: -1, wantSecond: -1,
		},
		{
			name: "pure imaginary pair",
			a: big.NewRat(1, 1), b: big.NewRat(0, 1), c: big.NewRat(1, 1),
			wantKind:  RootsComplexPair,
			wantAlpha: 0, wantBeta: 1,
		},
		{
			name: "complex pair with damping",
			a: big.NewRat(1, 1), b: big.NewRat(2, 1), c: big.NewRat(5, 1),
			wantKind:  RootsComplexPair,
			wantAlpha: -1, wantBeta: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := SolveQuadratic(tt.a, tt.b, tt.c)
			require.Equal(t, tt.wantKind, roots.Kind)

			evalRoot := func(e Expr) float64 {
				v, err := e.Eval(map[string]float64{})
				require.NoError(t, err)
				return v
			}
			if tt.wantKind == RootsComplexPair {
				assert.InDelta(t, tt.wantAlpha, evalRoot(roots.Alpha), 1e-12)
				assert.InDelta(t, tt.wantBeta, evalRoot(roots.Beta), 1e-12)
				return
			}
			assert.InDelta(t, tt.wantFirst, evalRoot(roots.First), 1e-12)
			assert.InDelta(t, tt.wantSecond, evalRoot(roots.Second), 1e-12)
		})
	}
}

func TestIsCharacteristicRoot(t *testing.T) {
	a, b, c := big.NewRat(1, 1), big.NewRat(-3, 1), big.NewRat(2, 1)
	assert.True(t, IsCharacteristicRoot(a, b, c, big.NewRat(1, 1)))
	assert.True(t, IsCharacteristicRoot(a, b, c, big.NewRat(2, 1)))
	assert.False(t, IsCharacteristicRoot(a, b, c, big.NewRat(3, 1)))
}
