package symbolic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			name: "like terms collect",
			expr: Add(Var("x"), Var("x")),
			want: "2*x",
		},
		{
			name: "terms sort deterministically",
			expr: Add(Var("y"), Var("x")),
			want: "x + y",
		},
		{
			name: "numeric terms fold into one constant",
			expr: Add(Int(1), Var("x"), Int(2)),
			want: "x + 3",
		},
		{
			name: "cancellation collapses to zero",
			expr: Add(Var("x"), Neg(Var("x"))),
			want: "0",
		},
		{
			name: "negative terms render with a minus",
			expr: Sub(Int(1), Var("x")),
			want: "-x + 1",
		},
		{
			name: "nested sums flatten",
			expr: Add(Add(Var("x"), Int(1)), Add(Var("x"), Int(2))),
			want: "2*x + 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestMul(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			name: "repeated base becomes a power",
			expr: Mul(Var("x"), Var("x")),
			want: "x^2",
		},
		{
			name: "coefficient folds and leads",
			expr: Mul(Int(2), Var("x"), Int(3)),
			want: "6*x",
		},
		{
			name: "zero annihilates",
			expr: Mul(Int(0), Var("x"), Sin(Var("x"))),
			want: "0",
		},
		{
			name: "x times x^2",
			expr: Mul(Var("x"), Pow(Var("x"), Int(2))),
			want: "x^3",
		},
		{
			name: "division is a negative power",
			expr: Div(Int(1), Var("x")),
			want: "x^-1",
		},
		{
			name: "x/x collapses",
			expr: Div(Var("x"), Var("x")),
			want: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{name: "exponent zero", expr: Pow(Var("x"), Int(0)), want: "1"},
		{name: "exponent one", expr: Pow(Var("x"), Int(1)), want: "x"},
		{name: "numeric power folds", expr: Pow(Int(2), Int(10)), want: "1024"},
		{name: "negative numeric power folds", expr: Pow(Int(2), Int(-2)), want: "1/4"},
		{name: "nested powers multiply", expr: Pow(Pow(Var("x"), Int(2)), Int(3)), want: "x^6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestExpSimplifications(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			name: "exp of ln collapses",
			expr: Exp(Ln(Var("x"))),
			want: "x",
		},
		{
			name: "exp of scaled ln becomes a power",
			expr: Exp(Mul(Int(2), Ln(Var("x")))),
			want: "x^2",
		},
		{
			name: "exp of a sum splits into a product",
			expr: Exp(Add(Var("x"), Var("z"))),
			want: "exp(x)*exp(z)",
		},
		{
			name: "exp of zero",
			expr: Exp(Int(0)),
			want: "1",
		},
		{
			name: "ln of exp collapses",
			expr: Ln(Exp(Var("x"))),
			want: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestDiff(t *testing.T) {
	// Derivatives are exact, so comparing the symbolic derivative against
	// the analytic one at a few sample points covers both the rules and
	// the simplifier.
	tests := []struct {
		name string
		expr Expr
		want func(x float64) float64
	}{
		{
			name: "polynomial",
			expr: Add(Pow(Var("x"), Int(3)), Mul(Int(2), Var("x"))),
			want: func(x float64) float64 { return 3*x*x + 2 },
		},
		{
			name: "chain rule through sin",
			expr: Sin(Pow(Var("x"), Int(2))),
			want: func(x float64) float64 { return 2 * x * math.Cos(x*x) },
		},
		{
			name: "product rule",
			expr: Mul(Var("x"), Exp(Var("x"))),
			want: func(x float64) float64 { return math.Exp(x) * (1 + x) },
		},
		{
			name: "quotient via negative power",
			expr: Div(Int(1), Var("x")),
			want: func(x float64) float64 { return -1 / (x * x) },
		},
		{
			name: "logarithm",
			expr: Ln(Var("x")),
			want: func(x float64) float64 { return 1 / x },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deriv := tt.expr.Diff("x")
			for _, x := range []float64{0.5, 1.0, 2.3} {
				got, err := deriv.Eval(map[string]float64{"x": x})
				require.NoError(t, err)
				assert.InDelta(t, tt.want(x), got, 1e-9, "x = %v", x)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	e := Add(Mul(Var("a"), Var("x")), Var("x"))
	got := e.Substitute("x", Int(3))
	assert.Equal(t, "3*a + 3", got.String())
}

func TestEvalUnboundVariable(t *testing.T) {
	_, err := Var("q").Eval(map[string]float64{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unbound variable "q"`)
}

func TestLaTeX(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			name: "rational as a fraction",
			expr: Rat(-3, 4),
			want: "-\\frac{3}{4}",
		},
		{
			name: "free constants get subscripts",
			expr: Add(Var("C1"), Var("C2")),
			want: "C_{1} + C_{2}",
		},
		{
			name: "negative power as a fraction",
			expr: Div(Int(1), Var("x")),
			want: "\\frac{1}{x}",
		},
		{
			name: "function call",
			expr: Cos(Mul(Int(2), Var("x"))),
			want: "\\cos\\left(2 x\\right)",
		},
		{
			name: "absolute value bars",
			expr: Abs(Var("y")),
			want: "\\left|y\\right|",
		},
		{
			name: "power braces the exponent",
			expr: Pow(Var("x"), Int(2)),
			want: "x^{2}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.LaTeX())
		})
	}
}

func TestFreeVariables(t *testing.T) {
	e := Add(Mul(Var("x"), Sin(Var("y"))), Pow(Var("z"), Var("x")))
	assert.Equal(t, map[string]bool{"x": true, "y": true, "z": true}, FreeVariables(e))
}

func TestSplitCoefficient(t *testing.T) {
	coeff, rest := SplitCoefficient(Mul(Int(3), Var("x"), Sin(Var("x"))))
	assert.Equal(t, "3", coeff.RatString())
	assert.Equal(t, "x*sin(x)", rest.String())

	coeff, rest = SplitCoefficient(Int(5))
	assert.Equal(t, "5", coeff.RatString())
	assert.Equal(t, "1", rest.String())

	coeff, rest = SplitCoefficient(Var("x"))
	assert.Equal(t, "1", coeff.RatString())
	assert.Equal(t, "x", rest.String())
}
