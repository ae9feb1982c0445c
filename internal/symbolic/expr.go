// Package symbolic implements the small computer-algebra kernel that the
// ODE solvers and the phase-portrait evaluator are built on. Numbers are
// exact rationals, sums and products are flattened n-ary forms with a
// deterministic term order, and every constructor simplifies eagerly so
// expressions stay in a canonical shape.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is a simplified, immutable expression tree node.
type Expr interface {
	// Substitute replaces every occurrence of the named variable.
	Substitute(name string, value Expr) Expr
	// Diff differentiates with respect to the named variable.
	Diff(name string) Expr
	// Eval computes a numeric value using the variable bindings in env.
	// Unbound variables are an error; NaN and Inf propagate to the caller.
	Eval(env map[string]float64) (float64, error)
	String() string
	LaTeX() string
}

// Number is an exact rational constant.
type Number struct{ val *big.Rat }

// Int returns the integer constant n.
func Int(n int64) *Number { return &Number{val: new(big.Rat).SetInt64(n)} }

// Rat returns the rational constant p/q.
func Rat(p, q int64) *Number {
	if q == 0 {
		panic("symbolic: zero denominator")
	}
	return &Number{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// FromRat wraps an existing rational value.
func FromRat(r *big.Rat) *Number { return &Number{val: new(big.Rat).Set(r)} }

// FromFloat returns the exact rational representation of f.
func FromFloat(f float64) *Number { return &Number{val: new(big.Rat).SetFloat64(f)} }

func (n *Number) Substitute(string, Expr) Expr          { return n }
func (n *Number) Diff(string) Expr                      { return Int(0) }
func (n *Number) Eval(map[string]float64) (float64, error) { f, _ := n.val.Float64(); return f, nil }
func (n *Number) Rat() *big.Rat                         { return new(big.Rat).Set(n.val) }
func (n *Number) IsZero() bool                          { return n.val.Sign() == 0 }
func (n *Number) IsOne() bool                           { return n.val.Cmp(ratOne) == 0 }
func (n *Number) IsNegative() bool                      { return n.val.Sign() < 0 }
func (n *Number) IsInt() bool                           { return n.val.IsInt() }

func (n *Number) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Number) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	v := new(big.Rat).Set(n.val)
	sign := ""
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

// Variable is a free symbol. The ODE layer reserves the names
// "y", "y'" and "y''" for the unknown function and its derivatives.
type Variable struct{ name string }

// Var returns the variable with the given name.
func Var(name string) *Variable { return &Variable{name: name} }

func (v *Variable) Name() string { return v.name }

func (v *Variable) Substitute(name string, value Expr) Expr {
	if v.name == name {
		return value
	}
	return v
}

func (v *Variable) Diff(name string) Expr {
	if v.name == name {
		return Int(1)
	}
	return Int(0)
}

func (v *Variable) Eval(env map[string]float64) (float64, error) {
	if f, ok := env[v.name]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unbound variable %q", v.name)
}

func (v *Variable) String() string { return v.name }

func (v *Variable) LaTeX() string {
	switch v.name {
	case "y''":
		return "y''"
	case "C1":
		return "C_{1}"
	case "C2":
		return "C_{2}"
	}
	return v.name
}

// Sum is a flattened n-ary sum.
type Sum struct{ terms []Expr }

// Add builds a simplified sum: nested sums are flattened, numeric terms
// are folded, like variable terms are collected and zero terms dropped.
func Add(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if inner, ok := t.(*Sum); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, t)
		}
	}

	// Collect like terms by their non-numeric part.
	type bucket struct {
		coeff *big.Rat
		expr  Expr
	}
	constant := new(big.Rat)
	order := []string{}
	buckets := map[string]*bucket{}
	for _, t := range flat {
		if num, ok := t.(*Number); ok {
			constant.Add(constant, num.val)
			continue
		}
		coeff, rest := splitCoefficient(t)
		key := rest.String()
		b, seen := buckets[key]
		if !seen {
			b = &bucket{coeff: new(big.Rat), expr: rest}
			buckets[key] = b
			order = append(order, key)
		}
		b.coeff.Add(b.coeff, coeff)
	}

	sort.Strings(order)
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		b := buckets[key]
		switch {
		case b.coeff.Sign() == 0:
		case b.coeff.Cmp(ratOne) == 0:
			result = append(result, b.expr)
		default:
			result = append(result, Mul(FromRat(b.coeff), b.expr))
		}
	}
	if constant.Sign() != 0 {
		result = append(result, FromRat(constant))
	}

	switch len(result) {
	case 0:
		return Int(0)
	case 1:
		return result[0]
	}
	return &Sum{terms: result}
}

// Sub builds a - b.
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// Neg builds -e.
func Neg(e Expr) Expr { return Mul(Int(-1), e) }

// Terms exposes the summands of a sum; for any other expression the
// result is the expression itself as a single term.
func Terms(e Expr) []Expr {
	if s, ok := e.(*Sum); ok {
		return s.terms
	}
	return []Expr{e}
}

func (s *Sum) Substitute(name string, value Expr) Expr {
	out := make([]Expr, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.Substitute(name, value)
	}
	return Add(out...)
}

func (s *Sum) Diff(name string) Expr {
	out := make([]Expr, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.Diff(name)
	}
	return Add(out...)
}

func (s *Sum) Eval(env map[string]float64) (float64, error) {
	total := 0.0
	for _, t := range s.terms {
		f, err := t.Eval(env)
		if err != nil {
			return 0, err
		}
		total += f
	}
	return total, nil
}

func (s *Sum) String() string { return joinSigned(s.terms, func(e Expr) string { return e.String() }) }
func (s *Sum) LaTeX() string  { return joinSigned(s.terms, func(e Expr) string { return e.LaTeX() }) }

// joinSigned renders "a + b - c" instead of "a + b + -1*c".
func joinSigned(terms []Expr, render func(Expr) string) string {
	var sb strings.Builder
	for i, t := range terms {
		coeff, rest := splitCoefficient(t)
		negative := coeff.Sign() < 0
		if i == 0 {
			if negative {
				sb.WriteString("-")
			}
		} else if negative {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		if negative {
			abs := new(big.Rat).Neg(coeff)
			if abs.Cmp(ratOne) == 0 {
				sb.WriteString(render(rest))
			} else {
				sb.WriteString(render(Mul(FromRat(abs), rest)))
			}
		} else {
			sb.WriteString(render(t))
		}
	}
	return sb.String()
}

// Product is a flattened n-ary product with any numeric coefficient first.
type Product struct{ factors []Expr }

// Mul builds a simplified product: nested products are flattened, numeric
// factors folded, equal bases merged into powers, zero annihilates.
func Mul(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if inner, ok := f.(*Product); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, f)
		}
	}

	coeff := new(big.Rat).Set(ratOne)
	rest := make([]Expr, 0, len(flat))
	for _, f := range flat {
		if num, ok := f.(*Number); ok {
			coeff.Mul(coeff, num.val)
			continue
		}
		rest = append(rest, f)
	}
	if coeff.Sign() == 0 {
		return Int(0)
	}

	// Merge repeated bases: x*x -> x^2, x*x^n -> x^(n+1).
	type entry struct {
		base Expr
		exp  Expr
	}
	order := []string{}
	merged := map[string]*entry{}
	for _, f := range rest {
		base, exp := f, Expr(Int(1))
		if p, ok := f.(*Power); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		e, seen := merged[key]
		if !seen {
			merged[key] = &entry{base: base, exp: exp}
			order = append(order, key)
			continue
		}
		e.exp = Add(e.exp, exp)
	}
	sort.Strings(order)
	rest = rest[:0]
	for _, key := range order {
		e := merged[key]
		f := Pow(e.base, e.exp)
		if num, ok := f.(*Number); ok {
			coeff.Mul(coeff, num.val)
			continue
		}
		rest = append(rest, f)
	}

	if len(rest) == 0 {
		return FromRat(coeff)
	}
	if coeff.Cmp(ratOne) == 0 {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Product{factors: rest}
	}
	return &Product{factors: append([]Expr{FromRat(coeff)}, rest...)}
}

// Div builds a / b as a * b^-1.
func Div(a, b Expr) Expr { return Mul(a, Pow(b, Int(-1))) }

// Factors exposes the factors of a product; for any other expression the
// result is the expression itself as a single factor.
func Factors(e Expr) []Expr {
	if p, ok := e.(*Product); ok {
		return p.factors
	}
	return []Expr{e}
}

// splitCoefficient separates a leading rational coefficient from the rest
// of a term. A plain number splits into (value, 1).
func splitCoefficient(e Expr) (*big.Rat, Expr) {
	switch v := e.(type) {
	case *Number:
		return v.Rat(), Int(1)
	case *Product:
		if num, ok := v.factors[0].(*Number); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return num.Rat(), rest[0]
			}
			return num.Rat(), &Product{factors: rest}
		}
	}
	return new(big.Rat).Set(ratOne), e
}

func (p *Product) Substitute(name string, value Expr) Expr {
	out := make([]Expr, len(p.factors))
	for i, f := range p.factors {
		out[i] = f.Substitute(name, value)
	}
	return Mul(out...)
}

// Diff applies the product rule over all factors.
func (p *Product) Diff(name string) Expr {
	terms := make([]Expr, len(p.factors))
	for i := range p.factors {
		parts := make([]Expr, 0, len(p.factors))
		parts = append(parts, p.factors[i].Diff(name))
		for j, f := range p.factors {
			if j != i {
				parts = append(parts, f)
			}
		}
		terms[i] = Mul(parts...)
	}
	return Add(terms...)
}

func (p *Product) Eval(env map[string]float64) (float64, error) {
	total := 1.0
	for _, f := range p.factors {
		v, err := f.Eval(env)
		if err != nil {
			return 0, err
		}
		total *= v
	}
	return total, nil
}

func (p *Product) String() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		if _, ok := f.(*Sum); ok {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (p *Product) LaTeX() string {
	factors := p.factors
	prefix := ""
	if num, ok := factors[0].(*Number); ok && num.val.Cmp(ratNegOne) == 0 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if _, ok := f.(*Sum); ok {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return prefix + strings.Join(parts, " ")
}

// Power is base^exp.
type Power struct{ base, exp Expr }

// Pow builds a simplified power. Integer powers of rationals within a
// small exponent range are folded exactly.
func Pow(base, exp Expr) Expr {
	if en, ok := exp.(*Number); ok {
		if en.IsZero() {
			return Int(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Number); ok {
		if bn.IsZero() {
			if en, ok := exp.(*Number); ok && (en.IsZero() || en.IsNegative()) {
				return &Power{base: base, exp: exp} // indeterminate, keep as-is
			}
			return Int(0)
		}
		if bn.IsOne() {
			return Int(1)
		}
		if en, ok := exp.(*Number); ok && en.IsInt() {
			if e := en.val.Num().Int64(); e >= -16 && e <= 16 {
				out := new(big.Rat).Set(ratOne)
				abs := e
				if abs < 0 {
					abs = -abs
				}
				for i := int64(0); i < abs; i++ {
					out.Mul(out, bn.val)
				}
				if e < 0 {
					out.Inv(out)
				}
				return FromRat(out)
			}
		}
	}
	if inner, ok := base.(*Power); ok {
		return Pow(inner.base, Mul(inner.exp, exp))
	}
	return &Power{base: base, exp: exp}
}

func (p *Power) Base() Expr { return p.base }
func (p *Power) Exp() Expr  { return p.exp }

func (p *Power) Substitute(name string, value Expr) Expr {
	return Pow(p.base.Substitute(name, value), p.exp.Substitute(name, value))
}

func (p *Power) Diff(name string) Expr {
	if _, ok := p.exp.(*Number); ok {
		// d/dx u^n = n*u^(n-1)*u'
		return Mul(p.exp, Pow(p.base, Add(p.exp, Int(-1))), p.base.Diff(name))
	}
	// General case via u^v = exp(v ln u).
	return Mul(
		Pow(p.base, p.exp),
		Add(
			Mul(p.exp.Diff(name), Ln(p.base)),
			Mul(p.exp, p.base.Diff(name), Pow(p.base, Int(-1))),
		),
	)
}

func (p *Power) Eval(env map[string]float64) (float64, error) {
	b, err := p.base.Eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(env)
	if err != nil {
		return 0, err
	}
	return math.Pow(b, e), nil
}

func (p *Power) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Sum, *Product:
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Sum, *Product:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Power) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Sum, *Product:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	if en, ok := p.exp.(*Number); ok && en.IsNegative() {
		pos := Pow(p.base, FromRat(new(big.Rat).Neg(en.val)))
		return "\\frac{1}{" + pos.LaTeX() + "}"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

// Call is the application of a whitelisted elementary function.
type Call struct {
	fn  string
	arg Expr
}

// The full function whitelist. "log" parses as the natural logarithm.
const (
	FnSin = "sin"
	FnCos = "cos"
	FnTan = "tan"
	FnExp = "exp"
	FnLn  = "ln"
	FnAbs = "abs"
)

func Sin(arg Expr) Expr { return apply(FnSin, arg) }
func Cos(arg Expr) Expr { return apply(FnCos, arg) }
func Tan(arg Expr) Expr { return apply(FnTan, arg) }
func Exp(arg Expr) Expr { return apply(FnExp, arg) }
func Ln(arg Expr) Expr  { return apply(FnLn, arg) }
func Abs(arg Expr) Expr { return apply(FnAbs, arg) }

// Sqrt is represented as a half power so the power rules apply.
func Sqrt(arg Expr) Expr { return Pow(arg, Rat(1, 2)) }

func apply(fn string, arg Expr) Expr {
	if n, ok := arg.(*Number); ok {
		switch fn {
		case FnSin:
			if n.IsZero() {
				return Int(0)
			}
		case FnCos:
			if n.IsZero() {
				return Int(1)
			}
		case FnExp:
			if n.IsZero() {
				return Int(1)
			}
		case FnLn:
			if n.IsOne() {
				return Int(0)
			}
		case FnAbs:
			if !n.IsNegative() {
				return n
			}
			return FromRat(new(big.Rat).Neg(n.val))
		}
	}
	switch fn {
	case FnExp:
		// exp(ln u) = u and exp(c*ln u) = u^c keep integrating factors in
		// power form, e.g. exp(2 ln x) -> x^2.
		if inner, ok := arg.(*Call); ok && inner.fn == FnLn {
			return inner.arg
		}
		if c, rest := splitCoefficient(arg); c.Cmp(ratOne) != 0 {
			if inner, ok := rest.(*Call); ok && inner.fn == FnLn {
				return Pow(inner.arg, FromRat(c))
			}
		}
		// exp(a + b) = exp(a)*exp(b) so products of integrating factors
		// stay integrable term by term.
		if sum, ok := arg.(*Sum); ok {
			parts := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				parts[i] = apply(FnExp, t)
			}
			return Mul(parts...)
		}
	case FnLn:
		if inner, ok := arg.(*Call); ok && inner.fn == FnExp {
			return inner.arg
		}
	}
	return &Call{fn: fn, arg: arg}
}

func (c *Call) FnName() string { return c.fn }
func (c *Call) Arg() Expr      { return c.arg }

func (c *Call) Substitute(name string, value Expr) Expr {
	return apply(c.fn, c.arg.Substitute(name, value))
}

func (c *Call) Diff(name string) Expr {
	inner := c.arg.Diff(name)
	var outer Expr
	switch c.fn {
	case FnSin:
		outer = Cos(c.arg)
	case FnCos:
		outer = Neg(Sin(c.arg))
	case FnTan:
		outer = Add(Int(1), Pow(Tan(c.arg), Int(2)))
	case FnExp:
		outer = Exp(c.arg)
	case FnLn:
		outer = Pow(c.arg, Int(-1))
	case FnAbs:
		// d/dx |u| = u/|u| * u'; good enough away from zero.
		outer = Mul(c.arg, Pow(Abs(c.arg), Int(-1)))
	default:
		panic("symbolic: unknown function " + c.fn)
	}
	return Mul(outer, inner)
}

func (c *Call) Eval(env map[string]float64) (float64, error) {
	v, err := c.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	switch c.fn {
	case FnSin:
		return math.Sin(v), nil
	case FnCos:
		return math.Cos(v), nil
	case FnTan:
		return math.Tan(v), nil
	case FnExp:
		return math.Exp(v), nil
	case FnLn:
		return math.Log(v), nil
	case FnAbs:
		return math.Abs(v), nil
	}
	return 0, fmt.Errorf("unknown function %q", c.fn)
}

func (c *Call) String() string { return c.fn + "(" + c.arg.String() + ")" }

func (c *Call) LaTeX() string {
	switch c.fn {
	case FnSin, FnCos, FnTan, FnExp, FnLn:
		return "\\" + c.fn + "\\left(" + c.arg.LaTeX() + "\\right)"
	case FnAbs:
		return "\\left|" + c.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + c.fn + "}\\left(" + c.arg.LaTeX() + "\\right)"
}

// FreeVariables collects the names of all variables in e.
func FreeVariables(e Expr) map[string]bool {
	out := map[string]bool{}
	collectVariables(e, out)
	return out
}

func collectVariables(e Expr, out map[string]bool) {
	switch v := e.(type) {
	case *Variable:
		out[v.name] = true
	case *Sum:
		for _, t := range v.terms {
			collectVariables(t, out)
		}
	case *Product:
		for _, f := range v.factors {
			collectVariables(f, out)
		}
	case *Power:
		collectVariables(v.base, out)
		collectVariables(v.exp, out)
	case *Call:
		collectVariables(v.arg, out)
	}
}

// SplitCoefficient separates a leading rational coefficient from the
// rest of a term: 3*x*sin(x) splits into (3, x*sin(x)), a bare number n
// into (n, 1), anything else into (1, itself).
func SplitCoefficient(e Expr) (*big.Rat, Expr) { return splitCoefficient(e) }

// ConstantRat reports whether e folds to an exact rational constant.
func ConstantRat(e Expr) (*big.Rat, bool) {
	if n, ok := e.(*Number); ok {
		return n.Rat(), true
	}
	return nil, false
}
