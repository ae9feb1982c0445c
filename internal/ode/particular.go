package ode

import (
	"fmt"
	"math/big"

	"github.com/at-ishikawa/odelab/internal/symbolic"
)

// forcing is the decomposition of g(x) into the shapes the method of
// undetermined coefficients covers: a polynomial part, exponential terms
// c*e^(ax) and trigonometric pairs kc*cos(bx) + ks*sin(bx).
type forcing struct {
	poly map[int64]*big.Rat
	exps map[string]*expTerm
	trig map[string]*trigTerm
}

type expTerm struct {
	rate  *big.Rat // a in e^(ax)
	coeff *big.Rat
}

type trigTerm struct {
	freq *big.Rat // b in sin(bx)/cos(bx)
	sin  *big.Rat
	cos  *big.Rat
}

// particularSolution builds a particular solution of
// a2*y'' + a1*y' + a0*y = g for the supported forcing shapes, including
// the resonant cases where the naive ansatz solves the homogeneous
// equation.
func particularSolution(a2, a1, a0 *big.Rat, g symbolic.Expr) (symbolic.Expr, error) {
	decomposed, err := decomposeForcing(g)
	if err != nil {
		return nil, err
	}

	parts := []symbolic.Expr{}
	if len(decomposed.poly) > 0 {
		part, err := polynomialParticular(a2, a1, a0, decomposed.poly)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	for _, term := range decomposed.exps {
		parts = append(parts, exponentialParticular(a2, a1, a0, term))
	}
	for _, term := range decomposed.trig {
		part, err := trigParticular(a2, a1, a0, term)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return symbolic.Add(parts...), nil
}

func decomposeForcing(g symbolic.Expr) (forcing, error) {
	out := forcing{
		poly: map[int64]*big.Rat{},
		exps: map[string]*expTerm{},
		trig: map[string]*trigTerm{},
	}

	for _, term := range symbolic.Terms(g) {
		coeff, rest := symbolic.SplitCoefficient(term)

		switch v := rest.(type) {
		case *symbolic.Number:
			if v.IsOne() {
				addRat(out.poly, 0, coeff)
				continue
			}

		case *symbolic.Variable:
			if v.Name() == "x" {
				addRat(out.poly, 1, coeff)
				continue
			}

		case *symbolic.Power:
			base, okBase := v.Base().(*symbolic.Variable)
			exp, okExp := v.Exp().(*symbolic.Number)
			if okBase && base.Name() == "x" && okExp && exp.IsInt() && !exp.IsNegative() {
				addRat(out.poly, exp.Rat().Num().Int64(), coeff)
				continue
			}

		case *symbolic.Call:
			if rate, ok := linearRate(v.Arg()); ok {
				switch v.FnName() {
				case symbolic.FnExp:
					key := rate.RatString()
					if existing, seen := out.exps[key]; seen {
						existing.coeff.Add(existing.coeff, coeff)
					} else {
						out.exps[key] = &expTerm{rate: rate, coeff: coeff}
					}
					continue
				case symbolic.FnSin, symbolic.FnCos:
					key := rate.RatString()
					entry, seen := out.trig[key]
					if !seen {
						entry = &trigTerm{freq: rate, sin: new(big.Rat), cos: new(big.Rat)}
						out.trig[key] = entry
					}
					if v.FnName() == symbolic.FnSin {
						entry.sin.Add(entry.sin, coeff)
					} else {
						entry.cos.Add(entry.cos, coeff)
					}
					continue
				}
			}
		}
		return out, fmt.Errorf("%w: unsupported forcing term %s", ErrNoClosedForm, term.String())
	}
	return out, nil
}

// polynomialParticular solves a2*p'' + a1*p' + a0*p = q by matching
// coefficients top-down.
func polynomialParticular(a2, a1, a0 *big.Rat, q map[int64]*big.Rat) (symbolic.Expr, error) {
	var degree int64
	for d := range q {
		if d > degree {
			degree = d
		}
	}
	qc := func(d int64) *big.Rat {
		if c, ok := q[d]; ok {
			return c
		}
		return new(big.Rat)
	}

	coeffs := map[int64]*big.Rat{}
	switch {
	case a0.Sign() != 0:
		// p has the same degree as q.
		for k := degree; k >= 0; k-- {
			v := new(big.Rat).Set(qc(k))
			if c, ok := coeffs[k+1]; ok {
				v.Sub(v, new(big.Rat).Mul(a1, new(big.Rat).Mul(big.NewRat(k+1, 1), c)))
			}
			if c, ok := coeffs[k+2]; ok {
				v.Sub(v, new(big.Rat).Mul(a2, new(big.Rat).Mul(big.NewRat((k+2)*(k+1), 1), c)))
			}
			coeffs[k] = v.Quo(v, a0)
		}

	case a1.Sign() != 0:
		// Zero is a characteristic root: solve for p' then integrate.
		deriv := map[int64]*big.Rat{}
		for k := degree; k >= 0; k-- {
			v := new(big.Rat).Set(qc(k))
			if c, ok := deriv[k+1]; ok {
				v.Sub(v, new(big.Rat).Mul(a2, new(big.Rat).Mul(big.NewRat(k+1, 1), c)))
			}
			deriv[k] = v.Quo(v, a1)
		}
		for k, c := range deriv {
			coeffs[k+1] = new(big.Rat).Quo(c, big.NewRat(k+1, 1))
		}

	default:
		// Double root at zero: integrate q/a2 twice.
		if a2.Sign() == 0 {
			return nil, fmt.Errorf("%w: degenerate equation", ErrNoClosedForm)
		}
		for k, c := range q {
			v := new(big.Rat).Quo(c, a2)
			v.Quo(v, big.NewRat((k+2)*(k+1), 1))
			coeffs[k+2] = v
		}
	}

	x := varX()
	parts := []symbolic.Expr{}
	for k, c := range coeffs {
		if c.Sign() == 0 {
			continue
		}
		parts = append(parts, symbolic.Mul(symbolic.FromRat(c), symbolic.Pow(x, symbolic.Int(k))))
	}
	return symbolic.Add(parts...), nil
}

// exponentialParticular builds A*x^s*e^(ax) where s is the multiplicity
// of a as a characteristic root.
func exponentialParticular(a2, a1, a0 *big.Rat, term *expTerm) symbolic.Expr {
	a := term.rate
	x := varX()
	exp := symbolic.Exp(symbolic.Mul(symbolic.FromRat(a), x))

	// p(a) = a2*a^2 + a1*a + a0
	charAt := new(big.Rat).Mul(a2, new(big.Rat).Mul(a, a))
	charAt.Add(charAt, new(big.Rat).Mul(a1, a))
	charAt.Add(charAt, a0)
	if charAt.Sign() != 0 {
		amp := new(big.Rat).Quo(term.coeff, charAt)
		return symbolic.Mul(symbolic.FromRat(amp), exp)
	}

	// p'(a) = 2*a2*a + a1
	charDeriv := new(big.Rat).Mul(big.NewRat(2, 1), new(big.Rat).Mul(a2, a))
	charDeriv.Add(charDeriv, a1)
	if charDeriv.Sign() != 0 {
		amp := new(big.Rat).Quo(term.coeff, charDeriv)
		return symbolic.Mul(symbolic.FromRat(amp), x, exp)
	}

	// Double root: p''(a) = 2*a2.
	amp := new(big.Rat).Quo(term.coeff, new(big.Rat).Mul(big.NewRat(2, 1), a2))
	return symbolic.Mul(symbolic.FromRat(amp), symbolic.Pow(x, symbolic.Int(2)), exp)
}

// trigParticular builds the A*cos(bx) + B*sin(bx) ansatz, switched to
// x*(A*cos(bx) + B*sin(bx)) in the resonant case.
func trigParticular(a2, a1, a0 *big.Rat, term *trigTerm) (symbolic.Expr, error) {
	b := term.freq
	x := varX()
	cos := symbolic.Cos(symbolic.Mul(symbolic.FromRat(b), x))
	sin := symbolic.Sin(symbolic.Mul(symbolic.FromRat(b), x))

	// m = a0 - a2*b^2, n = a1*b
	m := new(big.Rat).Sub(a0, new(big.Rat).Mul(a2, new(big.Rat).Mul(b, b)))
	n := new(big.Rat).Mul(a1, b)
	det := new(big.Rat).Add(new(big.Rat).Mul(m, m), new(big.Rat).Mul(n, n))

	if det.Sign() != 0 {
		// [m n; -n m][A B]' = [kc ks]'
		ampCos := new(big.Rat).Sub(new(big.Rat).Mul(m, term.cos), new(big.Rat).Mul(n, term.sin))
		ampCos.Quo(ampCos, det)
		ampSin := new(big.Rat).Add(new(big.Rat).Mul(n, term.cos), new(big.Rat).Mul(m, term.sin))
		ampSin.Quo(ampSin, det)
		return symbolic.Add(
			symbolic.Mul(symbolic.FromRat(ampCos), cos),
			symbolic.Mul(symbolic.FromRat(ampSin), sin),
		), nil
	}

	// Resonance: ±ib are characteristic roots, so a1 = 0 and
	// a0 = a2*b^2. Then L[x*u] = 2*a2*u' for homogeneous u.
	denom := new(big.Rat).Mul(big.NewRat(2, 1), new(big.Rat).Mul(a2, b))
	if denom.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero-frequency forcing", ErrNoClosedForm)
	}
	ampCos := new(big.Rat).Neg(new(big.Rat).Quo(term.sin, denom))
	ampSin := new(big.Rat).Quo(term.cos, denom)
	return symbolic.Mul(
		x,
		symbolic.Add(
			symbolic.Mul(symbolic.FromRat(ampCos), cos),
			symbolic.Mul(symbolic.FromRat(ampSin), sin),
		),
	), nil
}

// linearRate matches k*x and returns k.
func linearRate(arg symbolic.Expr) (*big.Rat, bool) {
	switch v := arg.(type) {
	case *symbolic.Variable:
		if v.Name() == "x" {
			return big.NewRat(1, 1), true
		}
	case *symbolic.Product:
		coeff, rest := symbolic.SplitCoefficient(v)
		if inner, ok := rest.(*symbolic.Variable); ok && inner.Name() == "x" {
			return coeff, true
		}
	}
	return nil, false
}

func addRat(m map[int64]*big.Rat, degree int64, v *big.Rat) {
	if existing, ok := m[degree]; ok {
		existing.Add(existing, v)
		return
	}
	m[degree] = new(big.Rat).Set(v)
}
