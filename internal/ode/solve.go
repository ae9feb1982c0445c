package ode

import (
	"fmt"
	"math/big"

	"github.com/at-ishikawa/odelab/internal/symbolic"
)

func varX() symbolic.Expr  { return symbolic.Var("x") }
func varC1() symbolic.Expr { return symbolic.Var("C1") }
func varC2() symbolic.Expr { return symbolic.Var("C2") }

func isZeroExpr(e symbolic.Expr) bool {
	n, ok := e.(*symbolic.Number)
	return ok && n.IsZero()
}

// solveConstantCoefficients handles the characteristic-polynomial and
// undetermined-coefficients methods. Both start from the same constant
// coefficient linear form; they differ only in the step narration, so a
// nonzero forcing term gets a particular solution in either case.
func solveConstantCoefficients(residual symbolic.Expr) (string, error) {
	form, err := extractLinearForm(residual)
	if err != nil {
		return "", err
	}
	a2, a1, a0, err := form.constantCoefficients()
	if err != nil {
		return "", err
	}

	if a2.Sign() == 0 {
		// Degenerate first order equation; fall back to the
		// integrating-factor machinery.
		return firstOrderLinear(form)
	}

	roots := symbolic.SolveQuadratic(a2, a1, a0)
	solution := homogeneousSolution(roots)

	if !isZeroExpr(form.g) {
		particular, err := particularSolution(a2, a1, a0, form.g)
		if err != nil {
			return "", err
		}
		solution = symbolic.Add(solution, particular)
	}
	return solution.LaTeX(), nil
}

// homogeneousSolution builds the general solution of the homogeneous
// equation from the characteristic roots.
func homogeneousSolution(roots symbolic.QuadraticRoots) symbolic.Expr {
	x := varX()
	switch roots.Kind {
	case symbolic.RootsRepeated:
		return symbolic.Mul(
			symbolic.Add(varC1(), symbolic.Mul(varC2(), x)),
			symbolic.Exp(symbolic.Mul(roots.First, x)),
		)
	case symbolic.RootsComplexPair:
		oscillation := symbolic.Add(
			symbolic.Mul(varC1(), symbolic.Cos(symbolic.Mul(roots.Beta, x))),
			symbolic.Mul(varC2(), symbolic.Sin(symbolic.Mul(roots.Beta, x))),
		)
		return symbolic.Mul(symbolic.Exp(symbolic.Mul(roots.Alpha, x)), oscillation)
	default:
		return symbolic.Add(
			symbolic.Mul(varC1(), symbolic.Exp(symbolic.Mul(roots.First, x))),
			symbolic.Mul(varC2(), symbolic.Exp(symbolic.Mul(roots.Second, x))),
		)
	}
}

// solveIntegratingFactor handles first-order linear equations
// y' + P(x)y = Q(x).
func solveIntegratingFactor(residual symbolic.Expr) (string, error) {
	form, err := extractLinearForm(residual)
	if err != nil {
		return "", err
	}
	if !isZeroExpr(form.a2) {
		return "", fmt.Errorf("%w: the integrating-factor method needs a first-order equation", ErrNoClosedForm)
	}
	return firstOrderLinear(form)
}

func firstOrderLinear(form linearForm) (string, error) {
	if isZeroExpr(form.a1) {
		return "", fmt.Errorf("%w: no derivative of y found", ErrNoClosedForm)
	}

	p := symbolic.Div(form.a0, form.a1)
	q := symbolic.Div(form.g, form.a1)

	integratedP, ok := symbolic.Integrate(p, "x")
	if !ok {
		return "", fmt.Errorf("%w", ErrNoClosedForm)
	}
	mu := symbolic.Exp(integratedP)

	integral, ok := symbolic.Integrate(symbolic.Mul(mu, q), "x")
	if !ok {
		return "", fmt.Errorf("%w", ErrNoClosedForm)
	}

	solution := symbolic.Mul(
		symbolic.Add(integral, varC1()),
		symbolic.Pow(mu, symbolic.Int(-1)),
	)
	return solution.LaTeX(), nil
}

// solveSeparation handles dy/dx = f(x)*g(y).
func solveSeparation(residual symbolic.Expr) (string, error) {
	derivCoeff := symbolic.Expr(symbolic.Int(0))
	rest := symbolic.Expr(symbolic.Int(0))

	for _, term := range symbolic.Terms(residual) {
		free := symbolic.FreeVariables(term)
		if free[symY2] {
			return "", fmt.Errorf("%w: second-order equations are not separable here", ErrNoClosedForm)
		}
		if !free[symY1] {
			rest = symbolic.Add(rest, term)
			continue
		}

		seen := false
		coeff := []symbolic.Expr{}
		for _, factor := range symbolic.Factors(term) {
			if v, ok := factor.(*symbolic.Variable); ok && v.Name() == symY1 {
				if seen {
					return "", fmt.Errorf("%w: the equation is not linear in dy/dx", ErrNoClosedForm)
				}
				seen = true
				continue
			}
			if symbolic.FreeVariables(factor)[symY1] {
				return "", fmt.Errorf("%w: the equation is not linear in dy/dx", ErrNoClosedForm)
			}
			coeff = append(coeff, factor)
		}
		derivCoeff = symbolic.Add(derivCoeff, symbolic.Mul(coeff...))
	}

	if isZeroExpr(derivCoeff) {
		return "", fmt.Errorf("%w: no dy/dx term found", ErrNoClosedForm)
	}

	// residual = derivCoeff*y' + rest = 0, so y' = -rest/derivCoeff.
	rhs := symbolic.Div(symbolic.Neg(rest), derivCoeff)

	xPart, yPart, err := separateFactors(rhs)
	if err != nil {
		return "", err
	}

	integratedX, ok := symbolic.Integrate(xPart, "x")
	if !ok {
		return "", fmt.Errorf("%w", ErrNoClosedForm)
	}

	// Pure x right-hand side: direct integration.
	if !symbolic.FreeVariables(yPart)[symY] {
		solution := symbolic.Add(symbolic.Mul(yPart, integratedX), varC1())
		return solution.LaTeX(), nil
	}

	integratedY, ok := symbolic.Integrate(symbolic.Div(symbolic.Int(1), yPart), symY)
	if !ok {
		return "", fmt.Errorf("%w", ErrNoClosedForm)
	}

	// k*ln|y| = F(x) + C solves explicitly to y = C1*e^(F(x)/k).
	if k, lnY := symbolic.SplitCoefficient(integratedY); isLnAbsY(lnY) {
		inv := new(big.Rat).Inv(k)
		solution := symbolic.Mul(
			varC1(),
			symbolic.Exp(symbolic.Mul(symbolic.FromRat(inv), integratedX)),
		)
		return solution.LaTeX(), nil
	}

	// Otherwise report the implicit solution.
	implicitRHS := symbolic.Add(integratedX, varC1())
	return integratedY.LaTeX() + " = " + implicitRHS.LaTeX(), nil
}

// separateFactors splits a product into its x-dependent and y-dependent
// parts, rejecting any factor that mixes both.
func separateFactors(e symbolic.Expr) (xPart, yPart symbolic.Expr, err error) {
	xFactors := []symbolic.Expr{}
	yFactors := []symbolic.Expr{}
	for _, factor := range symbolic.Factors(e) {
		free := symbolic.FreeVariables(factor)
		hasX := free["x"]
		hasY := free[symY]
		switch {
		case hasX && hasY:
			return nil, nil, fmt.Errorf("%w: the right-hand side does not separate into f(x)*g(y)", ErrNoClosedForm)
		case hasY:
			yFactors = append(yFactors, factor)
		default:
			xFactors = append(xFactors, factor)
		}
	}
	return symbolic.Mul(xFactors...), symbolic.Mul(yFactors...), nil
}

func isLnAbsY(e symbolic.Expr) bool {
	call, ok := e.(*symbolic.Call)
	if !ok || call.FnName() != symbolic.FnLn {
		return false
	}
	inner, ok := call.Arg().(*symbolic.Call)
	if !ok || inner.FnName() != symbolic.FnAbs {
		return false
	}
	v, ok := inner.Arg().(*symbolic.Variable)
	return ok && v.Name() == symY
}
