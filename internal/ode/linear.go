package ode

import (
	"fmt"
	"math/big"

	"github.com/at-ishikawa/odelab/internal/symbolic"
)

// The reserved variable names the parser emits for the unknown function
// and its derivatives.
const (
	symY  = "y"
	symY1 = "y'"
	symY2 = "y''"
)

// linearForm is the equation a2*y'' + a1*y' + a0*y = g(x).
type linearForm struct {
	a2, a1, a0 symbolic.Expr
	g          symbolic.Expr
}

func isUnknownSymbol(name string) bool {
	return name == symY || name == symY1 || name == symY2
}

func containsUnknown(e symbolic.Expr) bool {
	for name := range symbolic.FreeVariables(e) {
		if isUnknownSymbol(name) {
			return true
		}
	}
	return false
}

// extractLinearForm splits the residual of an equation into the linear
// form. Terms where y appears nonlinearly (powers, products of y-terms,
// y inside a function argument) are rejected.
func extractLinearForm(residual symbolic.Expr) (linearForm, error) {
	form := linearForm{
		a2: symbolic.Int(0),
		a1: symbolic.Int(0),
		a0: symbolic.Int(0),
		g:  symbolic.Int(0),
	}

	for _, term := range symbolic.Terms(residual) {
		if !containsUnknown(term) {
			// Forcing terms move to the right-hand side.
			form.g = symbolic.Sub(form.g, term)
			continue
		}

		symbol := ""
		coeff := []symbolic.Expr{}
		for _, factor := range symbolic.Factors(term) {
			v, isVar := factor.(*symbolic.Variable)
			if isVar && isUnknownSymbol(v.Name()) {
				if symbol != "" {
					return form, fmt.Errorf("%w: the equation is not linear in y", ErrNoClosedForm)
				}
				symbol = v.Name()
				continue
			}
			if containsUnknown(factor) {
				// y under a power or inside a function argument.
				return form, fmt.Errorf("%w: the equation is not linear in y", ErrNoClosedForm)
			}
			coeff = append(coeff, factor)
		}

		c := symbolic.Mul(coeff...)
		switch symbol {
		case symY2:
			form.a2 = symbolic.Add(form.a2, c)
		case symY1:
			form.a1 = symbolic.Add(form.a1, c)
		case symY:
			form.a0 = symbolic.Add(form.a0, c)
		}
	}
	return form, nil
}

// constantCoefficients resolves the three coefficients to exact
// rationals, failing when any of them still depends on x.
func (f linearForm) constantCoefficients() (a2, a1, a0 *big.Rat, err error) {
	a2, ok := symbolic.ConstantRat(f.a2)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: the coefficient of y'' is not constant", ErrNoClosedForm)
	}
	a1, ok = symbolic.ConstantRat(f.a1)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: the coefficient of y' is not constant", ErrNoClosedForm)
	}
	a0, ok = symbolic.ConstantRat(f.a0)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: the coefficient of y is not constant", ErrNoClosedForm)
	}
	return a2, a1, a0, nil
}
