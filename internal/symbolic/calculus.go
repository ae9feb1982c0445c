package symbolic

import (
	"math/big"
)

// Integrate returns an antiderivative of e with respect to name, without
// the integration constant. The second result reports whether the
// expression matched one of the supported patterns:
//
//	constants, x^n (including 1/x), exp(kx), sin(kx), cos(kx),
//	x^n*exp(kx), exp(ax)*sin(bx), exp(ax)*cos(bx),
//	sums and constant multiples of the above.
func Integrate(e Expr, name string) (Expr, bool) {
	x := Var(name)

	switch v := e.(type) {
	case *Number:
		return Mul(v, x), true

	case *Variable:
		if v.name == name {
			return Mul(Rat(1, 2), Pow(x, Int(2))), true
		}
		return Mul(v, x), true

	case *Sum:
		parts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			p, ok := Integrate(t, name)
			if !ok {
				return nil, false
			}
			parts[i] = p
		}
		return Add(parts...), true

	case *Power:
		if base, ok := v.base.(*Variable); ok && base.name == name {
			if n, ok := v.exp.(*Number); ok {
				if n.val.Cmp(ratNegOne) == 0 {
					return Ln(Abs(x)), true
				}
				next := new(big.Rat).Add(n.val, ratOne)
				return Mul(FromRat(new(big.Rat).Inv(next)), Pow(x, FromRat(next))), true
			}
		}
		if free := FreeVariables(v); !free[name] {
			return Mul(v, x), true
		}
		return nil, false

	case *Call:
		k, ok := linearCoefficient(v.arg, name)
		if !ok {
			return nil, false
		}
		inv := FromRat(new(big.Rat).Inv(k))
		switch v.fn {
		case FnExp:
			return Mul(inv, Exp(v.arg)), true
		case FnSin:
			return Mul(Neg(inv), Cos(v.arg)), true
		case FnCos:
			return Mul(inv, Sin(v.arg)), true
		}
		return nil, false

	case *Product:
		return integrateProduct(v, name)
	}
	return nil, false
}

func integrateProduct(p *Product, name string) (Expr, bool) {
	// Pull out all factors free of the integration variable.
	var constant []Expr
	var varying []Expr
	for _, f := range p.factors {
		if free := FreeVariables(f); free[name] {
			varying = append(varying, f)
		} else {
			constant = append(constant, f)
		}
	}
	if len(varying) == 0 {
		return Mul(append(constant, Var(name))...), true
	}
	if len(varying) == 1 {
		inner, ok := Integrate(varying[0], name)
		if !ok {
			return nil, false
		}
		return Mul(append(constant, inner)...), true
	}
	if len(varying) != 2 {
		return nil, false
	}

	// Normalize the pair so a power/variable comes first.
	a, b := varying[0], varying[1]
	if _, ok := a.(*Call); ok {
		a, b = b, a
	}

	if call, ok := b.(*Call); ok {
		kb, okb := linearCoefficient(call.arg, name)
		if !okb {
			return nil, false
		}
		switch inner := a.(type) {
		case *Variable:
			if inner.name == name && call.fn == FnExp {
				result, ok := integratePolyExp(1, kb, name)
				if !ok {
					return nil, false
				}
				return Mul(append(constant, result)...), true
			}
		case *Power:
			base, okBase := inner.base.(*Variable)
			expNum, okExp := inner.exp.(*Number)
			if okBase && base.name == name && okExp && expNum.IsInt() && !expNum.IsNegative() && call.fn == FnExp {
				result, ok := integratePolyExp(expNum.val.Num().Int64(), kb, name)
				if !ok {
					return nil, false
				}
				return Mul(append(constant, result)...), true
			}
		case *Call:
			// exp(ax)*sin(bx) and exp(ax)*cos(bx).
			ka, oka := linearCoefficient(inner.arg, name)
			if !oka {
				return nil, false
			}
			result, ok := integrateExpTrig(inner, call, ka, kb)
			if !ok {
				return nil, false
			}
			return Mul(append(constant, result)...), true
		}
	}
	return nil, false
}

// integratePolyExp computes the closed form of ∫ x^n e^{kx} dx by the
// reduction I(n) = x^n e^{kx}/k - (n/k) I(n-1).
func integratePolyExp(n int64, k *big.Rat, name string) (Expr, bool) {
	if k.Sign() == 0 {
		return nil, false
	}
	x := Var(name)
	exp := Exp(Mul(FromRat(k), x))
	inv := FromRat(new(big.Rat).Inv(k))

	result := Mul(inv, exp) // I(0)
	for i := int64(1); i <= n; i++ {
		result = Sub(
			Mul(inv, Pow(x, Int(i)), exp),
			Mul(FromRat(new(big.Rat).Mul(big.NewRat(i, 1), new(big.Rat).Inv(k))), result),
		)
	}
	return result, true
}

// integrateExpTrig computes ∫ e^{ax} sin(bx) dx and ∫ e^{ax} cos(bx) dx.
func integrateExpTrig(expCall, trigCall *Call, a, b *big.Rat) (Expr, bool) {
	if expCall.fn != FnExp {
		expCall, trigCall = trigCall, expCall
		a, b = b, a
	}
	if expCall.fn != FnExp || (trigCall.fn != FnSin && trigCall.fn != FnCos) {
		return nil, false
	}
	denom := new(big.Rat).Add(new(big.Rat).Mul(a, a), new(big.Rat).Mul(b, b))
	if denom.Sign() == 0 {
		return nil, false
	}
	inv := FromRat(new(big.Rat).Inv(denom))
	e := Exp(expCall.arg)
	sin := apply(FnSin, trigCall.arg)
	cos := apply(FnCos, trigCall.arg)
	if trigCall.fn == FnSin {
		// e^{ax}(a sin(bx) - b cos(bx)) / (a^2+b^2)
		return Mul(inv, e, Sub(Mul(FromRat(a), sin), Mul(FromRat(b), cos))), true
	}
	// e^{ax}(a cos(bx) + b sin(bx)) / (a^2+b^2)
	return Mul(inv, e, Add(Mul(FromRat(a), cos), Mul(FromRat(b), sin))), true
}

// linearCoefficient matches arg = k*name for rational k and returns k.
func linearCoefficient(arg Expr, name string) (*big.Rat, bool) {
	switch v := arg.(type) {
	case *Variable:
		if v.name == name {
			return big.NewRat(1, 1), true
		}
	case *Product:
		coeff, rest := splitCoefficient(v)
		if inner, ok := rest.(*Variable); ok && inner.name == name {
			return coeff, true
		}
	}
	return nil, false
}
