package symbolic

import (
	"math/big"
)

// RootKind classifies the discriminant of a quadratic.
type RootKind int

const (
	// RootsDistinctReal means two distinct real roots.
	RootsDistinctReal RootKind = iota
	// RootsRepeated means one real root of multiplicity two.
	RootsRepeated
	// RootsComplexPair means a complex conjugate pair alpha ± i*beta.
	RootsComplexPair
)

// QuadraticRoots holds the roots of a*r^2 + b*r + c = 0 in the form the
// characteristic-polynomial solver needs. For a complex pair only Alpha
// and Beta are set; otherwise First and Second carry the real roots
// (equal when repeated). Roots with an irrational square root stay
// symbolic via Sqrt.
type QuadraticRoots struct {
	Kind   RootKind
	First  Expr
	Second Expr
	Alpha  Expr
	Beta   Expr
}

// SolveQuadratic solves a*r^2 + b*r + c = 0 with exact rational
// coefficients, a != 0.
func SolveQuadratic(a, b, c *big.Rat) QuadraticRoots {
	// d = b^2 - 4ac
	d := new(big.Rat).Mul(b, b)
	d.Sub(d, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))

	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negBOver2A := new(big.Rat).Quo(new(big.Rat).Neg(b), twoA)

	switch d.Sign() {
	case 0:
		root := FromRat(negBOver2A)
		return QuadraticRoots{Kind: RootsRepeated, First: root, Second: root}

	case 1:
		if sq, exact := ratSqrt(d); exact {
			offset := new(big.Rat).Quo(sq, twoA)
			return QuadraticRoots{
				Kind:   RootsDistinctReal,
				First:  FromRat(new(big.Rat).Add(negBOver2A, offset)),
				Second: FromRat(new(big.Rat).Sub(negBOver2A, offset)),
			}
		}
		offset := Mul(FromRat(new(big.Rat).Inv(twoA)), Sqrt(FromRat(d)))
		return QuadraticRoots{
			Kind:   RootsDistinctReal,
			First:  Add(FromRat(negBOver2A), offset),
			Second: Sub(FromRat(negBOver2A), offset),
		}

	default:
		negD := new(big.Rat).Neg(d)
		var beta Expr
		if sq, exact := ratSqrt(negD); exact {
			beta = FromRat(new(big.Rat).Quo(sq, new(big.Rat).Abs(twoA)))
		} else {
			beta = Mul(FromRat(new(big.Rat).Inv(new(big.Rat).Abs(twoA))), Sqrt(FromRat(negD)))
		}
		return QuadraticRoots{Kind: RootsComplexPair, Alpha: FromRat(negBOver2A), Beta: beta}
	}
}

// IsCharacteristicRoot reports whether r satisfies a*r^2 + b*r + c = 0.
func IsCharacteristicRoot(a, b, c, r *big.Rat) bool {
	v := new(big.Rat).Mul(a, new(big.Rat).Mul(r, r))
	v.Add(v, new(big.Rat).Mul(b, r))
	v.Add(v, c)
	return v.Sign() == 0
}

// ratSqrt returns the exact rational square root of r >= 0 when both the
// numerator and denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	num, numOK := intSqrt(r.Num())
	if !numOK {
		return nil, false
	}
	den, denOK := intSqrt(r.Denom())
	if !denOK {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

func intSqrt(n *big.Int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	root := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(root, root).Cmp(n) != 0 {
		return nil, false
	}
	return root, true
}
