package ode

import "strings"

// Formal derivative tokens understood by symbolic.ParseODE.
const (
	TokenFirstDerivative  = "D(y,x)"
	TokenSecondDerivative = "D(y,x,2)"
	TokenFunction         = "y(x)"
)

// Temporary markers keep already-rewritten tokens out of reach of the
// later rules. They are single bytes that cannot appear in user input
// accepted by the lexer.
const (
	markFirst  = "\x01"
	markSecond = "\x02"
	markFunc   = "\x03"
)

// Normalize rewrites informal derivative notation into the formal
// syntax. The substitution order is load-bearing: y'' must be rewritten
// before y', otherwise y'' would decay into a first-derivative token
// followed by a stray prime.
func Normalize(equation string) string {
	s := equation

	// Rule 1: dy/dx is the first derivative.
	s = strings.ReplaceAll(s, "dy/dx", markFirst)
	// Rule 2: y'' before rule 3 can see it.
	s = strings.ReplaceAll(s, "y''", markSecond)
	// Rule 3: remaining primes are first derivatives.
	s = strings.ReplaceAll(s, "y'", markFirst)
	// Rule 4: any remaining standalone y is the unknown function.
	s = replaceStandaloneY(s)

	s = strings.ReplaceAll(s, markFirst, TokenFirstDerivative)
	s = strings.ReplaceAll(s, markSecond, TokenSecondDerivative)
	s = strings.ReplaceAll(s, markFunc, TokenFunction)
	return s
}

// replaceStandaloneY substitutes the function marker for every y that is
// not part of a longer identifier.
func replaceStandaloneY(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != 'y' {
			sb.WriteByte(s[i])
			continue
		}
		if i > 0 && isWordByte(s[i-1]) {
			sb.WriteByte('y')
			continue
		}
		if i+1 < len(s) && isWordByte(s[i+1]) {
			sb.WriteByte('y')
			continue
		}
		sb.WriteString(markFunc)
	}
	return sb.String()
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
