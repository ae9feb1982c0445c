package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// The parser is a small recursive-descent evaluator over a closed
// grammar. It is restricted by construction: only numbers, the variables
// the caller names, the fixed function whitelist and the arithmetic
// operators + - * / ^ are accepted, so no user input can reach anything
// resembling general code evaluation.
//
//	expr   := term (('+'|'-') term)*
//	term   := unary (('*'|'/') unary)*
//	unary  := '-' unary | power
//	power  := atom (('^'|'**') unary)?          right associative
//	atom   := number | variable | func '(' expr ')' | '(' expr ')'
//
// "**" is accepted as an alias of "^" and "log" as the natural log.

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// ParseError describes why an expression was rejected.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid expression %q: %s at position %d", e.Input, e.Msg, e.Pos)
}

// funcWhitelist maps accepted function names to kernel constructors.
var funcWhitelist = map[string]func(Expr) Expr{
	"sin":  Sin,
	"cos":  Cos,
	"tan":  Tan,
	"exp":  Exp,
	"ln":   Ln,
	"log":  Ln,
	"sqrt": Sqrt,
	"abs":  Abs,
}

type parser struct {
	input  string
	tokens []token
	pos    int
	vars   map[string]bool
	ode    bool
}

// Parse parses an arithmetic expression over the named variables.
func Parse(input string, variables ...string) (Expr, error) {
	return parse(input, variables, false)
}

// ParseODE parses an expression in the formal derivative syntax produced
// by the notation normalizer: D(y,x) and D(y,x,2) are the first and
// second derivative of the unknown function, y(x) is the function
// itself. The independent variable is x.
func ParseODE(input string) (Expr, error) {
	return parse(input, []string{"x"}, true)
}

func parse(input string, variables []string, ode bool) (Expr, error) {
	vars := make(map[string]bool, len(variables))
	for _, v := range variables {
		vars[v] = true
	}
	p := &parser{input: input, vars: vars, ode: ode}
	if err := p.lex(); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorAt(tok, fmt.Sprintf("unexpected %q", tok.text))
	}
	return e, nil
}

func (p *parser) lex() error {
	src := p.input
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			seenDot := false
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				if src[i] == '.' {
					if seenDot {
						return &ParseError{Input: p.input, Pos: i, Msg: "malformed number"}
					}
					seenDot = true
				}
				i++
			}
			p.tokens = append(p.tokens, token{tokNumber, src[start:i], start})
		case unicode.IsLetter(rune(c)):
			start := i
			for i < len(src) && (unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i]))) {
				i++
			}
			p.tokens = append(p.tokens, token{tokIdent, src[start:i], start})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				p.tokens = append(p.tokens, token{tokOp, "^", i})
				i += 2
			} else {
				p.tokens = append(p.tokens, token{tokOp, "*", i})
				i++
			}
		case c == '+' || c == '-' || c == '/' || c == '^' || c == '=':
			p.tokens = append(p.tokens, token{tokOp, string(c), i})
			i++
		case c == '(':
			p.tokens = append(p.tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			p.tokens = append(p.tokens, token{tokRParen, ")", i})
			i++
		case c == ',':
			p.tokens = append(p.tokens, token{tokComma, ",", i})
			i++
		default:
			return &ParseError{Input: p.input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	p.tokens = append(p.tokens, token{tokEOF, "", len(src)})
	return nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorAt(t, "expected "+what)
	}
	return t, nil
}

func (p *parser) errorAt(t token, msg string) error {
	return &ParseError{Input: p.input, Pos: t.pos, Msg: msg}
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if tok.text == "+" {
			left = Add(left, right)
		} else {
			left = Sub(left, right)
		}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.text == "*" {
			left = Mul(left, right)
		} else {
			left = Div(left, right)
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if tok := p.peek(); tok.kind == tokOp && tok.text == "-" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(inner), nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind == tokOp && tok.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return parseNumber(tok.text, p.input, tok.pos)

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return inner, nil

	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		if p.vars[tok.text] {
			return Var(tok.text), nil
		}
		return nil, p.errorAt(tok, fmt.Sprintf("unknown variable %q (allowed: %s)", tok.text, p.allowedVars()))
	}
	return nil, p.errorAt(tok, "expected a number, variable or function")
}

func (p *parser) parseCall(name token) (Expr, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}

	if p.ode {
		switch name.text {
		case "D":
			return p.parseDerivative()
		case "y":
			// y(x): the unknown function applied to the independent variable.
			argTok, err := p.expect(tokIdent, `"x"`)
			if err != nil {
				return nil, err
			}
			if argTok.text != "x" {
				return nil, p.errorAt(argTok, "the unknown function must be y(x)")
			}
			if _, err := p.expect(tokRParen, `")"`); err != nil {
				return nil, err
			}
			return Var("y"), nil
		}
	}

	fn, ok := funcWhitelist[name.text]
	if !ok {
		return nil, p.errorAt(name, fmt.Sprintf("unknown function %q (allowed: sin, cos, tan, exp, log, sqrt, abs)", name.text))
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	return fn(arg), nil
}

// parseDerivative consumes the remainder of D(y,x) or D(y,x,2).
func (p *parser) parseDerivative() (Expr, error) {
	fnTok, err := p.expect(tokIdent, `"y"`)
	if err != nil {
		return nil, err
	}
	if fnTok.text != "y" {
		return nil, p.errorAt(fnTok, "only derivatives of y are supported")
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return nil, err
	}
	varTok, err := p.expect(tokIdent, `"x"`)
	if err != nil {
		return nil, err
	}
	if varTok.text != "x" {
		return nil, p.errorAt(varTok, "derivatives must be taken with respect to x")
	}

	order := 1
	if p.peek().kind == tokComma {
		p.next()
		ordTok, err := p.expect(tokNumber, "a derivative order")
		if err != nil {
			return nil, err
		}
		switch ordTok.text {
		case "1":
			order = 1
		case "2":
			order = 2
		default:
			return nil, p.errorAt(ordTok, "only first and second derivatives are supported")
		}
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	if order == 2 {
		return Var("y''"), nil
	}
	return Var("y'"), nil
}

func (p *parser) allowedVars() string {
	names := make([]string, 0, len(p.vars))
	for v := range p.vars {
		names = append(names, v)
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func parseNumber(text, input string, pos int) (Expr, error) {
	if dot := strings.IndexByte(text, '.'); dot >= 0 {
		intPart := text[:dot]
		fracPart := text[dot+1:]
		if intPart == "" && fracPart == "" {
			return nil, &ParseError{Input: input, Pos: pos, Msg: "malformed number"}
		}
		digits := intPart + fracPart
		num, ok := newRatFromDecimal(digits, len(fracPart))
		if !ok {
			return nil, &ParseError{Input: input, Pos: pos, Msg: "malformed number"}
		}
		return num, nil
	}
	num, ok := newRatFromDecimal(text, 0)
	if !ok {
		return nil, &ParseError{Input: input, Pos: pos, Msg: "malformed number"}
	}
	return num, nil
}

func newRatFromDecimal(digits string, fracDigits int) (*Number, bool) {
	r, ok := new(big.Rat).SetString(digits)
	if !ok {
		return nil, false
	}
	ten := big.NewRat(10, 1)
	for i := 0; i < fracDigits; i++ {
		r.Quo(r, ten)
	}
	return FromRat(r), true
}
