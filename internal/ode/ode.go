// Package ode turns informally written ordinary differential equations
// into closed-form solutions. It normalizes user notation into the
// parser's formal derivative syntax, extracts the linear form of the
// equation and applies one of the four classical solution methods.
package ode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/odelab/internal/symbolic"
)

// Method names accepted by Solve. They match the public API values.
const (
	MethodSeparation        = "separation"
	MethodIntegratingFactor = "integrating_factor"
	MethodCharacteristic    = "characteristic"
	MethodUndetermined      = "undetermined"
)

// Solution is a solved equation rendered for display.
type Solution struct {
	// Latex is the right-hand side of y(x) = ..., or a full implicit
	// equation when no explicit form exists.
	Latex string
	// Steps are the static per-method phase labels shown to students.
	Steps []string
}

var (
	// ErrUnknownMethod is returned for a method value outside the four
	// supported ones.
	ErrUnknownMethod = errors.New("Unknown method")

	// ErrUnparseable means the input could not be read as an equation.
	ErrUnparseable = errors.New("could not parse the equation")

	// ErrNoClosedForm means the equation parsed but the chosen method
	// cannot produce a closed-form solution. The text is the historical
	// fallback sentence shown to users.
	ErrNoClosedForm = errors.New("Could not automatically solve. Please check the format.")
)

var methodSteps = map[string][]string{
	MethodSeparation:        {"Separated variables", "Integrated both sides", "Applied initial conditions"},
	MethodIntegratingFactor: {"Identified P(x) and Q(x)", "Calculated integrating factor", "Multiplied through", "Integrated"},
	MethodCharacteristic:    {"Found characteristic equation", "Solved for roots", "Constructed general solution"},
	MethodUndetermined:      {"Found homogeneous solution", "Guessed particular solution form", "Determined coefficients", "Combined solutions"},
}

// Solver solves ODEs. It is stateless; the zero value is usable.
type Solver struct{}

func NewSolver() *Solver { return &Solver{} }

// Solve normalizes, parses and solves the equation with the named
// method. Initial conditions are accepted for API compatibility but the
// general solution is returned with free constants, as the original
// behavior of this endpoint.
func (s *Solver) Solve(method, equation string, initialConditions map[string]float64) (Solution, error) {
	steps, ok := methodSteps[method]
	if !ok {
		return Solution{}, ErrUnknownMethod
	}

	residual, err := parseEquation(equation)
	if err != nil {
		return Solution{}, err
	}

	var latex string
	switch method {
	case MethodSeparation:
		latex, err = solveSeparation(residual)
	case MethodIntegratingFactor:
		latex, err = solveIntegratingFactor(residual)
	case MethodCharacteristic, MethodUndetermined:
		latex, err = solveConstantCoefficients(residual)
	}
	if err != nil {
		return Solution{}, err
	}
	return Solution{Latex: latex, Steps: steps}, nil
}

// parseEquation normalizes the notation and parses "lhs = rhs" into the
// residual lhs - rhs. A missing "=" is read as "expr = 0".
func parseEquation(equation string) (symbolic.Expr, error) {
	normalized := Normalize(equation)

	lhsSrc, rhsSrc, found := strings.Cut(normalized, "=")
	if !found {
		rhsSrc = "0"
	}
	if strings.TrimSpace(lhsSrc) == "" {
		return nil, fmt.Errorf("%w: empty left-hand side", ErrUnparseable)
	}

	lhs, err := symbolic.ParseODE(lhsSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	rhs, err := symbolic.ParseODE(rhsSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return symbolic.Sub(lhs, rhs), nil
}
