package ode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolver_Solve(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		equation     string
		wantContains []string
		wantErrIs    error
		wantErrText  string
	}{
		{
			name:         "characteristic with pure imaginary roots is sinusoidal",
			method:       MethodCharacteristic,
			equation:     "y'' + y = 0",
			wantContains: []string{"C_{1}", "C_{2}", "\\cos", "\\sin"},
		},
		{
			name:         "characteristic with distinct real roots",
			method:       MethodCharacteristic,
			equation:     "y'' - 3*y' + 2*y = 0",
			wantContains: []string{"C_{1}", "C_{2}", "\\exp"},
		},
		{
			name:         "characteristic with a repeated root",
			method:       MethodCharacteristic,
			equation:     "y'' + 2*y' + y = 0",
			wantContains: []string{"C_{1}", "C_{2} x", "\\exp"},
		},
		{
			name:         "characteristic with damping renders both factors",
			method:       MethodCharacteristic,
			equation:     "y'' + 2*y' + 5*y = 0",
			wantContains: []string{"\\exp", "\\cos\\left(2 x\\right)", "\\sin\\left(2 x\\right)"},
		},
		{
			name:         "undetermined coefficients with cosine forcing",
			method:       MethodUndetermined,
			equation:     "y'' + y = cos(2*x)",
			wantContains: []string{"C_{1}", "\\cos\\left(2 x\\right)", "\\frac{1}{3}"},
		},
		{
			name:         "undetermined coefficients with polynomial forcing",
			method:       MethodUndetermined,
			equation:     "y'' + y = x",
			wantContains: []string{"C_{1}", "x"},
		},
		{
			name:         "undetermined coefficients with resonant exponential",
			method:       MethodUndetermined,
			equation:     "y'' - y = exp(x)",
			wantContains: []string{"C_{1}", "\\frac{1}{2}", "x"},
		},
		{
			name:         "integrating factor for a first order linear equation",
			method:       MethodIntegratingFactor,
			equation:     "y' + 2*y = x",
			wantContains: []string{"C_{1}", "\\exp"},
		},
		{
			name:         "separation with an explicit exponential solution",
			method:       MethodSeparation,
			equation:     "dy/dx = x*y",
			wantContains: []string{"C_{1}", "\\exp"},
		},
		{
			name:         "separation with a pure x right-hand side",
			method:       MethodSeparation,
			equation:     "dy/dx = 2*x",
			wantContains: []string{"C_{1}", "x^{2}"},
		},
		{
			name:        "unknown method",
			method:      "laplace",
			equation:    "y'' + y = 0",
			wantErrIs:   ErrUnknownMethod,
			wantErrText: "Unknown method",
		},
		{
			name:      "unparseable equation",
			method:    MethodCharacteristic,
			equation:  "this is not an equation @@",
			wantErrIs: ErrUnparseable,
		},
		{
			name:        "nonlinear equation",
			method:      MethodCharacteristic,
			equation:    "y*y'' = 0",
			wantErrIs:   ErrNoClosedForm,
			wantErrText: "not linear in y",
		},
		{
			name:        "non separable right-hand side",
			method:      MethodSeparation,
			equation:    "dy/dx = x + y",
			wantErrIs:   ErrNoClosedForm,
			wantErrText: "does not separate",
		},
		{
			name:        "integrating factor rejects second order equations",
			method:      MethodIntegratingFactor,
			equation:    "y'' + y = 0",
			wantErrIs:   ErrNoClosedForm,
			wantErrText: "first-order",
		},
	}

	solver := NewSolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := solver.Solve(tt.method, tt.equation, nil)

			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				if tt.wantErrText != "" {
					assert.Contains(t, err.Error(), tt.wantErrText)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, methodSteps[tt.method], got.Steps)
			for _, want := range tt.wantContains {
				assert.Contains(t, got.Latex, want, "latex: %s", got.Latex)
			}
		})
	}
}

func TestSolver_Solve_EquationWithoutEquals(t *testing.T) {
	// A missing right-hand side reads as "= 0".
	solver := NewSolver()
	withEquals, err := solver.Solve(MethodCharacteristic, "y'' + y = 0", nil)
	require.NoError(t, err)
	without, err := solver.Solve(MethodCharacteristic, "y'' + y", nil)
	require.NoError(t, err)
	assert.Equal(t, withEquals.Latex, without.Latex)
}

func TestSolver_Solve_InitialConditionsAccepted(t *testing.T) {
	// Initial conditions are part of the request format but the general
	// solution keeps its free constants.
	solver := NewSolver()
	got, err := solver.Solve(MethodSeparation, "dy/dx = x*y", map[string]float64{"y(0)": 1})
	require.NoError(t, err)
	assert.Contains(t, got.Latex, "C_{1}")
}

func TestSolver_Solve_ImplicitSeparationResult(t *testing.T) {
	// 1/y^2 does not integrate to a logarithm, so the result stays as an
	// implicit equation.
	solver := NewSolver()
	got, err := solver.Solve(MethodSeparation, "dy/dx = y^2", nil)
	require.NoError(t, err)
	assert.Contains(t, got.Latex, "=")
	assert.Contains(t, got.Latex, "C_{1}")
}
