package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables []string
		want      string
		wantErr   string
	}{
		{
			name:      "arithmetic with precedence",
			input:     "2*x + 3",
			variables: []string{"x"},
			want:      "2*x + 3",
		},
		{
			name:      "double star power operator",
			input:     "x**2 + 1",
			variables: []string{"x"},
			want:      "x^2 + 1",
		},
		{
			name:      "caret power operator",
			input:     "x^3",
			variables: []string{"x"},
			want:      "x^3",
		},
		{
			name:      "unary minus",
			input:     "-x - y",
			variables: []string{"x", "y"},
			want:      "-x - y",
		},
		{
			name:      "whitelisted functions",
			input:     "sin(x)*cos(y)",
			variables: []string{"x", "y"},
			want:      "cos(y)*sin(x)",
		},
		{
			name:      "log is the natural logarithm",
			input:     "log(x)",
			variables: []string{"x"},
			want:      "ln(x)",
		},
		{
			name:      "decimal numbers stay exact",
			input:     "0.5*x",
			variables: []string{"x"},
			want:      "1/2*x",
		},
		{
			name:      "parentheses group",
			input:     "(x + 1)*(x - 1)",
			variables: []string{"x"},
			want:      "(x + 1)*(x - 1)",
		},
		{
			name:      "unknown variable is rejected",
			input:     "x + q",
			variables: []string{"x"},
			wantErr:   `unknown variable "q"`,
		},
		{
			name:      "unknown function is rejected",
			input:     "system(x)",
			variables: []string{"x"},
			wantErr:   `unknown function "system"`,
		},
		{
			name:      "attribute access is rejected",
			input:     "x.__class__",
			variables: []string{"x"},
			wantErr:   "unexpected character",
		},
		{
			name:      "stray equals sign is rejected",
			input:     "x = 1",
			variables: []string{"x"},
			wantErr:   `unexpected "="`,
		},
		{
			name:      "unbalanced parenthesis",
			input:     "sin(x",
			variables: []string{"x"},
			wantErr:   `expected ")"`,
		},
		{
			name:      "empty input",
			input:     "",
			variables: []string{"x"},
			wantErr:   "expected a number, variable or function",
		},
		{
			name:      "double dot number",
			input:     "1..5",
			variables: []string{"x"},
			wantErr:   "malformed number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.variables...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParse_Eval(t *testing.T) {
	e, err := Parse("2*x^2 - sin(y)/2 + 1", "x", "y")
	require.NoError(t, err)

	got, err := e.Eval(map[string]float64{"x": 3, "y": 0})
	require.NoError(t, err)
	assert.InDelta(t, 19.0, got, 1e-9)
}

func TestParseODE(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantVars []string
		wantErr  string
	}{
		{
			name:     "second order equation",
			input:    "D(y,x,2) + D(y,x) + y(x)",
			wantVars: []string{"y''", "y'", "y"},
		},
		{
			name:     "derivative order defaults to one",
			input:    "D(y,x) - x*y(x)",
			wantVars: []string{"y'", "y", "x"},
		},
		{
			name:     "explicit first order",
			input:    "D(y,x,1)",
			wantVars: []string{"y'"},
		},
		{
			name:    "third derivative is rejected",
			input:   "D(y,x,3)",
			wantErr: "only first and second derivatives are supported",
		},
		{
			name:    "derivative of another function is rejected",
			input:   "D(z,x)",
			wantErr: "only derivatives of y are supported",
		},
		{
			name:    "function of another variable is rejected",
			input:   "y(t)",
			wantErr: "the unknown function must be y(x)",
		},
		{
			name:    "bare y is not valid in the formal syntax",
			input:   "y + 1",
			wantErr: `unknown variable "y"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseODE(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			free := FreeVariables(got)
			for _, v := range tt.wantVars {
				assert.True(t, free[v], "expected %q among free variables %v", v, free)
			}
		})
	}
}
