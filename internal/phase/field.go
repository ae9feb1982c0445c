// Package phase renders phase portraits of two-dimensional autonomous
// systems dx/dt = u(x,y), dy/dt = v(x,y). The four canned portraits use
// fixed vector fields; custom portraits evaluate user expressions
// through the restricted symbolic parser.
package phase

import (
	"errors"
	"fmt"
	"math"

	"github.com/at-ishikawa/odelab/internal/symbolic"
)

// Portrait type names accepted by the API.
const (
	TypeSaddle    = "saddle"
	TypeNodalSink = "nodal_sink"
	TypeSpiral    = "spiral"
	TypeCenter    = "center"
	TypeCustom    = "custom"
)

// GridSize is the fixed number of samples per axis.
const GridSize = 20

// ErrBadRange is returned when a range has min >= max.
var ErrBadRange = errors.New("range minimum must be below its maximum")

// Request describes one portrait. DXdt and DYdt are only consulted for
// custom portraits; an empty or unknown Type renders as custom, matching
// the original route behavior.
type Request struct {
	Type   string
	DXdt   string
	DYdt   string
	XRange [2]float64
	YRange [2]float64
}

// vectorField evaluates the flow direction at a point. NaN or Inf
// components mark points where the field is undefined.
type vectorField func(x, y float64) (u, v float64)

// Field holds the sampled vector field of a portrait.
type Field struct {
	Title  string
	XRange [2]float64
	YRange [2]float64
	// U and V are GridSize x GridSize samples, row-major with rows
	// running along increasing y.
	U [][]float64
	V [][]float64
}

// BuildField resolves the request to a concrete field and samples it on
// the fixed grid.
func BuildField(req Request) (*Field, error) {
	if req.XRange[0] >= req.XRange[1] {
		return nil, fmt.Errorf("%w: x_range %v", ErrBadRange, req.XRange)
	}
	if req.YRange[0] >= req.YRange[1] {
		return nil, fmt.Errorf("%w: y_range %v", ErrBadRange, req.YRange)
	}

	var field vectorField
	var title string
	switch req.Type {
	case TypeSaddle:
		field = func(x, y float64) (float64, float64) { return x, -y }
		title = "Saddle Point"
	case TypeNodalSink:
		field = func(x, y float64) (float64, float64) { return -x, -y }
		title = "Nodal Sink"
	case TypeSpiral:
		field = func(x, y float64) (float64, float64) { return -x - y, x - y }
		title = "Spiral Sink"
	case TypeCenter:
		field = func(x, y float64) (float64, float64) { return y, -x }
		title = "Center (Circular Orbits)"
	default:
		var err error
		field, err = compileCustomField(req.DXdt, req.DYdt)
		if err != nil {
			return nil, err
		}
		title = fmt.Sprintf("Phase Portrait: dx/dt = %s, dy/dt = %s", req.DXdt, req.DYdt)
	}

	f := &Field{
		Title:  title,
		XRange: req.XRange,
		YRange: req.YRange,
		U:      make([][]float64, GridSize),
		V:      make([][]float64, GridSize),
	}
	for j := 0; j < GridSize; j++ {
		f.U[j] = make([]float64, GridSize)
		f.V[j] = make([]float64, GridSize)
		y := f.YAt(j)
		for i := 0; i < GridSize; i++ {
			u, v := field(f.XAt(i), y)
			f.U[j][i] = u
			f.V[j][i] = v
		}
	}
	return f, nil
}

// XAt and YAt map grid indices to world coordinates.
func (f *Field) XAt(i int) float64 {
	return f.XRange[0] + (f.XRange[1]-f.XRange[0])*float64(i)/float64(GridSize-1)
}

func (f *Field) YAt(j int) float64 {
	return f.YRange[0] + (f.YRange[1]-f.YRange[0])*float64(j)/float64(GridSize-1)
}

// At bilinearly interpolates the sampled field at a world coordinate.
// The second result is false outside the sampled ranges or where any
// surrounding sample is undefined.
func (f *Field) At(x, y float64) (u, v float64, ok bool) {
	fx := (x - f.XRange[0]) / (f.XRange[1] - f.XRange[0]) * float64(GridSize-1)
	fy := (y - f.YRange[0]) / (f.YRange[1] - f.YRange[0]) * float64(GridSize-1)
	if fx < 0 || fy < 0 || fx > float64(GridSize-1) || fy > float64(GridSize-1) {
		return 0, 0, false
	}

	i0 := int(fx)
	j0 := int(fy)
	if i0 >= GridSize-1 {
		i0 = GridSize - 2
	}
	if j0 >= GridSize-1 {
		j0 = GridSize - 2
	}
	tx := fx - float64(i0)
	ty := fy - float64(j0)

	lerp2 := func(grid [][]float64) float64 {
		a := grid[j0][i0]*(1-tx) + grid[j0][i0+1]*tx
		b := grid[j0+1][i0]*(1-tx) + grid[j0+1][i0+1]*tx
		return a*(1-ty) + b*ty
	}
	u = lerp2(f.U)
	v = lerp2(f.V)
	if math.IsNaN(u) || math.IsNaN(v) || math.IsInf(u, 0) || math.IsInf(v, 0) {
		return 0, 0, false
	}
	return u, v, true
}

// compileCustomField parses the two expressions with the restricted
// grammar and returns an evaluator over x and y.
func compileCustomField(dxdt, dydt string) (vectorField, error) {
	uExpr, err := symbolic.Parse(dxdt, "x", "y")
	if err != nil {
		return nil, fmt.Errorf("error evaluating dx/dt: %w; use expressions in x and y (e.g. 'y', '-x - y', 'sin(x)')", err)
	}
	vExpr, err := symbolic.Parse(dydt, "x", "y")
	if err != nil {
		return nil, fmt.Errorf("error evaluating dy/dt: %w; use expressions in x and y (e.g. 'y', '-x - y', 'sin(x)')", err)
	}

	env := map[string]float64{}
	return func(x, y float64) (float64, float64) {
		env["x"], env["y"] = x, y
		u, uErr := uExpr.Eval(env)
		v, vErr := vExpr.Eval(env)
		if uErr != nil || vErr != nil {
			return math.NaN(), math.NaN()
		}
		return u, v
	}, nil
}
