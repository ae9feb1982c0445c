package phase

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

// Canvas and plot layout in pixels.
const (
	imageWidth  = 1000
	imageHeight = 1000

	marginLeft   = 90
	marginRight  = 40
	marginTop    = 70
	marginBottom = 80
)

// Streamline tracing parameters. Steps are sized relative to the plot
// window so density stays consistent across ranges.
const (
	maxTraceSteps = 600
	stepFraction  = 0.004
	minSpeed      = 1e-9
	maskCells     = 28
)

// Renderer draws phase portraits as PNG images. The zero value renders
// with the default layout.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render builds the field for the request and returns an encoded PNG.
func (r *Renderer) Render(req Request) ([]byte, error) {
	field, err := BuildField(req)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	p := newPlotArea(field)
	p.drawGrid(dc)
	p.drawZeroAxes(dc)
	p.drawStreamlines(dc, field)
	p.drawFrame(dc)
	p.drawLabels(dc, field.Title)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// plotArea maps world coordinates into the pixel rectangle left for the
// plot after the margins.
type plotArea struct {
	xMin, xMax float64
	yMin, yMax float64
	px, py     float64
	pw, ph     float64
}

func newPlotArea(f *Field) plotArea {
	return plotArea{
		xMin: f.XRange[0], xMax: f.XRange[1],
		yMin: f.YRange[0], yMax: f.YRange[1],
		px: marginLeft,
		py: marginTop,
		pw: imageWidth - marginLeft - marginRight,
		ph: imageHeight - marginTop - marginBottom,
	}
}

func (p plotArea) toPixel(x, y float64) (float64, float64) {
	sx := p.px + (x-p.xMin)/(p.xMax-p.xMin)*p.pw
	// Pixel y grows downward.
	sy := p.py + (p.yMax-y)/(p.yMax-p.yMin)*p.ph
	return sx, sy
}

func (p plotArea) contains(x, y float64) bool {
	return x >= p.xMin && x <= p.xMax && y >= p.yMin && y <= p.yMax
}

// drawGrid draws faint grid lines at the tick positions.
func (p plotArea) drawGrid(dc *gg.Context) {
	dc.SetRGBA(0.5, 0.5, 0.5, 0.3)
	dc.SetLineWidth(1)
	for _, x := range ticks(p.xMin, p.xMax) {
		sx, _ := p.toPixel(x, p.yMin)
		dc.DrawLine(sx, p.py, sx, p.py+p.ph)
		dc.Stroke()
	}
	for _, y := range ticks(p.yMin, p.yMax) {
		_, sy := p.toPixel(p.xMin, y)
		dc.DrawLine(p.px, sy, p.px+p.pw, sy)
		dc.Stroke()
	}
}

// drawZeroAxes draws the x = 0 and y = 0 lines when they fall inside
// the window.
func (p plotArea) drawZeroAxes(dc *gg.Context) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	if p.xMin < 0 && p.xMax > 0 {
		sx, _ := p.toPixel(0, p.yMin)
		dc.DrawLine(sx, p.py, sx, p.py+p.ph)
		dc.Stroke()
	}
	if p.yMin < 0 && p.yMax > 0 {
		_, sy := p.toPixel(p.xMin, 0)
		dc.DrawLine(p.px, sy, p.px+p.pw, sy)
		dc.Stroke()
	}
}

func (p plotArea) drawFrame(dc *gg.Context) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(p.px, p.py, p.pw, p.ph)
	dc.Stroke()
}

func (p plotArea) drawLabels(dc *gg.Context, title string) {
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, p.px+p.pw/2, marginTop/2, 0.5, 0.5)
	dc.DrawStringAnchored("x", p.px+p.pw/2, imageHeight-marginBottom/3, 0.5, 0.5)
	dc.DrawStringAnchored("y", marginLeft/3, p.py+p.ph/2, 0.5, 0.5)

	for _, x := range ticks(p.xMin, p.xMax) {
		sx, _ := p.toPixel(x, p.yMin)
		dc.DrawStringAnchored(formatTick(x), sx, p.py+p.ph+18, 0.5, 0.5)
	}
	for _, y := range ticks(p.yMin, p.yMax) {
		_, sy := p.toPixel(p.xMin, y)
		dc.DrawStringAnchored(formatTick(y), p.px-24, sy, 0.5, 0.5)
	}
}

// drawStreamlines seeds trajectories on a coarse lattice and traces
// each with RK4 in both time directions. An occupancy mask keeps lines
// from bunching together.
func (p plotArea) drawStreamlines(dc *gg.Context, f *Field) {
	dc.SetRGB(0, 0.25, 0.9)
	dc.SetLineWidth(1)

	mask := newOccupancyMask(p)
	step := stepFraction * math.Min(p.xMax-p.xMin, p.yMax-p.yMin)

	const seedsPerAxis = 9
	for sj := 0; sj < seedsPerAxis; sj++ {
		for si := 0; si < seedsPerAxis; si++ {
			x0 := p.xMin + (p.xMax-p.xMin)*(float64(si)+0.5)/seedsPerAxis
			y0 := p.yMin + (p.yMax-p.yMin)*(float64(sj)+0.5)/seedsPerAxis
			if mask.occupied(x0, y0) {
				continue
			}

			backward := tracePath(f, p, x0, y0, -step)
			forward := tracePath(f, p, x0, y0, step)
			path := appendReversed(backward, forward)
			if len(path) < 4 {
				continue
			}

			mask.claim(path)
			drawPolyline(dc, p, path)
			drawArrowhead(dc, p, path)
		}
	}
}

type point struct{ x, y float64 }

// tracePath integrates the field from a start point with fixed-step
// RK4, stopping at the window edge, an undefined sample or a near-zero
// flow speed. The start point itself is excluded.
func tracePath(f *Field, p plotArea, x, y, h float64) []point {
	path := make([]point, 0, maxTraceSteps)
	for step := 0; step < maxTraceSteps; step++ {
		nx, ny, ok := rk4Step(f, x, y, h)
		if !ok || !p.contains(nx, ny) {
			break
		}
		if math.Hypot(nx-x, ny-y) < minSpeed {
			break
		}
		x, y = nx, ny
		path = append(path, point{x, y})
	}
	return path
}

// rk4Step advances one normalized step along the field direction. The
// direction is unit-normalized so the step length in world units stays
// |h| regardless of field magnitude.
func rk4Step(f *Field, x, y, h float64) (float64, float64, bool) {
	dir := func(px, py float64) (float64, float64, bool) {
		u, v, ok := f.At(px, py)
		if !ok {
			return 0, 0, false
		}
		speed := math.Hypot(u, v)
		if speed < minSpeed {
			return 0, 0, false
		}
		return u / speed, v / speed, true
	}

	k1x, k1y, ok := dir(x, y)
	if !ok {
		return 0, 0, false
	}
	k2x, k2y, ok := dir(x+h/2*k1x, y+h/2*k1y)
	if !ok {
		return 0, 0, false
	}
	k3x, k3y, ok := dir(x+h/2*k2x, y+h/2*k2y)
	if !ok {
		return 0, 0, false
	}
	k4x, k4y, ok := dir(x+h*k3x, y+h*k3y)
	if !ok {
		return 0, 0, false
	}
	nx := x + h/6*(k1x+2*k2x+2*k3x+k4x)
	ny := y + h/6*(k1y+2*k2y+2*k3y+k4y)
	return nx, ny, true
}

func appendReversed(backward, forward []point) []point {
	path := make([]point, 0, len(backward)+len(forward))
	for i := len(backward) - 1; i >= 0; i-- {
		path = append(path, backward[i])
	}
	path = append(path, forward...)
	return path
}

func drawPolyline(dc *gg.Context, p plotArea, path []point) {
	sx, sy := p.toPixel(path[0].x, path[0].y)
	dc.MoveTo(sx, sy)
	for _, pt := range path[1:] {
		sx, sy = p.toPixel(pt.x, pt.y)
		dc.LineTo(sx, sy)
	}
	dc.Stroke()
}

// drawArrowhead marks the flow direction at the middle of the path.
func drawArrowhead(dc *gg.Context, p plotArea, path []point) {
	mid := len(path) / 2
	if mid == 0 || mid >= len(path) {
		return
	}
	x0, y0 := p.toPixel(path[mid-1].x, path[mid-1].y)
	x1, y1 := p.toPixel(path[mid].x, path[mid].y)
	angle := math.Atan2(y1-y0, x1-x0)

	const size = 8.0
	dc.MoveTo(x1, y1)
	dc.LineTo(x1-size*math.Cos(angle-0.4), y1-size*math.Sin(angle-0.4))
	dc.LineTo(x1-size*math.Cos(angle+0.4), y1-size*math.Sin(angle+0.4))
	dc.ClosePath()
	dc.Fill()
}

// occupancyMask tracks which coarse cells already carry a streamline.
type occupancyMask struct {
	p     plotArea
	cells [maskCells][maskCells]bool
}

func newOccupancyMask(p plotArea) *occupancyMask {
	return &occupancyMask{p: p}
}

func (m *occupancyMask) cell(x, y float64) (int, int, bool) {
	i := int((x - m.p.xMin) / (m.p.xMax - m.p.xMin) * maskCells)
	j := int((y - m.p.yMin) / (m.p.yMax - m.p.yMin) * maskCells)
	if i < 0 || j < 0 || i >= maskCells || j >= maskCells {
		return 0, 0, false
	}
	return i, j, true
}

func (m *occupancyMask) occupied(x, y float64) bool {
	i, j, ok := m.cell(x, y)
	return ok && m.cells[j][i]
}

func (m *occupancyMask) claim(path []point) {
	for _, pt := range path {
		if i, j, ok := m.cell(pt.x, pt.y); ok {
			m.cells[j][i] = true
		}
	}
}

// ticks picks round step tick positions covering the range.
func ticks(min, max float64) []float64 {
	span := max - min
	rough := span / 8
	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	step := magnitude
	switch {
	case rough/magnitude >= 5:
		step = 5 * magnitude
	case rough/magnitude >= 2:
		step = 2 * magnitude
	}

	out := []float64{}
	for v := math.Ceil(min/step) * step; v <= max+step/1e6; v += step {
		out = append(out, v)
	}
	return out
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
