package charts

import (
	"math"
)

// Frame is the drawable area inside the canvas padding.
type Frame struct {
	Width       float64
	Height      float64
	Padding     float64
	ChartWidth  float64
	ChartHeight float64
}

// Baseline is the y coordinate of the x axis.
func (f Frame) Baseline() float64 {
	return f.Padding + f.ChartHeight
}

func newFrame(width, height, padding int) (Frame, error) {
	f := Frame{
		Width:       float64(width),
		Height:      float64(height),
		Padding:     float64(padding),
		ChartWidth:  float64(width - 2*padding),
		ChartHeight: float64(height - 2*padding),
	}
	if f.ChartWidth <= 0 || f.ChartHeight <= 0 {
		return Frame{}, invalidf("canvas %dx%d is too small for padding %d", width, height, padding)
	}
	return f, nil
}

// Bar is one bar's geometry.
type Bar struct {
	Label  string
	Value  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BarLayout computes bar geometry. The bar holding the maximum value spans
// the full chart height.
func BarLayout(spec Spec, width, height, padding int) (Frame, []Bar, error) {
	if err := spec.validate(); err != nil {
		return Frame{}, nil, err
	}
	f, err := newFrame(width, height, padding)
	if err != nil {
		return Frame{}, nil, err
	}

	peak := maxValue(spec.Values)
	slot := f.ChartWidth / float64(len(spec.Values))
	barWidth := slot * 0.6

	bars := make([]Bar, len(spec.Values))
	for i, v := range spec.Values {
		h := 0.0
		if peak > 0 {
			h = v / peak * f.ChartHeight
		}
		bars[i] = Bar{
			Label:  spec.Labels[i],
			Value:  v,
			X:      f.Padding + float64(i)*slot + (slot-barWidth)/2,
			Y:      f.Baseline() - h,
			Width:  barWidth,
			Height: h,
		}
	}
	return f, bars, nil
}

// Point is one vertex of a line chart.
type Point struct {
	Label string
	Value float64
	X     float64
	Y     float64
}

// LineLayout computes polyline vertices. A line needs at least two points.
func LineLayout(spec Spec, width, height, padding int) (Frame, []Point, error) {
	if err := spec.validate(); err != nil {
		return Frame{}, nil, err
	}
	if len(spec.Values) < 2 {
		return Frame{}, nil, invalidf("line chart needs at least 2 points, got %d", len(spec.Values))
	}
	f, err := newFrame(width, height, padding)
	if err != nil {
		return Frame{}, nil, err
	}

	peak := maxValue(spec.Values)
	stepX := f.ChartWidth / float64(len(spec.Values)-1)

	points := make([]Point, len(spec.Values))
	for i, v := range spec.Values {
		y := f.Baseline()
		if peak > 0 {
			y = f.Padding + f.ChartHeight - v/peak*f.ChartHeight
		}
		points[i] = Point{
			Label: spec.Labels[i],
			Value: v,
			X:     f.Padding + float64(i)*stepX,
			Y:     y,
		}
	}
	return f, points, nil
}

// Wedge is one pie slice. Angles are in degrees, measured clockwise from
// the 3 o'clock position as SVG does.
type Wedge struct {
	Label      string
	Value      float64
	Percent    float64
	StartAngle float64
	Sweep      float64
	LargeArc   bool
	ColorIndex int
	LabelX     float64
	LabelY     float64
}

// PieGeometry is the circle that wedges are cut from.
type PieGeometry struct {
	CX     float64
	CY     float64
	Radius float64
}

const pieStartAngle = -90.0

// PieLayout computes wedges starting at 12 o'clock and running clockwise in
// input order. Sweeps always sum to 360.
func PieLayout(spec Spec, width, height, padding int) (PieGeometry, []Wedge, error) {
	if err := spec.validate(); err != nil {
		return PieGeometry{}, nil, err
	}
	f, err := newFrame(width, height, padding)
	if err != nil {
		return PieGeometry{}, nil, err
	}

	sum := 0.0
	for _, v := range spec.Values {
		sum += v
	}
	if sum <= 0 {
		return PieGeometry{}, nil, invalidf("pie chart values sum to zero")
	}

	g := PieGeometry{
		CX:     f.Width / 2,
		CY:     f.Height / 2,
		Radius: math.Min(f.ChartWidth, f.ChartHeight) / 2,
	}

	wedges := make([]Wedge, len(spec.Values))
	angle := pieStartAngle
	for i, v := range spec.Values {
		sweep := v / sum * 360
		mid := (angle + sweep/2) * math.Pi / 180
		wedges[i] = Wedge{
			Label:      spec.Labels[i],
			Value:      v,
			Percent:    v / sum * 100,
			StartAngle: angle,
			Sweep:      sweep,
			LargeArc:   sweep > 180,
			ColorIndex: i,
			LabelX:     g.CX + 0.7*g.Radius*math.Cos(mid),
			LabelY:     g.CY + 0.7*g.Radius*math.Sin(mid),
		}
		angle += sweep
	}
	return g, wedges, nil
}

func (g PieGeometry) pointAt(angleDeg float64) (float64, float64) {
	rad := angleDeg * math.Pi / 180
	return g.CX + g.Radius*math.Cos(rad), g.CY + g.Radius*math.Sin(rad)
}

func maxValue(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	return peak
}
