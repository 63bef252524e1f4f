package charts

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewell/content-studio/internal/brand"
)

const testPadding = 60

func wellFormed(t *testing.T, svg string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			require.ErrorContains(t, err, "EOF")
			return
		}
	}
}

func TestRender_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"unknown type", Spec{Type: "radar", Labels: []string{"a"}, Values: []float64{1}}},
		{"mismatched lengths", Spec{Type: TypeBar, Labels: []string{"a", "b"}, Values: []float64{1}}},
		{"empty", Spec{Type: TypeBar}},
		{"negative", Spec{Type: TypeBar, Labels: []string{"a"}, Values: []float64{-1}}},
		{"nan", Spec{Type: TypeLine, Labels: []string{"a", "b"}, Values: []float64{1, math.NaN()}}},
		{"inf", Spec{Type: TypePie, Labels: []string{"a"}, Values: []float64{math.Inf(1)}}},
		{"single point line", Spec{Type: TypeLine, Labels: []string{"a"}, Values: []float64{1}}},
		{"pie sums to zero", Spec{Type: TypePie, Labels: []string{"a", "b"}, Values: []float64{0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg, err := Render(tt.spec, 0, 0)
			require.Error(t, err)
			assert.Empty(t, svg)

			var ice *InvalidChartError
			assert.True(t, errors.As(err, &ice))
		})
	}
}

func TestRender_DefaultSize(t *testing.T) {
	svg, err := Render(Spec{Type: TypeBar, Labels: []string{"Base", "Bonus"}, Values: []float64{150000, 50000}}, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, svg, `width="800" height="400"`)
	wellFormed(t, svg)
}

func TestRender_CanvasTooSmall(t *testing.T) {
	_, err := Render(Spec{Type: TypeBar, Labels: []string{"a"}, Values: []float64{1}}, 100, 100)
	var ice *InvalidChartError
	assert.True(t, errors.As(err, &ice))
}

func TestRender_BarUsesBrand(t *testing.T) {
	cfg := brand.Default()
	svg, err := New(cfg).Render(Spec{Type: TypeBar, Labels: []string{"Base", "Bonus"}, Values: []float64{150000, 50000}}, 800, 400)
	require.NoError(t, err)

	assert.Contains(t, svg, `fill="`+cfg.Colors.Primary+`"`)
	assert.Contains(t, svg, `stop-color="`+cfg.Colors.LightGold+`"`)
	assert.Contains(t, svg, `stop-color="`+cfg.Colors.Gold+`"`)
	assert.Contains(t, svg, ">150,000<")
	assert.Contains(t, svg, ">Bonus<")
	wellFormed(t, svg)
}

func TestRender_EscapesLabels(t *testing.T) {
	svg, err := Render(Spec{Type: TypeLine, Labels: []string{"<Q1>", "R&D"}, Values: []float64{1, 2}}, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, svg, "&lt;Q1&gt;")
	assert.Contains(t, svg, "R&amp;D")
	wellFormed(t, svg)
}

func TestBarLayout_TallestBarSpansChartHeight(t *testing.T) {
	spec := Spec{Type: TypeBar, Labels: []string{"a", "b", "c"}, Values: []float64{30, 120, 60}}
	f, bars, err := BarLayout(spec, 800, 400, testPadding)
	require.NoError(t, err)

	assert.Equal(t, 280.0, f.ChartHeight)
	assert.Equal(t, f.ChartHeight, bars[1].Height)
	assert.Equal(t, float64(testPadding), bars[1].Y)
	assert.InDelta(t, f.ChartHeight/4, bars[0].Height, 1e-9)
	for _, bar := range bars {
		assert.InDelta(t, f.Baseline(), bar.Y+bar.Height, 1e-9)
	}
}

func TestBarLayout_AllZero(t *testing.T) {
	_, bars, err := BarLayout(Spec{Type: TypeBar, Labels: []string{"a", "b"}, Values: []float64{0, 0}}, 800, 400, testPadding)
	require.NoError(t, err)
	for _, bar := range bars {
		assert.Zero(t, bar.Height)
	}
}

func TestLineLayout_Points(t *testing.T) {
	spec := Spec{Type: TypeLine, Labels: []string{"a", "b", "c"}, Values: []float64{0, 50, 100}}
	f, points, err := LineLayout(spec, 800, 400, testPadding)
	require.NoError(t, err)

	stepX := f.ChartWidth / 2
	for i, p := range points {
		assert.InDelta(t, f.Padding+float64(i)*stepX, p.X, 1e-9)
	}
	assert.InDelta(t, f.Baseline(), points[0].Y, 1e-9)
	assert.InDelta(t, f.Padding, points[2].Y, 1e-9)
	assert.InDelta(t, f.Padding+f.ChartHeight/2, points[1].Y, 1e-9)
}

func TestPieLayout_AnglesClose(t *testing.T) {
	inputs := [][]float64{
		{1},
		{1, 1},
		{3, 7, 11, 13},
		{0.1, 0.2, 0.3, 1e6},
		{5, 0, 5},
	}
	for _, values := range inputs {
		labels := make([]string, len(values))
		spec := Spec{Type: TypePie, Labels: labels, Values: values}
		_, wedges, err := PieLayout(spec, 800, 400, testPadding)
		require.NoError(t, err)

		total := 0.0
		for _, w := range wedges {
			total += w.Sweep
		}
		assert.InDelta(t, 360.0, total, 1e-9, "values %v", values)
		assert.Equal(t, -90.0, wedges[0].StartAngle)
	}
}

func TestPieLayout_LargeArcAndLabels(t *testing.T) {
	spec := Spec{Type: TypePie, Labels: []string{"big", "small"}, Values: []float64{3, 1}}
	g, wedges, err := PieLayout(spec, 800, 400, testPadding)
	require.NoError(t, err)

	assert.True(t, wedges[0].LargeArc)
	assert.False(t, wedges[1].LargeArc)
	assert.InDelta(t, 75.0, wedges[0].Percent, 1e-9)

	// The first wedge spans -90..180, so its bisector points at 45 degrees.
	dist := math.Hypot(wedges[0].LabelX-g.CX, wedges[0].LabelY-g.CY)
	assert.InDelta(t, 0.7*g.Radius, dist, 1e-9)
	assert.InDelta(t, g.CX+0.7*g.Radius*math.Cos(math.Pi/4), wedges[0].LabelX, 1e-9)
}

func TestRender_PieColorsCycle(t *testing.T) {
	cfg := brand.Default()
	values := []float64{1, 1, 1, 1, 1, 1, 1}
	labels := []string{"a", "b", "c", "d", "e", "f", "g"}
	svg, err := New(cfg).Render(Spec{Type: TypePie, Labels: labels, Values: values}, 0, 0)
	require.NoError(t, err)

	for _, c := range cfg.ChartColors {
		assert.Contains(t, svg, `fill="`+c+`"`)
	}
	assert.Equal(t, 7, strings.Count(svg, "<path"))
	wellFormed(t, svg)
}

func TestRender_PieSingleSliceIsCircle(t *testing.T) {
	svg, err := Render(Spec{Type: TypePie, Labels: []string{"all"}, Values: []float64{42}}, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, svg, "<circle")
	assert.NotContains(t, svg, "<path")
	assert.Contains(t, svg, "all 100%")
}

func TestDataURI(t *testing.T) {
	uri := DataURI("<svg/>")
	require.True(t, strings.HasPrefix(uri, "data:image/svg+xml;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(decoded))
}
