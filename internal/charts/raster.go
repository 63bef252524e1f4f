package charts

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/thewell/content-studio/internal/brand"
)

// PNGRasterizer draws charts straight to PNG without a browser. Labels use a
// fixed bitmap face, so output is plainer than a browser rendering of the SVG.
type PNGRasterizer struct {
	brand brand.Config
}

// NewPNGRasterizer creates a rasterizer for a brand.
func NewPNGRasterizer(b brand.Config) *PNGRasterizer {
	return &PNGRasterizer{brand: b}
}

// RasterizeChart draws spec as a PNG image.
func (p *PNGRasterizer) RasterizeChart(ctx context.Context, spec Spec, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	if width < 0 || height < 0 {
		return nil, invalidf("negative canvas size %dx%d", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), p.color(p.brand.Colors.Primary))

	padding := p.brand.Spacing.ChartPadding
	var err error
	switch spec.Type {
	case TypeBar:
		err = p.drawBar(img, spec, width, height, padding)
	case TypeLine:
		err = p.drawLine(img, spec, width, height, padding)
	case TypePie:
		err = p.drawPie(img, spec, width, height, padding)
	default:
		err = spec.validate()
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode chart PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PNGRasterizer) color(hex string) color.RGBA {
	c, ok := brand.RGBA(hex)
	if !ok {
		c, _ = brand.RGBA(p.brand.Colors.Text)
	}
	return c
}

func (p *PNGRasterizer) drawAxis(img *image.RGBA, f Frame) {
	y := int(f.Baseline())
	fill(img, image.Rect(int(f.Padding), y, int(f.Padding+f.ChartWidth), y+1), p.color(p.brand.Colors.Border))
}

func (p *PNGRasterizer) drawBar(img *image.RGBA, spec Spec, width, height, padding int) error {
	f, bars, err := BarLayout(spec, width, height, padding)
	if err != nil {
		return err
	}
	p.drawAxis(img, f)

	top, bottom := p.color(p.brand.Colors.LightGold), p.color(p.brand.Colors.Gold)
	for _, bar := range bars {
		x0, x1 := int(math.Round(bar.X)), int(math.Round(bar.X+bar.Width))
		y0, y1 := int(math.Round(bar.Y)), int(math.Round(bar.Y+bar.Height))
		for y := y0; y < y1; y++ {
			t := float64(y-y0) / math.Max(1, float64(y1-y0-1))
			fill(img, image.Rect(x0, y, x1, y+1), lerp(top, bottom, t))
		}
		center := bar.X + bar.Width/2
		drawText(img, formatValue(bar.Value), center, bar.Y-8, p.color(p.brand.Colors.Text))
		drawText(img, bar.Label, center, f.Baseline()+20, p.color(p.brand.Colors.TextMuted))
	}
	return nil
}

func (p *PNGRasterizer) drawLine(img *image.RGBA, spec Spec, width, height, padding int) error {
	f, points, err := LineLayout(spec, width, height, padding)
	if err != nil {
		return err
	}
	p.drawAxis(img, f)

	stroke := p.color(p.brand.Colors.Gold)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		steps := int(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)))
		for s := 0; s <= steps; s++ {
			t := float64(s) / math.Max(1, float64(steps))
			disc(img, a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, 1.5, stroke)
		}
	}
	for _, pt := range points {
		disc(img, pt.X, pt.Y, 5, p.color(p.brand.Colors.Cyan))
		drawText(img, formatValue(pt.Value), pt.X, pt.Y-12, p.color(p.brand.Colors.Text))
		drawText(img, pt.Label, pt.X, f.Baseline()+20, p.color(p.brand.Colors.TextMuted))
	}
	return nil
}

func (p *PNGRasterizer) drawPie(img *image.RGBA, spec Spec, width, height, padding int) error {
	g, wedges, err := PieLayout(spec, width, height, padding)
	if err != nil {
		return err
	}

	colors := make([]color.RGBA, len(wedges))
	for i, w := range wedges {
		colors[i] = p.color(p.brand.ChartColor(w.ColorIndex))
	}

	minX, maxX := int(g.CX-g.Radius), int(g.CX+g.Radius)+1
	minY, maxY := int(g.CY-g.Radius), int(g.CY+g.Radius)+1
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx, dy := float64(x)+0.5-g.CX, float64(y)+0.5-g.CY
			if dx*dx+dy*dy > g.Radius*g.Radius {
				continue
			}
			// Degrees clockwise from 12 o'clock.
			angle := math.Mod(math.Atan2(dy, dx)*180/math.Pi-pieStartAngle+360, 360)
			if i := wedgeAt(wedges, angle); i >= 0 {
				img.SetRGBA(x, y, colors[i])
			}
		}
	}

	label := p.color(p.brand.Colors.TextDark)
	for _, w := range wedges {
		if w.Sweep <= 0 {
			continue
		}
		drawText(img, fmt.Sprintf("%s %d%%", w.Label, int(math.Round(w.Percent))), w.LabelX, w.LabelY, label)
	}
	return nil
}

func wedgeAt(wedges []Wedge, angle float64) int {
	for i, w := range wedges {
		start := w.StartAngle - pieStartAngle
		if angle >= start && angle < start+w.Sweep {
			return i
		}
	}
	if len(wedges) > 0 {
		return len(wedges) - 1
	}
	return -1
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func disc(img *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	for y := int(cy - radius); y <= int(cy+radius)+1; y++ {
		for x := int(cx - radius); x <= int(cx+radius)+1; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= radius*radius && image.Pt(x, y).In(img.Bounds()) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xFF}
}

// drawText centers s horizontally on x with its baseline at y.
func drawText(img *image.RGBA, s string, x, y float64, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(s)
	d.Dot = fixed.Point26_6{X: fixed.I(int(x)) - w/2, Y: fixed.I(int(y))}
	d.DrawString(s)
}
