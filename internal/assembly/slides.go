package assembly

import (
	"context"
	"time"

	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/slides"
	"github.com/thewell/content-studio/internal/types"
)

// Chart raster size; the slide picture keeps the same 2:1 aspect.
const (
	chartPixelWidth  = 800
	chartPixelHeight = 400
)

type deckBuilder struct {
	a    *Assembler
	font string
}

func (a *Assembler) renderSlides(ctx context.Context, sections []section, title string, created time.Time) ([]byte, error) {
	b := deckBuilder{a: a, font: a.brand.Fonts.Slide}
	deck := slides.Deck{
		Title:   title,
		Author:  a.brand.FirmName,
		Created: created,
		Theme:   a.theme(),
		Slides:  []slides.Slide{b.titleSlide(title)},
	}

	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return nil, &AssemblyError{Format: FormatSlides, Message: "assembly cancelled", Cause: err}
		}
		slide, err := b.sectionSlide(ctx, s)
		if err != nil {
			return nil, err
		}
		deck.Slides = append(deck.Slides, slide)
	}

	data, err := slides.Bytes(deck)
	if err != nil {
		return nil, &AssemblyError{Format: FormatSlides, Message: "failed to write deck", Cause: err}
	}
	return data, nil
}

func (a *Assembler) theme() slides.Theme {
	c := a.brand.Colors
	t := slides.Theme{
		Name:      a.brand.FirmName,
		Font:      a.brand.Fonts.Slide,
		Dark1:     c.Primary,
		Light1:    c.Text,
		Dark2:     c.Secondary,
		Light2:    c.LightGold,
		Hyperlink: c.Cyan,
	}
	for i := range t.Accents {
		t.Accents[i] = a.brand.ChartColor(i)
	}
	t.Accents[5] = c.Cyan
	return t
}

func (b deckBuilder) run(text string, size float64, color string, bold bool) slides.Run {
	return slides.Run{Text: text, Size: size, Color: color, Bold: bold, Font: b.font}
}

func (b deckBuilder) titleSlide(title string) slides.Slide {
	c := b.a.brand.Colors
	return slides.Slide{
		Background: c.Primary,
		Shapes: []slides.Shape{
			slides.TextBox{
				Box:    slides.Box{X: slides.Inches(0.5), Y: slides.Inches(1.5), Width: slides.Inches(9), Height: slides.Inches(2.6)},
				Name:   "Title",
				Anchor: slides.AnchorMiddle,
				Paragraphs: []slides.Paragraph{
					{Align: slides.AlignCenter, Runs: []slides.Run{b.run(title, 40, c.Text, true)}},
					{Align: slides.AlignCenter, Runs: []slides.Run{b.run(b.a.brand.FirmName, 20, c.Gold, false)}},
				},
			},
		},
	}
}

// header draws the logo placeholder and firm line at the top of a slide.
func (b deckBuilder) header() []slides.Shape {
	c := b.a.brand.Colors
	return []slides.Shape{
		slides.TextBox{
			Box:    slides.Box{X: slides.Inches(0.4), Y: slides.Inches(0.2), Width: slides.Inches(0.5), Height: slides.Inches(0.5)},
			Name:   "Logo",
			Border: c.Gold,
			Anchor: slides.AnchorMiddle,
			Paragraphs: []slides.Paragraph{
				{Align: slides.AlignCenter, Runs: []slides.Run{b.run(initials(b.a.brand.FirmName), 12, c.Gold, true)}},
			},
		},
		slides.TextBox{
			Box:    slides.Box{X: slides.Inches(1.05), Y: slides.Inches(0.2), Width: slides.Inches(8.5), Height: slides.Inches(0.5)},
			Name:   "Header",
			Anchor: slides.AnchorMiddle,
			Paragraphs: []slides.Paragraph{{Runs: []slides.Run{
				b.run(b.a.brand.FirmName, 14, c.Gold, true),
				b.run("  |  "+b.a.brand.Domain, 10, c.TextMuted, false),
			}}},
		},
	}
}

func (b deckBuilder) heading(title string) slides.TextBox {
	return slides.TextBox{
		Box:        slides.Box{X: slides.Inches(0.5), Y: slides.Inches(0.85), Width: slides.Inches(9), Height: slides.Inches(0.7)},
		Name:       "Heading",
		Anchor:     slides.AnchorMiddle,
		Paragraphs: []slides.Paragraph{{Runs: []slides.Run{b.run(title, 28, b.a.brand.Colors.Gold, true)}}},
	}
}

func (b deckBuilder) bodyParagraphs(text string, color string) []slides.Paragraph {
	var out []slides.Paragraph
	for _, p := range b.a.markdown.Paragraphs(text) {
		out = append(out, slides.Paragraph{Runs: []slides.Run{b.run(p, 14, color, false)}})
	}
	return out
}

func (b deckBuilder) sectionSlide(ctx context.Context, s section) (slides.Slide, error) {
	c := b.a.brand.Colors
	slide := slides.Slide{Background: c.Primary, Shapes: b.header()}

	switch s.Type {
	case types.SectionCover:
		slide.Shapes = append(slide.Shapes, slides.TextBox{
			Box:        slides.Box{X: slides.Inches(0.5), Y: slides.Inches(1.6), Width: slides.Inches(9), Height: slides.Inches(2.4)},
			Name:       "Cover Title",
			Anchor:     slides.AnchorMiddle,
			Paragraphs: []slides.Paragraph{{Align: slides.AlignCenter, Runs: []slides.Run{b.run(s.Title, 44, c.Gold, true)}}},
		})
		return slide, nil

	case types.SectionCallToAction:
		paragraphs := b.bodyParagraphs(s.Text, c.TextDark)
		paragraphs = append(paragraphs,
			slides.Paragraph{Align: slides.AlignCenter, Runs: []slides.Run{b.run(s.ButtonText, 20, c.TextDark, true)}},
			slides.Paragraph{Align: slides.AlignCenter, Runs: []slides.Run{b.run(s.URL, 12, c.Secondary, false)}},
		)
		slide.Shapes = append(slide.Shapes, b.heading(s.Title), slides.TextBox{
			Box:        slides.Box{X: slides.Inches(1.5), Y: slides.Inches(1.8), Width: slides.Inches(7), Height: slides.Inches(2.8)},
			Name:       "Call To Action",
			Fill:       c.Gold,
			Border:     c.LightGold,
			Anchor:     slides.AnchorMiddle,
			Paragraphs: paragraphs,
		})
		return slide, nil
	}

	bodyWidth := slides.Inches(9)
	if s.Chart != nil {
		bodyWidth = slides.Inches(4.6)
	}
	slide.Shapes = append(slide.Shapes, b.heading(s.Title), slides.TextBox{
		Box:        slides.Box{X: slides.Inches(0.5), Y: slides.Inches(1.65), Width: bodyWidth, Height: slides.Inches(2.1)},
		Name:       "Body",
		Paragraphs: b.bodyParagraphs(s.Text, c.Text),
	})

	if s.Compensation != nil {
		slide.Shapes = append(slide.Shapes, b.compensationBox(*s.Compensation))
	}
	if s.Chart != nil {
		pic, err := b.chartPicture(ctx, *s.Chart)
		if err != nil {
			return slides.Slide{}, err
		}
		slide.Shapes = append(slide.Shapes, pic)
	}
	return slide, nil
}

// compensationBox is a bordered box with one multi-run line per figure.
func (b deckBuilder) compensationBox(comp types.Compensation) slides.TextBox {
	c := b.a.brand.Colors
	line := func(label, value string) slides.Paragraph {
		return slides.Paragraph{Runs: []slides.Run{
			b.run(label+": ", 14, c.Gold, true),
			b.run(orDash(value), 14, c.Text, false),
		}}
	}
	return slides.TextBox{
		Box:    slides.Box{X: slides.Inches(0.5), Y: slides.Inches(3.9), Width: slides.Inches(4.6), Height: slides.Inches(1.2)},
		Name:   "Compensation",
		Fill:   c.Secondary,
		Border: c.Gold,
		Anchor: slides.AnchorMiddle,
		Paragraphs: []slides.Paragraph{
			line("Base", comp.Base),
			line("Bonus", comp.Bonus),
			line("Total", comp.Total),
		},
	}
}

func (b deckBuilder) chartPicture(ctx context.Context, spec charts.Spec) (slides.Picture, error) {
	svg, err := b.a.charts.Render(spec, chartPixelWidth, chartPixelHeight)
	if err != nil {
		return slides.Picture{}, &AssemblyError{Format: FormatSlides, Message: "failed to render compensation chart", Cause: err}
	}
	png, err := b.a.rasterizer.RasterizeChart(ctx, spec, chartPixelWidth, chartPixelHeight)
	if err != nil {
		return slides.Picture{}, &AssemblyError{Format: FormatSlides, Message: "failed to rasterize compensation chart", Cause: err}
	}
	return slides.Picture{
		Box:   slides.Box{X: slides.Inches(5.3), Y: slides.Inches(1.65), Width: slides.Inches(4.2), Height: slides.Inches(2.1)},
		Name:  "Compensation Chart",
		Descr: "Base vs Bonus",
		PNG:   png,
		SVG:   []byte(svg),
	}, nil
}
