// Package slides writes PowerPoint (PPTX) decks from a small in-memory model.
//
// Positions and sizes are in EMU (English Metric Units, 914400 per inch).
// Colors are hex strings with or without a leading '#'.
package slides

import "time"

// Slide canvas size (16:9, 10in x 5.625in).
const (
	EMUPerInch  = 914400
	SlideWidth  = 9144000
	SlideHeight = 5143500
)

// Inches converts inches to EMU.
func Inches(in float64) int64 {
	return int64(in * EMUPerInch)
}

// Deck is a whole presentation.
type Deck struct {
	Title   string
	Author  string
	Created time.Time
	// Fonts and colors for the theme part.
	Theme  Theme
	Slides []Slide
}

// Theme maps brand colors onto the OOXML theme slots.
type Theme struct {
	Name      string
	Font      string
	Dark1     string
	Light1    string
	Dark2     string
	Light2    string
	Accents   [6]string
	Hyperlink string
}

// Slide is one slide: a background color and shapes drawn in order.
type Slide struct {
	Background string
	Shapes     []Shape
}

// Shape is a TextBox or a Picture.
type Shape interface {
	isShape()
}

// Box is a shape's position and size.
type Box struct {
	X, Y, Width, Height int64
}

// Alignment is paragraph alignment.
type Alignment string

// Alignments.
const (
	AlignLeft   Alignment = "l"
	AlignCenter Alignment = "ctr"
	AlignRight  Alignment = "r"
)

// Anchor is vertical text anchoring inside a box.
type Anchor string

// Anchors.
const (
	AnchorTop    Anchor = "t"
	AnchorMiddle Anchor = "ctr"
	AnchorBottom Anchor = "b"
)

// TextBox is a rectangle holding paragraphs of styled runs.
type TextBox struct {
	Box
	Name       string
	Fill       string
	Border     string
	Anchor     Anchor
	Paragraphs []Paragraph
}

// Paragraph is a line of runs.
type Paragraph struct {
	Align Alignment
	Runs  []Run
}

// Run is text with one style. Size is in points.
type Run struct {
	Text   string
	Size   float64
	Bold   bool
	Italic bool
	Color  string
	Font   string
}

// Picture is an embedded image. PNG is required; SVG, when set, is attached
// as the preferred vector rendition for viewers that support it.
type Picture struct {
	Box
	Name  string
	Descr string
	PNG   []byte
	SVG   []byte
}

func (TextBox) isShape() {}
func (Picture) isShape() {}
