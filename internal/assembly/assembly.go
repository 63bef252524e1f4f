// Package assembly builds brand-locked print documents and slide decks from
// ordered content sections.
package assembly

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/printing"
	"github.com/thewell/content-studio/internal/types"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatPrint  Format = "print"
	FormatSlides Format = "slides"
	FormatPDF    Format = "pdf"
)

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPrint, FormatSlides, FormatPDF:
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// ContentType returns the MIME type of documents in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatSlides:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}

// Extension returns the file extension, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatSlides:
		return "pptx"
	case FormatPDF:
		return "pdf"
	}
	return "html"
}

// Document is an assembled output.
type Document struct {
	Format    Format
	Title     string
	Data      []byte
	Pages     int
	Warnings  []string
	CreatedAt time.Time
}

// ContentType returns the document's MIME type.
func (d *Document) ContentType() string {
	return d.Format.ContentType()
}

// Filename returns a download name derived from the title.
func (d *Document) Filename() string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, d.Title)
	slug = strings.Trim(collapseDashes(slug), "-")
	if slug == "" {
		slug = "document"
	}
	return slug + "." + d.Format.Extension()
}

func collapseDashes(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// Rasterizer turns a chart into PNG bytes for slide embedding.
type Rasterizer interface {
	RasterizeChart(ctx context.Context, spec charts.Spec, width, height int) ([]byte, error)
}

// Printer prints HTML to PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string, paper printing.PaperSize) ([]byte, error)
}

// Options configures an Assembler. Zero values pick defaults.
type Options struct {
	// Rasterizer defaults to the pure-Go chart rasterizer.
	Rasterizer Rasterizer
	// Printer is required for FormatPDF.
	Printer Printer
	Logger  *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Assembler renders documents for one brand. It holds no per-call state and is
// safe for concurrent use.
type Assembler struct {
	brand      brand.Config
	charts     *charts.Renderer
	rasterizer Rasterizer
	printer    Printer
	markdown   *markdownRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an Assembler.
func New(b brand.Config, opts Options) *Assembler {
	a := &Assembler{
		brand:      b,
		charts:     charts.New(b),
		rasterizer: opts.Rasterizer,
		printer:    opts.Printer,
		markdown:   newMarkdownRenderer(),
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if a.rasterizer == nil {
		a.rasterizer = charts.NewPNGRasterizer(b)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Assemble renders records in display order. Any failure aborts the whole
// document; no partial output is returned.
func (a *Assembler) Assemble(ctx context.Context, records []types.ContentRecord, format Format, title string) (*Document, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &AssemblyError{Format: format, Message: "no sections to assemble"}
	}
	if strings.TrimSpace(title) == "" {
		title = a.brand.FirmName
	}

	start := a.now()
	sections := a.prepare(SortRecords(records))
	doc := &Document{Format: format, Title: title, CreatedAt: start}

	var err error
	switch format {
	case FormatPrint:
		var html string
		html, err = a.renderPrint(sections, title)
		doc.Data = []byte(html)
		doc.Pages = len(sections)
	case FormatSlides:
		doc.Data, err = a.renderSlides(ctx, sections, title, start)
		doc.Pages = len(sections) + 1
	case FormatPDF:
		err = a.renderPDF(ctx, sections, title, doc)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info("assembled document",
		zap.String("format", string(format)),
		zap.String("title", title),
		zap.Int("sections", len(sections)),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(doc.Data)),
	)
	return doc, nil
}

func (a *Assembler) renderPDF(ctx context.Context, sections []section, title string, doc *Document) error {
	if a.printer == nil {
		return &AssemblyError{Format: FormatPDF, Message: "no PDF printer configured"}
	}
	html, err := a.renderPrint(sections, title)
	if err != nil {
		return err
	}
	pdf, err := a.printer.PrintPDF(ctx, html, printing.Letter)
	if err != nil {
		return &AssemblyError{Format: FormatPDF, Message: "failed to print document", Cause: err}
	}
	pages, err := printing.CountPages(pdf)
	if err != nil {
		return &AssemblyError{Format: FormatPDF, Message: "printer produced an unreadable PDF", Cause: err}
	}
	if pages != len(sections) {
		doc.Warnings = append(doc.Warnings, pageCountWarning(pages, len(sections)))
		a.logger.Warn("pdf page count differs from section count",
			zap.Int("pages", pages),
			zap.Int("sections", len(sections)),
		)
	}
	doc.Data = pdf
	doc.Pages = pages
	return nil
}

func pageCountWarning(pages, sections int) string {
	return fmt.Sprintf("document printed to %d pages for %d sections; a section overflowed its page", pages, sections)
}

// SortRecords returns a copy of records ordered by display order. Ties keep
// their input order.
func SortRecords(records []types.ContentRecord) []types.ContentRecord {
	out := append([]types.ContentRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}
