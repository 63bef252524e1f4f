package slides

import (
	"archive/zip"
	"bytes"
	"embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/*.xml.tmpl
var templateFS embed.FS

// Relationship types used by the package.
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

var templates = template.Must(template.New("pptx").Funcs(template.FuncMap{
	"escape": EscapeXML,
	"hex":    hexColor,
	"inc":    func(i int) int { return i + 1 },
	"size":   func(pt float64) int { return int(pt * 100) },
	"align": func(a Alignment) Alignment {
		if a == "" {
			return AlignLeft
		}
		return a
	},
	"anchor": func(a Anchor) Anchor {
		if a == "" {
			return AnchorTop
		}
		return a
	},
}).ParseFS(templateFS, "templates/*.xml.tmpl"))

type relationship struct {
	ID     string
	Type   string
	Target string
}

type slideRef struct {
	Number  int
	SlideID int
	RelID   string
}

type textView struct {
	ID int
	TextBox
}

type picView struct {
	ID int
	Picture
	PNGRel string
	SVGRel string
}

type shapeView struct {
	Text *textView
	Pic  *picView
}

type slideView struct {
	Background string
	Shapes     []shapeView
}

type media struct {
	name string
	data []byte
}

// Write renders deck as a PPTX package to w.
func Write(w io.Writer, deck Deck) error {
	if len(deck.Slides) == 0 {
		return &WriteError{Message: "deck has no slides"}
	}

	created := deck.Created
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC().Truncate(time.Second)

	refs := make([]slideRef, len(deck.Slides))
	for i := range deck.Slides {
		refs[i] = slideRef{Number: i + 1, SlideID: 256 + i, RelID: fmt.Sprintf("rId%d", i+3)}
	}

	zw := zip.NewWriter(w)
	pw := &partWriter{zw: zw, modified: created}

	pw.template("[Content_Types].xml", "content_types.xml.tmpl", map[string]any{"Slides": refs})
	pw.template("_rels/.rels", "rels.xml.tmpl", []relationship{
		{ID: "rId1", Type: relOfficeDocument, Target: "ppt/presentation.xml"},
		{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
		{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
	})
	pw.template("docProps/core.xml", "core.xml.tmpl", map[string]any{
		"Title":   deck.Title,
		"Author":  deck.Author,
		"Created": created.Format(time.RFC3339),
	})
	pw.template("docProps/app.xml", "app.xml.tmpl", deck)

	presRels := []relationship{
		{ID: "rId1", Type: relSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		{ID: "rId2", Type: relTheme, Target: "theme/theme1.xml"},
	}
	for _, ref := range refs {
		presRels = append(presRels, relationship{ID: ref.RelID, Type: relSlide, Target: fmt.Sprintf("slides/slide%d.xml", ref.Number)})
	}
	pw.template("ppt/presentation.xml", "presentation.xml.tmpl", map[string]any{
		"Slides": refs,
		"Width":  SlideWidth,
		"Height": SlideHeight,
	})
	pw.template("ppt/_rels/presentation.xml.rels", "rels.xml.tmpl", presRels)

	pw.template("ppt/slideMasters/slideMaster1.xml", "slide_master.xml.tmpl", deck)
	pw.template("ppt/slideMasters/_rels/slideMaster1.xml.rels", "rels.xml.tmpl", []relationship{
		{ID: "rId1", Type: relSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
		{ID: "rId2", Type: relTheme, Target: "../theme/theme1.xml"},
	})
	pw.template("ppt/slideLayouts/slideLayout1.xml", "slide_layout.xml.tmpl", nil)
	pw.template("ppt/slideLayouts/_rels/slideLayout1.xml.rels", "rels.xml.tmpl", []relationship{
		{ID: "rId1", Type: relSlideMaster, Target: "../slideMasters/slideMaster1.xml"},
	})
	pw.template("ppt/theme/theme1.xml", "theme.xml.tmpl", deck)

	var images []media
	for i, slide := range deck.Slides {
		view, rels, slideMedia, err := buildSlide(slide, i+1, len(images))
		if err != nil {
			_ = zw.Close()
			return err
		}
		images = append(images, slideMedia...)
		pw.template(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), "slide.xml.tmpl", view)
		pw.template(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), "rels.xml.tmpl", rels)
	}
	for _, m := range images {
		pw.raw("ppt/media/"+m.name, m.data)
	}

	if pw.err != nil {
		_ = zw.Close()
		return pw.err
	}
	if err := zw.Close(); err != nil {
		return &WriteError{Message: "failed to finalize package", Cause: err}
	}
	return nil
}

// Bytes renders deck and returns the PPTX package.
func Bytes(deck Deck) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, deck); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildSlide(slide Slide, number, mediaOffset int) (slideView, []relationship, []media, error) {
	view := slideView{Background: slide.Background}
	rels := []relationship{{ID: "rId1", Type: relSlideLayout, Target: "../slideLayouts/slideLayout1.xml"}}
	var files []media

	// Shape id 1 is the group shape.
	nextID := 2
	for _, shape := range slide.Shapes {
		switch s := shape.(type) {
		case TextBox:
			view.Shapes = append(view.Shapes, shapeView{Text: &textView{ID: nextID, TextBox: s}})
		case Picture:
			if len(s.PNG) == 0 {
				return slideView{}, nil, nil, &WriteError{Message: fmt.Sprintf("picture %q on slide %d has no PNG data", s.Name, number)}
			}
			pv := &picView{ID: nextID, Picture: s}

			n := mediaOffset + len(files) + 1
			pngName := fmt.Sprintf("image%d.png", n)
			files = append(files, media{name: pngName, data: s.PNG})
			pv.PNGRel = "rId" + strconv.Itoa(len(rels)+1)
			rels = append(rels, relationship{ID: pv.PNGRel, Type: relImage, Target: "../media/" + pngName})

			if len(s.SVG) > 0 {
				svgName := fmt.Sprintf("image%d.svg", n+1)
				files = append(files, media{name: svgName, data: s.SVG})
				pv.SVGRel = "rId" + strconv.Itoa(len(rels)+1)
				rels = append(rels, relationship{ID: pv.SVGRel, Type: relImage, Target: "../media/" + svgName})
			}
			view.Shapes = append(view.Shapes, shapeView{Pic: pv})
		default:
			return slideView{}, nil, nil, &WriteError{Message: fmt.Sprintf("unsupported shape %T on slide %d", shape, number)}
		}
		nextID++
	}
	return view, rels, files, nil
}

// partWriter writes zip entries and remembers the first error.
type partWriter struct {
	zw       *zip.Writer
	modified time.Time
	err      error
}

func (p *partWriter) create(name string) io.Writer {
	if p.err != nil {
		return nil
	}
	w, err := p.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: p.modified})
	if err != nil {
		p.err = &WriteError{Message: fmt.Sprintf("failed to create part %s", name), Cause: err}
		return nil
	}
	return w
}

func (p *partWriter) template(name, tmpl string, data any) {
	w := p.create(name)
	if w == nil {
		return
	}
	if err := templates.ExecuteTemplate(w, tmpl, data); err != nil {
		p.err = &TemplateError{Part: name, Message: "failed to execute template", Cause: err}
	}
}

func (p *partWriter) raw(name string, data []byte) {
	w := p.create(name)
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		p.err = &WriteError{Message: fmt.Sprintf("failed to write part %s", name), Cause: err}
	}
}

// hexColor normalizes a color to the six uppercase hex digits OOXML expects.
func hexColor(color string) string {
	c := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(color), "#"))
	if len(c) != 6 {
		return "000000"
	}
	return c
}
