package assembly

import (
	"embed"
	"html/template"
	"strings"
	"unicode"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/charts"
)

//go:embed templates/print.html.tmpl
var printFS embed.FS

var printTemplate = template.Must(template.New("print.html.tmpl").Funcs(template.FuncMap{
	"dash": orDash,
}).ParseFS(printFS, "templates/print.html.tmpl"))

type printPage struct {
	section
	Body     template.HTML
	ChartURI template.URL
	Last     bool
}

type printView struct {
	Title       string
	Brand       brand.Config
	Initials    string
	FontFamily  template.CSS
	HeadingFont template.CSS
	Pages       []printPage
}

// renderPrint lays out one letter page per section.
func (a *Assembler) renderPrint(sections []section, title string) (string, error) {
	view := printView{
		Title:       title,
		Brand:       a.brand,
		Initials:    initials(a.brand.FirmName),
		FontFamily:  template.CSS(a.brand.Fonts.Family),
		HeadingFont: template.CSS(a.brand.Fonts.Heading),
		Pages:       make([]printPage, len(sections)),
	}

	for i, s := range sections {
		body, err := a.markdown.HTML(s.Text)
		if err != nil {
			return "", &AssemblyError{Format: FormatPrint, Message: "failed to render section " + s.Title, Cause: err}
		}
		page := printPage{section: s, Body: body, Last: i == len(sections)-1}
		if s.Chart != nil {
			svg, err := a.charts.Render(*s.Chart, 0, 0)
			if err != nil {
				return "", &AssemblyError{Format: FormatPrint, Message: "failed to render compensation chart", Cause: err}
			}
			page.ChartURI = template.URL(charts.DataURI(svg))
		}
		view.Pages[i] = page
	}

	var out strings.Builder
	if err := printTemplate.Execute(&out, view); err != nil {
		return "", &AssemblyError{Format: FormatPrint, Message: "failed to execute print template", Cause: err}
	}
	return out.String(), nil
}

// initials builds the logo placeholder text, e.g. "TW" for "The Well".
func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
