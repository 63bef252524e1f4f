package assembly

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/types"
)

// Chart values used when a compensation string has no digits.
const (
	defaultBase  = 150000
	defaultBonus = 50000
)

const defaultButtonText = "Explore Opportunities"

var nonDigit = regexp.MustCompile(`\D`)

// section is a record resolved into what every output format draws.
type section struct {
	Type         types.SectionType
	Title        string
	Text         string
	Compensation *types.Compensation
	Chart        *charts.Spec
	ButtonText   string
	URL          string
}

func (a *Assembler) prepare(records []types.ContentRecord) []section {
	out := make([]section, 0, len(records))
	for _, r := range records {
		body := r.Body
		if body == nil {
			body = types.DecodeSectionBody(r.SectionType, nil)
		}
		s := section{
			Type:  r.SectionType,
			Title: r.Title,
			Text:  body.Text(),
		}

		switch b := body.(type) {
		case types.CoverBody:
			// Covers carry the title alone.
			s.Text = ""
		case types.RoleDescriptionBody:
			if b.Compensation != nil {
				s.Compensation = b.Compensation
				spec := CompensationChart(*b.Compensation)
				s.Chart = &spec
			}
		case types.CallToActionBody:
			s.ButtonText = b.ButtonText
			s.URL = b.URL
			if s.ButtonText == "" {
				s.ButtonText = defaultButtonText
			}
			if s.URL == "" {
				s.URL = "https://" + a.brand.Domain
			}
		}
		out = append(out, s)
	}
	return out
}

// CompensationChart builds the Base vs Bonus bar chart for a compensation
// block. Every non-digit is dropped before parsing; an empty result falls back
// to 150000 base and 50000 bonus.
func CompensationChart(c types.Compensation) charts.Spec {
	return charts.Spec{
		Type:   charts.TypeBar,
		Labels: []string{"Base", "Bonus"},
		Values: []float64{parseAmount(c.Base, defaultBase), parseAmount(c.Bonus, defaultBonus)},
	}
}

func parseAmount(s string, fallback float64) float64 {
	digits := nonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return fallback
	}
	return v
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
