// Package brand holds the read-only brand configuration shared by every renderer.
// The configuration is loaded once and handed out by value; callers cannot mutate
// the process-wide copy.
package brand

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ChartPaletteSize is the number of colors in the chart color cycle.
const ChartPaletteSize = 5

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Colors is the brand color palette as hex strings.
type Colors struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
	Gold      string `yaml:"gold" json:"gold"`
	LightGold string `yaml:"light_gold" json:"light_gold"`
	Cyan      string `yaml:"cyan" json:"cyan"`
	Text      string `yaml:"text" json:"text"`
	TextMuted string `yaml:"text_muted" json:"text_muted"`
	TextDark  string `yaml:"text_dark" json:"text_dark"`
	Border    string `yaml:"border" json:"border"`
}

// Fonts holds the font stacks used by print and slide output.
type Fonts struct {
	Family  string `yaml:"family" json:"family"`
	Heading string `yaml:"heading" json:"heading"`
	Slide   string `yaml:"slide" json:"slide"` // single typeface name for PPTX runs
}

// Spacing holds page geometry and layout constants.
type Spacing struct {
	PageWidth    string `yaml:"page_width" json:"page_width"`
	PageHeight   string `yaml:"page_height" json:"page_height"`
	PageMargin   string `yaml:"page_margin" json:"page_margin"`
	SectionGap   string `yaml:"section_gap" json:"section_gap"`
	ChartPadding int    `yaml:"chart_padding" json:"chart_padding"`
}

// Config is the complete brand configuration.
type Config struct {
	FirmName    string   `yaml:"firm_name" json:"firm_name"`
	Domain      string   `yaml:"domain" json:"domain"`
	Tagline     string   `yaml:"tagline" json:"tagline"`
	Colors      Colors   `yaml:"colors" json:"colors"`
	Fonts       Fonts    `yaml:"fonts" json:"fonts"`
	Spacing     Spacing  `yaml:"spacing" json:"spacing"`
	ChartColors []string `yaml:"chart_colors" json:"chart_colors"`
}

var (
	defaultOnce sync.Once
	defaultCfg  Config
)

// Default returns the embedded brand configuration.
// It panics if the embedded file is invalid, which is a build defect.
func Default() Config {
	defaultOnce.Do(func() {
		cfg, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("invalid embedded brand config: %v", err))
		}
		defaultCfg = cfg
	})
	return defaultCfg.clone()
}

// Load reads a brand configuration from a YAML file.
// An empty path returns the embedded default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read brand file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML brand configuration.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse brand YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every color is a six-digit hex value and the chart
// palette has exactly ChartPaletteSize entries.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FirmName) == "" {
		return fmt.Errorf("brand config error: 'firm_name' is required")
	}
	if strings.TrimSpace(c.Domain) == "" {
		return fmt.Errorf("brand config error: 'domain' is required")
	}
	named := map[string]string{
		"primary":    c.Colors.Primary,
		"secondary":  c.Colors.Secondary,
		"gold":       c.Colors.Gold,
		"light_gold": c.Colors.LightGold,
		"cyan":       c.Colors.Cyan,
		"text":       c.Colors.Text,
		"text_muted": c.Colors.TextMuted,
		"text_dark":  c.Colors.TextDark,
		"border":     c.Colors.Border,
	}
	for name, value := range named {
		if !hexColor.MatchString(value) {
			return fmt.Errorf("brand config error: color %q must be #RRGGBB, got %q", name, value)
		}
	}
	if len(c.ChartColors) != ChartPaletteSize {
		return fmt.Errorf("brand config error: 'chart_colors' needs %d entries, got %d", ChartPaletteSize, len(c.ChartColors))
	}
	for i, value := range c.ChartColors {
		if !hexColor.MatchString(value) {
			return fmt.Errorf("brand config error: chart color %d must be #RRGGBB, got %q", i, value)
		}
	}
	if c.Spacing.ChartPadding < 0 {
		return fmt.Errorf("brand config error: 'chart_padding' must be non-negative")
	}
	return nil
}

// ChartColor returns the palette color for a series index, cycling through the palette.
func (c Config) ChartColor(i int) string {
	if i < 0 {
		i = -i
	}
	return c.ChartColors[i%len(c.ChartColors)]
}

// Palette returns every distinct brand color, named colors first.
func (c Config) Palette() []string {
	all := []string{
		c.Colors.Primary, c.Colors.Secondary, c.Colors.Gold, c.Colors.LightGold,
		c.Colors.Cyan, c.Colors.Text, c.Colors.TextMuted, c.Colors.TextDark, c.Colors.Border,
	}
	all = append(all, c.ChartColors...)

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, color := range all {
		key := strings.ToUpper(color)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, color)
	}
	return out
}

// Hex returns a color without its leading '#', as OOXML expects.
func Hex(color string) string {
	return strings.ToUpper(strings.TrimPrefix(color, "#"))
}

func (c Config) clone() Config {
	out := c
	out.ChartColors = append([]string(nil), c.ChartColors...)
	return out
}
