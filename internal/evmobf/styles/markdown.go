// Package styles holds the terminal styles of the inspect report.
package styles

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/x/exp/charmtone"
)

func color(k charmtone.Key) *string { v := k.Hex(); return &v }
func on() *bool                     { v := true; return &v }
func margin(n uint) *uint           { return &n }

// report palette
var (
	textColor    = charmtone.Smoke
	headingColor = charmtone.Malibu
	titleColor   = charmtone.Zest
	titleBg      = charmtone.Charple
	codeColor    = charmtone.Guac
	dimColor     = charmtone.Squid
)

// GetMarkdownRenderer returns a glamour renderer for inspect reports.
func GetMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(ReportStyle()),
		glamour.WithWordWrap(width),
	)
}

// Render renders markdown at the given width. The input is returned
// unchanged when rendering fails.
func Render(markdown string, width int) string {
	r, err := GetMarkdownRenderer(width)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// ReportStyle is a compact style: bytecode reports are short lists and one table.
func ReportStyle() ansi.StyleConfig {
	heading := func(prefix string) ansi.StyleBlock {
		return ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: prefix}}
	}
	var cfg ansi.StyleConfig

	cfg.Document.Color = color(textColor)
	cfg.Document.Margin = margin(1)

	cfg.Heading.BlockSuffix = "\n"
	cfg.Heading.Color = color(headingColor)
	cfg.Heading.Bold = on()
	cfg.H1.Prefix, cfg.H1.Suffix = " ", " "
	cfg.H1.Color = color(titleColor)
	cfg.H1.BackgroundColor = color(titleBg)
	cfg.H1.Bold = on()
	cfg.H2 = heading("▌ ")
	cfg.H3 = heading("┃ ")

	cfg.Strong.Bold = on()
	cfg.Emph.Italic = on()
	cfg.Item.BlockPrefix = "• "
	cfg.Enumeration.BlockPrefix = ". "

	cfg.Code.Color = color(codeColor)
	cfg.CodeBlock.Color = color(dimColor)
	cfg.CodeBlock.Margin = margin(2)

	cfg.Table.CenterSeparator = stringOf("┼")
	cfg.Table.ColumnSeparator = stringOf("│")
	cfg.Table.RowSeparator = stringOf("─")
	return cfg
}

func stringOf(s string) *string { return &s }
