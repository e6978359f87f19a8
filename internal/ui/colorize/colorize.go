// Package colorize highlights instruction listing lines for the terminal.
// Colors are disabled when EVMOBF_NO_COLOR is set.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss/v2"
)

// Enabled reports whether output should be colored.
func Enabled() bool {
	return os.Getenv("EVMOBF_NO_COLOR") == ""
}

// getListingLexer returns an assembly lexer with fallbacks
func getListingLexer() chroma.Lexer {
	for _, name := range []string{"nasm", "gas", "armasm"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getListingStyle() *chroma.Style {
	for _, name := range []string{"evm-dark", "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// FormatLine formats one listing line: digit offset, mnemonic, operand.
func FormatLine(offset int, mnemonic, operand, comment string) string {
	line := fmt.Sprintf("%06x  %-8s", offset, mnemonic)
	if operand != "" {
		line += " " + operand
	}
	if comment != "" {
		line += "  ; " + comment
	}
	return strings.TrimRight(line, " ")
}

// ColorizeInstructionLine colors a line produced by FormatLine. The offset
// column is gray and the rest is highlighted by chroma.
func ColorizeInstructionLine(line string) string {
	if !Enabled() {
		return line
	}
	addr, rest, ok := strings.Cut(line, "  ")
	if !ok {
		return colorizeFullLine(line)
	}
	return fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m  %s", addr, colorizeFullLine(rest))
}

func colorizeFullLine(line string) string {
	lexer := getListingLexer()
	if lexer == nil {
		return line
	}
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getListingStyle(), iterator); err != nil {
		return line
	}
	return buf.String()
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))

// Header styles a section header line.
func Header(s string) string {
	if !Enabled() {
		return s
	}
	return headerStyle.Render(s)
}

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
