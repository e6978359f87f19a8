package colorize

import (
	"strings"
	"testing"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		mnemonic string
		operand  string
		comment  string
		want     string
	}{
		{"bare", 0x26, "JUMP", "", "", "000026  JUMP"},
		{"operand", 0x04, "PUSH1", "0x0a", "", "000004  PUSH1    0x0a"},
		{"comment", 0x08, "JUMP", "", "target 10", "000008  JUMP      ; target 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLine(tt.offset, tt.mnemonic, tt.operand, tt.comment); got != tt.want {
				t.Errorf("FormatLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorizeDisabled(t *testing.T) {
	t.Setenv("EVMOBF_NO_COLOR", "1")
	line := FormatLine(4, "PUSH1", "0x0a", "")
	if got := ColorizeInstructionLine(line); got != line {
		t.Errorf("ColorizeInstructionLine() = %q with colors disabled", got)
	}
	if got := Header("site 1"); got != "site 1" {
		t.Errorf("Header() = %q with colors disabled", got)
	}
}

func TestColorizeKeepsText(t *testing.T) {
	t.Setenv("EVMOBF_NO_COLOR", "")
	line := FormatLine(4, "PUSH1", "0x0a", "")
	got := StripANSI(ColorizeInstructionLine(line))
	if strings.TrimSpace(got) != line {
		t.Errorf("stripped output = %q, want %q", got, line)
	}
}
