package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"evmobf/internal/analysis"
	"evmobf/internal/bytecode"
	"evmobf/internal/disasm"
	"evmobf/internal/evmobf/styles"
	"evmobf/internal/metadata"
	"evmobf/internal/opcodes"
	"evmobf/internal/ui/colorize"
)

// Report describes the structure the obfuscator sees in a bytecode.
type Report struct {
	ByteLen    int
	Split      bool
	InitLen    int
	RuntimeLen int
	LengthPush *disasm.Inst // nil without a split or pattern
	LengthVal  string
	Metadata   *metadata.Trailer
	Sites      []analysis.JumpSite

	runtime *bytecode.Code
	table   opcodes.Table
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [bytecode|file|-]",
	Short: "Show the split point, length push, metadata and jump sites",
	Example: `
# Report on a contract
evmobf inspect contract.bin

# Include the jump-site instruction lines
evmobf inspect --listing contract.bin
  `,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg.Debug)

		input, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		code, err := bytecode.Parse(input)
		if err != nil {
			return err
		}
		report, err := BuildReport(code, opcodes.Default(), cfg.DetachMetadata)
		if err != nil {
			return err
		}

		listing, _ := cmd.Flags().GetBool("listing")
		md := report.Markdown()
		if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(f.Fd()) {
			width, _, err := term.GetSize(f.Fd())
			if err != nil || width <= 0 {
				width = 80
			}
			md = styles.Render(md, width)
		}
		if _, err := io.WriteString(cmd.OutOrStdout(), md); err != nil {
			return err
		}
		if listing {
			report.WriteListing(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().Bool("listing", false, "Print the instructions of every jump site")
	rootCmd.AddCommand(inspectCmd)
}

// BuildReport analyses code without modifying it.
func BuildReport(code *bytecode.Code, table opcodes.Table, detach bool) (*Report, error) {
	r := &Report{ByteLen: code.ByteLen(), table: table}

	if detach {
		if head, t, ok := metadata.Detach(code); ok {
			code, r.Metadata = head, t
		}
	}

	initCode, runtime, err := analysis.Split(code, table)
	switch {
	case errors.Is(err, analysis.ErrNoInitCodeSplit):
		runtime = code
	case err != nil:
		return nil, fmt.Errorf("split: %w", err)
	default:
		r.Split = true
		r.InitLen = initCode.ByteLen()
		push, err := analysis.FindCodecopyLength(initCode, table)
		if err == nil {
			r.LengthPush = &push
			r.LengthVal = "00"
			if start, end := push.Immediate(); end > start {
				r.LengthVal = initCode.Digits(start, end)
			}
		} else if !errors.Is(err, analysis.ErrNoCodecopyLengthPattern) {
			return nil, err
		}
	}
	r.RuntimeLen = runtime.ByteLen()
	r.runtime = runtime

	r.Sites, err = analysis.FindJumpSites(runtime, table)
	if err != nil {
		return nil, fmt.Errorf("find jump sites: %w", err)
	}
	return r, nil
}

// Markdown renders the report as markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Bytecode\n\n")
	fmt.Fprintf(&b, "- **Length:** %d bytes\n", r.ByteLen)
	if r.Split {
		fmt.Fprintf(&b, "- **Init code:** %d bytes\n", r.InitLen)
		fmt.Fprintf(&b, "- **Runtime code:** %d bytes, starting at byte %d\n", r.RuntimeLen, r.InitLen)
	} else {
		fmt.Fprintf(&b, "- **Runtime code:** %d bytes (no init code split)\n", r.RuntimeLen)
	}
	if r.LengthPush != nil {
		fmt.Fprintf(&b, "- **Runtime length push:** `%v 0x%s` at digit %d\n", r.LengthPush.Op, r.LengthVal, r.LengthPush.Offset)
	} else if r.Split {
		b.WriteString("- **Runtime length push:** not found\n")
	}
	if r.Metadata != nil {
		fmt.Fprintf(&b, "- **Metadata:** %d bytes (%s)\n", r.Metadata.Len(), strings.Join(r.Metadata.Keys, ", "))
	}

	fmt.Fprintf(&b, "\n## Jump sites (%d)\n\n", len(r.Sites))
	if len(r.Sites) == 0 {
		b.WriteString("None.\n")
		return b.String()
	}
	b.WriteString("| # | Instruction | Digit offset | Opcode | Target |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for i, s := range r.Sites {
		fmt.Fprintf(&b, "| %d | %d | %d | %v | 0x%s |\n", i+1, s.Index, s.Offset, s.Op, s.ValueHex)
	}
	return b.String()
}

// WriteListing writes the PUSH and JUMP lines of every site.
func (r *Report) WriteListing(w io.Writer) {
	fmt.Fprintln(w, colorize.Header("Jump site listing"))
	for i, s := range r.Sites {
		fmt.Fprintln(w, colorize.Header(fmt.Sprintf("site %d", i+1)))
		operand := ""
		if s.Op != opcodes.PUSH0 {
			operand = "0x" + s.ValueHex
		}
		fmt.Fprintln(w, colorize.ColorizeInstructionLine(
			colorize.FormatLine(s.Offset, r.mnemonic(s.Op), operand, "")))
		jump := s.Offset + 2 + 2*s.Width()
		fmt.Fprintln(w, colorize.ColorizeInstructionLine(
			colorize.FormatLine(jump, r.mnemonic(opcodes.JUMP), "", "target "+s.Value.Dec())))
	}
}

func (r *Report) mnemonic(op opcodes.OpCode) string {
	if info, err := r.table.Lookup(op); err == nil {
		return info.Name
	}
	return op.String()
}
