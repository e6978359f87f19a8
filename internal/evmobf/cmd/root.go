package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"evmobf/internal/config"
	evmlog "evmobf/internal/evmobf/log"
	"evmobf/internal/logging"
	"evmobf/internal/obfuscation"
)

// JSONOutput is the --json representation of one obfuscation pass.
type JSONOutput struct {
	Input         string             `json:"input"`
	Output        string             `json:"output"`
	Split         bool               `json:"split"`
	InitLength    int                `json:"init_length"`
	RuntimeLength int                `json:"runtime_length"`
	LengthPush    int                `json:"length_push_offset"`
	SitesFound    int                `json:"sites_found"`
	Sites         []obfuscation.Site `json:"sites"`
	Skipped       []int              `json:"skipped"`
	Metadata      int                `json:"metadata"`
}

func newJSONOutput(input string, res *obfuscation.Result, prefix bool) JSONOutput {
	sites := res.Sites
	if sites == nil {
		sites = []obfuscation.Site{}
	}
	skipped := res.Skipped
	if skipped == nil {
		skipped = []int{}
	}
	return JSONOutput{
		Input:         input,
		Output:        formatCode(res, prefix),
		Split:         res.Split,
		InitLength:    res.InitLen,
		RuntimeLength: res.RuntimeLen,
		LengthPush:    res.LengthPush,
		SitesFound:    res.Found,
		Sites:         sites,
		Skipped:       skipped,
		Metadata:      res.MetadataLen,
	}
}

func formatCode(res *obfuscation.Result, prefix bool) string {
	if prefix {
		return res.Code.Hex()
	}
	return res.Code.String()
}

// addConfigFlags registers the flags that override config file settings.
func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	cmd.PersistentFlags().String("config", "", "TOML config file")
	cmd.PersistentFlags().IntP("max-sites", "m", 0, "Maximum number of jump sites to obfuscate (0 = all)")
	cmd.PersistentFlags().Uint64("seed", 0, "Seed for decoy selection (0 = random)")
	cmd.PersistentFlags().String("overflow", "fail", "Operand overflow policy: fail or skip")
	cmd.PersistentFlags().Bool("detach-metadata", false, "Keep the solc metadata trailer at the end of runtime code")
	cmd.PersistentFlags().BoolP("prefix", "p", false, "Emit output with a 0x prefix")
}

func init() {
	addConfigFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("json", "j", false, "Output results as JSON")
	rootCmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")
}

var rootCmd = &cobra.Command{
	Use:   "evmobf [bytecode|file|-]",
	Short: "EVM bytecode control-flow obfuscator",
	Long: `Evmobf rewrites EVM bytecode so every direct PUSH/JUMP pair is routed through
a detour appended at the end of runtime code. Each detour carries a decoy
instruction sequence. The contract behaves exactly as before.`,
	Example: `
# Obfuscate a hex string
evmobf 0x6080604052...

# Obfuscate the first two jump sites of a file, reproducibly
evmobf -m 2 --seed 7 contract.bin

# Read from stdin and print a JSON report
cat contract.bin | evmobf -j
  `,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage: true,
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

		jsonOutput, _ := cmd.Flags().GetBool("json")
		outputPath, _ := cmd.Flags().GetString("output")

		w := cmd.OutOrStdout()
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("could not create output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return runObfuscate(w, input, cfg, jsonOutput)
	},
}

// runObfuscate obfuscates input and writes the result to w.
func runObfuscate(w io.Writer, input string, cfg config.Config, jsonOutput bool) error {
	obf, closeLog, err := newObfuscator(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	res, err := obf.Obfuscate(input)
	if err != nil {
		return err
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newJSONOutput(strings.TrimSpace(input), res, cfg.Prefix))
	}
	_, err = fmt.Fprintln(w, formatCode(res, cfg.Prefix))
	return err
}

// newObfuscator builds an obfuscator logging through charmbracelet/log.
func newObfuscator(cfg config.Config) (*obfuscation.Obfuscator, func(), error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, nil, err
	}
	settings := logging.FromEnv()
	if cfg.Debug {
		settings.Level = log.DebugLevel
	}
	lg := logging.New(settings)
	opts.Logger = lg.Logger
	return obfuscation.New(opts), func() { _ = lg.Close() }, nil
}

func setupLogging(debug bool) {
	evmlog.Setup(debug)
	slog.Debug("logging initialized", "debug", debug)
}

// resolveConfig layers defaults, the --config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("max-sites") {
		cfg.MaxSites, _ = flags.GetInt("max-sites")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("overflow") {
		cfg.Overflow, _ = flags.GetString("overflow")
	}
	if flags.Changed("detach-metadata") {
		cfg.DetachMetadata, _ = flags.GetBool("detach-metadata")
	}
	if flags.Changed("prefix") {
		cfg.Prefix, _ = flags.GetBool("prefix")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

var errNoInput = errors.New("no bytecode given")

// readInput returns the bytecode text: a literal hex argument, the contents
// of a file, or stdin for "-" or no argument.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		if f, ok := stdin.(*os.File); ok && len(args) == 0 && term.IsTerminal(f.Fd()) {
			return "", errNoInput
		}
		bts, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(bts)) == "" {
			return "", errNoInput
		}
		return string(bts), nil
	}
	arg := args[0]
	if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
		bts, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return string(bts), nil
	}
	return arg, nil
}

func Execute() {
	// Bypass fang's rendering when output is piped
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
