package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"evmobf/internal/config"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Obfuscate one bytecode per line",
	Long: `Obfuscate every non-empty line of a file and print one output line per
input line. Failing lines are reported on stderr with their line number; the
command fails if any line did.`,
	Example: `
# Obfuscate a list of contracts with a fixed seed
evmobf batch --seed 42 contracts.txt > obfuscated.txt
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg.Debug)

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		slog.Info("Running batch", "file", args[0])
		return runBatch(f, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

// runBatch obfuscates each non-empty line of r. The obfuscator is shared, so
// a seeded run is reproducible for the whole file.
func runBatch(r io.Reader, out, errOut io.Writer, cfg config.Config) error {
	obf, closeLog, err := newObfuscator(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line, failed := 0, 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		res, err := obf.Obfuscate(text)
		if err != nil {
			failed++
			fmt.Fprintf(errOut, "line %d: %v\n", line, err)
			continue
		}
		fmt.Fprintln(out, formatCode(res, cfg.Prefix))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d lines failed", failed)
	}
	return nil
}
