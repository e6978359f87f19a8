package cmd

import (
	"fmt"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"evmobf/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs [file]",
	Short: "Print the log written with EVMOBF_LOG_TO_FILE=1",
	Long: `Print a log file written with EVMOBF_LOG_TO_FILE=1. Without an argument
the newest evmobf-*.log in the current directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			latest, err := logging.LatestFile(".")
			if err != nil {
				return err
			}
			path = latest
		}
		follow, _ := cmd.Flags().GetBool("follow")

		t, err := tail.TailFile(path, tail.Config{
			Follow: follow,
			ReOpen: follow,
			Logger: tail.DiscardingLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to open log %s: %w", path, err)
		}
		defer t.Cleanup()

		for {
			select {
			case <-cmd.Context().Done():
				return t.Stop()
			case line, ok := <-t.Lines:
				if !ok {
					return t.Wait()
				}
				if line.Err != nil {
					return line.Err
				}
				fmt.Fprintln(cmd.OutOrStdout(), line.Text)
			}
		}
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "Keep reading as the log grows")
	rootCmd.AddCommand(logsCmd)
}
