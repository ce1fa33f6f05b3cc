// Command borelog parses borehole-log exports and inspects stored stratum
// data without running the server.
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/borelog/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Logs go to stderr so stdout carries
// only command output.
func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:          "borelog",
		Short:        "Parse borehole-log exports and read stored stratum data",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, logFormat))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "minimum log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newParseCmd(),
		newStrataCmd(),
		newFlattenCmd(),
	)
	return root
}

// writeJSON pretty-prints v for terminal use.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
