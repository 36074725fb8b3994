package cmd

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool

	logger = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:   "nodrama",
	Short: "nodrama - environment-specific release archives from a single build",
	Long: `nodrama turns one prebuilt application archive into per-environment releases.

A release is a copy of the build archive with configuration injected at fixed
paths inside the project directory: environment variables, path mappings,
extra Python wheels and WSGI entrypoint fragments. The build archive itself is
never modified.`,
	Version:      "1.0.0",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd.ErrOrStderr())
	},
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Commands are registered in their respective files via init()
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.AddCommand(validateCmd)
}

// newLogger creates the command logger honoring --verbose and --quiet.
func newLogger(w io.Writer) *log.Logger {
	level := log.InfoLevel
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "nodrama",
		Level:  level,
	})
}
