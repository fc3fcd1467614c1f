package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-svg/pkg/config"
)

// Main runs the preprocessor for preset with the process arguments and
// returns the exit code.
func Main(ctx context.Context, preset config.Preset) int {
	// A missing .env is fine; it only supplies MDBOOK_SVG_* overrides.
	_ = godotenv.Load()
	return ExitCode(run(ctx, preset, os.Args[1:]), os.Stderr)
}

func run(ctx context.Context, preset config.Preset, args []string) error {
	verbose := VerboseFromEnv(os.Getenv)
	c := New(os.Stderr, LogInfo, preset)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return nil
	}

	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// ExitCode maps the result of a command to an exit code, printing
// unexpected errors to w.
func ExitCode(err error, w io.Writer) int {
	var exit *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.Code
	case errors.Is(err, context.Canceled):
		return 130 // Standard shell convention for SIGINT
	default:
		fmt.Fprintln(w, err)
		return 1
	}
}
