package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// unsupportedRenderer is the renderer name mdBook's test suite uses for a
// renderer no preprocessor supports.
const unsupportedRenderer = "not-supported"

// supports reports whether the preprocessor can run for renderer. The
// output is plain HTML or markdown images, which every renderer accepts.
func supports(renderer string) bool {
	return renderer != unsupportedRenderer
}

// supportsCommand creates the "supports" command mdBook calls before a
// build. The answer is the exit status: 0 when supported.
func (c *CLI) supportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "supports <renderer>",
		Short: "Check whether a renderer is supported by this preprocessor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !supports(args[0]) {
				c.Logger.Debug("renderer not supported", "renderer", args[0])
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

// ExitError asks main to exit with Code without printing anything.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }
