// Command mdbook-d2 is an mdBook preprocessor that renders D2 diagrams,
// including their layers, scenarios and steps, to SVG.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/mdbook-svg/internal/cli"
	"github.com/matzehuels/mdbook-svg/pkg/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, config.D2)
	cancel()
	os.Exit(code)
}
