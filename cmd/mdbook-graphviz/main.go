// Command mdbook-graphviz is an mdBook preprocessor that renders Graphviz
// DOT blocks to SVG.
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
	code := cli.Main(ctx, config.Graphviz)
	cancel()
	os.Exit(code)
}
