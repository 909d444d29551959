// Command orpheus manages a music library and its play queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/danfragoso/orpheus/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCommand(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
