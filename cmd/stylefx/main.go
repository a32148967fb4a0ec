// Command stylefx fixes or checks the coding style of source files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oxhq/stylefx/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
