// Command kirchhoff solves linear circuits by fundamental cycle analysis.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/kirchhoff/internal/cli"
	"github.com/matzehuels/kirchhoff/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := cli.New(os.Stderr).RootCommand()
	root.SilenceErrors = true
	err := root.ExecuteContext(ctx)
	stop()

	code := cli.ExitCode(err)
	if code != 0 && code != 130 {
		fmt.Fprintln(os.Stderr, "kirchhoff:", errors.UserMessage(err))
	}
	os.Exit(code)
}
