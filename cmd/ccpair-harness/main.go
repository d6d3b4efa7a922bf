package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clintdigital/terraform-provider-danswer/internal/cli"
)

// version is set by the release build.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(version)
	if err := cmd.ExecuteContext(ctx); err != nil {
		// Commands report their own failures; anything else comes from cobra
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
