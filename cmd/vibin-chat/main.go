// Command vibin-chat is a terminal client for vibin conversations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vibin/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
