// Package main is the entry point for the greener-reporter CLI.
package main

import (
	"context"
	"os"
	"syscall"

	ctxutil "github.com/greener-hub/greener-reporter/pkg/context"
)

func main() {
	ctx, cancel := ctxutil.WithSignal(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}
