package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/saylorsolutions/novault/cmd/internal"
)

var (
	version = "dev"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	if err != nil {
		internal.Fatal("Error: %v", err)
	}
}
