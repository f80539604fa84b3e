package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/todoflow/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], cli.App{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
	})
	stop()
	os.Exit(code)
}
