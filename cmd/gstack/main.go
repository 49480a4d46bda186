package main

import (
	"context"
	"os"
	"os/signal"

	"gstack.dev/gstack/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, version, os.Args[1:])
	stop()
	os.Exit(code)
}
