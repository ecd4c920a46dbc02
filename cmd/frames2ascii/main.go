package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivlev/frames2ascii/internal/engine"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		var stageErr *engine.StageError
		if errors.As(err, &stageErr) {
			fmt.Fprintf(os.Stderr, "[-] Ошибка на этапе %s: %v\n", stageErr.Stage, err)
		} else {
			fmt.Fprintf(os.Stderr, "[-] Ошибка: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
