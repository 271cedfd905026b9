// Package main provides the Prep Library bot entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garyellow/prep-library-bot/internal/app"
	"github.com/garyellow/prep-library-bot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Application stopped with error: %v\n", err)
		os.Exit(1)
	}
}
