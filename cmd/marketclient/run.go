package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

func run(ctx context.Context, app *fx.App) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start marketclient: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop marketclient: %v\n", err)
		return 1
	}
	return 0
}
