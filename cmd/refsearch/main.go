package main

import (
	"context"
	"time"

	"github.com/niksmo/refsearch/config"
	"github.com/niksmo/refsearch/internal/app"
	"github.com/niksmo/refsearch/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	refsearch := app.New(sigCtx, cfg)

	refsearch.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	refsearch.Close(ctx)
}
