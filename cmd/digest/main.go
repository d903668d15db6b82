package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-news-digest/internal/app"
	"github.com/samvad-hq/samvad-news-digest/internal/config"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "digest failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("digest starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	digest, err := app.NewDigest(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize digest", "error", err)
		return err
	}
	defer func() {
		if err := digest.Close(); err != nil {
			logger.WarnObj("publisher close failed", "error", err)
		}
	}()

	summary, err := digest.Run(ctx)
	if err != nil {
		return fmt.Errorf("digest run: %w", err)
	}
	fmt.Printf("Done! %d articles from %d/%d sources -> %s\n", summary.Articles, summary.Succeeded, summary.Sources, summary.Path)
	return nil
}
