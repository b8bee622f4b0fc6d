package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"galleryscraper/internal/config"
	"galleryscraper/internal/core/extract"
	"galleryscraper/internal/core/gallery"
	"galleryscraper/internal/logger"
	"galleryscraper/internal/platform/browser"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:           "galleryscraper",
		Short:         "Download listing carousel images whose alt text matches per-task patterns",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	root.Flags().StringVar(&cfg.InputPath, "input", cfg.InputPath, "input task manifest (JSON)")
	root.Flags().StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "output manifest (JSON)")
	root.Flags().StringVar(&cfg.ImageRoot, "img-root", cfg.ImageRoot, "root directory for downloaded images")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := logger.New("main")

	tasks, err := gallery.LoadTasks(cfg.InputPath)
	if err != nil {
		return err
	}

	engine, err := browser.New(cfg)
	if err != nil {
		return fmt.Errorf("start browser engine: %w", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor := extract.New(engine)
	driver := gallery.New(extractor, engine, cfg.ImageRoot)
	items := driver.Run(ctx, tasks)

	if err := gallery.WriteManifest(cfg.OutputPath, items); err != nil {
		return fmt.Errorf("write output manifest: %w", err)
	}
	log.LogInfof("all done: %d item(s) in %s, images under %s/", len(items), cfg.OutputPath, cfg.ImageRoot)
	return nil
}
