package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	log "log/slog"

	"companion/internal/bus"
	"companion/internal/config"
)

func main() {
	cfg, err := config.Load("companion-shard", os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: cfg.Level(),
	})))

	log.Info("Starting companion shard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bus.Dial(ctx, bus.Config{URL: cfg.BusURL, Name: cfg.BusName})
	if err != nil {
		log.Error("Failed to connect to bus", "url", cfg.BusURL, "err", err)
		os.Exit(1)
	}

	if err := b.Run(ctx, bus.Bridge(bus.Socket(cfg.Socket))); err != nil {
		log.Error("Bus stopped", "err", err)
		os.Exit(1)
	}
}
