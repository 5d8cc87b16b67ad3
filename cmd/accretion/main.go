package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/accretion/internal/config"
	"github.com/tomz197/accretion/internal/logging"
	"github.com/tomz197/accretion/internal/sim"
	"github.com/tomz197/accretion/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "accretion: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.NewPlain(cfg.LogLevel, logFile)

	simCfg, err := cfg.Simulation.Build()
	if err != nil {
		return err
	}
	opts := append(cfg.Simulation.Options(), sim.WithLogger(logger))
	s, err := sim.New(simCfg, opts...)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := view.New(s, bufio.NewReader(os.Stdin), os.Stdout, view.Options{
		FPS:       cfg.View.FPS,
		TimeScale: cfg.View.TimeScale,
		Scale:     cfg.View.Scale,
		Logger:    &logger,
	})
	return v.Run(ctx)
}
