package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srg/myolink/internal/goble"
	"github.com/srg/myolink/pkg/config"
	"github.com/srg/myolink/pkg/myo"
)

// loadConfig returns the effective configuration: the file named by the
// --config flag when given, built-in defaults otherwise. The second return
// reports whether a file was actually loaded.
func loadConfig(cmd *cobra.Command) (*config.Config, bool, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultConfig(), false, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// resolveAddress picks the device address from the positional argument,
// falling back to the config file.
func resolveAddress(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Address != "" {
		return cfg.Address, nil
	}
	return "", fmt.Errorf("no device address: pass it as an argument or set 'address' in the config file")
}

// withSession handles the shared command plumbing: config, logger, signal
// handling, connect with progress display, and disconnect on the way out.
// fn runs with a live session; the context is cancelled on Ctrl+C.
func withSession(cmd *cobra.Command, args []string, fn func(ctx context.Context, sess *myo.Session, cfg *config.Config) error) error {
	cfg, fromFile, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	address, err := resolveAddress(args, cfg)
	if err != nil {
		return err
	}

	// Config file log level applies only when a file was given; the CLI
	// stays quiet by default.
	configLevel := ""
	if fromFile {
		configLevel = cfg.LogLevel
	}
	logger, err := configureLogger(cmd, configLevel)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	progress := NewProgressPrinter(fmt.Sprintf("Connecting to %s", address))
	progress.Start()

	link := goble.NewTransport(address, logger)
	sess := myo.NewSession(link, &myo.Options{Logger: logger})

	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.ConnectTimeout.Std())
	err = sess.Connect(connectCtx)
	connectCancel()
	progress.Stop()
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Disconnect(); err != nil {
			logger.WithField("error", err).Warn("Disconnect failed")
		}
	}()

	return fn(ctx, sess, cfg)
}
