package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/myolink/internal/goble"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover nearby Myo armbands",
	Long: `Scans for BLE advertisements and lists armbands advertising the Myo
control service, strongest signal first.

Examples:
  # Scan with the default 10s window
  myoctl scan

  # Short scan, include every BLE advertiser
  myoctl scan --duration 3s --all`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanAll      bool
)

func init() {
	scanCmd.Flags().DurationVar(&scanDuration, "duration", 10*time.Second, "Scan duration")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "List every BLE advertiser, not just Myo armbands")
}

func runScan(cmd *cobra.Command, _ []string) error {
	logger, err := configureLogger(cmd, "")
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	scanner, err := goble.NewScanner(logger)
	if err != nil {
		return err
	}

	progress := NewProgressPrinter("Scanning")
	progress.Start()
	devices, err := scanner.Scan(ctx, &goble.ScanOptions{
		Duration:        scanDuration,
		AllowDuplicates: true,
		IncludeAll:      scanAll,
	})
	progress.Stop()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No armbands found.")
		return nil
	}

	// Strongest signal first
	list := make([]goble.DeviceInfo, 0, len(devices))
	for _, info := range devices {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].RSSI > list[j].RSSI })

	addr := color.New(color.FgCyan).SprintFunc()
	for _, info := range list {
		name := info.Name
		if name == "" {
			name = "(no name)"
		}
		fmt.Printf("%s  %4d dBm  %s\n", addr(info.Address), info.RSSI, name)
	}
	return nil
}
