package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/myolink/pkg/config"
	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [device-address]",
	Short: "Show device identity, firmware and battery state",
	Long: `Connects to the armband and prints its name, battery level,
firmware version and classifier configuration.

Examples:
  # Query a device by address
  myoctl info de:ad:be:ef:00:01

  # Address from a config file
  myoctl info --config ~/.myolink.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withSession(cmd, args, func(ctx context.Context, sess *myo.Session, _ *config.Config) error {
		name, err := sess.Name(ctx)
		if err != nil {
			return fmt.Errorf("failed to read device name: %w", err)
		}

		battery, err := sess.Battery(ctx)
		if err != nil {
			return fmt.Errorf("failed to read battery level: %w", err)
		}

		fw, err := sess.FirmwareVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read firmware version: %w", err)
		}

		info, err := sess.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to read firmware info: %w", err)
		}

		label := color.New(color.FgCyan).SprintFunc()
		printRow := func(key, value string) {
			fmt.Printf("%s %s\n", label(fmt.Sprintf("%-19s", key+":")), value)
		}

		printRow("Name", name)
		printRow("Battery", fmt.Sprintf("%d%%", battery))
		printRow("Firmware", fmt.Sprintf("%s (hardware rev %d)", fw, fw.HardwareRev))
		printRow("Serial", formatSerial(info.SerialNumber))
		printRow("SKU", formatSKU(info.SKU))
		printRow("Unlock pose", info.UnlockPose.String())
		printRow("Classifier", formatClassifier(info))
		printRow("Stream indicating", formatBool(info.StreamIndicating))
		return nil
	})
}

// formatSerial renders the 6-byte serial as colon-separated hex pairs.
func formatSerial(serial [6]byte) string {
	parts := make([]string, len(serial))
	for i, b := range serial {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

func formatSKU(sku protocol.SKU) string {
	switch sku {
	case protocol.SKUBlack:
		return "black"
	case protocol.SKUWhite:
		return "white"
	default:
		return "unknown"
	}
}

func formatClassifier(info protocol.FirmwareInfo) string {
	model := "builtin"
	if info.ActiveClassifierType == protocol.ClassifierModelCustom {
		model = "custom"
	}
	return fmt.Sprintf("%s #%d (custom classifier present: %s)",
		model, info.ActiveClassifierIndex, formatBool(info.HasCustomClassifier))
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
