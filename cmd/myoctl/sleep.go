package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srg/myolink/pkg/config"
	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

// sleepCmd represents the sleep command
var sleepCmd = &cobra.Command{
	Use:   "sleep [device-address] [normal|never]",
	Short: "Control sleep behavior",
	Long: `Sets the sleep mode, or puts the armband into deep sleep with --deep.

In normal mode the armband sleeps after a period of inactivity; never
keeps it awake as long as the connection lasts. Deep sleep powers the
device down until it is plugged into USB.

Examples:
  # Keep the armband awake
  myoctl sleep de:ad:be:ef:00:01 never

  # Power down until next USB charge
  myoctl sleep de:ad:be:ef:00:01 --deep`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runSleep,
}

var sleepDeep bool

func init() {
	sleepCmd.Flags().BoolVar(&sleepDeep, "deep", false, "Enter deep sleep (wake requires USB power)")
}

// parseSleepMode converts the CLI name to a protocol sleep mode.
func parseSleepMode(name string) (protocol.SleepMode, error) {
	switch strings.ToLower(name) {
	case "normal":
		return protocol.SleepModeNormal, nil
	case "never":
		return protocol.SleepModeNeverSleep, nil
	default:
		return 0, fmt.Errorf("invalid sleep mode %q: use normal or never", name)
	}
}

func runSleep(cmd *cobra.Command, args []string) error {
	mode := protocol.SleepModeNormal
	addressArgs := args
	if !sleepDeep && len(args) > 0 {
		if m, err := parseSleepMode(args[len(args)-1]); err == nil {
			mode = m
			addressArgs = args[:len(args)-1]
		}
	}

	return withSession(cmd, addressArgs, func(ctx context.Context, sess *myo.Session, _ *config.Config) error {
		if sleepDeep {
			if err := sess.DeepSleep(ctx); err != nil {
				return fmt.Errorf("failed to enter deep sleep: %w", err)
			}
			fmt.Println("Deep sleep command sent. The armband will disconnect.")
			return nil
		}
		if err := sess.SetSleepMode(ctx, mode); err != nil {
			return fmt.Errorf("failed to set sleep mode: %w", err)
		}
		return nil
	})
}
