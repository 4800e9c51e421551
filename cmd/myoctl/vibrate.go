package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srg/myolink/pkg/config"
	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

// vibrateCmd represents the vibrate command
var vibrateCmd = &cobra.Command{
	Use:   "vibrate [device-address] [short|medium|long]",
	Short: "Trigger a vibration",
	Long: fmt.Sprintf(`Triggers one of the built-in vibration types, or a custom pattern of
up to %d steps via --pattern.

Each pattern step is duration-ms:strength, where strength is 0-255.

Examples:
  # Built-in medium vibration
  myoctl vibrate de:ad:be:ef:00:01 medium

  # Two short strong pulses with a pause between them
  myoctl vibrate de:ad:be:ef:00:01 --pattern 100:255,150:0,100:255`, protocol.Vibrate2Steps),
	Args: cobra.RangeArgs(0, 2),
	RunE: runVibrate,
}

var vibratePattern string

func init() {
	vibrateCmd.Flags().StringVar(&vibratePattern, "pattern", "", "Custom vibration pattern: duration-ms:strength[,...]")
}

// parseVibrationType converts the CLI name to a protocol vibration type.
func parseVibrationType(name string) (protocol.VibrationType, error) {
	switch strings.ToLower(name) {
	case "short":
		return protocol.VibrationShort, nil
	case "medium":
		return protocol.VibrationMedium, nil
	case "long":
		return protocol.VibrationLong, nil
	default:
		return 0, fmt.Errorf("invalid vibration type %q: use short, medium, or long", name)
	}
}

// parseVibrationPattern parses a duration:strength CSV into Vibrate2 steps.
func parseVibrationPattern(pattern string) ([]protocol.VibrationStep, error) {
	parts := strings.Split(pattern, ",")
	if len(parts) > protocol.Vibrate2Steps {
		return nil, fmt.Errorf("pattern has %d steps, at most %d allowed", len(parts), protocol.Vibrate2Steps)
	}

	steps := make([]protocol.VibrationStep, 0, len(parts))
	for _, part := range parts {
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid pattern step %q: expected duration-ms:strength", part)
		}
		duration, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid duration in step %q: %w", part, err)
		}
		strength, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid strength in step %q: %w", part, err)
		}
		steps = append(steps, protocol.VibrationStep{
			Duration: uint16(duration),
			Strength: uint8(strength),
		})
	}
	return steps, nil
}

func runVibrate(cmd *cobra.Command, args []string) error {
	// Last positional is the vibration type when it is not an address;
	// with --pattern all positionals are the address.
	vibrationType := protocol.VibrationMedium
	addressArgs := args
	if vibratePattern == "" && len(args) > 0 {
		if t, err := parseVibrationType(args[len(args)-1]); err == nil {
			vibrationType = t
			addressArgs = args[:len(args)-1]
		}
	}

	var steps []protocol.VibrationStep
	if vibratePattern != "" {
		var err error
		steps, err = parseVibrationPattern(vibratePattern)
		if err != nil {
			return err
		}
	}

	return withSession(cmd, addressArgs, func(ctx context.Context, sess *myo.Session, _ *config.Config) error {
		if len(steps) > 0 {
			if err := sess.Vibrate2(ctx, steps...); err != nil {
				return fmt.Errorf("failed to send vibration pattern: %w", err)
			}
			return nil
		}
		if err := sess.Vibrate(ctx, vibrationType); err != nil {
			return fmt.Errorf("failed to vibrate: %w", err)
		}
		return nil
	})
}
