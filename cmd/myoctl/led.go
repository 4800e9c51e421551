package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srg/myolink/pkg/config"
	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

// ledCmd represents the led command
var ledCmd = &cobra.Command{
	Use:   "led [device-address] <logo-color> [status-color]",
	Short: "Set the logo and status LED colors",
	Long: `Sets the LED colors. Colors are RRGGBB hex values, with an optional
leading '#'. When the status color is omitted the logo color is used for
both LEDs.

Examples:
  # Both LEDs red
  myoctl led de:ad:be:ef:00:01 ff0000

  # Blue logo, green status bar
  myoctl led de:ad:be:ef:00:01 0000ff 00ff00`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runLED,
}

// parseColor parses an RRGGBB hex string into an RGB triple.
func parseColor(s string) (protocol.RGB, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(raw) != 3 {
		return protocol.RGB{}, fmt.Errorf("invalid color %q: expected RRGGBB hex", s)
	}
	return protocol.RGB{raw[0], raw[1], raw[2]}, nil
}

func runLED(cmd *cobra.Command, args []string) error {
	// Trailing positionals that parse as colors are colors; anything
	// before them is the address.
	var colors []protocol.RGB
	addressArgs := args
	for len(addressArgs) > 0 && len(colors) < 2 {
		c, err := parseColor(addressArgs[len(addressArgs)-1])
		if err != nil {
			break
		}
		colors = append([]protocol.RGB{c}, colors...)
		addressArgs = addressArgs[:len(addressArgs)-1]
	}
	if len(colors) == 0 {
		return fmt.Errorf("no LED color given: expected an RRGGBB hex value")
	}

	logo := colors[0]
	status := colors[0]
	if len(colors) == 2 {
		status = colors[1]
	}

	return withSession(cmd, addressArgs, func(ctx context.Context, sess *myo.Session, _ *config.Config) error {
		if err := sess.SetLEDColors(ctx, logo, status); err != nil {
			return fmt.Errorf("failed to set LED colors: %w", err)
		}
		return nil
	})
}
