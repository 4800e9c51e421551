package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/myolink/pkg/protocol"
)

func TestParseVibrationType(t *testing.T) {
	tests := []struct {
		input    string
		expected protocol.VibrationType
	}{
		{"short", protocol.VibrationShort},
		{"medium", protocol.VibrationMedium},
		{"long", protocol.VibrationLong},
		{"LONG", protocol.VibrationLong},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseVibrationType(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseVibrationTypeRejectsUnknown(t *testing.T) {
	_, err := parseVibrationType("extra-long")
	assert.Error(t, err)
}

func TestParseVibrationPattern(t *testing.T) {
	steps, err := parseVibrationPattern("100:255,150:0,300:128")
	require.NoError(t, err)

	assert.Equal(t, []protocol.VibrationStep{
		{Duration: 100, Strength: 255},
		{Duration: 150, Strength: 0},
		{Duration: 300, Strength: 128},
	}, steps)
}

func TestParseVibrationPatternRejectsMalformedSteps(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"missing strength", "100"},
		{"non-numeric duration", "fast:255"},
		{"strength out of range", "100:300"},
		{"duration out of range", "70000:10"},
		{"too many steps", "1:1,2:2,3:3,4:4,5:5,6:6,7:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseVibrationPattern(tt.pattern)
			assert.Error(t, err, "MUST reject pattern %q", tt.pattern)
		})
	}
}
