package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 128, cfg.EMGBuffer)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout.Std())
	assert.Empty(t, cfg.Address)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "myolink.yaml")
	content := []byte(`
log_level: debug
address: "aa:bb:cc:dd:ee:ff"
connect_timeout: 10s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", cfg.Address)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout.Std(), "unset fields keep defaults")
	assert.Equal(t, 128, cfg.EMGBuffer)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "myolink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connect_timeout: fast\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected logrus.Level
	}{
		{name: "debug level", logLevel: "debug", expected: logrus.DebugLevel},
		{name: "info level", logLevel: "info", expected: logrus.InfoLevel},
		{name: "warn level", logLevel: "warn", expected: logrus.WarnLevel},
		{name: "error level", logLevel: "error", expected: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}

			logger, err := cfg.NewLogger()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, logger.GetLevel())

			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestConfig_NewLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}

	logger, err := cfg.NewLogger()
	assert.Nil(t, logger)
	assert.Error(t, err)
}
