package utils

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

func TestHash(t *testing.T) {
	h := Hash(`{}/{severity="critical"}:{alertname="ProbeFailure"}`)
	assert.Len(t, h, 16)
	assert.Equal(t, h, Hash(`{}/{severity="critical"}:{alertname="ProbeFailure"}`))
	assert.NotEqual(t, h, Hash(`{}/{severity="warning"}:{alertname="ProbeFailure"}`))
	assert.NotContains(t, h, "severity")
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &log.JSONFormatter{}, NewFormatter("JSON"))
	assert.IsType(t, &prefixed.TextFormatter{}, NewFormatter("prefixed"))
	assert.IsType(t, &log.TextFormatter{}, NewFormatter("text"))
	assert.IsType(t, &log.TextFormatter{}, NewFormatter(""))
}

func TestConfigureLogging(t *testing.T) {
	logger := log.New()

	closer, err := ConfigureLogging(logger, LogOptions{Level: "DEBUG", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

func TestConfigureLoggingUnknownLevel(t *testing.T) {
	logger := log.New()

	closer, err := ConfigureLogging(logger, LogOptions{Level: "LOUD"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestConfigureLoggingWritesFile(t *testing.T) {
	logger := log.New()
	path := filepath.Join(t.TempDir(), "logs", "scrubbed.log")

	closer, err := ConfigureLogging(logger, LogOptions{Level: "info", File: path, MaxSize: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Info("Test - hello")
	require.NoError(t, closer.Close())

	require.FileExists(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Test - hello")
}
