package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "REDACTED", cfg.RedactedString)
	assert.Equal(t, []string{"alertname", "severity"}, cfg.AlertLabels)
	assert.Empty(t, cfg.AlertAnnotations)
	assert.Empty(t, cfg.GroupLabels)
	assert.Equal(t, []string{"alertname", "severity"}, cfg.CommonLabels)
	assert.Empty(t, cfg.CommonAnnotations)
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
	assert.False(t, cfg.TLSEnable)
	assert.Equal(t, "http://localhost:6725", cfg.DestinationURL)
	assert.Equal(t, 60*time.Second, cfg.DestinationTimeout)
	assert.True(t, cfg.MetricsEnable)
	assert.Equal(t, "@every 5m", cfg.StatsSchedule)
	assert.True(t, cfg.StatsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SCRUBBED_REDACTED_STRING":     "***",
		"SCRUBBED_ALERT_ANNOTATIONS":   "summary description",
		"SCRUBBED_GROUP_LABELS":        "namespace",
		"SCRUBBED_LISTEN_HOST":         "0.0.0.0",
		"SCRUBBED_LISTEN_PORT":         "9000",
		"SCRUBBED_DESTINATION_URL":     "https://monitoring.example.com/webhook?foo=bar",
		"SCRUBBED_DESTINATION_TIMEOUT": "5s",
		"SCRUBBED_STATS_SCHEDULE":      "off",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"summary", "description"}, cfg.AlertAnnotations)
	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, 5*time.Second, cfg.DestinationTimeout)
	assert.False(t, cfg.StatsEnabled())

	p := cfg.Redaction()
	assert.Equal(t, "***", p.Sentinel)
	assert.True(t, p.AlertAnnotations.Contains("summary"))
	assert.True(t, p.GroupLabels.Contains("namespace"))
	assert.True(t, p.AlertLabels.Contains("alertname"))
	assert.Empty(t, p.CommonAnnotations)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"port out of range", map[string]string{"SCRUBBED_LISTEN_PORT": "70000"}},
		{"port not a number", map[string]string{"SCRUBBED_LISTEN_PORT": "http"}},
		{"destination not a url", map[string]string{"SCRUBBED_DESTINATION_URL": "not a url"}},
		{"host not a hostname", map[string]string{"SCRUBBED_LISTEN_HOST": "not a host!"}},
		{"zero timeout", map[string]string{"SCRUBBED_DESTINATION_TIMEOUT": "0s"}},
		{"bad timeout", map[string]string{"SCRUBBED_DESTINATION_TIMEOUT": "soon"}},
		{"unknown log format", map[string]string{"SCRUBBED_LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			assert.Error(t, err)
		})
	}
}

func TestLogging(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"SCRUBBED_LOG_LEVEL": "debug", "SCRUBBED_LOG_FILE": "/tmp/scrubbed.log"})
	require.NoError(t, err)

	opts := cfg.Logging()
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "/tmp/scrubbed.log", opts.File)
	assert.Equal(t, 5, opts.MaxSize)
}

func TestValidateTLSPaths(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"SCRUBBED_LISTEN_TLS_ENABLE": "true"})
	require.NoError(t, err)
	assert.Equal(t, "tls.crt", cfg.TLSCertPath)

	cfg.TLSCertPath = ""
	assert.Error(t, cfg.Validate())
}
