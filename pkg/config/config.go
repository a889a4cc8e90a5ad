package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/scrubbed/scrubbed/pkg/redact"
	"github.com/scrubbed/scrubbed/pkg/utils"
)

// StatsOff disables the activity summary job when used as SCRUBBED_STATS_SCHEDULE.
const StatsOff = "off"

// Config is read once at startup and never modified afterwards.
type Config struct {
	// Logging level name, case-insensitive
	LogLevel string `env:"SCRUBBED_LOG_LEVEL" envDefault:"INFO" yaml:"logLevel"`
	// Log format: text, json or prefixed
	LogFormat string `env:"SCRUBBED_LOG_FORMAT" envDefault:"text" yaml:"logFormat" validate:"oneof=text json prefixed"`
	// Also write logs to this file, rotated by size
	LogFile           string `env:"SCRUBBED_LOG_FILE" yaml:"logFile,omitempty"`
	LogFileMaxSize    int    `env:"SCRUBBED_LOG_FILE_MAX_SIZE" envDefault:"5" yaml:"logFileMaxSize" validate:"min=1"`
	LogFileMaxBackups int    `env:"SCRUBBED_LOG_FILE_MAX_BACKUPS" envDefault:"5" yaml:"logFileMaxBackups" validate:"min=0"`

	// Literal string to redact values with
	RedactedString string `env:"SCRUBBED_REDACTED_STRING" envDefault:"REDACTED" yaml:"redactedString" validate:"required"`
	// Space separated alert labels to keep
	AlertLabels []string `env:"SCRUBBED_ALERT_LABELS" envDefault:"alertname severity" envSeparator:" " yaml:"alertLabels"`
	// Space separated alert annotations to keep
	AlertAnnotations []string `env:"SCRUBBED_ALERT_ANNOTATIONS" envDefault:"" envSeparator:" " yaml:"alertAnnotations"`
	// Space separated group labels to keep
	GroupLabels []string `env:"SCRUBBED_GROUP_LABELS" envDefault:"" envSeparator:" " yaml:"groupLabels"`
	// Space separated common labels to keep
	CommonLabels []string `env:"SCRUBBED_COMMON_LABELS" envDefault:"alertname severity" envSeparator:" " yaml:"commonLabels"`
	// Space separated common annotations to keep
	CommonAnnotations []string `env:"SCRUBBED_COMMON_ANNOTATIONS" envDefault:"" envSeparator:" " yaml:"commonAnnotations"`

	Host        string `env:"SCRUBBED_LISTEN_HOST" envDefault:"127.0.0.1" yaml:"host" validate:"required,hostname|ip"`
	Port        int    `env:"SCRUBBED_LISTEN_PORT" envDefault:"8080" yaml:"port" validate:"min=1,max=65535"`
	TLSEnable   bool   `env:"SCRUBBED_LISTEN_TLS_ENABLE" envDefault:"false" yaml:"tlsEnable"`
	TLSCertPath string `env:"SCRUBBED_LISTEN_TLS_CERT_PATH" envDefault:"tls.crt" yaml:"tlsCertPath" validate:"required_if=TLSEnable true"`
	TLSKeyPath  string `env:"SCRUBBED_LISTEN_TLS_KEY_PATH" envDefault:"tls.key" yaml:"tlsKeyPath" validate:"required_if=TLSEnable true"`

	// Webhook destination URL e.g. https://monitoring.example.com/webhook?foo=bar
	DestinationURL     string        `env:"SCRUBBED_DESTINATION_URL" envDefault:"http://localhost:6725" yaml:"destinationURL" validate:"required,url"`
	DestinationTimeout time.Duration `env:"SCRUBBED_DESTINATION_TIMEOUT" envDefault:"60s" yaml:"destinationTimeout" validate:"gt=0"`

	MetricsEnable bool `env:"SCRUBBED_METRICS_ENABLE" envDefault:"true" yaml:"metricsEnable"`
	// Cron spec of the activity summary job, "off" disables it
	StatsSchedule string `env:"SCRUBBED_STATS_SCHEDULE" envDefault:"@every 5m" yaml:"statsSchedule"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the structural constraints of c.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// StatsEnabled reports whether the activity summary job should be scheduled.
func (c Config) StatsEnabled() bool {
	return c.StatsSchedule != "" && !strings.EqualFold(c.StatsSchedule, StatsOff)
}

// Address is the listen address of the webhook server.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Redaction builds the redaction policy described by c.
func (c Config) Redaction() redact.Policy {
	return redact.Policy{
		Sentinel:          c.RedactedString,
		AlertLabels:       redact.NewWhitelist(c.AlertLabels...),
		AlertAnnotations:  redact.NewWhitelist(c.AlertAnnotations...),
		GroupLabels:       redact.NewWhitelist(c.GroupLabels...),
		CommonLabels:      redact.NewWhitelist(c.CommonLabels...),
		CommonAnnotations: redact.NewWhitelist(c.CommonAnnotations...),
	}
}

// Logging returns the logging options described by c.
func (c Config) Logging() utils.LogOptions {
	return utils.LogOptions{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSize:    c.LogFileMaxSize,
		MaxBackups: c.LogFileMaxBackups,
	}
}
