package archon

import (
	"strings"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	DefaultLogLevel          = "info"
	DefaultTimingHistorySize = 128
)

var defaultConfig = WorldConfig{
	LogLevel:          DefaultLogLevel,
	TimingHistorySize: DefaultTimingHistorySize,
}

// WorldConfig carries the ambient settings a world is constructed with. All
// fields can be populated from the environment; unset variables leave the
// defaults in place.
type WorldConfig struct {
	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string `config:"ARCHON_LOG_LEVEL"`
	// StatsdAddress enables timing emission when non-empty.
	StatsdAddress string `config:"ARCHON_STATSD_ADDRESS"`
	// StatsdTags is a comma-separated list of tags attached to every metric.
	StatsdTags string `config:"ARCHON_STATSD_TAGS"`
	// TimingHistorySize bounds the rolling timing ring buffer.
	TimingHistorySize int `config:"ARCHON_TIMING_HISTORY_SIZE"`
}

func loadWorldConfig() (*WorldConfig, error) {
	cfg := defaultConfig
	if err := config.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load config from env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *WorldConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrapf(err, "log level %q is invalid", c.LogLevel)
	}
	if c.TimingHistorySize <= 0 {
		return eris.Errorf("timing history size must be positive, got %d", c.TimingHistorySize)
	}
	return nil
}

func (c *WorldConfig) statsdTagList() []string {
	if c.StatsdTags == "" {
		return nil
	}
	parts := strings.Split(c.StatsdTags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
