package archon

import "github.com/rs/zerolog"

// WorldOption configures a world during NewWorld, after environment config is
// loaded and before validation.
type WorldOption func(*World)

// WithLogger replaces the default stdout logger.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithConfig overrides the environment-loaded configuration wholesale.
func WithConfig(cfg WorldConfig) WorldOption {
	return func(w *World) {
		w.config = cfg
	}
}

// WithTimingHistorySize sets how many recent system timing samples are kept.
func WithTimingHistorySize(n int) WorldOption {
	return func(w *World) {
		w.config.TimingHistorySize = n
	}
}
