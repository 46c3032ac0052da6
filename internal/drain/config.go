package drain

import (
	"github.com/rs/zerolog"

	"github.com/ligun0805/bzz-drain/internal/units"
)

// DefaultConfig is the default configuration for an orchestrator.
var DefaultConfig = Config{
	Log:            zerolog.Nop(),
	Observer:       nopObserver{},
	NativeDecimals: units.NativeDecimals,
	TokenDecimals:  units.TokenDecimals,
}

// Config is the configuration of an orchestrator.
type Config struct {
	Log            zerolog.Logger
	Observer       Observer
	NativeDecimals int
	TokenDecimals  int
}

func WithLogger(log zerolog.Logger) func(*Config) {
	return func(cfg *Config) {
		cfg.Log = log
	}
}

// WithObserver sets where step outcomes are reported.
func WithObserver(obs Observer) func(*Config) {
	return func(cfg *Config) {
		cfg.Observer = obs
	}
}

// WithDecimals sets the decimals used to render balances in logs.
func WithDecimals(native int, token int) func(*Config) {
	return func(cfg *Config) {
		cfg.NativeDecimals = native
		cfg.TokenDecimals = token
	}
}
