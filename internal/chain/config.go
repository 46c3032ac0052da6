package chain

import (
	"time"

	"github.com/rs/zerolog"
)

// Fee modes.
const (
	FeeLegacy  = "legacy"  // eth_gasPrice, type-0 transactions
	FeeDynamic = "dynamic" // base fee * multiplier + tip, EIP-1559 transactions
)

// DefaultConfig is the default configuration for a chain client.
var DefaultConfig = Config{
	Log:            zerolog.Nop(),
	Dialer:         DialEthclient(30 * time.Second),
	Observer:       nopObserver{},
	ConfirmTimeout: 5 * time.Minute,
	FeeMode:        FeeLegacy,
	BaseFeeMul:     2,
	SwapGasLimit:   29_000_000,
	SwapDeadline:   20 * time.Minute,
	Now:            time.Now,
}

// Config is the configuration of a chain client.
type Config struct {
	Log            zerolog.Logger
	Dialer         Dialer
	Observer       Observer
	ConfirmTimeout time.Duration
	FeeMode        string
	BaseFeeMul     int64
	SwapGasLimit   uint64
	SwapDeadline   time.Duration
	Now            func() time.Time
}

func WithLogger(log zerolog.Logger) func(*Config) {
	return func(cfg *Config) {
		cfg.Log = log
	}
}

// WithDialer replaces the function used to open a connection for every operation.
func WithDialer(dial Dialer) func(*Config) {
	return func(cfg *Config) {
		cfg.Dialer = dial
	}
}

func WithObserver(obs Observer) func(*Config) {
	return func(cfg *Config) {
		cfg.Observer = obs
	}
}

// WithConfirmTimeout bounds how long a send waits for its receipt.
func WithConfirmTimeout(timeout time.Duration) func(*Config) {
	return func(cfg *Config) {
		cfg.ConfirmTimeout = timeout
	}
}

// WithFeeMode selects legacy or dynamic fees. The multiplier only applies to
// dynamic fees and scales the latest base fee into the fee cap.
func WithFeeMode(mode string, baseFeeMul int64) func(*Config) {
	return func(cfg *Config) {
		cfg.FeeMode = mode
		cfg.BaseFeeMul = baseFeeMul
	}
}

// WithSwapGasLimit sets the explicit gas ceiling of router swaps.
func WithSwapGasLimit(limit uint64) func(*Config) {
	return func(cfg *Config) {
		cfg.SwapGasLimit = limit
	}
}

// WithSwapDeadline sets how far in the future a swap stays valid.
func WithSwapDeadline(window time.Duration) func(*Config) {
	return func(cfg *Config) {
		cfg.SwapDeadline = window
	}
}

func WithClock(now func() time.Time) func(*Config) {
	return func(cfg *Config) {
		cfg.Now = now
	}
}
