package config

import (
	"fmt"
	"math/big"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v2"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/drain"
	"github.com/ligun0805/bzz-drain/internal/keys"
	"github.com/ligun0805/bzz-drain/internal/units"
)

// Settings keeps all configuration options.
// Env keys are the yaml keys, in either lower or UPPER case.
type Settings struct {
	RPCURL               string        `yaml:"rpc_url" validate:"required,endpoint"`
	ChainID              int64         `yaml:"chain_id" validate:"gt=0"`
	TokenAddress         string        `yaml:"token_address" validate:"required,eth_addr"`
	RouterAddress        string        `yaml:"router_address" validate:"required,eth_addr"`
	WrappedNativeAddress string        `yaml:"wrapped_native_address" validate:"required,eth_addr"`
	TokenDecimals        int           `yaml:"token_decimals" validate:"min=0,max=77"`
	NativeDecimals       int           `yaml:"native_decimals" validate:"min=0,max=77"`
	IgnoreThreshold      string        `yaml:"ignore_threshold" validate:"required"`
	RescueValue          string        `yaml:"rescue_value" validate:"required"`
	SafeSubValue         string        `yaml:"safe_sub_value" validate:"required"`
	SwapGasLimit         uint64        `yaml:"swap_gas_limit" validate:"gt=0"`
	SwapDeadline         time.Duration `yaml:"swap_deadline" validate:"gt=0"`
	ConfirmTimeout       time.Duration `yaml:"confirm_timeout" validate:"gt=0"`
	DialTimeout          time.Duration `yaml:"dial_timeout" validate:"gt=0"`
	FeeMode              string        `yaml:"fee_mode" validate:"oneof=legacy dynamic"`
	BasefeeMul           int64         `yaml:"basefee_mul" validate:"min=1"`
	RescuePrivateKeyHex  string        `yaml:"rescue_private_key"`
	Concurrency          int           `yaml:"concurrency" validate:"min=1"`
	MetricsFile          string        `yaml:"metrics_file"`
}

// Default returns the Gnosis chain deployment used by the drain tooling.
func Default() Settings {
	return Settings{
		RPCURL:               "https://rpc.gnosischain.com",
		ChainID:              100,
		TokenAddress:         "0xdBF3Ea6F5beE45c02255B2c26a16F300502F68da",
		RouterAddress:        "0x1C232F01118CB8B424793ae03F870aa7D0ac7f77",
		WrappedNativeAddress: "0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d",
		TokenDecimals:        units.TokenDecimals,
		NativeDecimals:       units.NativeDecimals,
		IgnoreThreshold:      "0.01",
		RescueValue:          "0.1",
		SafeSubValue:         "0.008",
		SwapGasLimit:         29_000_000,
		SwapDeadline:         20 * time.Minute,
		ConfirmTimeout:       5 * time.Minute,
		DialTimeout:          30 * time.Second,
		FeeMode:              chain.FeeLegacy,
		BasefeeMul:           2,
		Concurrency:          1,
	}
}

// Load reads settings from environment supporting both UPPER_CASE and lower_case keys.
func Load() Settings {
	st := Default()
	applyEnv(&st)
	return st
}

// LoadFile reads settings from a YAML file, expanding ${VAR} references, and
// then applies environment overrides.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("could not read config file: %w", err)
	}

	st := Default()
	expanded := os.ExpandEnv(string(data))
	err = yaml.UnmarshalStrict([]byte(expanded), &st)
	if err != nil {
		return Settings{}, fmt.Errorf("could not parse config file: %w", err)
	}

	applyEnv(&st)
	return st, nil
}

func applyEnv(st *Settings) {
	get := func(key string, def string) string {
		for _, k := range []string{key, strings.ToUpper(key)} {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				return v
			}
		}
		return def
	}
	getInt := func(key string, def int) int {
		s := get(key, "")
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return def
	}
	getInt64 := func(key string, def int64) int64 {
		s := get(key, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return def
	}
	getUint64 := func(key string, def uint64) uint64 {
		s := get(key, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
		return def
	}
	getDuration := func(key string, def time.Duration) time.Duration {
		s := get(key, "")
		if s == "" {
			return def
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		return def
	}

	st.RPCURL = get("rpc_url", st.RPCURL)
	st.ChainID = getInt64("chain_id", st.ChainID)
	st.TokenAddress = get("token_address", st.TokenAddress)
	st.RouterAddress = get("router_address", st.RouterAddress)
	st.WrappedNativeAddress = get("wrapped_native_address", st.WrappedNativeAddress)
	st.TokenDecimals = getInt("token_decimals", st.TokenDecimals)
	st.NativeDecimals = getInt("native_decimals", st.NativeDecimals)

	st.IgnoreThreshold = get("ignore_threshold", st.IgnoreThreshold)
	st.RescueValue = get("rescue_value", st.RescueValue)
	st.SafeSubValue = get("safe_sub_value", st.SafeSubValue)

	st.SwapGasLimit = getUint64("swap_gas_limit", st.SwapGasLimit)
	st.SwapDeadline = getDuration("swap_deadline", st.SwapDeadline)
	st.ConfirmTimeout = getDuration("confirm_timeout", st.ConfirmTimeout)
	st.DialTimeout = getDuration("dial_timeout", st.DialTimeout)
	st.FeeMode = strings.ToLower(get("fee_mode", st.FeeMode))
	st.BasefeeMul = getInt64("basefee_mul", st.BasefeeMul)

	st.RescuePrivateKeyHex = get("rescue_private_key", st.RescuePrivateKeyHex)
	st.Concurrency = getInt("concurrency", st.Concurrency)
	st.MetricsFile = get("metrics_file", st.MetricsFile)
}

// Validate reports every invalid option at once. The rescue key is checked
// but never echoed.
// validEndpoint accepts http(s) and ws(s) URLs with a host, and IPC socket paths.
func validEndpoint(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.HasSuffix(raw, ".ipc") && !strings.Contains(raw, "://") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return true
	}
	return false
}

func (st Settings) Validate() error {
	var errs *multierror.Error

	validate := validator.New()
	_ = validate.RegisterValidation("endpoint", validEndpoint)
	err := validate.Struct(st)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			errs = multierror.Append(errs, fmt.Errorf("invalid %s (%s)", verr.Field(), verr.Tag()))
		}
	} else if err != nil {
		errs = multierror.Append(errs, err)
	}

	for name, value := range map[string]string{
		"IgnoreThreshold": st.IgnoreThreshold,
		"RescueValue":     st.RescueValue,
		"SafeSubValue":    st.SafeSubValue,
	} {
		if value == "" {
			continue
		}
		_, err := units.ToBaseUnits(value, st.NativeDecimals)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	}

	if st.RescuePrivateKeyHex != "" {
		_, err := keys.ParsePrivateKey(st.RescuePrivateKeyHex)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid RescuePrivateKey: %w", keys.ErrInvalidPrivateKey))
		}
	}

	return errs.ErrorOrNil()
}

// Endpoint returns the RPC endpoint with the expected chain ID.
func (st Settings) Endpoint() chain.Endpoint {
	return chain.Endpoint{URL: st.RPCURL, ChainID: big.NewInt(st.ChainID)}
}

// Contracts returns the configured contract addresses.
func (st Settings) Contracts() chain.Contracts {
	return chain.Contracts{
		Token:         common.HexToAddress(st.TokenAddress),
		Router:        common.HexToAddress(st.RouterAddress),
		WrappedNative: common.HexToAddress(st.WrappedNativeAddress),
	}
}

// Thresholds converts the native amounts into wei.
func (st Settings) Thresholds() (drain.Thresholds, error) {
	ignore, err := units.ToBaseUnits(st.IgnoreThreshold, st.NativeDecimals)
	if err != nil {
		return drain.Thresholds{}, fmt.Errorf("ignore threshold: %w", err)
	}
	rescue, err := units.ToBaseUnits(st.RescueValue, st.NativeDecimals)
	if err != nil {
		return drain.Thresholds{}, fmt.Errorf("rescue value: %w", err)
	}
	safeSub, err := units.ToBaseUnits(st.SafeSubValue, st.NativeDecimals)
	if err != nil {
		return drain.Thresholds{}, fmt.Errorf("safe sub value: %w", err)
	}
	return drain.Thresholds{Ignore: ignore, Rescue: rescue, SafeSub: safeSub}, nil
}
