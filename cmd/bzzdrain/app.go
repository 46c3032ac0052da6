package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/config"
	"github.com/ligun0805/bzz-drain/internal/keys"
	"github.com/ligun0805/bzz-drain/internal/metrics"
)

type options struct {
	keyEnv   string
	keystore string
	to       string
	amount   string
	minOut   string
	rescue   bool
	csv      string
	unit     string
	reverse  bool
}

type app struct {
	log      zerolog.Logger
	settings config.Settings
	metrics  *metrics.Metrics
	client   *chain.Client
	out      io.Writer
	secret   func(prompt string) (string, error)

	flags *pflag.FlagSet
	opts  options
}

func (a *app) register(name string) {
	fs := a.flags
	switch name {
	case "address", "unlock", "send-native", "send-token", "swap", "drain":
		fs.StringVar(&a.opts.keyEnv, "key-env", "", "read the private key from this environment variable instead of prompting")
		fs.StringVarP(&a.opts.keystore, "keystore", "k", "", "path to a V3 keystore file")
	}
	switch name {
	case "send-native", "send-token", "drain", "drain-batch":
		fs.StringVarP(&a.opts.to, "to", "t", "", "destination address")
	}
	switch name {
	case "send-native", "send-token", "swap":
		fs.StringVarP(&a.opts.amount, "amount", "a", "", "decimal amount to send")
	}
	switch name {
	case "swap":
		fs.StringVar(&a.opts.minOut, "min-out", "0", "minimum token amount to receive")
	case "drain", "drain-batch":
		fs.BoolVarP(&a.opts.rescue, "rescue", "r", false, "top up gas from the rescue account (RESCUE_PRIVATE_KEY or prompt)")
	case "convert":
		fs.StringVarP(&a.opts.unit, "unit", "u", "token", "unit of the amount: token or native")
		fs.BoolVar(&a.opts.reverse, "reverse", false, "convert base units back to a decimal amount")
	}
	if name == "drain-batch" {
		fs.StringVar(&a.opts.csv, "csv", "", "CSV file with label,key_or_keystore[,password] rows")
	}
}

// account returns the signing account from a keystore, an environment
// variable or a hidden prompt, in that order.
func (a *app) account() (*keys.Account, error) {
	if a.opts.keystore != "" {
		password, err := a.secret("Keystore password: ")
		if err != nil {
			return nil, err
		}
		return keys.UnlockKeystore(a.opts.keystore, password)
	}
	if a.opts.keyEnv != "" {
		key := strings.TrimSpace(os.Getenv(a.opts.keyEnv))
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is empty", a.opts.keyEnv)
		}
		return keys.ParsePrivateKey(key)
	}
	key, err := a.secret("Private key: ")
	if err != nil {
		return nil, err
	}
	return keys.ParsePrivateKey(key)
}

func (a *app) rescueAccount() (*keys.Account, error) {
	if !a.opts.rescue {
		return nil, nil
	}
	key := a.settings.RescuePrivateKeyHex
	if key == "" {
		var err error
		key, err = a.secret("Rescue private key: ")
		if err != nil {
			return nil, err
		}
	}
	acc, err := keys.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("rescue key: %w", err)
	}
	fmt.Fprintln(a.out, "Rescue account :", acc.Hex(), keys.Mask(acc.KeyHex()))
	return acc, nil
}

func (a *app) destination() (common.Address, error) {
	to := strings.TrimSpace(a.opts.to)
	if to == "" {
		return common.Address{}, errors.New("missing destination address (--to)")
	}
	if !common.IsHexAddress(to) {
		return common.Address{}, fmt.Errorf("invalid destination address %q", to)
	}
	return common.HexToAddress(to), nil
}

func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
