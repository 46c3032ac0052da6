package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/config"
	"github.com/ligun0805/bzz-drain/internal/metrics"
)

const (
	success = 0
	failure = 1
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"address":     {usage: "derive the address of a private key", run: runAddress},
	"unlock":      {usage: "decrypt a keystore file", run: runUnlock},
	"convert":     {usage: "convert a decimal amount to base units and back", run: runConvert},
	"balance":     {usage: "show native and token balances of an address", run: runBalance},
	"send-native": {usage: "send native currency", run: runSendNative},
	"send-token":  {usage: "send tokens", run: runSendToken},
	"swap":        {usage: "buy tokens with native currency through the router", run: runSwap},
	"drain":       {usage: "rescue and sweep one account", run: runDrain},
	"drain-batch": {usage: "rescue and sweep every account of a CSV file", run: runDrainBatch},
}

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(out)
		return failure
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage(out)
		return failure
	}

	// Command line parameter initialization.
	var (
		flagConfig string
		flagLevel  string
		flagJSON   bool
	)

	flags := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	flags.StringVarP(&flagConfig, "config", "c", "", "path to YAML configuration file")
	flags.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	flags.BoolVar(&flagJSON, "json", false, "log JSON instead of console output")

	a := app{out: out, secret: readSecret}
	a.flags = flags
	a.register(args[0])

	err := flags.Parse(args[1:])
	if err != nil {
		return failure
	}

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	var w io.Writer = os.Stderr
	if !flagJSON {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log := zerolog.New(w).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	a.log = log.Level(level)

	settings := config.Load()
	if flagConfig != "" {
		settings, err = config.LoadFile(flagConfig)
		if err != nil {
			a.log.Error().Str("config", flagConfig).Err(err).Msg("could not load configuration")
			return failure
		}
	}
	err = settings.Validate()
	if err != nil {
		a.log.Error().Err(err).Msg("invalid configuration")
		return failure
	}
	a.settings = settings

	a.metrics = metrics.New()
	a.client = chain.New(settings.Endpoint(), settings.Contracts(),
		chain.WithLogger(a.log),
		chain.WithDialer(chain.DialEthclient(settings.DialTimeout)),
		chain.WithObserver(a.metrics),
		chain.WithConfirmTimeout(settings.ConfirmTimeout),
		chain.WithFeeMode(settings.FeeMode, settings.BasefeeMul),
		chain.WithSwapGasLimit(settings.SwapGasLimit),
		chain.WithSwapDeadline(settings.SwapDeadline),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = cmd.run(ctx, &a, flags.Args())
	a.writeMetrics()
	if err != nil {
		a.log.Error().Str("command", args[0]).Err(err).Msg("command failed")
		return failure
	}

	return success
}

func usage(out io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "usage: bzzdrain <command> [flags]")
	fmt.Fprintln(out)
	for _, name := range names {
		fmt.Fprintf(out, "  %-12s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration comes from the environment (.env, .env.local) or --config.")
}

func (a *app) writeMetrics() {
	path := strings.TrimSpace(a.settings.MetricsFile)
	if path == "" || a.metrics == nil {
		return
	}
	err := a.metrics.WriteTextfile(path)
	if err != nil {
		a.log.Warn().Str("metrics_file", path).Err(err).Msg("could not write metrics")
	}
}
