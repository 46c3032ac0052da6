package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/drain"
	"github.com/ligun0805/bzz-drain/internal/keys"
	"github.com/ligun0805/bzz-drain/internal/units"
)

func runAddress(_ context.Context, a *app, _ []string) error {
	acc, err := a.account()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, acc.Hex())
	return nil
}

func runUnlock(_ context.Context, a *app, _ []string) error {
	if a.opts.keystore == "" {
		return errors.New("missing keystore path (--keystore)")
	}
	acc, err := a.account()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Address     :", acc.Hex())
	fmt.Fprintln(a.out, "Private key :", keys.Mask(acc.KeyHex()))
	return nil
}

func runConvert(_ context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one amount")
	}

	var decimals int
	switch strings.ToLower(a.opts.unit) {
	case "token":
		decimals = a.settings.TokenDecimals
	case "native":
		decimals = a.settings.NativeDecimals
	default:
		return fmt.Errorf("unknown unit %q", a.opts.unit)
	}

	if a.opts.reverse {
		v, ok := new(big.Int).SetString(strings.TrimSpace(args[0]), 10)
		if !ok {
			return fmt.Errorf("%w: %q", units.ErrInvalidNumberFormat, args[0])
		}
		fmt.Fprintln(a.out, units.FromBaseUnits(v, decimals))
		return nil
	}

	v, err := units.ToBaseUnits(args[0], decimals)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, v.String())
	return nil
}

func runBalance(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 || !common.IsHexAddress(args[0]) {
		return errors.New("expected exactly one address")
	}
	address := common.HexToAddress(args[0])

	native, err := a.client.NativeBalance(ctx, address)
	if err != nil {
		return err
	}
	token, err := a.client.TokenBalance(ctx, address)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Address :", address.Hex())
	fmt.Fprintln(a.out, "Native  :", units.FromBaseUnits(native, a.settings.NativeDecimals))
	fmt.Fprintln(a.out, "Token   :", units.FromBaseUnits(token, a.settings.TokenDecimals))
	return nil
}

func runSendNative(ctx context.Context, a *app, _ []string) error {
	to, err := a.destination()
	if err != nil {
		return err
	}
	amount, err := units.ToBaseUnits(a.opts.amount, a.settings.NativeDecimals)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	acc, err := a.account()
	if err != nil {
		return err
	}

	res, err := a.client.SendNative(ctx, acc.PrivateKey, to, amount)
	printResult(a.out, "native", res)
	return err
}

func runSendToken(ctx context.Context, a *app, _ []string) error {
	to, err := a.destination()
	if err != nil {
		return err
	}
	amount, err := units.ToBaseUnits(a.opts.amount, a.settings.TokenDecimals)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	acc, err := a.account()
	if err != nil {
		return err
	}

	res, err := a.client.SendToken(ctx, acc.PrivateKey, to, amount)
	printResult(a.out, "token", res)
	return err
}

func runSwap(ctx context.Context, a *app, _ []string) error {
	amount, err := units.ToBaseUnits(a.opts.amount, a.settings.NativeDecimals)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	minOut, err := units.ToBaseUnits(a.opts.minOut, a.settings.TokenDecimals)
	if err != nil {
		return fmt.Errorf("min out: %w", err)
	}
	acc, err := a.account()
	if err != nil {
		return err
	}

	res, err := a.client.SwapNativeForToken(ctx, acc.PrivateKey, amount, minOut)
	printResult(a.out, "swap", res)
	return err
}

func (a *app) orchestrator() (*drain.Orchestrator, error) {
	thresholds, err := a.settings.Thresholds()
	if err != nil {
		return nil, err
	}
	return drain.New(a.client, thresholds,
		drain.WithLogger(a.log),
		drain.WithObserver(a.metrics),
		drain.WithDecimals(a.settings.NativeDecimals, a.settings.TokenDecimals),
	)
}

func runDrain(ctx context.Context, a *app, _ []string) error {
	to, err := a.destination()
	if err != nil {
		return err
	}
	acc, err := a.account()
	if err != nil {
		return err
	}
	rescue, err := a.rescueAccount()
	if err != nil {
		return err
	}
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	req := drain.Request{Key: acc.PrivateKey, To: to}
	if rescue != nil {
		req.Rescue = rescue.PrivateKey
	}
	report, err := orch.Drain(ctx, req)
	printReport(a.out, a.settings, report)
	return err
}

func runDrainBatch(ctx context.Context, a *app, _ []string) error {
	to, err := a.destination()
	if err != nil {
		return err
	}
	if a.opts.csv == "" {
		return errors.New("missing CSV path (--csv)")
	}
	rows, err := readJobsCSV(a.opts.csv)
	if err != nil {
		return err
	}
	rescue, err := a.rescueAccount()
	if err != nil {
		return err
	}
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	jobs := make([]drain.Job, 0, len(rows))
	for _, row := range rows {
		acc, err := row.account()
		if err != nil {
			return fmt.Errorf("%s: %w", row.label, err)
		}
		req := drain.Request{Key: acc.PrivateKey, To: to}
		if rescue != nil {
			req.Rescue = rescue.PrivateKey
		}
		jobs = append(jobs, drain.Job{Label: row.label, Request: req})
	}

	outcomes, err := orch.Batch(ctx, jobs, a.settings.Concurrency)
	for _, out := range outcomes {
		fmt.Fprintf(a.out, "=== %s ===\n", out.Label)
		printReport(a.out, a.settings, out.Report)
		if out.Err != nil {
			fmt.Fprintln(a.out, "Error       :", out.Err)
		}
	}
	return err
}

// ensure the client satisfies what the orchestrator needs
var _ drain.Chain = (*chain.Client)(nil)
