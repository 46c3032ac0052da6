package main

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/config"
	"github.com/ligun0805/bzz-drain/internal/drain"
	"github.com/ligun0805/bzz-drain/internal/units"
)

func formatGwei(v *big.Int) string {
	if v == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(v, big.NewInt(1_000_000_000))
	return r.FloatString(2)
}

func printResult(out io.Writer, label string, res *chain.Result) {
	if res == nil || res.Transaction == nil {
		return
	}
	tx := res.Transaction
	fmt.Fprintf(out, "%-11s : %s (nonce %d, gas %d, price %s gwei)\n",
		label, tx.Hash().Hex(), tx.Nonce(), tx.Gas(), formatGwei(tx.GasFeeCap()))
	if res.Receipt == nil {
		fmt.Fprintln(out, "              not confirmed")
		return
	}
	fmt.Fprintf(out, "              block %s, status %d, gas used %d\n",
		res.Receipt.BlockNumber, res.Receipt.Status, res.Receipt.GasUsed)
}

func printReport(out io.Writer, st config.Settings, report *drain.Report) {
	if report == nil {
		return
	}
	native := func(v *big.Int) string { return units.FromBaseUnits(v, st.NativeDecimals) }

	fmt.Fprintln(out, "Run         :", report.RunID)
	fmt.Fprintln(out, "Address     :", report.Address.Hex())
	if report.Native != nil {
		fmt.Fprintln(out, "Native      :", native(report.Native))
	}
	if report.Token != nil {
		fmt.Fprintln(out, "Token       :", units.FromBaseUnits(report.Token, st.TokenDecimals))
	}
	if report.NativeAfterRescue != nil {
		fmt.Fprintln(out, "Rescued to  :", native(report.NativeAfterRescue))
	}
	printResult(out, "rescue", report.Rescue)
	printResult(out, "token sweep", report.TokenSweep)
	printResult(out, "native sweep", report.NativeSweep)
	if len(report.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped     :", strings.Join(report.Skipped, ", "))
	}
}
