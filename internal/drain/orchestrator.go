package drain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/units"
)

// Chain is the part of the chain client a drain needs.
type Chain interface {
	NativeBalance(ctx context.Context, address common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, address common.Address) (*big.Int, error)
	SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error)
	SendToken(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error)
}

// Request is one account to drain.
type Request struct {
	Key    *ecdsa.PrivateKey
	To     common.Address
	Rescue *ecdsa.PrivateKey // optional, funds gas when the account has none
}

// Report describes how far a drain progressed. Balances are the ones read at
// the start; NativeAfterRescue is only set when a rescue happened.
type Report struct {
	RunID             string
	Address           common.Address
	Native            *big.Int
	Token             *big.Int
	NativeAfterRescue *big.Int
	Rescue            *chain.Result
	TokenSweep        *chain.Result
	NativeSweep       *chain.Result
	Skipped           []string
}

// Orchestrator drains accounts: it tops them up from a rescue account when
// they hold tokens but no gas, then sweeps tokens and native to a destination.
type Orchestrator struct {
	log        zerolog.Logger
	cfg        Config
	chain      Chain
	thresholds Thresholds
}

func New(ch Chain, thresholds Thresholds, options ...func(*Config)) (*Orchestrator, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	err := thresholds.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	o := Orchestrator{
		log:        cfg.Log.With().Str("component", "drain").Logger(),
		cfg:        cfg,
		chain:      ch,
		thresholds: thresholds,
	}

	return &o, nil
}

// run is the mutable state threaded through the steps of one drain.
type run struct {
	log    zerolog.Logger
	req    Request
	report *Report
	native *big.Int
	token  *big.Int
}

// step returns false when its condition did not hold and nothing was done.
type step struct {
	name string
	exec func(ctx context.Context, r *run) (bool, error)
}

func (o *Orchestrator) pipeline() []step {
	return []step{
		{name: StepDerive, exec: o.derive},
		{name: StepBalances, exec: o.balances},
		{name: StepRescue, exec: o.rescue},
		{name: StepTokenSweep, exec: o.sweepToken},
		{name: StepNativeSweep, exec: o.sweepNative},
	}
}

// Drain runs the pipeline for one account. Steps run strictly in order and the
// first failure aborts the rest; the report is returned either way.
func (o *Orchestrator) Drain(ctx context.Context, req Request) (*Report, error) {
	if req.Key == nil {
		return nil, errors.New("missing private key")
	}

	report := Report{RunID: uuid.NewString()}
	r := run{
		log:    o.log.With().Str("run", report.RunID).Logger(),
		req:    req,
		report: &report,
	}

	for _, s := range o.pipeline() {
		done, err := s.exec(ctx, &r)
		switch {
		case err != nil:
			o.cfg.Observer.Step(s.name, OutcomeFailed)
			r.log.Error().Err(err).Str("step", s.name).Msg("drain aborted")
			return &report, fmt.Errorf("%s: %w", s.name, err)
		case !done:
			o.cfg.Observer.Step(s.name, OutcomeSkipped)
			report.Skipped = append(report.Skipped, s.name)
			r.log.Debug().Str("step", s.name).Msg("step skipped")
		default:
			o.cfg.Observer.Step(s.name, OutcomeDone)
		}
	}

	r.log.Info().
		Str("address", report.Address.Hex()).
		Strs("skipped", report.Skipped).
		Msg("drain complete")

	return &report, nil
}

func (o *Orchestrator) derive(_ context.Context, r *run) (bool, error) {
	r.report.Address = gethcrypto.PubkeyToAddress(r.req.Key.PublicKey)
	r.log = r.log.With().Str("address", r.report.Address.Hex()).Logger()
	return true, nil
}

func (o *Orchestrator) balances(ctx context.Context, r *run) (bool, error) {
	native, err := o.chain.NativeBalance(ctx, r.report.Address)
	if err != nil {
		return false, fmt.Errorf("could not read native balance: %w", err)
	}
	token, err := o.chain.TokenBalance(ctx, r.report.Address)
	if err != nil {
		return false, fmt.Errorf("could not read token balance: %w", err)
	}

	r.native, r.token = native, token
	r.report.Native, r.report.Token = native, token

	r.log.Info().
		Str("native", units.FromBaseUnits(native, o.cfg.NativeDecimals)).
		Str("token", units.FromBaseUnits(token, o.cfg.TokenDecimals)).
		Msg("balances read")

	return true, nil
}

// rescue tops the account up when it holds tokens but too little native to
// move them. The native balance is read again so the native sweep sees the
// top-up.
func (o *Orchestrator) rescue(ctx context.Context, r *run) (bool, error) {
	if r.req.Rescue == nil || r.token.Sign() <= 0 || r.native.Cmp(o.thresholds.Ignore) >= 0 {
		return false, nil
	}

	res, err := o.chain.SendNative(ctx, r.req.Rescue, r.report.Address, o.thresholds.Rescue)
	r.report.Rescue = res
	if err != nil {
		return false, fmt.Errorf("could not send rescue funds: %w", err)
	}

	native, err := o.chain.NativeBalance(ctx, r.report.Address)
	if err != nil {
		return false, fmt.Errorf("could not re-read native balance: %w", err)
	}
	r.native = native
	r.report.NativeAfterRescue = native

	r.log.Info().Str("native", units.FromBaseUnits(native, o.cfg.NativeDecimals)).Msg("account rescued")

	return true, nil
}

func (o *Orchestrator) sweepToken(ctx context.Context, r *run) (bool, error) {
	if r.token.Sign() <= 0 {
		return false, nil
	}

	res, err := o.chain.SendToken(ctx, r.req.Key, r.req.To, r.token)
	r.report.TokenSweep = res
	if err != nil {
		return false, fmt.Errorf("could not sweep token: %w", err)
	}

	return true, nil
}

func (o *Orchestrator) sweepNative(ctx context.Context, r *run) (bool, error) {
	if r.native.Cmp(o.thresholds.Ignore) <= 0 {
		return false, nil
	}

	amount := new(big.Int).Sub(r.native, o.thresholds.SafeSub)
	res, err := o.chain.SendNative(ctx, r.req.Key, r.req.To, amount)
	r.report.NativeSweep = res
	if err != nil {
		return false, fmt.Errorf("could not sweep native: %w", err)
	}

	return true, nil
}
