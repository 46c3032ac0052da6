package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// Transaction kinds reported to the observer.
const (
	KindNative = "native"
	KindToken  = "token"
	KindSwap   = "swap"
)

// Endpoint identifies a JSON-RPC node and the chain it is expected to serve.
// A nil ChainID accepts whatever the node reports.
type Endpoint struct {
	URL     string
	ChainID *big.Int
}

// Contracts are the deployment specific addresses the client talks to.
type Contracts struct {
	Token         common.Address
	Router        common.Address
	WrappedNative common.Address
}

// Result pairs a broadcast transaction with its receipt. Receipt is nil when
// the transaction was broadcast but never confirmed.
type Result struct {
	Transaction *types.Transaction
	Receipt     *types.Receipt
}

// Observer is notified once per send with its outcome and duration.
type Observer interface {
	Transaction(kind string, err error, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) Transaction(string, error, time.Duration) {}

// Client reads balances and sends transactions against one endpoint. It holds
// no connection: every exported method dials, waits for the node to be ready,
// does its work and closes the connection again.
type Client struct {
	log       zerolog.Logger
	cfg       Config
	endpoint  Endpoint
	contracts Contracts
}

func New(endpoint Endpoint, contracts Contracts, options ...func(*Config)) *Client {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	c := Client{
		log:       cfg.Log.With().Str("component", "chain").Logger(),
		cfg:       cfg,
		endpoint:  endpoint,
		contracts: contracts,
	}

	return &c
}

// Contracts returns the addresses the client was configured with.
func (c *Client) Contracts() Contracts { return c.contracts }

type conn struct {
	Backend
	chainID *big.Int
}

// connect dials the endpoint and waits until the node answers eth_chainId.
func (c *Client) connect(ctx context.Context) (*conn, error) {
	be, err := c.cfg.Dialer(ctx, c.endpoint.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRPCUnavailable, err)
	}
	id, err := be.ChainID(ctx)
	if err != nil {
		be.Close()
		return nil, fmt.Errorf("%w: %w", ErrRPCUnavailable, err)
	}
	if c.endpoint.ChainID != nil && id.Cmp(c.endpoint.ChainID) != 0 {
		be.Close()
		return nil, fmt.Errorf("%w: node reports %s, want %s", ErrChainMismatch, id, c.endpoint.ChainID)
	}
	return &conn{Backend: be, chainID: id}, nil
}

// NativeBalance returns the native balance of an address in wei.
func (c *Client) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	cn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cn.Close()

	bal, err := cn.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("could not get native balance: %w", err)
	}
	return bal, nil
}

// TokenBalance returns the token balance of an address in base units.
func (c *Client) TokenBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	cn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cn.Close()

	data, err := EncodeBalanceOf(address)
	if err != nil {
		return nil, fmt.Errorf("could not encode balanceOf: %w", err)
	}
	token := c.contracts.Token
	ret, err := cn.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("could not call balanceOf: %w", err)
	}
	bal, err := DecodeBalance(ret)
	if err != nil {
		return nil, fmt.Errorf("token %s: %w", token.Hex(), err)
	}
	return bal, nil
}

// SendNative transfers amount wei to the recipient and waits for one confirmation.
func (c *Client) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*Result, error) {
	return c.send(ctx, key, call{kind: KindNative, to: to, value: amount})
}

// SendToken calls transfer(to, amount) on the token contract and waits for one confirmation.
func (c *Client) SendToken(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*Result, error) {
	data, err := EncodeTransfer(to, amount)
	if err != nil {
		return nil, fmt.Errorf("could not encode transfer: %w", err)
	}
	return c.send(ctx, key, call{kind: KindToken, to: c.contracts.Token, data: data})
}

// call describes one transaction to sign and send.
type call struct {
	kind      string
	to        common.Address
	value     *big.Int
	data      []byte
	gas       uint64 // zero means estimate
	preflight bool   // dry-run with eth_call before broadcasting
}

func (c *Client) send(ctx context.Context, key *ecdsa.PrivateKey, tx call) (*Result, error) {
	start := time.Now()
	res, err := c.transact(ctx, key, tx)
	c.cfg.Observer.Transaction(tx.kind, err, time.Since(start))
	return res, err
}

func (c *Client) transact(ctx context.Context, key *ecdsa.PrivateKey, tx call) (*Result, error) {
	if key == nil {
		return nil, errors.New("missing signing key")
	}
	if tx.value == nil {
		tx.value = new(big.Int)
	}

	cn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cn.Close()

	from := gethcrypto.PubkeyToAddress(key.PublicKey)
	log := c.log.With().Str("kind", tx.kind).Str("from", from.Hex()).Str("to", tx.to.Hex()).Logger()

	msg := ethereum.CallMsg{From: from, To: &tx.to, Value: tx.value, Data: tx.data}
	if tx.preflight {
		if _, err := cn.CallContract(ctx, msg, nil); err != nil {
			log.Debug().Str("reason", revertReason(err)).Msg("preflight call failed")
			return nil, classify(ctx, err)
		}
	}

	nonce, err := cn.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("could not get nonce: %w", err)
	}
	fee, err := c.suggestFees(ctx, cn)
	if err != nil {
		return nil, err
	}

	gas := tx.gas
	if gas == 0 {
		if fee.legacy() {
			msg.GasPrice = fee.gasPrice
		} else {
			msg.GasFeeCap, msg.GasTipCap = fee.feeCap, fee.tip
		}
		gas, err = cn.EstimateGas(ctx, msg)
		if err != nil {
			log.Debug().Str("reason", revertReason(err)).Msg("gas estimate failed")
			return nil, classify(ctx, err)
		}
	}

	var unsigned *types.Transaction
	if fee.legacy() {
		unsigned = buildLegacyTx(nonce, &tx.to, tx.value, gas, fee.gasPrice, tx.data)
	} else {
		unsigned = buildDynamicTx(cn.chainID, nonce, &tx.to, tx.value, gas, fee.tip, fee.feeCap, tx.data)
	}
	signed, err := signTx(unsigned, cn.chainID, key)
	if err != nil {
		return nil, fmt.Errorf("could not sign transaction: %w", err)
	}

	hash := signed.Hash().Hex()
	if err := cn.SendTransaction(ctx, signed); err != nil {
		err = classify(ctx, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("tx", hash).Uint64("nonce", nonce).Err(err).Msg("broadcast interrupted, transaction may be pending")
			return &Result{Transaction: signed}, err
		}
		return nil, err
	}
	log.Info().Str("tx", hash).Uint64("nonce", nonce).Uint64("gas", gas).Str("value", tx.value.String()).Msg("transaction broadcast")

	res := &Result{Transaction: signed}
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, cn, signed)
	if errors.Is(err, context.DeadlineExceeded) {
		return res, fmt.Errorf("%w: %s", ErrConfirmationTimeout, hash)
	}
	if err != nil {
		return res, fmt.Errorf("could not confirm %s: %w", hash, err)
	}
	res.Receipt = receipt
	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, fmt.Errorf("%w: %s", ErrTransactionReverted, hash)
	}

	log.Info().Str("tx", hash).Uint64("gas_used", receipt.GasUsed).Msg("transaction confirmed")
	return res, nil
}
