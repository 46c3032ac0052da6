package mocks

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/ligun0805/bzz-drain/internal/chain"
)

// Send is a send recorded by the Chain mock.
type Send struct {
	Kind   string
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// Chain mocks the balance and send operations a drain uses, recording sends.
type Chain struct {
	NativeBalanceFunc func(ctx context.Context, address common.Address) (*big.Int, error)
	TokenBalanceFunc  func(ctx context.Context, address common.Address) (*big.Int, error)
	SendNativeFunc    func(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error)
	SendTokenFunc     func(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error)

	mu    sync.Mutex
	Sends []Send
}

// BaselineChain reports empty balances and confirms every send.
func BaselineChain(t *testing.T) *Chain {
	t.Helper()

	c := Chain{
		NativeBalanceFunc: func(context.Context, common.Address) (*big.Int, error) {
			return big.NewInt(0), nil
		},
		TokenBalanceFunc: func(context.Context, common.Address) (*big.Int, error) {
			return big.NewInt(0), nil
		},
		SendNativeFunc: func(context.Context, *ecdsa.PrivateKey, common.Address, *big.Int) (*chain.Result, error) {
			return GenericResult(0), nil
		},
		SendTokenFunc: func(context.Context, *ecdsa.PrivateKey, common.Address, *big.Int) (*chain.Result, error) {
			return GenericResult(0), nil
		},
	}

	return &c
}

// Recorded returns a copy of the sends made so far.
func (c *Chain) Recorded() []Send {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Send(nil), c.Sends...)
}

func (c *Chain) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	return c.NativeBalanceFunc(ctx, address)
}

func (c *Chain) TokenBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	return c.TokenBalanceFunc(ctx, address)
}

func (c *Chain) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error) {
	c.record(chain.KindNative, key, to, amount)
	return c.SendNativeFunc(ctx, key, to, amount)
}

func (c *Chain) SendToken(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (*chain.Result, error) {
	c.record(chain.KindToken, key, to, amount)
	return c.SendTokenFunc(ctx, key, to, amount)
}

func (c *Chain) record(kind string, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sends = append(c.Sends, Send{
		Kind:   kind,
		From:   gethcrypto.PubkeyToAddress(key.PublicKey),
		To:     to,
		Amount: new(big.Int).Set(amount),
	})
}
