package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SwapNativeForToken buys the token with amount wei through the router, over
// the wrapped native -> token path, with the signer as recipient. The swap is
// dry-run first; a minOut the pool cannot meet yields ErrSlippageExceeded.
func (c *Client) SwapNativeForToken(ctx context.Context, key *ecdsa.PrivateKey, amount, minOut *big.Int) (*Result, error) {
	if key == nil {
		return nil, fmt.Errorf("missing signing key")
	}
	if minOut == nil {
		minOut = new(big.Int)
	}

	recipient := gethcrypto.PubkeyToAddress(key.PublicKey)
	path := []common.Address{c.contracts.WrappedNative, c.contracts.Token}
	deadline := big.NewInt(c.cfg.Now().Add(c.cfg.SwapDeadline).Unix())

	data, err := EncodeSwapExactETHForTokens(minOut, path, recipient, deadline)
	if err != nil {
		return nil, fmt.Errorf("could not encode swap: %w", err)
	}

	return c.send(ctx, key, call{
		kind:      KindSwap,
		to:        c.contracts.Router,
		value:     amount,
		data:      data,
		gas:       c.cfg.SwapGasLimit,
		preflight: true,
	})
}
