package mocks

import (
	"crypto/ecdsa"
	"errors"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"github.com/ligun0805/bzz-drain/internal/chain"
)

// Global values that can be used for testing.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericChainID = big.NewInt(100)

	GenericKey       = mustKey("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	GenericAddress   = gethcrypto.PubkeyToAddress(GenericKey.PublicKey)
	GenericRescueKey = mustKey("0000000000000000000000000000000000000000000000000000000000000001")
	GenericRescuer   = gethcrypto.PubkeyToAddress(GenericRescueKey.PublicKey)

	GenericRecipient     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	GenericToken         = common.HexToAddress("0xdBF3Ea6F5beE45c02255B2c26a16F300502F68da")
	GenericRouter        = common.HexToAddress("0x1C232F01118CB8B424793ae03F870aa7D0ac7f77")
	GenericWrappedNative = common.HexToAddress("0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d")

	GenericContracts = chain.Contracts{
		Token:         GenericToken,
		Router:        GenericRouter,
		WrappedNative: GenericWrappedNative,
	}

	GenericGasPrice = big.NewInt(2_000_000_000)
	GenericBaseFee  = big.NewInt(1_000_000_000)
	GenericTip      = big.NewInt(1_500_000_000)
)

// GenericResult returns a confirmed result for a fresh dummy transaction.
func GenericResult(nonce uint64) *chain.Result {
	tx := types.NewTx(&types.LegacyTx{Nonce: nonce, Gas: 21_000, GasPrice: GenericGasPrice, Value: new(big.Int)})
	return &chain.Result{
		Transaction: tx,
		Receipt:     &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash(), BlockNumber: big.NewInt(1)},
	}
}

func mustKey(h string) *ecdsa.PrivateKey {
	k, err := gethcrypto.HexToECDSA(h)
	if err != nil {
		panic(err)
	}
	return k
}
