package chain_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/testing/mocks"
)

func TestEncodeTransfer(t *testing.T) {
	data, err := chain.EncodeTransfer(mocks.GenericRecipient, big.NewInt(256))
	require.NoError(t, err)

	require.Len(t, data, 4+32+32)
	assert.Equal(t, "0xa9059cbb", hexutil.Encode(data[:4]))
	assert.Equal(t, mocks.GenericRecipient, common.BytesToAddress(data[4:36]))
	assert.Equal(t, int64(256), new(big.Int).SetBytes(data[36:]).Int64())
}

func TestEncodeBalanceOf(t *testing.T) {
	data, err := chain.EncodeBalanceOf(mocks.GenericAddress)
	require.NoError(t, err)

	assert.Equal(t, "0x70a08231", hexutil.Encode(data[:4]))
	assert.Equal(t, mocks.GenericAddress, common.BytesToAddress(data[4:]))
}

func TestDecodeBalance(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		bal, err := chain.DecodeBalance(common.LeftPadBytes([]byte{0x01, 0x00}, 32))

		require.NoError(t, err)
		assert.Equal(t, int64(256), bal.Int64())
	})

	t.Run("empty return data", func(t *testing.T) {
		_, err := chain.DecodeBalance(nil)

		assert.Error(t, err)
	})

	t.Run("short return data", func(t *testing.T) {
		_, err := chain.DecodeBalance([]byte{0x01})

		assert.Error(t, err)
	})
}

func TestEncodeSwapExactETHForTokens(t *testing.T) {
	path := []common.Address{mocks.GenericWrappedNative, mocks.GenericToken}

	data, err := chain.EncodeSwapExactETHForTokens(big.NewInt(1), path, mocks.GenericAddress, big.NewInt(1_700_000_000))
	require.NoError(t, err)

	assert.Equal(t, "0x7ff36ab5", hexutil.Encode(data[:4]))
	// head: amountOutMin, path offset, to, deadline; tail: length + two addresses
	require.Len(t, data, 4+4*32+32+2*32)
	assert.Equal(t, mocks.GenericAddress, common.BytesToAddress(data[4+2*32:4+3*32]))
	assert.Equal(t, int64(2), new(big.Int).SetBytes(data[4+4*32:4+5*32]).Int64())
	assert.Equal(t, mocks.GenericWrappedNative, common.BytesToAddress(data[4+5*32:4+6*32]))
	assert.Equal(t, mocks.GenericToken, common.BytesToAddress(data[4+6*32:]))
}
