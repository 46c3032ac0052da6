package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dataError struct {
	msg  string
	data interface{}
}

func (e dataError) Error() string          { return e.msg }
func (e dataError) ErrorData() interface{} { return e.data }

type timeoutError struct{}

func (timeoutError) Error() string   { return "Client.Timeout exceeded while awaiting headers" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func revertData(t *testing.T, reason string) string {
	t.Helper()

	typ, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: typ}}.Pack(reason)
	require.NoError(t, err)

	selector := gethcrypto.Keccak256([]byte("Error(string)"))[:4]
	return hexutil.Encode(append(selector, packed...))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), ErrInsufficientFunds},
		{"slippage", errors.New("execution reverted: UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT"), ErrSlippageExceeded},
		{"slippage in error data", dataError{msg: "execution reverted", data: revertData(t, "UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT")}, ErrSlippageExceeded},
		{"refused", errors.New(`Post "http://127.0.0.1:8545": dial tcp 127.0.0.1:8545: connect: connection refused`), ErrRPCUnavailable},
		{"dns", errors.New("lookup rpc.invalid: no such host"), ErrRPCUnavailable},
		{"underpriced", errors.New("replacement transaction underpriced"), ErrBroadcastRejected},
		{"revert", errors.New("execution reverted: paused"), ErrBroadcastRejected},
		{"canceled", fmt.Errorf("post: %w", context.Canceled), context.Canceled},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
		{"http client timeout", timeoutError{}, context.DeadlineExceeded},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(context.Background(), test.err), test.want)
		})
	}

	assert.NoError(t, classify(context.Background(), nil))
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := errors.New("replacement transaction underpriced")

	err := classify(context.Background(), cause)

	assert.ErrorIs(t, err, ErrBroadcastRejected)
	assert.ErrorIs(t, err, cause)
}

func TestClassify_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := classify(ctx, errors.New("write: broken pipe"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBroadcastRejected)
}

func TestRevertReason(t *testing.T) {
	assert.Equal(t, "execution reverted: paused", revertReason(errors.New("estimate: execution reverted: paused")))
	assert.Equal(t, "nonce too low", revertReason(errors.New("nonce too low")))
	assert.Equal(t, "execution reverted: paused", revertReason(dataError{msg: "execution reverted", data: revertData(t, "paused")}))
	assert.Equal(t, "execution reverted", revertReason(dataError{msg: "execution reverted", data: "0xzz"}))
}
