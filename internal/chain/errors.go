package chain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrRPCUnavailable      = errors.New("rpc endpoint unavailable")
	ErrChainMismatch       = errors.New("endpoint serves another chain")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBroadcastRejected   = errors.New("transaction rejected by node")
	ErrConfirmationTimeout = errors.New("timed out waiting for confirmation")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrSlippageExceeded    = errors.New("swap output below minimum")
)

// classify maps a node error on estimate/call/broadcast onto the error taxonomy.
// Interrupted requests keep their context error and are never reported as a
// rejection, since the node may have accepted the transaction anyway.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if cause := interrupted(ctx, err); cause != nil {
		return cause
	}
	s := strings.ToLower(err.Error() + " " + revertReason(err))
	switch {
	case strings.Contains(s, "insufficient funds"):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	case strings.Contains(s, "insufficient_output_amount"):
		return fmt.Errorf("%w: %w", ErrSlippageExceeded, err)
	case strings.Contains(s, "dial tcp"), strings.Contains(s, "lookup "), strings.Contains(s, "connection refused"):
		return fmt.Errorf("%w: %w", ErrRPCUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
}

func interrupted(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return nil
}

// revertReason prefers the ABI encoded Error(string) payload some nodes attach
// as error data over the message text.
func revertReason(e error) string {
	var de rpc.DataError
	if errors.As(e, &de) {
		if hex, ok := de.ErrorData().(string); ok {
			data, err := hexutil.Decode(hex)
			if err == nil {
				reason, err := abi.UnpackRevert(data)
				if err == nil {
					return "execution reverted: " + reason
				}
			}
		}
	}
	s := e.Error()
	if i := strings.Index(s, "execution reverted"); i >= 0 {
		return s[i:]
	}
	return s
}
