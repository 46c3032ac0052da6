package mocks

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ligun0805/bzz-drain/internal/chain"
)

// Backend is a scripted chain.Backend. Transactions passed to
// SendTransaction are recorded in Sent.
type Backend struct {
	ChainIDFunc            func(ctx context.Context) (*big.Int, error)
	BalanceAtFunc          func(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContractFunc       func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAtFunc             func(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	PendingNonceAtFunc     func(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumberFunc     func(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPriceFunc    func(ctx context.Context) (*big.Int, error)
	SuggestGasTipCapFunc   func(ctx context.Context) (*big.Int, error)
	EstimateGasFunc        func(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransactionFunc    func(ctx context.Context, tx *types.Transaction) error
	TransactionReceiptFunc func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	mu     sync.Mutex
	Sent   []*types.Transaction
	Closed int
}

// BaselineBackend answers like a healthy chain 100 node on which every
// broadcast transaction is mined successfully right away.
func BaselineBackend(t *testing.T) *Backend {
	t.Helper()

	b := Backend{
		ChainIDFunc: func(context.Context) (*big.Int, error) {
			return new(big.Int).Set(GenericChainID), nil
		},
		BalanceAtFunc: func(context.Context, common.Address, *big.Int) (*big.Int, error) {
			return big.NewInt(0), nil
		},
		CallContractFunc: func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
			return common.LeftPadBytes(nil, 32), nil
		},
		CodeAtFunc: func(context.Context, common.Address, *big.Int) ([]byte, error) {
			return nil, nil
		},
		PendingNonceAtFunc: func(context.Context, common.Address) (uint64, error) {
			return 7, nil
		},
		HeaderByNumberFunc: func(context.Context, *big.Int) (*types.Header, error) {
			return &types.Header{Number: big.NewInt(1000), BaseFee: new(big.Int).Set(GenericBaseFee)}, nil
		},
		SuggestGasPriceFunc: func(context.Context) (*big.Int, error) {
			return new(big.Int).Set(GenericGasPrice), nil
		},
		SuggestGasTipCapFunc: func(context.Context) (*big.Int, error) {
			return new(big.Int).Set(GenericTip), nil
		},
		EstimateGasFunc: func(context.Context, ethereum.CallMsg) (uint64, error) {
			return 21_000, nil
		},
		SendTransactionFunc: func(context.Context, *types.Transaction) error {
			return nil
		},
	}
	b.TransactionReceiptFunc = func(_ context.Context, hash common.Hash) (*types.Receipt, error) {
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      hash,
			BlockNumber: big.NewInt(1001),
			GasUsed:     21_000,
		}, nil
	}

	return &b
}

// Dialer returns a chain.Dialer that always hands out this backend.
func (b *Backend) Dialer() chain.Dialer {
	return func(context.Context, string) (chain.Backend, error) {
		return b, nil
	}
}

// LastSent returns the most recently broadcast transaction.
func (b *Backend) LastSent() *types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Sent) == 0 {
		return nil
	}
	return b.Sent[len(b.Sent)-1]
}

func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.ChainIDFunc(ctx)
}

func (b *Backend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return b.BalanceAtFunc(ctx, account, blockNumber)
}

func (b *Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return b.CallContractFunc(ctx, msg, blockNumber)
}

func (b *Backend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return b.CodeAtFunc(ctx, account, blockNumber)
}

func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.PendingNonceAtFunc(ctx, account)
}

func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return b.HeaderByNumberFunc(ctx, number)
}

func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return b.SuggestGasPriceFunc(ctx)
}

func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return b.SuggestGasTipCapFunc(ctx)
}

func (b *Backend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return b.EstimateGasFunc(ctx, msg)
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	err := b.SendTransactionFunc(ctx, tx)
	if err == nil {
		b.mu.Lock()
		b.Sent = append(b.Sent, tx)
		b.mu.Unlock()
	}
	return err
}

func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return b.TransactionReceiptFunc(ctx, txHash)
}

func (b *Backend) Close() {
	b.mu.Lock()
	b.Closed++
	b.mu.Unlock()
}
