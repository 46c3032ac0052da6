package chain

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend is the subset of the JSON-RPC API the client relies on.
// *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// Dialer opens a fresh connection to an endpoint URL.
type Dialer func(ctx context.Context, url string) (Backend, error)

// DialEthclient dials HTTP endpoints with a bounded request timeout and any
// other scheme (ws, ipc) through the generic RPC dialer.
func DialEthclient(timeout time.Duration) Dialer {
	return func(ctx context.Context, url string) (Backend, error) {
		var (
			rc  *rpc.Client
			err error
		)
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			transport := &http.Transport{
				MaxIdleConns:    4,
				IdleConnTimeout: 90 * time.Second,
			}
			rc, err = rpc.DialHTTPWithClient(url, &http.Client{Timeout: timeout, Transport: transport})
		} else {
			rc, err = rpc.DialContext(ctx, url)
		}
		if err != nil {
			return nil, fmt.Errorf("dial rpc: %w", err)
		}
		return ethclient.NewClient(rc), nil
	}
}
