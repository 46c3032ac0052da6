package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const tokenABIJSON = `[
  {"type":"function","stateMutability":"nonpayable","name":"transfer",
   "inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","stateMutability":"view","name":"balanceOf",
   "inputs":[{"name":"_owner","type":"address"}],
   "outputs":[{"name":"balance","type":"uint256"}]}
]`

// Uniswap V2 style router; only the swap the tooling uses.
const routerABIJSON = `[
  {"type":"function","stateMutability":"payable","name":"swapExactETHForTokens",
   "inputs":[
     {"name":"amountOutMin","type":"uint256"},
     {"name":"path","type":"address[]"},
     {"name":"to","type":"address"},
     {"name":"deadline","type":"uint256"}],
   "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

var (
	tokenABI  = mustParseABI(tokenABIJSON)
	routerABI = mustParseABI(routerABIJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid abi: %v", err))
	}
	return parsed
}

// EncodeTransfer encodes ERC-20 transfer(to, amount) calldata.
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return tokenABI.Pack("transfer", to, amount)
}

// EncodeBalanceOf encodes ERC-20 balanceOf(owner) calldata.
func EncodeBalanceOf(owner common.Address) ([]byte, error) {
	return tokenABI.Pack("balanceOf", owner)
}

// DecodeBalance decodes the return data of balanceOf.
func DecodeBalance(ret []byte) (*big.Int, error) {
	if len(ret) == 0 {
		return nil, fmt.Errorf("balanceOf returned no data")
	}
	out, err := tokenABI.Unpack("balanceOf", ret)
	if err != nil {
		return nil, fmt.Errorf("could not decode balance: %w", err)
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balance type %T", out[0])
	}
	return bal, nil
}

// EncodeSwapExactETHForTokens encodes the router swap calldata.
func EncodeSwapExactETHForTokens(minOut *big.Int, path []common.Address, to common.Address, deadline *big.Int) ([]byte, error) {
	return routerABI.Pack("swapExactETHForTokens", minOut, path, to, deadline)
}
