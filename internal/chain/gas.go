package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// fees holds either a legacy gas price or a dynamic tip/cap pair.
type fees struct {
	gasPrice *big.Int
	tip      *big.Int
	feeCap   *big.Int
}

func (f fees) legacy() bool { return f.gasPrice != nil }

func (c *Client) suggestFees(ctx context.Context, be Backend) (fees, error) {
	if c.cfg.FeeMode == FeeDynamic {
		f, err := dynamicFees(ctx, be, c.cfg.BaseFeeMul)
		if err == nil {
			return f, nil
		}
		c.log.Debug().Err(err).Msg("dynamic fees unavailable, falling back to gas price")
	}
	price, err := be.SuggestGasPrice(ctx)
	if err != nil {
		return fees{}, fmt.Errorf("could not get gas price: %w", err)
	}
	return fees{gasPrice: price}, nil
}

func dynamicFees(ctx context.Context, be Backend, baseMul int64) (fees, error) {
	baseFee, err := latestBaseFee(ctx, be)
	if err != nil {
		return fees{}, err
	}
	tip, err := be.SuggestGasTipCap(ctx)
	if err != nil {
		return fees{}, fmt.Errorf("could not get tip: %w", err)
	}
	if baseMul <= 0 {
		baseMul = 2
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(baseMul))
	feeCap.Add(feeCap, tip)
	return fees{tip: tip, feeCap: feeCap}, nil
}

// Latest base fee.
func latestBaseFee(ctx context.Context, be Backend) (*big.Int, error) {
	h, err := be.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not get head: %w", err)
	}
	if h.BaseFee == nil {
		return nil, errors.New("no baseFee (pre-1559?)")
	}
	return new(big.Int).Set(h.BaseFee), nil
}
