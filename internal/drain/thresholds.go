package drain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ligun0805/bzz-drain/internal/units"
)

// Thresholds are the native amounts, in wei, that drive the drain decisions.
type Thresholds struct {
	Ignore  *big.Int // native balance at or below which nothing is swept
	Rescue  *big.Int // top-up sent from the rescue account
	SafeSub *big.Int // left behind by the native sweep to pay for its gas
}

// DefaultThresholds returns 0.01, 0.1 and 0.008 native units.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Ignore:  units.MustToBaseUnits("0.01", units.NativeDecimals),
		Rescue:  units.MustToBaseUnits("0.1", units.NativeDecimals),
		SafeSub: units.MustToBaseUnits("0.008", units.NativeDecimals),
	}
}

// Validate checks the thresholds are set, non-negative, and that a native
// sweep can never compute a negative amount.
func (t Thresholds) Validate() error {
	for name, v := range map[string]*big.Int{"ignore": t.Ignore, "rescue": t.Rescue, "safe sub": t.SafeSub} {
		if v == nil {
			return fmt.Errorf("missing %s threshold", name)
		}
		if v.Sign() < 0 {
			return fmt.Errorf("negative %s threshold", name)
		}
	}
	if t.SafeSub.Cmp(t.Ignore) > 0 {
		return errors.New("safe sub threshold exceeds ignore threshold")
	}
	return nil
}
