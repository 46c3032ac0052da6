package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals of the two currencies the drain tooling handles.
const (
	TokenDecimals  = 16 // BZZ on Gnosis chain
	NativeDecimals = 18 // xDAI
)

var ErrInvalidNumberFormat = errors.New("invalid number format")

// Unsigned plain or scientific notation, exponent limited to three digits.
// A trailing dot is allowed ("1." is 1).
var decimalPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)([eE][+-]?\d{1,3})?$`)

// ToBaseUnits parses a human decimal string exactly and scales it by 10^decimals.
// The result must be an integer that fits into a uint256.
func ToBaseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "+"))
	if decimals < 0 {
		return nil, fmt.Errorf("%w: negative decimals %d", ErrInvalidNumberFormat, decimals)
	}
	if !decimalPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumberFormat, s)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.Replace(s, ".e", "e", 1)
	s = strings.Replace(s, ".E", "E", 1)
	s = strings.TrimSuffix(s, ".")
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumberFormat, s)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidNumberFormat, s, decimals)
	}
	out := new(big.Int).Set(r.Num())
	if _, overflow := uint256.FromBig(out); overflow {
		return nil, fmt.Errorf("%w: %q overflows 256 bits", ErrInvalidNumberFormat, s)
	}
	return out, nil
}

// Token converts a decimal BZZ amount into base units.
func Token(s string) (*big.Int, error) { return ToBaseUnits(s, TokenDecimals) }

// Native converts a decimal xDAI amount into wei.
func Native(s string) (*big.Int, error) { return ToBaseUnits(s, NativeDecimals) }

// MustToBaseUnits is ToBaseUnits for compile-time literals.
func MustToBaseUnits(s string, decimals int) *big.Int {
	v, err := ToBaseUnits(s, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// FromBaseUnits renders base units as a decimal string without trailing zeros.
func FromBaseUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	s := new(big.Int).Abs(v).String()
	neg := v.Sign() < 0
	var out string
	if len(s) <= decimals {
		frac := strings.TrimRight(strings.Repeat("0", decimals-len(s))+s, "0")
		out = "0"
		if frac != "" {
			out = "0." + frac
		}
	} else {
		out = s[:len(s)-decimals]
		if frac := strings.TrimRight(s[len(s)-decimals:], "0"); frac != "" {
			out += "." + frac
		}
	}
	if neg && out != "0" {
		return "-" + out
	}
	return out
}
