package utils

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountDecimals 1 个单位 = 10^9 lamports
const AmountDecimals = 9

var ErrInvalidAmount = errors.New("invalid amount")

// FormatAmount lamports -> "1.5"
func FormatAmount(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -AmountDecimals).String()
}

// ParseAmount "1.5" -> lamports，小数位超过 9 位或超出 uint64 都算非法
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	scaled := d.Shift(AmountDecimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, AmountDecimals)
	}
	bi := scaled.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: overflow", ErrInvalidAmount)
	}
	return bi.Uint64(), nil
}
