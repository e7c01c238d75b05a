package vm

import (
	"errors"
	"math/bits"
)

// safe_math.go 带溢出检查的 lamports 运算

var (
	// ErrOverflow 加法溢出
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow 减法下溢（结果为负）
	ErrUnderflow = errors.New("arithmetic underflow")
)

// SafeAdd a + b
func SafeAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SafeSub a - b
func SafeSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}
