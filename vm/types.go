package vm

import (
	"errors"

	"vaultd/types"
)

// ========== 错误定义 ==========

var (
	ErrNotImplemented  = errors.New("not implemented")
	ErrNilTx           = errors.New("nil transaction")
	ErrInvalidSnapshot = errors.New("invalid snapshot index")
	ErrUnknownKind     = errors.New("unknown transaction kind")
	ErrInvalidTx       = errors.New("invalid transaction")
	ErrDuplicateTx     = errors.New("transaction already applied")
	ErrNotFound        = errors.New("not found")
	ErrForeignWrite    = errors.New("handler wrote outside account/vault state")
	ErrUnlockedWrite   = errors.New("write to an account the transaction does not lock")

	ErrInvalidSignature = errors.New("invalid signature")
	ErrIllegalOwner     = errors.New("account is not owned by the expected program")
)

// 金库业务错误，每一种都会让整笔交易无副作用地失败
var (
	ErrVaultLocked         = errors.New("vault is locked")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnauthorized        = errors.New("authorization failure")
	ErrAddressMismatch     = errors.New("address mismatch")
	ErrVaultNotFound       = errors.New("vault not found")
	ErrVaultExists         = errors.New("vault already initialized")
)

// ErrorCode 把错误映射成对外稳定的错误码
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrVaultLocked):
		return "VaultLocked"
	case errors.Is(err, ErrInsufficientBalance):
		return "InsufficientBalance"
	case errors.Is(err, ErrUnauthorized):
		return "AuthorizationFailure"
	case errors.Is(err, ErrAddressMismatch):
		return "AddressMismatch"
	case errors.Is(err, ErrVaultNotFound):
		return "VaultNotFound"
	case errors.Is(err, ErrVaultExists):
		return "VaultExists"
	case errors.Is(err, ErrIllegalOwner):
		return "IllegalOwner"
	case errors.Is(err, ErrOverflow), errors.Is(err, ErrUnderflow):
		return "ArithmeticOverflow"
	case errors.Is(err, ErrInvalidSignature):
		return "InvalidSignature"
	case errors.Is(err, ErrDuplicateTx):
		return "DuplicateTx"
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrInvalidTx), errors.Is(err, ErrNilTx):
		return "InvalidTx"
	default:
		return "Internal"
	}
}

// ========== 基础类型定义 ==========

const (
	StatusSucceed = "SUCCEED"
	StatusFailed  = "FAILED"
	StatusPending = "PENDING"
)

// “要怎么改状态”的清单
type WriteOp struct {
	Key      string       // 完整的 key（包括命名空间前缀）
	Value    []byte       // 序列化后的值
	Addr     types.Pubkey // 被写的账户或金库地址，提交前对照持有的锁
	Category string       // account / vault
}

// 记录执行结果
type Receipt struct {
	TxID       string             `json:"tx_id"`
	Kind       string             `json:"kind"`
	Status     string             `json:"status"` // "SUCCEED" or "FAILED"
	Error      string             `json:"error,omitempty"`
	Code       string             `json:"code,omitempty"`
	Slot       uint64             `json:"slot"`
	Timestamp  int64              `json:"timestamp"`
	WriteCount int                `json:"write_count"`
	Events     []types.VaultEvent `json:"events,omitempty"`
}

func failedReceipt(tx *Tx, err error) *Receipt {
	rc := &Receipt{Status: StatusFailed, Error: err.Error(), Code: ErrorCode(err)}
	if tx != nil {
		rc.TxID = tx.ID()
		rc.Kind = tx.Kind
	}
	return rc
}
