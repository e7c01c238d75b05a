package vm

import (
	"errors"
	"fmt"

	"vaultd/keys"
	"vaultd/pda"
	"vaultd/types"
)

// VaultView 对外展示的金库：派生地址、锁定状态、holding 余额
type VaultView struct {
	pda.VaultAddresses
	ProgramID types.Pubkey `json:"program_id"`
	Exists    bool         `json:"exists"`
	Locked    bool         `json:"locked"`
	Balance   uint64       `json:"balance"`
}

func (x *Executor) readOnlyView() StateView {
	return NewStateView(x.ReadFn)
}

// DeriveAddresses 纯计算，不读库
func (x *Executor) DeriveAddresses(authority types.Pubkey) (pda.VaultAddresses, error) {
	return x.Deriver.Derive(authority)
}

// GetVault 按 authority 查询金库；未初始化时 Exists=false
func (x *Executor) GetVault(authority types.Pubkey) (*VaultView, error) {
	addrs, err := x.Deriver.Derive(authority)
	if err != nil {
		return nil, err
	}
	view := &VaultView{VaultAddresses: addrs, ProgramID: x.Deriver.ProgramID}

	sv := x.readOnlyView()
	vs, err := loadVaultState(sv, addrs.State)
	if err != nil {
		if errors.Is(err, ErrVaultNotFound) {
			return view, nil
		}
		return nil, err
	}
	view.Exists = true
	view.Locked = vs.Locked

	acc, _, err := GetAccount(sv, addrs.Holding)
	if err != nil {
		return nil, err
	}
	view.Balance = acc.Lamports
	return view, nil
}

// GetVaultState 按 state 地址读取原始元数据
func (x *Executor) GetVaultState(state types.Pubkey) (*VaultState, error) {
	return loadVaultState(x.readOnlyView(), state)
}

// CountVaults 已初始化的金库数
func (x *Executor) CountVaults() (int, error) {
	m, err := x.DB.Scan(keys.KeyVaultStatePrefix())
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

// GetAccount 查询账户；不存在时返回系统拥有的零余额账户
func (x *Executor) GetAccount(addr types.Pubkey) (types.Account, error) {
	acc, _, err := GetAccount(x.readOnlyView(), addr)
	return acc, err
}

// GetReceipt 读取已提交的回执
func (x *Executor) GetReceipt(txID string) (*Receipt, error) {
	raw, err := x.DB.Get(keys.KeyVMReceipt(txID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: receipt %s", ErrNotFound, txID)
	}
	return DecodeReceipt(raw)
}

// GetTransactionStatus SUCCEED / FAILED / PENDING（未知）
func (x *Executor) GetTransactionStatus(txID string) (string, error) {
	status, err := x.DB.Get(keys.KeyVMAppliedTx(txID))
	if err != nil {
		return "", err
	}
	if status == nil {
		return StatusPending, nil
	}
	return string(status), nil
}

// GetTransactionError 失败交易的错误信息，成功或未知时为空
func (x *Executor) GetTransactionError(txID string) (string, error) {
	raw, err := x.DB.Get(keys.KeyVMTxError(txID))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// EventCursor 事件日志中的位置，(slot, index) 与落盘 key 的顺序一致
type EventCursor struct {
	Slot  uint64 `json:"slot"`
	Index uint32 `json:"index"`
}

// After 紧接在 ev 之后的位置；同一 slot 的剩余事件不会被跳过
func (c EventCursor) After(ev types.VaultEvent) EventCursor {
	return EventCursor{Slot: ev.Slot, Index: ev.Index + 1}
}

// ListEvents 从 from（含）开始按提交顺序返回最多 limit 条事件，以及下一页的起点
func (x *Executor) ListEvents(from EventCursor, limit int) ([]types.VaultEvent, EventCursor, error) {
	start := ""
	if from.Slot > 0 || from.Index > 0 {
		start = keys.KeyEvent(from.Slot, from.Index)
	}
	kvs, err := x.DB.ScanFrom(keys.KeyEventPrefix(), start, limit)
	if err != nil {
		return nil, from, err
	}
	out := make([]types.VaultEvent, 0, len(kvs))
	for _, kv := range kvs {
		ev, err := DecodeEvent(kv.Value)
		if err != nil {
			return nil, from, fmt.Errorf("event %s: %w", kv.Key, err)
		}
		out = append(out, *ev)
	}
	next := from
	if n := len(out); n > 0 {
		next = next.After(out[n-1])
	}
	return out, next, nil
}
