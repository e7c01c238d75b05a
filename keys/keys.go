// keys/keys.go
// 统一的 Key 定义包，供 VM 和 DB 模块共同使用
package keys

import (
	"fmt"
	"strings"
)

// ===================== 版本控制 =====================
// 全局 Key 版本前缀（"v1" → "v1_<key>"）
const KeyVersion = "v1"

func withVer(s string) string {
	if KeyVersion == "" {
		return s
	}
	return KeyVersion + "_" + s
}

// StripVersion 去掉版本前缀
func StripVersion(prefixed string) string {
	if KeyVersion == "" {
		return prefixed
	}
	return strings.TrimPrefix(prefixed, KeyVersion+"_")
}

// ===================== 账本状态 =====================

// KeyAccount 账户（owner + lamports）
// 例：v1_account_<base58>
func KeyAccount(addr string) string {
	return withVer("account_" + addr)
}

func KeyAccountPrefix() string {
	return withVer("account_")
}

// KeyVaultState 金库元数据，按派生出的 state 地址存
// 例：v1_vault_<base58>
func KeyVaultState(stateAddr string) string {
	return withVer("vault_" + stateAddr)
}

func KeyVaultStatePrefix() string {
	return withVer("vault_")
}

// ===================== VM 执行记录 =====================

// KeyVMAppliedTx 已执行交易标记，值为 "SUCCEED" / "FAILED"
func KeyVMAppliedTx(txID string) string {
	return withVer("vm_applied_tx_" + txID)
}

// KeyVMTxError 失败交易的错误信息
func KeyVMTxError(txID string) string {
	return withVer("vm_tx_error_" + txID)
}

// KeyVMReceipt 编码后的回执
func KeyVMReceipt(txID string) string {
	return withVer("vm_receipt_" + txID)
}

// KeyVMTxSlot 交易提交时的 slot
func KeyVMTxSlot(txID string) string {
	return withVer("vm_tx_slot_" + txID)
}

// KeySlotTx slot -> txID
// 例：v1_slot_00000000000000000042
func KeySlotTx(slot uint64) string {
	return withVer(fmt.Sprintf("slot_%020d", slot))
}

// KeySlotSequence badger Sequence 用的 key
func KeySlotSequence() string {
	return withVer("seq_slot")
}

// ===================== 审计事件 =====================

// KeyEvent slot 定长补零保证字节序即提交序
// 例：v1_event_00000000000000000042_0000
func KeyEvent(slot uint64, idx uint32) string {
	return withVer(fmt.Sprintf("event_%020d_%04d", slot, idx))
}

func KeyEventPrefix() string {
	return withVer("event_")
}

// KeyEventSlotPrefix 某个 slot 起始位置，用于 Seek
func KeyEventSlotPrefix(slot uint64) string {
	return withVer(fmt.Sprintf("event_%020d_", slot))
}

// ===================== 元数据 =====================

// KeyGenesisApplied 创世资金是否已写入
func KeyGenesisApplied() string {
	return withVer("meta_genesis_applied")
}
