package types

// ============================================
// 审计事件
// ============================================

type EventType string

const (
	EventVaultInitialized EventType = "vault.initialized"
	EventDeposit          EventType = "vault.deposit"
	EventWithdraw         EventType = "vault.withdraw"
	EventToggleLock       EventType = "vault.toggle_lock"
)

// VaultEvent 一条已提交的审计记录。
// Deposit 时 Actor 是存款人；Withdraw / ToggleLock / 初始化时 Actor 是 authority。
// Locked 只对 ToggleLock 有意义（翻转后的新值）。
type VaultEvent struct {
	ID     string    `json:"id"`
	Type   EventType `json:"type"`
	Slot   uint64    `json:"slot"`
	Index  uint32    `json:"index"`
	TxID   string    `json:"tx_id"`
	Vault  Pubkey    `json:"vault"`
	Actor  Pubkey    `json:"actor"`
	Amount uint64    `json:"amount"`
	Locked bool      `json:"locked"`
}
