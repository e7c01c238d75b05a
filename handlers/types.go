package handlers

import (
	"vaultd/stats"
	"vaultd/types"
	"vaultd/vm"
)

// ErrorResponse 所有非 2xx 响应的 JSON 体
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// TxResponse POST /tx 的结果。FAILED 也是已执行、已记录的结果，HTTP 状态为 200。
type TxResponse struct {
	TxID   string             `json:"tx_id"`
	Status string             `json:"status"`
	Error  string             `json:"error,omitempty"`
	Code   string             `json:"code,omitempty"`
	Slot   uint64             `json:"slot"`
	Events []types.VaultEvent `json:"events,omitempty"`
}

// VaultResponse GET /vault
type VaultResponse struct {
	vm.VaultView
	BalanceText string `json:"balance_text"`
}

// AccountResponse GET /account
type AccountResponse struct {
	Address     types.Pubkey `json:"address"`
	Owner       types.Pubkey `json:"owner"`
	Lamports    uint64       `json:"lamports"`
	BalanceText string       `json:"balance_text"`
}

// ReceiptResponse GET /receipt
type ReceiptResponse struct {
	*vm.Receipt
}

// EventsResponse GET /events；NextSlot/NextIndex 用作下一页的 from_slot/from_index
type EventsResponse struct {
	Events    []types.VaultEvent `json:"events"`
	NextSlot  uint64             `json:"next_slot"`
	NextIndex uint32             `json:"next_index"`
}

// StatusResponse GET /status
type StatusResponse struct {
	Status        string                          `json:"status"`
	ProgramID     types.Pubkey                    `json:"program_id"`
	Kinds         []string                        `json:"kinds"`
	Vaults        int                             `json:"vaults"`
	Uptime        string                          `json:"uptime"`
	APICalls      map[string]uint64               `json:"api_calls"`
	TxOutcomes    map[string]uint64               `json:"tx_outcomes"`
	Latency       map[string]stats.LatencySummary `json:"latency"`
	EventBuffer   stats.ChannelStat               `json:"event_buffer"`
	DroppedEvents uint64                          `json:"dropped_events"`
}
