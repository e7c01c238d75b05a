package stats

import (
	"sync"
)

// Stats API 调用与交易结果计数
type Stats struct {
	statsLock     sync.RWMutex
	apiCallCounts map[string]uint64
	txOutcomes    map[string]uint64 // "deposit/SUCCEED"、"withdraw/VaultLocked" ...
}

func NewStats() *Stats {
	return &Stats{
		apiCallCounts: make(map[string]uint64),
		txOutcomes:    make(map[string]uint64),
	}
}

// 记录API调用
func (h *Stats) RecordAPICall(apiName string) {
	h.statsLock.Lock()
	defer h.statsLock.Unlock()
	h.apiCallCounts[apiName]++
}

// RecordTxOutcome 按交易种类和结果（状态或错误码）计数
func (h *Stats) RecordTxOutcome(kind, outcome string) {
	h.statsLock.Lock()
	defer h.statsLock.Unlock()
	h.txOutcomes[kind+"/"+outcome]++
}

// 获取API调用统计
func (h *Stats) GetAPICallStats() map[string]uint64 {
	h.statsLock.RLock()
	defer h.statsLock.RUnlock()
	return copyCounts(h.apiCallCounts)
}

func (h *Stats) GetTxOutcomeStats() map[string]uint64 {
	h.statsLock.RLock()
	defer h.statsLock.RUnlock()
	return copyCounts(h.txOutcomes)
}

func copyCounts(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
