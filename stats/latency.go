package stats

import (
	"sort"
	"sync"
	"time"
)

// LatencySummary 单个指标的延迟分位统计
type LatencySummary struct {
	Count uint64        `json:"count"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// ring 固定容量的样本环
type ring struct {
	samples []time.Duration
	next    int
	full    bool
	count   uint64
	max     time.Duration
}

func (r *ring) add(d time.Duration) {
	r.samples[r.next] = d
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.full = true
	}
	r.count++
	if d > r.max {
		r.max = d
	}
}

func (r *ring) window() []time.Duration {
	n := r.next
	if r.full {
		n = len(r.samples)
	}
	out := make([]time.Duration, n)
	copy(out, r.samples[:n])
	return out
}

// LatencyRecorder 按名字（如交易种类）记录执行耗时
type LatencyRecorder struct {
	mu       sync.Mutex
	capacity int
	rings    map[string]*ring
}

func NewLatencyRecorder(capacity int) *LatencyRecorder {
	if capacity <= 0 {
		capacity = 2048
	}
	return &LatencyRecorder{capacity: capacity, rings: make(map[string]*ring)}
}

func (r *LatencyRecorder) Record(name string, d time.Duration) {
	if r == nil || name == "" {
		return
	}
	if d < 0 {
		d = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rg, ok := r.rings[name]
	if !ok {
		rg = &ring{samples: make([]time.Duration, r.capacity)}
		r.rings[name] = rg
	}
	rg.add(d)
}

// Snapshot 当前窗口内的分位统计
func (r *LatencyRecorder) Snapshot() map[string]LatencySummary {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]LatencySummary, len(r.rings))
	for name, rg := range r.rings {
		w := rg.window()
		if len(w) == 0 {
			continue
		}
		sort.Slice(w, func(i, j int) bool { return w[i] < w[j] })
		out[name] = LatencySummary{
			Count: rg.count,
			P50:   percentile(w, 0.50),
			P95:   percentile(w, 0.95),
			P99:   percentile(w, 0.99),
			Max:   rg.max,
		}
	}
	return out
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
