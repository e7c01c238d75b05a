package vm

import (
	"fmt"
	"sort"
	"sync"

	"vaultd/keys"
	"vaultd/types"
)

// undo 一次 Stage 之前该 key 在 overlay 里的样子
type undo struct {
	key  string
	prev WriteOp
	had  bool
}

// vaultOverlay 一笔交易的暂存区。
// 只接受账户与金库元数据的写入；回执、事件由执行器在提交时另行写入。
type vaultOverlay struct {
	mu      sync.RWMutex
	read    ReadThroughFn
	pending map[string]WriteOp
	journal []undo
}

// NewStateView 创建一个空的暂存区，未命中时经 read 读持久状态
func NewStateView(read ReadThroughFn) StateView {
	return &vaultOverlay{
		read:    read,
		pending: make(map[string]WriteOp, 4),
		journal: make([]undo, 0, 4),
	}
}

func (s *vaultOverlay) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	w, ok := s.pending[key]
	s.mu.RUnlock()
	if ok {
		return append([]byte(nil), w.Value...), true, nil
	}

	val, err := s.read(key)
	if err != nil {
		return nil, false, err
	}
	return val, val != nil, nil
}

// Stage 整批校验后再写入；有一条不是状态 key 就整批拒绝
func (s *vaultOverlay) Stage(ws ...WriteOp) error {
	for _, w := range ws {
		if !keys.IsStatefulKey(w.Key) {
			return fmt.Errorf("%w: %s", ErrForeignWrite, w.Key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range ws {
		prev, had := s.pending[w.Key]
		s.journal = append(s.journal, undo{key: w.Key, prev: prev, had: had})
		w.Value = append([]byte(nil), w.Value...)
		if w.Category == "" {
			w.Category = keys.KindOf(w.Key)
		}
		s.pending[w.Key] = w
	}
	return nil
}

func (s *vaultOverlay) Snapshot() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journal)
}

func (s *vaultOverlay) Revert(snap int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap < 0 || snap > len(s.journal) {
		return ErrInvalidSnapshot
	}
	for i := len(s.journal) - 1; i >= snap; i-- {
		u := s.journal[i]
		if u.had {
			s.pending[u.key] = u.prev
		} else {
			delete(s.pending, u.key)
		}
	}
	s.journal = s.journal[:snap]
	return nil
}

// Diff 每个 key 只保留最后一次写入，按 key 排序
func (s *vaultOverlay) Diff() []WriteOp {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diff := make([]WriteOp, 0, len(s.pending))
	for _, w := range s.pending {
		w.Value = append([]byte(nil), w.Value...)
		diff = append(diff, w)
	}
	sort.Slice(diff, func(i, j int) bool { return diff[i].Key < diff[j].Key })
	return diff
}

// checkWriteSet 写集里的每个地址都必须在交易持有的锁里
func checkWriteSet(diff []WriteOp, locked []types.Pubkey) error {
	held := make(map[types.Pubkey]struct{}, len(locked))
	for _, pk := range locked {
		held[pk] = struct{}{}
	}
	for _, w := range diff {
		if _, ok := held[w.Addr]; !ok {
			return fmt.Errorf("%w: %s write to %s", ErrUnlockedWrite, w.Category, w.Addr)
		}
	}
	return nil
}
