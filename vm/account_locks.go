package vm

import (
	"context"

	"github.com/RoaringBitmap/roaring"

	"vaultd/types"
	"vaultd/utils"
)

// AccountLocks 按账户地址分片的互斥锁。
// 一笔交易涉及的分片先去重再按升序获取，任意两笔交易的加锁顺序一致，不会死锁。
// 不同账户可能落到同一分片，只会多一点串行，不影响正确性。
type AccountLocks struct {
	stripes []chan struct{}
}

func NewAccountLocks(n int) *AccountLocks {
	if n <= 0 {
		n = 256
	}
	l := &AccountLocks{stripes: make([]chan struct{}, n)}
	for i := range l.stripes {
		l.stripes[i] = make(chan struct{}, 1)
	}
	return l
}

func (l *AccountLocks) stripeOf(addr types.Pubkey) uint32 {
	return utils.StripeHash(addr[:]) % uint32(len(l.stripes))
}

// Stripes 返回 accounts 对应的分片集合（升序）
func (l *AccountLocks) Stripes(accounts []types.Pubkey) *roaring.Bitmap {
	bm := roaring.New()
	for _, a := range accounts {
		bm.Add(l.stripeOf(a))
	}
	return bm
}

// Acquire 阻塞直到拿到全部分片或 ctx 结束；返回的 release 只能调用一次
func (l *AccountLocks) Acquire(ctx context.Context, accounts []types.Pubkey) (func(), error) {
	held := make([]uint32, 0, len(accounts))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-l.stripes[held[i]]
		}
	}

	it := l.Stripes(accounts).Iterator()
	for it.HasNext() {
		idx := it.Next()
		select {
		case l.stripes[idx] <- struct{}{}:
			held = append(held, idx)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}
