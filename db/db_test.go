package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultd/config"
	"vaultd/keys"
	"vaultd/logs"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(t.TempDir(), logs.NewNodeLogger("test", 0))
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	return mgr
}

func TestGetMissingReturnsNil(t *testing.T) {
	mgr := newTestManager(t)
	v, err := mgr.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestWriteQueueFlush(t *testing.T) {
	mgr := newTestManager(t)

	mgr.EnqueueSet(keys.KeyAccount("a"), "1")
	mgr.EnqueueSet(keys.KeyAccount("b"), "2")
	assert.Equal(t, 2, mgr.PendingWrites())

	// 未 flush 前不可见
	v, err := mgr.Get(keys.KeyAccount("a"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, mgr.ForceFlush())
	assert.Zero(t, mgr.PendingWrites())

	v, err = mgr.Get(keys.KeyAccount("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	mgr.EnqueueDel(keys.KeyAccount("a"))
	require.NoError(t, mgr.ForceFlush())
	v, err = mgr.Get(keys.KeyAccount("a"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSessionCommitIsAtomic(t *testing.T) {
	mgr := newTestManager(t)

	sess, err := mgr.NewSession()
	require.NoError(t, err)
	require.NoError(t, sess.Set("k1", []byte("v1")))
	require.NoError(t, sess.Set("k2", []byte("v2")))

	// 会话内可读到自己的写入，外部不可见
	v, err := sess.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)
	v, err = mgr.Get("k1")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, sess.Commit())
	require.NoError(t, sess.Close())

	v, err = mgr.Get("k2")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	assert.ErrorIs(t, sess.Set("k3", nil), ErrSessionDone)
}

func TestSessionCloseDiscards(t *testing.T) {
	mgr := newTestManager(t)

	sess, err := mgr.NewSession()
	require.NoError(t, err)
	require.NoError(t, sess.Set("k", []byte("v")))
	require.NoError(t, sess.Close())

	v, err := mgr.Get("k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestScanFromOrdered(t *testing.T) {
	mgr := newTestManager(t)
	for _, slot := range []uint64{3, 1, 2, 10} {
		mgr.EnqueueSet(keys.KeyEvent(slot, 0), "e")
	}
	mgr.EnqueueSet(keys.KeyAccount("x"), "a")
	require.NoError(t, mgr.ForceFlush())

	all, err := mgr.ScanFrom(keys.KeyEventPrefix(), "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, keys.KeyEvent(1, 0), all[0].Key)
	assert.Equal(t, keys.KeyEvent(10, 0), all[3].Key)

	page, err := mgr.ScanFrom(keys.KeyEventPrefix(), keys.KeyEventSlotPrefix(2), 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, keys.KeyEvent(2, 0), page[0].Key)
	assert.Equal(t, keys.KeyEvent(3, 0), page[1].Key)

	m, err := mgr.Scan(keys.KeyAccountPrefix())
	require.NoError(t, err)
	assert.Len(t, m, 1)
}

func TestNextSlotMonotonic(t *testing.T) {
	mgr := newTestManager(t)
	a, err := mgr.NextSlot()
	require.NoError(t, err)
	b, err := mgr.NextSlot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a)
	assert.Greater(t, b, a)
}

func TestInMemoryManager(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.InMemory = true
	mgr, err := NewManagerWithConfig("", logs.NewNopLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	sess, err := mgr.NewSession()
	require.NoError(t, err)
	require.NoError(t, sess.Set("k", []byte("v")))
	require.NoError(t, sess.Commit())
	_ = sess.Close()

	v, err := mgr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestClosedManager(t *testing.T) {
	mgr, err := NewManager(t.TempDir(), logs.NewNopLogger())
	require.NoError(t, err)
	mgr.Close()

	_, err = mgr.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = mgr.NextSlot()
	assert.ErrorIs(t, err, ErrClosed)
}
