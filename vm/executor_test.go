package vm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultd/keys"
	"vaultd/types"
	"vaultd/vm"
)

func TestRejectsBadSignatureWithoutRecord(t *testing.T) {
	alice, mallory := newUser(t), newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)

	tx := env.tx(alice, vm.KindWithdraw, alice, 0)
	sig, err := mallory.km.Sign(tx.Digest())
	require.NoError(t, err)
	tx.Signature = sig

	rc, err := env.exec1(tx)
	assert.ErrorIs(t, err, vm.ErrInvalidSignature)
	assert.Nil(t, rc)

	status, err := env.exec.GetTransactionStatus(tx.ID())
	require.NoError(t, err)
	assert.Equal(t, vm.StatusPending, status)
}

func TestSignMismatchedKey(t *testing.T) {
	alice, bob := newUser(t), newUser(t)
	tx := &vm.Tx{Kind: vm.KindDeposit, Signer: alice.pk()}
	assert.ErrorIs(t, tx.Sign(bob.km), vm.ErrInvalidTx)
}

func TestReplayRejected(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)

	tx := env.tx(alice, vm.KindDeposit, alice, 10)
	_, err := env.exec1(tx)
	require.NoError(t, err)

	_, err = env.exec1(tx)
	assert.ErrorIs(t, err, vm.ErrDuplicateTx)
	assert.Equal(t, uint64(990), env.balance(alice.pk()))
}

func TestFailedTxRecorded(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 10, alice)
	env.initVault(alice)

	tx := env.tx(alice, vm.KindDeposit, alice, 11)
	_, err := env.exec1(tx)
	require.ErrorIs(t, err, vm.ErrInsufficientBalance)

	status, err := env.exec.GetTransactionStatus(tx.ID())
	require.NoError(t, err)
	assert.Equal(t, vm.StatusFailed, status)

	msg, err := env.exec.GetTransactionError(tx.ID())
	require.NoError(t, err)
	assert.Contains(t, msg, "insufficient balance")

	rc, err := env.exec.GetReceipt(tx.ID())
	require.NoError(t, err)
	assert.Equal(t, vm.StatusFailed, rc.Status)
	assert.Equal(t, "InsufficientBalance", rc.Code)
	assert.Zero(t, rc.WriteCount)
	assert.Empty(t, rc.Events)
	assert.NotZero(t, rc.Slot)
}

func TestReceiptRoundTripFromStore(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)

	tx := env.tx(alice, vm.KindDeposit, alice, 5)
	rc, err := env.exec1(tx)
	require.NoError(t, err)

	stored, err := env.exec.GetReceipt(tx.ID())
	require.NoError(t, err)
	assert.Equal(t, rc.TxID, stored.TxID)
	assert.Equal(t, rc.Slot, stored.Slot)
	assert.Equal(t, rc.Events, stored.Events)
	assert.Equal(t, 2, stored.WriteCount)

	_, err = env.exec.GetReceipt("missing")
	assert.ErrorIs(t, err, vm.ErrNotFound)
}

func TestUnknownKind(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	tx := env.tx(alice, "mint", alice, 1)
	_, err := env.exec1(tx)
	assert.ErrorIs(t, err, vm.ErrUnknownKind)

	_, err = env.exec.ExecuteTx(context.Background(), nil)
	assert.ErrorIs(t, err, vm.ErrNilTx)
}

func TestEventIDsAreDeterministicPerTx(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)
	rc := env.mustExec(alice, vm.KindDeposit, alice, 1)

	evs := env.events()
	last := evs[len(evs)-1]
	assert.Equal(t, rc.Events[0].ID, last.ID)
	assert.Equal(t, rc.TxID, last.TxID)
	assert.NotEmpty(t, last.ID)
}

func TestListEventsFromSlot(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)
	var slots []uint64
	for i := 0; i < 4; i++ {
		slots = append(slots, env.mustExec(alice, vm.KindDeposit, alice, 1).Slot)
	}

	evs, next, err := env.exec.ListEvents(vm.EventCursor{Slot: slots[2]}, 0)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, slots[2], evs[0].Slot)
	assert.Equal(t, vm.EventCursor{Slot: slots[3], Index: 1}, next)

	evs, _, err = env.exec.ListEvents(vm.EventCursor{}, 2)
	require.NoError(t, err)
	assert.Len(t, evs, 2)

	// 游标已到末尾
	evs, again, err := env.exec.ListEvents(next, 0)
	require.NoError(t, err)
	assert.Empty(t, evs)
	assert.Equal(t, next, again)
}

func TestListEventsResumesInsideSlot(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)
	rc := env.mustExec(alice, vm.KindDeposit, alice, 1)
	tail := env.mustExec(alice, vm.KindDeposit, alice, 2)

	// 同一 slot 再补两条事件
	for idx := uint32(1); idx <= 2; idx++ {
		ev := rc.Events[0]
		ev.Index = idx
		ev.Amount = uint64(100 + idx)
		env.db.EnqueueSet(keys.KeyEvent(rc.Slot, idx), string(vm.EncodeEvent(&ev)))
	}
	require.NoError(t, env.db.ForceFlush())

	from := vm.EventCursor{Slot: rc.Slot}
	var got []types.VaultEvent
	for i := 0; i < 10; i++ {
		page, next, err := env.exec.ListEvents(from, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		got = append(got, page...)
		from = next
	}

	require.Len(t, got, 4)
	for i, ev := range got[:3] {
		assert.Equal(t, rc.Slot, ev.Slot)
		assert.Equal(t, uint32(i), ev.Index)
	}
	assert.Equal(t, uint64(101), got[1].Amount)
	assert.Equal(t, uint64(102), got[2].Amount)
	assert.Equal(t, tail.Slot, got[3].Slot)
}

func TestSubscribeReceivesCommittedEvents(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)

	ch := make(chan types.VaultEvent, 8)
	sub := env.exec.Events.Subscribe(ch)
	defer sub.Unsubscribe()

	env.initVault(alice)
	env.mustExec(alice, vm.KindDeposit, alice, 3)

	// 失败交易不广播
	_, err := env.exec1(env.tx(alice, vm.KindDeposit, alice, 5000))
	require.Error(t, err)

	got := make([]types.VaultEvent, 0, 2)
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out, got %d events", len(got))
		}
	}
	assert.Equal(t, types.EventVaultInitialized, got[0].Type)
	assert.Equal(t, types.EventDeposit, got[1].Type)
	assert.Equal(t, uint64(3), got[1].Amount)

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

// 并发存取下总量守恒
func TestConservationUnderConcurrency(t *testing.T) {
	const depositors = 8
	const rounds = 20

	owner := newUser(t)
	users := make([]*testUser, depositors)
	for i := range users {
		users[i] = newUser(t)
	}
	env := newEnv(t, 1000, append(users, owner)...)
	addrs := env.initVault(owner)

	// 预先签好，nonce 不在 goroutine 里并发修改
	txs := make([][]*vm.Tx, depositors+1)
	for i, u := range users {
		for r := 0; r < rounds; r++ {
			txs[i] = append(txs[i], env.tx(u, vm.KindDeposit, owner, uint64(r%7)+1))
		}
	}
	for r := 0; r < rounds; r++ {
		txs[depositors] = append(txs[depositors], env.tx(owner, vm.KindWithdraw, owner, 5))
	}

	var wg sync.WaitGroup
	for _, list := range txs {
		wg.Add(1)
		go func(list []*vm.Tx) {
			defer wg.Done()
			for _, tx := range list {
				_, _ = env.exec1(tx)
			}
		}(list)
	}
	wg.Wait()

	var total uint64
	for _, u := range users {
		total += env.balance(u.pk())
	}
	total += env.balance(owner.pk())
	total += env.balance(addrs.Holding)
	assert.Equal(t, uint64(1000*(depositors+1)), total)
}

func TestLockTimeoutHonorsContext(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)

	tx := env.tx(alice, vm.KindDeposit, alice, 1)
	release, err := env.exec.Locks.Acquire(context.Background(), tx.AccountKeys())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = env.exec.ExecuteTx(ctx, tx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
