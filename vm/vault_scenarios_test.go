package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultd/types"
	"vaultd/vm"
)

func TestDepositThenWithdraw(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	addrs := env.initVault(alice)

	v := env.vault(alice)
	assert.True(t, v.Exists)
	assert.False(t, v.Locked)
	assert.Zero(t, v.Balance)

	rc := env.mustExec(alice, vm.KindDeposit, alice, 100)
	require.Len(t, rc.Events, 1)
	assert.Equal(t, types.EventDeposit, rc.Events[0].Type)
	assert.Equal(t, uint64(100), rc.Events[0].Amount)
	assert.Equal(t, alice.pk(), rc.Events[0].Actor)
	assert.Equal(t, addrs.State, rc.Events[0].Vault)

	assert.Equal(t, uint64(100), env.balance(addrs.Holding))
	assert.Equal(t, uint64(900), env.balance(alice.pk()))

	rc = env.mustExec(alice, vm.KindWithdraw, alice, 40)
	require.Len(t, rc.Events, 1)
	assert.Equal(t, types.EventWithdraw, rc.Events[0].Type)
	assert.Equal(t, uint64(40), rc.Events[0].Amount)
	assert.Equal(t, alice.pk(), rc.Events[0].Actor)

	assert.Equal(t, uint64(60), env.balance(addrs.Holding))
	assert.Equal(t, uint64(940), env.balance(alice.pk()))

	evs := env.events()
	require.Len(t, evs, 3)
	assert.Equal(t, types.EventVaultInitialized, evs[0].Type)
	assert.Equal(t, types.EventDeposit, evs[1].Type)
	assert.Equal(t, types.EventWithdraw, evs[2].Type)
	assert.Less(t, evs[1].Slot, evs[2].Slot)
}

func TestLockBlocksDepositAndWithdraw(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	addrs := env.initVault(alice)
	env.mustExec(alice, vm.KindDeposit, alice, 100)

	rc := env.mustExec(alice, vm.KindToggleLock, alice, 0)
	require.Len(t, rc.Events, 1)
	assert.Equal(t, types.EventToggleLock, rc.Events[0].Type)
	assert.True(t, rc.Events[0].Locked)
	assert.True(t, env.vault(alice).Locked)

	before := len(env.events())

	rc, err := env.exec1(env.tx(alice, vm.KindDeposit, alice, 10))
	assert.ErrorIs(t, err, vm.ErrVaultLocked)
	require.NotNil(t, rc)
	assert.Equal(t, vm.StatusFailed, rc.Status)
	assert.Equal(t, "VaultLocked", rc.Code)
	assert.Empty(t, rc.Events)

	_, err = env.exec1(env.tx(alice, vm.KindWithdraw, alice, 10))
	assert.ErrorIs(t, err, vm.ErrVaultLocked)

	// 无余额变化、无新事件
	assert.Equal(t, uint64(100), env.balance(addrs.Holding))
	assert.Equal(t, uint64(900), env.balance(alice.pk()))
	assert.Len(t, env.events(), before)

	rc = env.mustExec(alice, vm.KindToggleLock, alice, 0)
	assert.False(t, rc.Events[0].Locked)
	env.mustExec(alice, vm.KindDeposit, alice, 10)
	assert.Equal(t, uint64(110), env.balance(addrs.Holding))
}

func TestNonAuthorityRejected(t *testing.T) {
	alice, bob := newUser(t), newUser(t)
	env := newEnv(t, 1000, alice, bob)
	addrs := env.initVault(alice)
	env.mustExec(alice, vm.KindDeposit, alice, 100)

	_, err := env.exec1(env.tx(bob, vm.KindWithdraw, alice, 50))
	assert.ErrorIs(t, err, vm.ErrUnauthorized)
	assert.Equal(t, "AuthorizationFailure", vm.ErrorCode(err))

	_, err = env.exec1(env.tx(bob, vm.KindToggleLock, alice, 0))
	assert.ErrorIs(t, err, vm.ErrUnauthorized)

	assert.Equal(t, uint64(100), env.balance(addrs.Holding))
	assert.Equal(t, uint64(1000), env.balance(bob.pk()))
	assert.False(t, env.vault(alice).Locked)

	// 授权检查先于锁定检查
	env.mustExec(alice, vm.KindToggleLock, alice, 0)
	_, err = env.exec1(env.tx(bob, vm.KindWithdraw, alice, 1))
	assert.ErrorIs(t, err, vm.ErrUnauthorized)
}

func TestAnyoneCanDeposit(t *testing.T) {
	alice, bob := newUser(t), newUser(t)
	env := newEnv(t, 1000, alice, bob)
	addrs := env.initVault(alice)

	rc := env.mustExec(bob, vm.KindDeposit, alice, 250)
	assert.Equal(t, bob.pk(), rc.Events[0].Actor)
	assert.Equal(t, uint64(250), env.balance(addrs.Holding))
	assert.Equal(t, uint64(750), env.balance(bob.pk()))

	// 取款回到 authority，不回到存款人
	env.mustExec(alice, vm.KindWithdraw, alice, 250)
	assert.Equal(t, uint64(1250), env.balance(alice.pk()))
	assert.Equal(t, uint64(750), env.balance(bob.pk()))
}

func TestInsufficientBalance(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 100, alice)
	addrs := env.initVault(alice)

	_, err := env.exec1(env.tx(alice, vm.KindDeposit, alice, 101))
	assert.ErrorIs(t, err, vm.ErrInsufficientBalance)
	assert.Equal(t, uint64(100), env.balance(alice.pk()))

	env.mustExec(alice, vm.KindDeposit, alice, 30)
	_, err = env.exec1(env.tx(alice, vm.KindWithdraw, alice, 31))
	assert.ErrorIs(t, err, vm.ErrInsufficientBalance)
	assert.Equal(t, uint64(30), env.balance(addrs.Holding))
	assert.Equal(t, uint64(70), env.balance(alice.pk()))

	// 没有账户的存款人
	stranger := newUser(t)
	_, err = env.exec1(env.tx(stranger, vm.KindDeposit, alice, 1))
	assert.ErrorIs(t, err, vm.ErrInsufficientBalance)
}

func TestWithdrawFromEmptyVault(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	addrs := env.initVault(alice)

	tx := env.tx(alice, vm.KindWithdraw, alice, 100)
	_, err := env.exec1(tx)
	assert.ErrorIs(t, err, vm.ErrInsufficientBalance)

	rc, err := env.exec.GetReceipt(tx.ID())
	require.NoError(t, err)
	assert.Equal(t, vm.StatusFailed, rc.Status)
	assert.Equal(t, "InsufficientBalance", rc.Code)

	assert.Zero(t, env.balance(addrs.Holding))
	assert.Equal(t, uint64(1000), env.balance(alice.pk()))
	assert.False(t, env.vault(alice).Locked)
}

func TestZeroAmountIsNoOpSuccess(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 100, alice)
	addrs := env.initVault(alice)

	rc := env.mustExec(alice, vm.KindDeposit, alice, 0)
	require.Len(t, rc.Events, 1)
	assert.Zero(t, rc.Events[0].Amount)

	rc = env.mustExec(alice, vm.KindWithdraw, alice, 0)
	require.Len(t, rc.Events, 1)

	assert.Equal(t, uint64(100), env.balance(alice.pk()))
	assert.Zero(t, env.balance(addrs.Holding))

	// 锁定检查对零金额同样生效
	env.mustExec(alice, vm.KindToggleLock, alice, 0)
	_, err := env.exec1(env.tx(alice, vm.KindDeposit, alice, 0))
	assert.ErrorIs(t, err, vm.ErrVaultLocked)
}

func TestToggleTwiceRestores(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 100, alice)
	env.initVault(alice)

	for i := 0; i < 3; i++ {
		before := env.vault(alice).Locked
		env.mustExec(alice, vm.KindToggleLock, alice, 0)
		env.mustExec(alice, vm.KindToggleLock, alice, 0)
		assert.Equal(t, before, env.vault(alice).Locked)
	}
}

func TestAddressMismatch(t *testing.T) {
	alice, bob := newUser(t), newUser(t)
	env := newEnv(t, 1000, alice, bob)
	aliceAddrs := env.initVault(alice)
	bobAddrs := env.initVault(bob)

	// alice 的金库配 bob 的 holding
	bob.nonce++
	tx := &vm.Tx{Kind: vm.KindDeposit, Signer: bob.pk(), Vault: aliceAddrs.State, Holding: bobAddrs.Holding, Amount: 5, Nonce: bob.nonce}
	require.NoError(t, tx.Sign(bob.km))
	_, err := env.exec1(tx)
	assert.ErrorIs(t, err, vm.ErrAddressMismatch)

	// 初始化时给错地址
	carol := newUser(t)
	carol.nonce++
	tx = &vm.Tx{Kind: vm.KindInitializeVault, Signer: carol.pk(), Vault: aliceAddrs.State, Holding: aliceAddrs.Holding, Nonce: carol.nonce}
	require.NoError(t, tx.Sign(carol.km))
	_, err = env.exec1(tx)
	assert.ErrorIs(t, err, vm.ErrAddressMismatch)

	assert.Zero(t, env.balance(aliceAddrs.Holding))
	assert.Zero(t, env.balance(bobAddrs.Holding))
}

func TestDepositToUnknownVault(t *testing.T) {
	alice, bob := newUser(t), newUser(t)
	env := newEnv(t, 1000, alice)

	_, err := env.exec1(env.tx(alice, vm.KindDeposit, bob, 5))
	assert.ErrorIs(t, err, vm.ErrVaultNotFound)
	assert.False(t, env.vault(bob).Exists)
}

func TestInitializeTwice(t *testing.T) {
	alice := newUser(t)
	env := newEnv(t, 1000, alice)
	env.initVault(alice)

	_, err := env.exec1(env.tx(alice, vm.KindInitializeVault, alice, 0))
	assert.ErrorIs(t, err, vm.ErrVaultExists)
}

func TestVaultStateRecordsBumps(t *testing.T) {
	alice, bob := newUser(t), newUser(t)
	env := newEnv(t, 1000, alice, bob)
	addrs := env.initVault(alice)

	vs, err := env.exec.GetVaultState(addrs.State)
	require.NoError(t, err)
	assert.Equal(t, alice.pk(), vs.Authority)
	assert.Equal(t, addrs.StateBump, vs.StateBump)
	assert.Equal(t, addrs.HoldingBump, vs.HoldingBump)
	assert.False(t, vs.Locked)

	_, err = env.exec.GetVaultState(env.addrs(bob).State)
	assert.ErrorIs(t, err, vm.ErrVaultNotFound)

	n, err := env.exec.CountVaults()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	env.initVault(bob)
	n, err = env.exec.CountVaults()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
