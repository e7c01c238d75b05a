package vm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultd/config"
	"vaultd/db"
	"vaultd/logs"
	"vaultd/pda"
	"vaultd/types"
	"vaultd/utils"
	"vaultd/vm"
)

type testEnv struct {
	t    *testing.T
	db   *db.Manager
	exec *vm.Executor
}

type testUser struct {
	km    *utils.KeyManager
	nonce uint64
}

func (u *testUser) pk() types.Pubkey { return u.km.PublicKey() }

func newUser(t *testing.T) *testUser {
	t.Helper()
	km, err := utils.NewKeyManager()
	require.NoError(t, err)
	return &testUser{km: km}
}

// newEnv 用临时目录的 badger，funded 中每个用户注入 lamports
func newEnv(t *testing.T, lamports uint64, funded ...*testUser) *testEnv {
	t.Helper()
	mgr, err := db.NewManager(t.TempDir(), logs.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(mgr.Close)

	g := config.GenesisConfig{}
	for _, u := range funded {
		g.Accounts = append(g.Accounts, config.GenesisAccount{Address: u.pk().String(), Lamports: lamports})
	}
	_, err = mgr.ApplyGenesis(g)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Executor.LockTimeout = 10 * time.Second
	x, err := vm.NewExecutor(mgr, nil, cfg, logs.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(x.Close)

	return &testEnv{t: t, db: mgr, exec: x}
}

func (e *testEnv) addrs(authority *testUser) pda.VaultAddresses {
	e.t.Helper()
	a, err := e.exec.DeriveAddresses(authority.pk())
	require.NoError(e.t, err)
	return a
}

// tx 构造并签名；vault 为 vault 所属 authority
func (e *testEnv) tx(signer *testUser, kind string, vault *testUser, amount uint64) *vm.Tx {
	e.t.Helper()
	a := e.addrs(vault)
	signer.nonce++
	tx := &vm.Tx{
		Kind:    kind,
		Signer:  signer.pk(),
		Vault:   a.State,
		Holding: a.Holding,
		Amount:  amount,
		Nonce:   signer.nonce,
	}
	require.NoError(e.t, tx.Sign(signer.km))
	return tx
}

func (e *testEnv) exec1(tx *vm.Tx) (*vm.Receipt, error) {
	return e.exec.ExecuteTx(context.Background(), tx)
}

func (e *testEnv) mustExec(signer *testUser, kind string, vault *testUser, amount uint64) *vm.Receipt {
	e.t.Helper()
	rc, err := e.exec1(e.tx(signer, kind, vault, amount))
	require.NoError(e.t, err)
	require.Equal(e.t, vm.StatusSucceed, rc.Status)
	return rc
}

func (e *testEnv) initVault(u *testUser) pda.VaultAddresses {
	e.t.Helper()
	e.mustExec(u, vm.KindInitializeVault, u, 0)
	return e.addrs(u)
}

func (e *testEnv) balance(addr types.Pubkey) uint64 {
	e.t.Helper()
	acc, err := e.exec.GetAccount(addr)
	require.NoError(e.t, err)
	return acc.Lamports
}

func (e *testEnv) vault(u *testUser) *vm.VaultView {
	e.t.Helper()
	v, err := e.exec.GetVault(u.pk())
	require.NoError(e.t, err)
	return v
}

func (e *testEnv) events() []types.VaultEvent {
	e.t.Helper()
	evs, _, err := e.exec.ListEvents(vm.EventCursor{}, 0)
	require.NoError(e.t, err)
	return evs
}
