package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"vaultd/types"
	"vaultd/utils"
	"vaultd/vm"
)

var errMissingFlag = errors.New("missing required flag")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func requirePubkey(name, v string) (types.Pubkey, error) {
	if v == "" {
		return types.Pubkey{}, fmt.Errorf("%w: -%s", errMissingFlag, name)
	}
	pk, err := types.ParsePubkey(v)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("-%s: %w", name, err)
	}
	return pk, nil
}

func (c *cli) keygen() error {
	km, err := utils.NewKeyManager()
	if err != nil {
		return err
	}
	return c.print(map[string]string{
		"public_key":  km.PublicKey().String(),
		"private_key": km.PrivateKeyHex(),
	})
}

// derive 本地计算，不连节点
func (c *cli) derive(args []string) error {
	fs := newFlagSet("derive")
	authority := fs.String("authority", "", "vault authority (base58)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pk, err := requirePubkey("authority", *authority)
	if err != nil {
		return err
	}
	d, err := c.cfg.Vault.Deriver()
	if err != nil {
		return err
	}
	addrs, err := d.Derive(pk)
	if err != nil {
		return err
	}
	return c.print(addrs)
}

var txKinds = map[string]string{
	"init":        vm.KindInitializeVault,
	"deposit":     vm.KindDeposit,
	"withdraw":    vm.KindWithdraw,
	"toggle-lock": vm.KindToggleLock,
}

// buildTx 解析参数并签名。authority 缺省为签名者自己的金库。
func (c *cli) buildTx(cmd string, args []string) (*vm.Tx, error) {
	kind, ok := txKinds[cmd]
	if !ok {
		return nil, fmt.Errorf("unknown tx command %q", cmd)
	}
	fs := newFlagSet(cmd)
	keyHex := fs.String("key", "", "signer private key (hex)")
	authority := fs.String("authority", "", "vault authority, defaults to the signer")
	amount := fs.String("amount", "0", "amount in whole units, up to 9 decimals")
	nonce := fs.Uint64("nonce", 0, "tx nonce, defaults to the current time in ns")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *keyHex == "" {
		return nil, fmt.Errorf("%w: -key", errMissingFlag)
	}
	km, err := utils.KeyManagerFromHex(*keyHex)
	if err != nil {
		return nil, err
	}
	lamports, err := utils.ParseAmount(*amount)
	if err != nil {
		return nil, err
	}

	owner := km.PublicKey()
	if *authority != "" {
		if owner, err = requirePubkey("authority", *authority); err != nil {
			return nil, err
		}
	}
	d, err := c.cfg.Vault.Deriver()
	if err != nil {
		return nil, err
	}
	addrs, err := d.Derive(owner)
	if err != nil {
		return nil, err
	}

	n := *nonce
	if n == 0 {
		n = uint64(time.Now().UnixNano())
	}
	tx := &vm.Tx{
		Kind:    kind,
		Signer:  km.PublicKey(),
		Vault:   addrs.State,
		Holding: addrs.Holding,
		Amount:  lamports,
		Nonce:   n,
	}
	if err := tx.Sign(km); err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *cli) submit(ctx context.Context, cmd string, args []string) error {
	tx, err := c.buildTx(cmd, args)
	if err != nil {
		return err
	}
	cl := c.newClient()
	defer cl.Close()

	resp, err := cl.SubmitTx(ctx, tx)
	if err != nil {
		return err
	}
	if err := c.print(resp); err != nil {
		return err
	}
	if resp.Status != vm.StatusSucceed {
		return fmt.Errorf("tx %s %s: %s", resp.TxID, resp.Status, resp.Code)
	}
	return nil
}

func (c *cli) vault(ctx context.Context, args []string) error {
	fs := newFlagSet("vault")
	authority := fs.String("authority", "", "vault authority (base58)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pk, err := requirePubkey("authority", *authority)
	if err != nil {
		return err
	}
	cl := c.newClient()
	defer cl.Close()
	v, err := cl.GetVault(ctx, pk)
	if err != nil {
		return err
	}
	return c.print(v)
}

func (c *cli) account(ctx context.Context, args []string) error {
	fs := newFlagSet("account")
	address := fs.String("address", "", "account address (base58)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pk, err := requirePubkey("address", *address)
	if err != nil {
		return err
	}
	cl := c.newClient()
	defer cl.Close()
	acc, err := cl.GetAccount(ctx, pk)
	if err != nil {
		return err
	}
	return c.print(acc)
}

func (c *cli) receipt(ctx context.Context, args []string) error {
	fs := newFlagSet("receipt")
	txID := fs.String("tx", "", "transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *txID == "" {
		return fmt.Errorf("%w: -tx", errMissingFlag)
	}
	cl := c.newClient()
	defer cl.Close()
	rc, err := cl.GetReceipt(ctx, *txID)
	if err != nil {
		return err
	}
	return c.print(rc)
}

func (c *cli) events(ctx context.Context, args []string) error {
	fs := newFlagSet("events")
	from := fs.Uint64("from", 0, "first slot (inclusive)")
	fromIndex := fs.Uint("from-index", 0, "first event index within the first slot")
	limit := fs.Int("limit", 0, "max events, 0 = server default")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cl := c.newClient()
	defer cl.Close()
	evs, err := cl.ListEvents(ctx, *from, uint32(*fromIndex), *limit)
	if err != nil {
		return err
	}
	return c.print(evs)
}
