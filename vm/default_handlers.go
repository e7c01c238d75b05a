package vm

import "vaultd/pda"

// RegisterDefaultHandlers 注册金库的四种交易
func RegisterDefaultHandlers(reg *HandlerRegistry, d *pda.Deriver) error {
	handlers := []TxHandler{
		&InitializeVaultTxHandler{Deriver: d},
		&DepositTxHandler{Deriver: d},
		&WithdrawTxHandler{Deriver: d},
		&ToggleLockTxHandler{Deriver: d},
	}
	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			return err
		}
	}
	return nil
}
