package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultd/types"
)

func sampleEvent(i uint32) types.VaultEvent {
	ev := types.VaultEvent{
		ID:     "ev-id",
		Type:   types.EventToggleLock,
		Slot:   42,
		Index:  i,
		TxID:   "abcd",
		Amount: 0,
		Locked: true,
	}
	ev.Vault[0] = 1
	ev.Actor[31] = 2
	return ev
}

func TestEventCodec(t *testing.T) {
	ev := sampleEvent(3)
	got, err := DecodeEvent(EncodeEvent(&ev))
	require.NoError(t, err)
	assert.Equal(t, ev, *got)
}

func TestReceiptCodec(t *testing.T) {
	rc := &Receipt{
		TxID:       "abcd",
		Kind:       KindToggleLock,
		Status:     StatusSucceed,
		Slot:       42,
		Timestamp:  1700000000,
		WriteCount: 1,
		Events:     []types.VaultEvent{sampleEvent(0), sampleEvent(1)},
	}
	got, err := DecodeReceipt(EncodeReceipt(rc))
	require.NoError(t, err)
	assert.Equal(t, rc, got)

	failed := &Receipt{TxID: "x", Kind: KindWithdraw, Status: StatusFailed, Error: "vault is locked", Code: "VaultLocked", Slot: 7}
	got, err = DecodeReceipt(EncodeReceipt(failed))
	require.NoError(t, err)
	assert.Equal(t, failed, got)
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, errMalformed)

	// vault 字段长度不对
	b := appendBytes(nil, evVault, []byte{1, 2, 3})
	_, err = DecodeEvent(b)
	assert.Error(t, err)

	// 内嵌事件损坏时整个回执失败
	b = appendBytes(nil, rcEvents, []byte{0xff, 0xff, 0xff})
	_, err = DecodeReceipt(b)
	assert.Error(t, err)
}
