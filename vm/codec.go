package vm

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"vaultd/types"
)

// 回执与事件的落盘格式：手写 protobuf wire 编码，字段号固定，未知字段跳过

var errMalformed = errors.New("malformed record")

const (
	rcTxID       protowire.Number = 1
	rcKind       protowire.Number = 2
	rcStatus     protowire.Number = 3
	rcError      protowire.Number = 4
	rcCode       protowire.Number = 5
	rcSlot       protowire.Number = 6
	rcTimestamp  protowire.Number = 7
	rcWriteCount protowire.Number = 8
	rcEvents     protowire.Number = 9
)

const (
	evID     protowire.Number = 1
	evType   protowire.Number = 2
	evSlot   protowire.Number = 3
	evIndex  protowire.Number = 4
	evTxID   protowire.Number = 5
	evVault  protowire.Number = 6
	evActor  protowire.Number = 7
	evAmount protowire.Number = 8
	evLocked protowire.Number = 9
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// EncodeEvent 事件编码
func EncodeEvent(ev *types.VaultEvent) []byte {
	var b []byte
	b = appendString(b, evID, ev.ID)
	b = appendString(b, evType, string(ev.Type))
	b = appendVarint(b, evSlot, ev.Slot)
	b = appendVarint(b, evIndex, uint64(ev.Index))
	b = appendString(b, evTxID, ev.TxID)
	b = appendBytes(b, evVault, ev.Vault[:])
	b = appendBytes(b, evActor, ev.Actor[:])
	b = appendVarint(b, evAmount, ev.Amount)
	b = appendVarint(b, evLocked, protowire.EncodeBool(ev.Locked))
	return b
}

// DecodeEvent 事件解码
func DecodeEvent(b []byte) (*types.VaultEvent, error) {
	ev := &types.VaultEvent{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, raw []byte, v uint64) error {
		var err error
		switch {
		case num == evID && typ == protowire.BytesType:
			ev.ID = string(raw)
		case num == evType && typ == protowire.BytesType:
			ev.Type = types.EventType(raw)
		case num == evSlot && typ == protowire.VarintType:
			ev.Slot = v
		case num == evIndex && typ == protowire.VarintType:
			ev.Index = uint32(v)
		case num == evTxID && typ == protowire.BytesType:
			ev.TxID = string(raw)
		case num == evVault && typ == protowire.BytesType:
			ev.Vault, err = types.PubkeyFromBytes(raw)
		case num == evActor && typ == protowire.BytesType:
			ev.Actor, err = types.PubkeyFromBytes(raw)
		case num == evAmount && typ == protowire.VarintType:
			ev.Amount = v
		case num == evLocked && typ == protowire.VarintType:
			ev.Locked = protowire.DecodeBool(v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// EncodeReceipt 回执编码，事件内嵌
func EncodeReceipt(rc *Receipt) []byte {
	var b []byte
	b = appendString(b, rcTxID, rc.TxID)
	b = appendString(b, rcKind, rc.Kind)
	b = appendString(b, rcStatus, rc.Status)
	b = appendString(b, rcError, rc.Error)
	b = appendString(b, rcCode, rc.Code)
	b = appendVarint(b, rcSlot, rc.Slot)
	b = appendVarint(b, rcTimestamp, uint64(rc.Timestamp))
	b = appendVarint(b, rcWriteCount, uint64(rc.WriteCount))
	for i := range rc.Events {
		b = appendBytes(b, rcEvents, EncodeEvent(&rc.Events[i]))
	}
	return b
}

// DecodeReceipt 回执解码
func DecodeReceipt(b []byte) (*Receipt, error) {
	rc := &Receipt{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, raw []byte, v uint64) error {
		switch {
		case num == rcTxID && typ == protowire.BytesType:
			rc.TxID = string(raw)
		case num == rcKind && typ == protowire.BytesType:
			rc.Kind = string(raw)
		case num == rcStatus && typ == protowire.BytesType:
			rc.Status = string(raw)
		case num == rcError && typ == protowire.BytesType:
			rc.Error = string(raw)
		case num == rcCode && typ == protowire.BytesType:
			rc.Code = string(raw)
		case num == rcSlot && typ == protowire.VarintType:
			rc.Slot = v
		case num == rcTimestamp && typ == protowire.VarintType:
			rc.Timestamp = int64(v)
		case num == rcWriteCount && typ == protowire.VarintType:
			rc.WriteCount = int(v)
		case num == rcEvents && typ == protowire.BytesType:
			ev, err := DecodeEvent(raw)
			if err != nil {
				return err
			}
			rc.Events = append(rc.Events, *ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// walkFields 逐个字段回调；raw 对 BytesType 有效，v 对 VarintType 有效
func walkFields(b []byte, fn func(num protowire.Number, typ protowire.Type, raw []byte, v uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		var (
			raw []byte
			v   uint64
		)
		switch typ {
		case protowire.BytesType:
			raw, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", errMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(num, typ, raw, v); err != nil {
			return err
		}
	}
	return nil
}
