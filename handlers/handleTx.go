package handlers

import (
	"encoding/json"
	"net/http"

	"vaultd/vm"
)

// HandleTx 处理交易提交，同步执行并返回结果
func (hm *HandlerManager) HandleTx(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleTx")
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var tx vm.Tx
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, hm.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tx); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidTx", "invalid tx body: "+err.Error())
		return
	}

	rc, err := hm.executor.ExecuteTx(r.Context(), &tx)
	if rc == nil {
		// 执行前被拒绝，没有记录
		code := vm.ErrorCode(err)
		hm.Stats.RecordTxOutcome(tx.Kind, code)
		hm.Logger.Verbose("[API] tx %s rejected: %v", tx.ID(), err)
		writeError(w, statusForError(err), code, err.Error())
		return
	}

	outcome := rc.Status
	if rc.Code != "" {
		outcome = rc.Code
	}
	hm.Stats.RecordTxOutcome(tx.Kind, outcome)

	writeJSON(w, http.StatusOK, TxResponse{
		TxID:   rc.TxID,
		Status: rc.Status,
		Error:  rc.Error,
		Code:   rc.Code,
		Slot:   rc.Slot,
		Events: rc.Events,
	})
}
