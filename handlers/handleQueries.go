package handlers

import (
	"net/http"
	"strconv"

	"vaultd/utils"
	"vaultd/vm"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// HandleGetVault 按 authority 查询金库
func (hm *HandlerManager) HandleGetVault(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleGetVault")
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	authority, ok := pubkeyParam(w, r, "authority")
	if !ok {
		return
	}

	view, err := hm.executor.GetVault(authority)
	if err != nil {
		hm.Logger.Error("[API] get vault %s: %v", authority, err)
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VaultResponse{VaultView: *view, BalanceText: utils.FormatAmount(view.Balance)})
}

// HandleGetAccount 查询任意地址的余额与 owner
func (hm *HandlerManager) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleGetAccount")
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	addr, ok := pubkeyParam(w, r, "address")
	if !ok {
		return
	}

	acc, err := hm.executor.GetAccount(addr)
	if err != nil {
		hm.Logger.Error("[API] get account %s: %v", addr, err)
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address:     addr,
		Owner:       acc.Owner,
		Lamports:    acc.Lamports,
		BalanceText: utils.FormatAmount(acc.Lamports),
	})
}

// HandleGetReceipt 查询回执
func (hm *HandlerManager) HandleGetReceipt(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleGetReceipt")
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	txID := r.URL.Query().Get("tx_id")
	if txID == "" {
		writeError(w, http.StatusBadRequest, "", "missing tx_id")
		return
	}

	rc, err := hm.executor.GetReceipt(txID)
	if err != nil {
		writeError(w, statusForError(err), "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{Receipt: rc})
}

// HandleListEvents 审计日志分页
func (hm *HandlerManager) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleListEvents")
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	var from vm.EventCursor
	if s := q.Get("from_slot"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "", "invalid from_slot")
			return
		}
		from.Slot = v
	}
	if s := q.Get("from_index"); s != "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "", "invalid from_index")
			return
		}
		from.Index = uint32(v)
	}
	limit := defaultEventLimit
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "", "invalid limit")
			return
		}
		if v > maxEventLimit {
			v = maxEventLimit
		}
		limit = v
	}

	evs, next, err := hm.executor.ListEvents(from, limit)
	if err != nil {
		hm.Logger.Error("[API] list events: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: evs, NextSlot: next.Slot, NextIndex: next.Index})
}

// HandleDerive 纯计算，不要求金库存在
func (hm *HandlerManager) HandleDerive(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleDerive")
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	authority, ok := pubkeyParam(w, r, "authority")
	if !ok {
		return
	}
	addrs, err := hm.executor.DeriveAddresses(authority)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}
