package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"vaultd/types"
	"vaultd/vm"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// statusForError 执行前被拒绝的交易错误 -> HTTP 状态
func statusForError(err error) int {
	switch {
	case errors.Is(err, vm.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, vm.ErrDuplicateTx):
		return http.StatusConflict
	case errors.Is(err, vm.ErrUnknownKind), errors.Is(err, vm.ErrInvalidTx), errors.Is(err, vm.ErrNilTx):
		return http.StatusBadRequest
	case errors.Is(err, vm.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return false
	}
	return true
}

// pubkeyParam 读取 base58 公钥查询参数，失败时已写好 400
func pubkeyParam(w http.ResponseWriter, r *http.Request, name string) (types.Pubkey, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "", "missing "+name)
		return types.Pubkey{}, false
	}
	pk, err := types.ParsePubkey(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", name+": "+err.Error())
		return types.Pubkey{}, false
	}
	return pk, true
}
