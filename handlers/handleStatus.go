package handlers

import (
	"net/http"
	"time"

	"vaultd/stats"
)

// HandleStatus 节点状态与计数
func (hm *HandlerManager) HandleStatus(w http.ResponseWriter, r *http.Request) {
	hm.Stats.RecordAPICall("HandleStatus")
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	x := hm.executor
	vaults, err := x.CountVaults()
	if err != nil {
		hm.Logger.Error("[API] count vaults: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	n, c := x.Events.Pending()
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "ok",
		ProgramID:     x.Deriver.ProgramID,
		Kinds:         x.Reg.List(),
		Vaults:        vaults,
		Uptime:        time.Since(hm.startedAt).Truncate(time.Second).String(),
		APICalls:      hm.Stats.GetAPICallStats(),
		TxOutcomes:    hm.Stats.GetTxOutcomeStats(),
		Latency:       x.Latency.Snapshot(),
		EventBuffer:   stats.NewChannelStat("events", n, c),
		DroppedEvents: x.Events.Dropped(),
	})
}
