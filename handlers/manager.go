package handlers

import (
	"net/http"
	"time"

	"vaultd/config"
	"vaultd/logs"
	"vaultd/stats"
	"vaultd/vm"
)

// HandlerManager 管理所有HTTP处理器及其依赖
type HandlerManager struct {
	executor *vm.Executor
	// 统计相关字段
	Stats  *stats.Stats
	Logger logs.Logger

	maxBody   int64
	startedAt time.Time
}

// NewHandlerManager 创建新的处理器管理器
func NewHandlerManager(x *vm.Executor, cfg *config.Config, logger logs.Logger) *HandlerManager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logs.NewNopLogger()
	}
	return &HandlerManager{
		executor:  x,
		Stats:     stats.NewStats(),
		Logger:    logger,
		maxBody:   cfg.Server.MaxRequestBodySize,
		startedAt: time.Now(),
	}
}

// RegisterRoutes 注册所有路由
func (hm *HandlerManager) RegisterRoutes(mux *http.ServeMux) {
	// 交易
	mux.HandleFunc("/tx", hm.HandleTx)
	// 查询
	mux.HandleFunc("/vault", hm.HandleGetVault)
	mux.HandleFunc("/account", hm.HandleGetAccount)
	mux.HandleFunc("/receipt", hm.HandleGetReceipt)
	mux.HandleFunc("/events", hm.HandleListEvents)
	mux.HandleFunc("/derive", hm.HandleDerive)
	mux.HandleFunc("/status", hm.HandleStatus)
}

// Handler 返回挂好全部路由的 mux
func (hm *HandlerManager) Handler() http.Handler {
	mux := http.NewServeMux()
	hm.RegisterRoutes(mux)
	return mux
}
