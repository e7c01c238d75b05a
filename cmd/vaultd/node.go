package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"vaultd/config"
	"vaultd/crt"
	"vaultd/db"
	"vaultd/handlers"
	"vaultd/logs"
	"vaultd/middleware"
	"vaultd/types"
	"vaultd/vm"
)

// Node 一个 vaultd 进程持有的全部组件
type Node struct {
	Config         *config.Config
	DBManager      *db.Manager
	Executor       *vm.Executor
	HandlerManager *handlers.HandlerManager
	HTTP3Server    *http3.Server

	errCh    chan error
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func startNode(cfg *config.Config) (*Node, error) {
	node := &Node{
		Config: cfg,
		errCh:  make(chan error, 1),
		quit:   make(chan struct{}),
	}
	level := logs.GetLevel()

	// 存储
	mgr, err := db.NewManagerWithConfig(cfg.Database.Path, logs.NewNodeLogger("db", level), cfg)
	if err != nil {
		return nil, err
	}
	node.DBManager = mgr

	applied, err := mgr.ApplyGenesis(cfg.Genesis)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	if applied {
		logs.Info("Genesis applied: %d funded accounts", len(cfg.Genesis.Accounts))
	}

	// 执行器
	x, err := vm.NewExecutor(mgr, nil, cfg, logs.NewNodeLogger("vm", level))
	if err != nil {
		mgr.Close()
		return nil, err
	}
	node.Executor = x
	logs.Info("Vault program %s, handlers %v", x.Deriver.ProgramID, x.Reg.List())

	node.startEventLogger()

	// HTTP/3
	node.HandlerManager = handlers.NewHandlerManager(x, cfg, logs.NewNodeLogger("api", level))
	if err := node.startHTTP3(); err != nil {
		node.Stop()
		return nil, err
	}
	return node, nil
}

// startEventLogger 把已提交的审计事件写进日志
func (n *Node) startEventLogger() {
	ch := make(chan types.VaultEvent, 256)
	sub := n.Executor.Events.Subscribe(ch)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer sub.Unsubscribe()
		for {
			select {
			case ev := <-ch:
				logs.Info("[event] %s slot=%d vault=%s actor=%s amount=%d locked=%v tx=%s",
					ev.Type, ev.Slot, ev.Vault, ev.Actor, ev.Amount, ev.Locked, ev.TxID)
			case err := <-sub.Err():
				if err != nil {
					logs.Warn("[event] subscription closed: %v", err)
				}
				return
			case <-n.quit:
				return
			}
		}
	}()
}

func (n *Node) startHTTP3() error {
	sc := n.Config.Server
	cert, err := crt.LoadOrCreate(sc.CertFile, sc.KeyFile, "vaultd", time.Duration(sc.CertValidityDays)*24*time.Hour)
	if err != nil {
		return err
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		MaxVersion:   tls.VersionTLS13,
		NextProtos:   []string{http3.NextProtoH3},
	}
	quicConfig := &quic.Config{
		KeepAlivePeriod: sc.QUICKeepAlivePeriod,
		MaxIdleTimeout:  sc.QUICMaxIdleTimeout,
	}

	mux := http.NewServeMux()
	n.HandlerManager.RegisterRoutes(mux)

	// 应用中间件
	limiter, err := middleware.NewRateLimiter(sc.RateLimit, sc.RateLimitWindow, sc.RateLimitIPs)
	if err != nil {
		return err
	}
	handler := middleware.LogRequests(n.HandlerManager.Logger, limiter.RateLimit(mux))

	n.HTTP3Server = &http3.Server{
		Addr:       sc.ListenAddr,
		Handler:    handler,
		TLSConfig:  tlsConfig,
		QUICConfig: quicConfig,
	}

	// 先建监听器，端口占用等错误同步返回
	listener, err := quic.ListenAddr(sc.ListenAddr, tlsConfig, quicConfig)
	if err != nil {
		return fmt.Errorf("failed to create QUIC listener: %w", err)
	}
	logs.Info("Starting HTTP/3 server on %s", sc.ListenAddr)

	go func() {
		if err := n.HTTP3Server.ServeListener(listener); err != nil && !isServerClosedErr(err) {
			n.errCh <- err
		}
	}()
	return nil
}

func isServerClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, http.ErrServerClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "use of closed network connection")
}

// Stop 依次关闭 HTTP/3、事件订阅、执行器、存储
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		if n.HTTP3Server != nil {
			if err := n.HTTP3Server.Close(); err != nil {
				logs.Warn("close HTTP/3 server: %v", err)
			}
		}
		close(n.quit)
		n.wg.Wait()
		if n.Executor != nil {
			n.Executor.Close()
		}
		if n.DBManager != nil {
			n.DBManager.Close()
		}
		logs.Info("Node stopped")
	})
}
