package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"vaultd/config"
	"vaultd/logs"
)

func main() {
	// 1. 解析命令行参数
	var (
		configFile = flag.String("config", "", "config file path (yaml)")
		dataPath   = flag.String("data", "", "database directory, overrides database.path")
		listenAddr = flag.String("listen", "", "HTTP/3 listen address, overrides server.listen_addr")
	)
	flag.Parse()

	// 2. 加载配置
	cfg, err := loadConfig(*configFile, *dataPath, *listenAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// 3. 日志
	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log level: %v\n", err)
		os.Exit(1)
	}
	if err := logs.Init(level, logs.Environment(cfg.Log.Environment)); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logs.Sync()

	// 4. 启动节点
	node, err := startNode(cfg)
	if err != nil {
		logs.Error("Failed to start node: %v", err)
		os.Exit(1)
	}

	waitForShutdown(node)
}

// loadConfig 默认值 <- 配置文件 <- 命令行
func loadConfig(configFile, dataPath, listenAddr string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dataPath != "" {
		cfg.Database.Path = dataPath
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	if cfg.Server.CertFile == "" {
		cfg.Server.CertFile = filepath.Join(cfg.Database.Path, "tls", "server.crt")
	}
	if cfg.Server.KeyFile == "" {
		cfg.Server.KeyFile = filepath.Join(cfg.Database.Path, "tls", "server.key")
	}
	return cfg, cfg.Validate()
}

// waitForShutdown 等待关闭信号
func waitForShutdown(node *Node) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logs.Info("Received signal: %v, shutting down...", sig)
	case err := <-node.errCh:
		logs.Error("HTTP/3 server stopped: %v", err)
	}
	node.Stop()
}
