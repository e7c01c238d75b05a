// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"vaultd/logs"
	"vaultd/pda"
	"vaultd/types"
)

// Config 主配置结构
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Executor ExecutorConfig `yaml:"executor"`
	Vault    VaultConfig    `yaml:"vault"`
	Log      LogConfig      `yaml:"log"`
	Genesis  GenesisConfig  `yaml:"genesis"`
}

// ServerConfig HTTP/3服务器配置
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"` // ":8443"

	// 证书配置，文件不存在时自动生成自签名证书
	CertFile         string `yaml:"cert_file"`
	KeyFile          string `yaml:"key_file"`
	CertValidityDays int    `yaml:"cert_validity_days"` // 365

	// QUIC配置
	QUICKeepAlivePeriod time.Duration `yaml:"quic_keep_alive_period"` // 10s
	QUICMaxIdleTimeout  time.Duration `yaml:"quic_max_idle_timeout"`  // 5m

	// HTTP配置
	HTTPTimeout        time.Duration `yaml:"http_timeout"`          // 30s
	MaxRequestBodySize int64         `yaml:"max_request_body_size"` // 1MB

	// 限流：每个 IP 每个窗口的请求上限，0 表示不限
	RateLimit       int           `yaml:"rate_limit"`        // 200
	RateLimitWindow time.Duration `yaml:"rate_limit_window"` // 1s
	RateLimitIPs    int           `yaml:"rate_limit_ips"`    // 跟踪的 IP 数上限
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path              string `yaml:"path"`
	InMemory          bool   `yaml:"in_memory"`
	ValueLogFileSize  int64  `yaml:"value_log_file_size"` // 64MB
	SequenceBandwidth uint64 `yaml:"sequence_bandwidth"`  // 1000
}

// ExecutorConfig 执行器配置
type ExecutorConfig struct {
	LockStripes        int           `yaml:"lock_stripes"`          // 账户锁分片数
	LockTimeout        time.Duration `yaml:"lock_timeout"`          // 单笔交易等锁上限
	AppliedTxCacheSize int           `yaml:"applied_tx_cache_size"` // 已执行交易 LRU
	EventBufferSize    int           `yaml:"event_buffer_size"`     // 事件总线缓冲
}

// VaultConfig 程序 ID 与两个命名空间种子
type VaultConfig struct {
	ProgramID   string `yaml:"program_id"` // base58，空则用内置默认
	StateSeed   string `yaml:"state_seed"`
	HoldingSeed string `yaml:"holding_seed"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"` // production / development
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:          ":8443",
			CertValidityDays:    365,
			QUICKeepAlivePeriod: 10 * time.Second,
			QUICMaxIdleTimeout:  5 * time.Minute,
			HTTPTimeout:         30 * time.Second,
			MaxRequestBodySize:  1 << 20,
			RateLimit:           200,
			RateLimitWindow:     time.Second,
			RateLimitIPs:        10000,
		},
		Database: DatabaseConfig{
			Path:              "data/vaultd",
			ValueLogFileSize:  64 << 20,
			SequenceBandwidth: 1000,
		},
		Executor: ExecutorConfig{
			LockStripes:        256,
			LockTimeout:        5 * time.Second,
			AppliedTxCacheSize: 100000,
			EventBufferSize:    1024,
		},
		Vault: VaultConfig{
			StateSeed:   pda.DefaultStateSeed,
			HoldingSeed: pda.DefaultHoldingSeed,
		},
		Log: LogConfig{
			Level:       "info",
			Environment: string(logs.EnvironmentProduction),
		},
	}
}

// LoadFromFile 读取 YAML，未出现的字段保留默认值
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证配置合法性
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr is required")
	}
	if c.Server.MaxRequestBodySize <= 0 {
		return errors.New("server.max_request_body_size must be positive")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && (c.Server.RateLimitWindow <= 0 || c.Server.RateLimitIPs <= 0) {
		return errors.New("server.rate_limit_window and server.rate_limit_ips must be positive when rate limiting")
	}
	if !c.Database.InMemory && c.Database.Path == "" {
		return errors.New("database.path is required unless in_memory")
	}
	if c.Database.SequenceBandwidth == 0 {
		return errors.New("database.sequence_bandwidth must be positive")
	}
	if c.Executor.LockStripes <= 0 {
		return errors.New("executor.lock_stripes must be positive")
	}
	if c.Executor.AppliedTxCacheSize <= 0 {
		return errors.New("executor.applied_tx_cache_size must be positive")
	}
	if c.Executor.EventBufferSize <= 0 {
		return errors.New("executor.event_buffer_size must be positive")
	}
	if _, err := c.Vault.Deriver(); err != nil {
		return fmt.Errorf("vault: %w", err)
	}
	if _, err := logs.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch logs.Environment(c.Log.Environment) {
	case logs.EnvironmentProduction, logs.EnvironmentDevelopment:
	default:
		return fmt.Errorf("invalid log.environment %q", c.Log.Environment)
	}
	return c.Genesis.Validate()
}

// ProgramPubkey 解析程序 ID
func (v VaultConfig) ProgramPubkey() (types.Pubkey, error) {
	if v.ProgramID == "" {
		return pda.DefaultProgramID, nil
	}
	return types.ParsePubkey(v.ProgramID)
}

// Deriver 由配置构造地址派生器
func (v VaultConfig) Deriver() (*pda.Deriver, error) {
	pid, err := v.ProgramPubkey()
	if err != nil {
		return nil, err
	}
	return pda.NewDeriver(pid, v.StateSeed, v.HoldingSeed)
}
