package logs

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 定义日志级别常量（数值越大，级别越高）
const (
	LevelTrace   = iota // 0（最低，最详细）
	LevelDebug          // 1
	LevelVerbose        // 2
	LevelInfo           // 3
	LevelWarning        // 4
	LevelError          // 5（最高，最严重）
)

// Environment 决定 zap 的基础配置
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

// Logger 注入到长生命周期组件（db / vm / handlers）里的日志接口
type Logger interface {
	Trace(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Verbose(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Level() int
}

var (
	mu        sync.RWMutex
	logLevel  = LevelInfo
	atomicLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base      *zap.SugaredLogger
)

func init() {
	base = mustBuild(EnvironmentProduction, atomicLvl)
}

// Init 根据环境重建全局 logger，level 为本包的级别常量
func Init(level int, env Environment) error {
	if level < LevelTrace || level > LevelError {
		return fmt.Errorf("invalid log level %d", level)
	}
	lvl := zap.NewAtomicLevelAt(toZapLevel(level))
	built, err := build(env, lvl)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	_ = base.Sync()
	base = built
	atomicLvl = lvl
	logLevel = level
	return nil
}

// SetLevel 运行时调整全局级别
func SetLevel(level int) {
	mu.Lock()
	defer mu.Unlock()
	logLevel = level
	atomicLvl.SetLevel(toZapLevel(level))
}

// GetLevel 当前全局级别
func GetLevel() int {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel
}

// ParseLevel 把配置里的字符串转成级别常量
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "verbose":
		return LevelVerbose, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Sync 刷新缓冲
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}

func sugar() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func enabled(level int) bool {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel <= level
}

// zap 没有 trace / verbose，这两个级别映射到 debug，由本包自己的阈值过滤
func toZapLevel(level int) zapcore.Level {
	switch {
	case level <= LevelVerbose:
		return zapcore.DebugLevel
	case level == LevelInfo:
		return zapcore.InfoLevel
	case level == LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func build(env Environment, lvl zap.AtomicLevel) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if env == EnvironmentDevelopment {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	}
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

func mustBuild(env Environment, lvl zap.AtomicLevel) *zap.SugaredLogger {
	l, err := build(env, lvl)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l
}

// 包级别的日志方法
func Trace(format string, v ...interface{}) {
	if enabled(LevelTrace) {
		sugar().Debugf("[TRACE] "+format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		sugar().Debugf(format, v...)
	}
}

func Verbose(format string, v ...interface{}) {
	if enabled(LevelVerbose) {
		sugar().Debugf("[VERBOSE] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		sugar().Infof(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if enabled(LevelWarning) {
		sugar().Warnf(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if enabled(LevelError) {
		sugar().Errorf(format, v...)
	}
}
