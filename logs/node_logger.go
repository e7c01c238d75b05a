package logs

import "go.uber.org/zap"

// nodeLogger 带组件名和独立级别的 Logger
type nodeLogger struct {
	name  string
	level int
}

// NewNodeLogger 创建一个带名字的 Logger，level 低于全局级别时以自身为准
func NewNodeLogger(name string, level int) Logger {
	return &nodeLogger{name: name, level: level}
}

// NewNopLogger 测试用，丢弃所有输出
func NewNopLogger() Logger {
	return &nodeLogger{name: "nop", level: LevelError + 1}
}

func (l *nodeLogger) Level() int { return l.level }

func (l *nodeLogger) ok(level int) bool {
	return level >= l.level && level <= LevelError
}

func (l *nodeLogger) with() *zap.SugaredLogger {
	return sugar().With("component", l.name)
}

func (l *nodeLogger) Trace(format string, v ...interface{}) {
	if l.ok(LevelTrace) && enabled(LevelTrace) {
		l.with().Debugf("[TRACE] "+format, v...)
	}
}

func (l *nodeLogger) Debug(format string, v ...interface{}) {
	if l.ok(LevelDebug) && enabled(LevelDebug) {
		l.with().Debugf(format, v...)
	}
}

func (l *nodeLogger) Verbose(format string, v ...interface{}) {
	if l.ok(LevelVerbose) && enabled(LevelVerbose) {
		l.with().Debugf("[VERBOSE] "+format, v...)
	}
}

func (l *nodeLogger) Info(format string, v ...interface{}) {
	if l.ok(LevelInfo) && enabled(LevelInfo) {
		l.with().Infof(format, v...)
	}
}

func (l *nodeLogger) Warn(format string, v ...interface{}) {
	if l.ok(LevelWarning) && enabled(LevelWarning) {
		l.with().Warnf(format, v...)
	}
}

func (l *nodeLogger) Error(format string, v ...interface{}) {
	if l.ok(LevelError) && enabled(LevelError) {
		l.with().Errorf(format, v...)
	}
}
