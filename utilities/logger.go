package utilities

import (
	"time"

	"go.uber.org/zap"
)

var (
	logger = zap.NewNop()
	sugar  = logger.Sugar()
)

// InitLogger configures the process logger. local and dev get a console logger
// at debug level, everything else gets production JSON.
func InitLogger(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "local", "dev":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger replaces the process logger.
func SetLogger(l *zap.Logger) {
	logger = l
	sugar = l.Sugar()
}

// Logger returns the process logger.
func Logger() *zap.Logger {
	return logger
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}

// LogRequest logs a completed HTTP request.
func LogRequest(method, path, remoteAddr string, status int, duration time.Duration) {
	logger.Info("http request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("remote_addr", remoteAddr),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
}

// LogError logs err with a short description of what was being done.
func LogError(err error, context string) {
	logger.WithOptions(zap.AddCallerSkip(1)).Error(context, zap.Error(err))
}

func LogWarn(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

func LogDebug(format string, v ...interface{}) {
	sugar.Debugf(format, v...)
}

func LogInfo(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}
