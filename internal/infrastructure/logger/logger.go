// Package logger wraps zap with the process-wide logging setup: human
// readable output on stderr, plus an optional JSON log file with rotation.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*zap.SugaredLogger
}

func New(logLevel, logFile string) (*Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	// Results go to stdout; logs stay on stderr so the archive path can be
	// consumed by scripts.
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level)

	core := console
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
		core = zapcore.NewTee(
			console,
			zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileWriter, level),
		)
	}

	zl := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
	return &Logger{zl.Sugar()}, nil
}

func (l *Logger) Close() {
	_ = l.Sync()
}
