// Package logger wraps zap behind a package-level singleton so every part of
// the service logs through the same configured core.
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where and how verbosely the service logs.
type Config struct {
	LogFile   string // Path of the log file; empty disables file output
	LogLevel  string // debug, info, warn or error
	AppName   string // Added to every entry as the "app" field
	AddCaller bool   // Whether entries carry the calling location
}

// Logger is the application logger. It embeds zap.Logger, so all zap field
// helpers work directly.
type Logger struct {
	*zap.Logger
}

var (
	global *Logger
	mu     sync.RWMutex
)

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init builds the global logger from the config. It must be called once
// before Get.
func Init(cfg Config) error {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := parseLevel(cfg.LogLevel)

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			level,
		),
	}

	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("error open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(file),
			level,
		))
	}

	opts := []zap.Option{zap.Fields(zap.String("app", cfg.AppName))}
	if cfg.AddCaller {
		opts = append(opts, zap.AddCaller())
	}

	mu.Lock()
	global = &Logger{zap.New(zapcore.NewTee(cores...), opts...)}
	mu.Unlock()

	return nil
}

// Get returns the global logger. It panics when Init was never called:
// logging before initialization is a wiring bug, not a runtime condition.
func Get() *Logger {
	mu.RLock()
	defer mu.RUnlock()

	if global == nil {
		panic("logger: Get called before Init")
	}
	return global
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()

	if global != nil {
		_ = global.Logger.Sync()
	}
}
