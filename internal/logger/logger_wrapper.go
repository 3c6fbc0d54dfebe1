// Package logger provides the default contracts.Logger implementation,
// backed by go.uber.org/zap.
package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// ZapLogger implements contracts.Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
	level  contracts.LogLevel
}

// NewZapLogger returns a production-configured logger at InfoLevel.
func NewZapLogger() contracts.Logger {
	logger, _ := zap.NewProduction(zap.AddCallerSkip(1))
	return &ZapLogger{logger: logger, level: contracts.InfoLevel}
}

// NewDevelopmentLogger returns a console-friendly logger at DebugLevel,
// useful for the CLI and examples.
func NewDevelopmentLogger() contracts.Logger {
	logger, _ := zap.NewDevelopment(zap.AddCallerSkip(1))
	return &ZapLogger{logger: logger, level: contracts.DebugLevel}
}

// Info logs a message at the INFO level.
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level.
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level.
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level.
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the process.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	os.Exit(1)
}

// Field returns a new field builder.
func (z *ZapLogger) Field() contracts.Field {
	return &zapField{}
}

// SetLevel sets the minimum severity that gets logged.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level = level
}

// SetDestination redirects output. FileLog rebuilds the logger with the
// given path as its only sink; ConsoleLog restores the default.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	cfg := zap.NewProductionConfig()
	if dest == contracts.FileLog && len(filePath) > 0 {
		cfg.OutputPaths = []string{filePath[0]}
		cfg.ErrorOutputPaths = []string{filePath[0]}
	}
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z.logger.Error("failed to switch log destination", zap.Error(err))
		return
	}
	z.logger = logger
}

var levelOrder = map[contracts.LogLevel]int{
	contracts.DebugLevel: 0,
	contracts.InfoLevel:  1,
	contracts.WarnLevel:  2,
	contracts.ErrorLevel: 3,
	contracts.FatalLevel: 4,
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if levelOrder[z.level] > levelForZap(level) {
		return
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(*zapField); ok {
			zapFields = append(zapFields, zap.Any(f.key, f.value))
		}
	}

	switch level {
	case zapcore.InfoLevel:
		z.logger.Info(msg, zapFields...)
	case zapcore.ErrorLevel:
		z.logger.Error(msg, zapFields...)
	case zapcore.DebugLevel:
		z.logger.Debug(msg, zapFields...)
	case zapcore.WarnLevel:
		z.logger.Warn(msg, zapFields...)
	case zapcore.FatalLevel:
		z.logger.Fatal(msg, zapFields...)
	}
}

func levelForZap(level zapcore.Level) int {
	switch level {
	case zapcore.DebugLevel:
		return 0
	case zapcore.InfoLevel:
		return 1
	case zapcore.WarnLevel:
		return 2
	case zapcore.ErrorLevel:
		return 3
	default:
		return 4
	}
}

// zapField implements contracts.Field by capturing the last key/value set.
type zapField struct {
	key   string
	value interface{}
}

func (f *zapField) Bool(key string, val bool) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int(key string, val int) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Float64(key string, val float64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) String(key string, val string) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Time(key string, val time.Time) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int64(key string, val int64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Error(key string, val error) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint64(key string, val uint64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint8(key string, val uint8) contracts.Field {
	return &zapField{key, val}
}
