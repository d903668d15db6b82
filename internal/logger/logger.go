package logger

import (
	"os"
	"strings"

	"github.com/samvad-hq/samvad-news-digest/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one message with a single structured object field.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

var (
	base *zap.Logger
	std  Logger = &NopLogger{}
)

// Init builds the JSON process logger on stdout and makes it the target of
// the package-level helpers.
func Init(cfg *config.Config) (Logger, error) {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stdout), parseLevel(cfg.LogLevel))
	base = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.AppName), zap.String("env", cfg.Env))

	l := NewZapLogger(base)
	std = l
	return l, nil
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes the process logger. It is a no-op before Init.
func Close() error {
	if base == nil {
		return nil
	}
	return base.Sync()
}

// ZapLogger implements Logger on top of a zap.Logger.
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger wraps l, reporting the caller of the Logger method.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

func (z *ZapLogger) InfoObj(msg, key string, obj interface{})  { z.l.Info(msg, zap.Any(key, obj)) }
func (z *ZapLogger) DebugObj(msg, key string, obj interface{}) { z.l.Debug(msg, zap.Any(key, obj)) }
func (z *ZapLogger) WarnObj(msg, key string, obj interface{})  { z.l.Warn(msg, zap.Any(key, obj)) }
func (z *ZapLogger) ErrorObj(msg, key string, obj interface{}) { z.l.Error(msg, zap.Any(key, obj)) }

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

// Process-wide helpers for code without an injected Logger, such as main.
// They discard output until Init.

func InfoObj(msg, key string, obj interface{})  { std.InfoObj(msg, key, obj) }
func DebugObj(msg, key string, obj interface{}) { std.DebugObj(msg, key, obj) }
func WarnObj(msg, key string, obj interface{})  { std.WarnObj(msg, key, obj) }
func ErrorObj(msg, key string, obj interface{}) { std.ErrorObj(msg, key, obj) }
