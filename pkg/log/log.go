// Package log provides the structured logger used by the facade and the
// command line tool. Scheme packages do not log.
package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct {
	*zap.SugaredLogger
}

// Logger logs key/value pairs at different levels.
type Logger interface {
	Info(keyvals ...interface{})
	Debug(keyvals ...interface{})
	Warn(keyvals ...interface{})
	Error(keyvals ...interface{})
	Fatal(keyvals ...interface{})
	Infow(msg string, keyvals ...interface{})
	Debugw(msg string, keyvals ...interface{})
	Warnw(msg string, keyvals ...interface{})
	Errorw(msg string, keyvals ...interface{})
	Fatalw(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(s string) Logger
	AddCallerSkip(skip int) Logger
}

func (l *logger) AddCallerSkip(skip int) Logger {
	return &logger{l.WithOptions(zap.AddCallerSkip(skip))}
}

func (l *logger) With(args ...interface{}) Logger {
	return &logger{l.SugaredLogger.With(args...)}
}

func (l *logger) Named(s string) Logger {
	return &logger{l.SugaredLogger.Named(s)}
}

const (
	DebugLevel = int(zapcore.DebugLevel)
	InfoLevel  = int(zapcore.InfoLevel)
	WarnLevel  = int(zapcore.WarnLevel)
	ErrorLevel = int(zapcore.ErrorLevel)
	FatalLevel = int(zapcore.FatalLevel)
)

// EnvTestLogs raises the default level to debug when set to DEBUG.
const EnvTestLogs = "PQGO_TEST_LOGS"

// DefaultLevel is the level of the default logger. Change it before the
// first call to DefaultLogger.
var DefaultLevel = InfoLevel

func init() {
	if v, ok := os.LookupEnv(EnvTestLogs); ok && v == "DEBUG" {
		DefaultLevel = DebugLevel
	}
}

var defaultOnce sync.Once

// DefaultLogger returns the process-wide logger writing JSON to stderr at
// DefaultLevel.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		zap.ReplaceGlobals(newZapLogger(nil, jsonEncoder(), DefaultLevel))
	})
	return &logger{zap.S()}
}

// New returns a logger writing to output (stderr when nil) at level.
func New(output zapcore.WriteSyncer, level int, isJSON bool) Logger {
	enc := consoleEncoder()
	if isJSON {
		enc = jsonEncoder()
	}
	return &logger{newZapLogger(output, enc, level).Sugar()}
}

// ParseLevel maps a level name such as "debug" or "WARN" to its value.
func ParseLevel(name string) (int, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, err
	}
	return int(l), nil
}

func newZapLogger(output zapcore.WriteSyncer, enc zapcore.Encoder, level int) *zap.Logger {
	if output == nil {
		output = zapcore.Lock(os.Stderr)
	}
	core := zapcore.NewCore(enc, output, zapcore.Level(level))
	return zap.New(core, zap.WithCaller(true))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func jsonEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(encoderConfig())
}

func consoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(encoderConfig())
}

type ctxKey struct{}

// ToContext returns a copy of ctx carrying l.
func ToContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContextOrDefault returns the logger stored in ctx, or the default
// logger when there is none.
func FromContextOrDefault(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return DefaultLogger()
}
