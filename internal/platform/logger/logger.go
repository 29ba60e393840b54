package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yungbote/learnqueue-backend/internal/platform/envutil"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        *redactor
}

// Options controls encoder, level and learner-id redaction.
type Options struct {
	// Mode "prod"/"production" emits JSON; "test"/"nop" discards; anything else is console.
	Mode  string
	Level zapcore.Level
	// Redact hashes user ids and masks secrets in key/value pairs.
	Redact bool
	Salt   string
}

// New reads LOG_LEVEL, LOG_REDACTION_ENABLED and LOG_HASH_SALT for the remaining options.
func New(mode string) (*Logger, error) {
	return NewWithOptions(Options{
		Mode:   mode,
		Level:  parseLevel(envutil.String("LOG_LEVEL", "")),
		Redact: envutil.Bool("LOG_REDACTION_ENABLED", false),
		Salt:   envutil.String("LOG_HASH_SALT", ""),
	})
}

func NewWithOptions(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "test", "nop":
		return &Logger{SugaredLogger: zap.NewNop().Sugar()}, nil
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(opts.Level)
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return Wrap(zl, opts), nil
}

// Wrap adopts an existing zap logger, e.g. an observer core in tests.
func Wrap(zl *zap.Logger, opts Options) *Logger {
	l := &Logger{SugaredLogger: zl.Sugar()}
	if opts.Redact {
		l.redact = &redactor{salt: opts.Salt}
	}
	return l
}

// parseLevel defaults to debug on empty or unknown input.
func parseLevel(raw string) zapcore.Level {
	lvl := zap.DebugLevel
	if raw != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return zap.DebugLevel
		}
	}
	return lvl
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, l.redact.apply(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, l.redact.apply(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, l.redact.apply(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, l.redact.apply(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, l.redact.apply(kv)...) }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.redact.apply(kv)...), redact: l.redact}
}
