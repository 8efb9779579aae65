package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Options selects and configures a Logger implementation.
type Options struct {
	Backend string // "slog" (default) or "zap"
	Level   string // debug, info, warn, error
	JSON    bool
	// File, when set, receives the log output instead of Output.
	File   string
	Output io.Writer
}

// New builds a Logger from opts. The returned close function flushes and
// releases the log destination and is always safe to call.
func New(opts Options) (Logger, func() error, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	closeFn := func() error { return nil }

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendSlog:
		return NewSlogHandlerLogger(out, opts.Level, opts.JSON), closeFn, nil

	case BackendZap:
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if opts.JSON {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(out), zapLevel(opts.Level))
		zl := NewZapLogger(zap.New(core))
		fileClose := closeFn
		return zl, func() error {
			_ = zl.Sync()
			return fileClose()
		}, nil

	default:
		return nil, closeFn, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func zapLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
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

var _ Logger = (*SlogLogger)(nil)
var _ Logger = (*ZapLogger)(nil)
