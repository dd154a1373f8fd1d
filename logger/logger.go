package logger

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr: a colored console encoding when
// stderr is a terminal, JSON otherwise.
func New(debug bool) *zap.Logger {
	return zap.New(newCore(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), debug))
}

func newCore(out zapcore.WriteSyncer, terminal bool, debug bool) zapcore.Core {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if terminal {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zapcore.NewCore(encoder, zapcore.Lock(out), level)
}
