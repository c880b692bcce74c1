// Package logging builds the zap logger used for diagnostics.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// atomicLevel is the level shared by every core the logger was built with.
var atomicLevel = zap.NewAtomicLevelAt(zapcore.WarnLevel)

// Build sets up the global logger. Diagnostics go to stderr so they never
// mix with command output on stdout. encoding is "console" or "json".
func Build(level, encoding string) (*zap.Logger, error) {
	return BuildTo(os.Stderr, level, encoding)
}

// BuildTo is Build with an explicit sink.
func BuildTo(w io.Writer, level, encoding string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	atomicLevel.SetLevel(lvl)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), atomicLevel)
	logger := zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// SetLevel changes the level of the built logger.
func SetLevel(level string) error {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}
	atomicLevel.SetLevel(l)
	return nil
}
