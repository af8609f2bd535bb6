// Package logging builds the zap loggers used by the rowcast binaries.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jsnanigans/rowcast/internal/config"
)

// New builds a logger from cfg. JSON output uses the production encoder, otherwise a
// console encoder. verbose forces debug level.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	if !cfg.JSON {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Writer adapts a logger to an io.Writer, one Info entry per written line.
// It feeds access logs from net/http middleware into zap.
func Writer(logger *zap.Logger, msg string) io.Writer {
	return &lineWriter{logger: logger, msg: msg}
}

type lineWriter struct {
	logger *zap.Logger
	msg    string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		w.logger.Info(w.msg, zap.String("line", line))
	}
	return len(p), nil
}
