package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jsnanigans/rowcast/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		verbose   bool
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "Console info", cfg: config.LoggingConfig{Level: "info"}, wantLevel: zapcore.InfoLevel},
		{name: "JSON warn", cfg: config.LoggingConfig{Level: "warn", JSON: true}, wantLevel: zapcore.WarnLevel},
		{name: "Verbose wins", cfg: config.LoggingConfig{Level: "error"}, verbose: true, wantLevel: zapcore.DebugLevel},
		{name: "Bad level", cfg: config.LoggingConfig{Level: "chatty"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestWriter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := Writer(zap.New(core), "http access")

	n, err := w.Write([]byte("GET /healthz 200\nPOST /predict 200\n"))
	require.NoError(t, err)
	assert.Equal(t, 35, n)

	entries := logs.FilterMessage("http access").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "GET /healthz 200", entries[0].ContextMap()["line"])
	assert.Equal(t, "POST /predict 200", entries[1].ContextMap()["line"])
}
