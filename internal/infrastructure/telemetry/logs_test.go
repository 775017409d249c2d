package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProviderDisabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(context.Background()))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewZapOTELCoreDisabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "billing-backend",
		LoggerProvider: lp,
		Level:          zapcore.InfoLevel,
	})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCoreNilProvider(t *testing.T) {
	core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "billing-backend"})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewBridgedLoggerWritesToBaseCore(t *testing.T) {
	base, observed := observer.New(zapcore.InfoLevel)
	log := NewBridgedLogger(base, zapcore.NewNopCore())

	log.Info("invoice committed", zap.String("invoice_number", "INV-001"))

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "invoice committed", entries[0].Message)
}

func TestLevelFilterCore(t *testing.T) {
	base, observed := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: base, minLevel: zapcore.WarnLevel}
	log := zap.New(filtered)

	log.Info("below threshold")
	log.Warn("at threshold")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "at threshold", entries[0].Message)
}
