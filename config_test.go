package wat

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/go-wat/wat/internal/logging"
	"github.com/go-wat/wat/internal/wasm"
)

func TestNewRuntimeConfig_Defaults(t *testing.T) {
	cfg := NewRuntimeConfig()
	require.Equal(t, 4096, cfg.stackCapacity)
	require.False(t, cfg.logger().Enabled(logging.ScopeAll))
	require.Equal(t, uint32(0), cfg.memoryMaxPages)
	require.Equal(t, wasm.FeatureAll, cfg.features)
}

func TestRuntimeConfig_WithMemoryMaxPages_DoesNotMutateReceiver(t *testing.T) {
	base := NewRuntimeConfig()
	derived := base.WithMemoryMaxPages(4)

	require.Equal(t, uint32(0), base.memoryMaxPages)
	require.Equal(t, uint32(4), derived.memoryMaxPages)
}

func TestRuntimeConfig_WithFeatures_DoesNotMutateReceiver(t *testing.T) {
	base := NewRuntimeConfig()
	derived := base.WithFeatures(wasm.FeatureNone)

	require.Equal(t, wasm.FeatureAll, base.features)
	require.Equal(t, wasm.FeatureNone, derived.features)
}

func TestRuntimeConfig_WithStackCapacity_DoesNotMutateReceiver(t *testing.T) {
	base := NewRuntimeConfig()
	derived := base.WithStackCapacity(16)

	require.Equal(t, 4096, base.stackCapacity)
	require.Equal(t, 16, derived.stackCapacity)
}

func TestRuntimeConfig_WithLogger_EnablesScopedLogging(t *testing.T) {
	cfg := NewRuntimeConfig().WithLogger(zap.NewNop(), logging.ScopeInterpreter)
	log := cfg.logger()

	require.True(t, log.Enabled(logging.ScopeInterpreter))
	require.False(t, log.Enabled(logging.ScopeParser))
}
