package gate

import (
	"bytes"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-ci/stagehand/internal/config"
	"github.com/stagehand-ci/stagehand/internal/gate/finitestate"
	"github.com/stagehand-ci/stagehand/internal/testutil"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.Default()
}

// gateConfig returns a validated config with an ephemeral gate address.
func gateConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Gate.Listen = testutil.GetRandomAddr(t)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		run, err := NewRun(gateConfig(t), slog.Default().Handler())
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, finitestate.StatePending, run.GetState())
		assert.False(t, run.Passed())
		assert.Empty(t, run.Results())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewRun(nil, slog.Default().Handler())
		require.Error(t, err)
	})

	t.Run("distinct run identity", func(t *testing.T) {
		cfg := gateConfig(t)
		run1, err := NewRun(cfg, slog.Default().Handler())
		require.NoError(t, err)
		run2, err := NewRun(cfg, slog.Default().Handler())
		require.NoError(t, err)
		assert.NotEqual(t, run1.ID, run2.ID)
	})
}

func TestRunExecutePass(t *testing.T) {
	run, err := NewRun(gateConfig(t), slog.Default().Handler())
	require.NoError(t, err)

	require.NoError(t, run.Execute(t.Context()))

	assert.Equal(t, finitestate.StatePass, run.GetState())
	assert.True(t, run.Passed())

	results := run.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "logic", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "integration", results[1].Name)
	assert.NoError(t, results[1].Err)
}

func TestRunExecuteLogicFailure(t *testing.T) {
	cfg := gateConfig(t)
	run, err := NewRun(cfg, slog.Default().Handler(),
		WithAdditionCases([]AdditionCase{{A: 1, B: 1, Want: 3}}))
	require.NoError(t, err)

	err = run.Execute(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLogicCheck)
	assert.Equal(t, finitestate.StateLogicFail, run.GetState())
	assert.False(t, run.Passed())

	// The integration check never ran and never touched the port.
	results := run.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "logic", results[0].Name)

	listener, err := net.Listen("tcp", cfg.Gate.Listen)
	require.NoError(t, err, "gate port must be untouched after a logic failure")
	require.NoError(t, listener.Close())
}

func TestRunExecuteIntegrationFailure(t *testing.T) {
	cfg := gateConfig(t)

	// Occupy the gate port so the integration bind fails.
	listener, err := net.Listen("tcp", cfg.Gate.Listen)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, listener.Close())
	}()

	run, err := NewRun(cfg, slog.Default().Handler())
	require.NoError(t, err)

	err = run.Execute(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIntegrationCheck)
	assert.Equal(t, finitestate.StateIntegrationFail, run.GetState())
	assert.False(t, run.Passed())

	results := run.Results()
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
}

func TestRunPlayLogs(t *testing.T) {
	run, err := NewRun(gateConfig(t), slog.Default().Handler())
	require.NoError(t, err)
	require.NoError(t, run.Execute(t.Context()))

	var buf bytes.Buffer
	require.NoError(t, run.PlayLogs(slog.NewTextHandler(&buf, nil)))

	history := buf.String()
	assert.Contains(t, history, "Gate run created")
	assert.Contains(t, history, "Logic check passed")
	assert.Contains(t, history, "Integration check passed")
}
