//go:build e2e
// +build e2e

package gate

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-ci/stagehand/examples"
	"github.com/stagehand-ci/stagehand/internal/config"
	"github.com/stagehand-ci/stagehand/internal/gate"
	"github.com/stagehand-ci/stagehand/internal/testutil"
)

// TestResponderServesFallback covers the fresh-deployment case: no message in
// the environment, so the responder serves the fixed fallback body.
func TestResponderServesFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	// An empty variable behaves the same as an unset one.
	t.Setenv(config.MessageEnvVar, "")

	cfg := config.Default()
	cfg.Responder.Listen = testutil.GetRandomAddr(t)
	cfg.Gate.Listen = testutil.GetRandomAddr(t)
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup, err := runResponder(t, ctx, cfg)
	require.NoError(t, err, "Failed to start responder")
	defer cleanup()

	url := "http://" + cfg.Responder.Listen + "/"
	require.True(t, waitForHTTPEndpoint(t, url, 5*time.Second, 100*time.Millisecond))

	assert.Equal(t, config.DefaultMessage, getBody(t, url))
}

// TestResponderServesEnvMessage covers the configured-deployment case: the
// environment variable wins over the config file's fallback.
func TestResponderServesEnvMessage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	t.Setenv(config.MessageEnvVar, "Hello from STAGING!")

	data, err := examples.Configs.ReadFile("config/staging.toml")
	require.NoError(t, err, "Failed to read example config")

	cfg, err := config.NewConfigFromBytes(data)
	require.NoError(t, err)

	// The example binds fixed ports; rebind to ephemeral ones for the test.
	cfg.Responder.Listen = testutil.GetRandomAddr(t)
	cfg.Gate.Listen = testutil.GetRandomAddr(t)
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup, err := runResponder(t, ctx, cfg)
	require.NoError(t, err, "Failed to start responder")
	defer cleanup()

	url := "http://" + cfg.Responder.Listen + "/"
	require.True(t, waitForHTTPEndpoint(t, url, 5*time.Second, 100*time.Millisecond))

	assert.Equal(t, "Hello from STAGING!", getBody(t, url))
}

// TestPromotionGatePasses runs the full gate sequence end to end and verifies
// the pass verdict that promotion keys off.
func TestPromotionGatePasses(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	t.Setenv(config.MessageEnvVar, "Hello from STAGING!")

	cfg := config.Default()
	cfg.Gate.Listen = testutil.GetRandomAddr(t)
	require.NoError(t, cfg.Validate())

	run, err := gate.NewRun(cfg, slog.Default().Handler())
	require.NoError(t, err)

	require.NoError(t, run.Execute(context.Background()))
	assert.True(t, run.Passed())
	assert.Len(t, run.Results(), 2)

	// The gate port must be free again once the run completes.
	cleanupCfg := config.Default()
	cleanupCfg.Responder.Listen = cfg.Gate.Listen
	cleanupCfg.Gate.Listen = testutil.GetRandomAddr(t)
	require.NoError(t, cleanupCfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup, err := runResponder(t, ctx, cleanupCfg)
	require.NoError(t, err, "Gate port was not released after the run")
	cleanup()
}

// TestPromotionGateBlocksOnLogicFailure verifies a failing logic check stops
// the run before the integration check touches the network.
func TestPromotionGateBlocksOnLogicFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	cfg := config.Default()
	cfg.Gate.Listen = testutil.GetRandomAddr(t)
	require.NoError(t, cfg.Validate())

	run, err := gate.NewRun(cfg, slog.Default().Handler(),
		gate.WithAdditionCases([]gate.AdditionCase{{A: 1, B: 1, Want: 3}}))
	require.NoError(t, err)

	err = run.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, gate.ErrLogicCheck)
	assert.False(t, run.Passed())
	assert.Len(t, run.Results(), 1)
}
