//go:build e2e
// +build e2e

package gate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-ci/stagehand/internal/config"
	"github.com/stagehand-ci/stagehand/internal/responder"
)

// runResponder starts the responder under a supervisor, the same composition
// the serve command builds, and returns a cleanup function.
func runResponder(t *testing.T, ctx context.Context, cfg *config.Config) (func(), error) {
	t.Helper()

	var logBuf bytes.Buffer
	handler := slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	app := responder.NewApp(cfg.Responder.Message, cfg.Responder.Stage)
	runner, err := responder.NewRunner(cfg.Responder.Listen, app,
		responder.WithLogHandler(handler))
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sv, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(handler),
		supervisor.WithRunnables(runner),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create supervisor: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- sv.Run()
	}()

	select {
	case err := <-errCh:
		cancel()
		return nil, fmt.Errorf("responder failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	cleanup := func() {
		t.Log("Shutting down responder...")
		cancel()

		select {
		case err := <-errCh:
			if err != nil {
				t.Logf("Responder shutdown with error: %v", err)
			} else {
				t.Log("Responder shutdown successfully")
			}
		case <-time.After(2 * time.Second):
			t.Log("Responder shutdown timed out")
		}

		t.Logf("Responder logs:\n%s", logBuf.String())
	}

	return cleanup, nil
}

// waitForHTTPEndpoint retries the URL until it returns 200 or the timeout expires.
func waitForHTTPEndpoint(t *testing.T, url string, timeout, retryInterval time.Duration) bool {
	t.Helper()
	httpClient := &http.Client{Timeout: 2 * time.Second}

	return assert.Eventually(t, func() bool {
		resp, err := httpClient.Get(url)
		if err != nil {
			t.Logf("Request failed: %v", err)
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, timeout, retryInterval, "Endpoint never became available: %s", url)
}

// getBody fetches the URL and returns the full response body.
func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err, "Request failed")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	return string(body)
}
