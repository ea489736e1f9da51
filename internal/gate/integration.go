package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/robbyt/go-fsm/v2/transitions"

	"github.com/stagehand-ci/stagehand/internal/responder"
)

// IntegrationCheck boots a responder on address, issues one GET to the root
// path and verifies the status and body. The listener is stopped and drained
// on every exit path so repeated runs never collide on the port. The request
// itself carries no timeout; a request that never completes hangs the check
// process.
func IntegrationCheck(ctx context.Context, logger *slog.Logger, address, expected string) error {
	app := responder.NewApp(expected, "")
	runner, err := responder.NewRunner(
		address,
		app,
		responder.WithLogger(logger.WithGroup("responder")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrationCheck, err)
	}

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	runnerErr := make(chan error, 1)
	go func() {
		runnerErr <- runner.Run(runCtx)
	}()

	if err := waitForRunning(runCtx, runner, runnerErr); err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrationCheck, err)
	}

	// The listener is bound from here on; stop it and wait for the socket to
	// be released no matter how the check ends.
	defer func() {
		runner.Stop()
		runCancel()
		if err := <-runnerErr; err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Responder exited with error during shutdown", "error", err)
		}
	}()

	url, err := rootURL(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrationCheck, err)
	}

	logger.Debug("Issuing integration request", "url", url)
	if err := checkResponse(url, expected); err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrationCheck, err)
	}

	logger.Info("Integration check passed", "address", address)
	return nil
}

// checkResponse issues one GET and verifies the status and the full body.
func checkResponse(url, expected string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}

	// Read the full body before the caller tears down the listener.
	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading body: %w", readErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing body: %w", closeErr)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if string(body) != expected {
		return fmt.Errorf("body = %q, want %q", string(body), expected)
	}

	return nil
}

// waitForRunning blocks until the runner reports it is accepting connections.
// The check request must never be issued before that point.
func waitForRunning(
	ctx context.Context,
	runner *responder.Runner,
	runnerErr <-chan error,
) error {
	stateCh := runner.GetStateChan(ctx)
	for {
		if runner.IsReady() {
			return nil
		}
		select {
		case err := <-runnerErr:
			if err != nil {
				return err
			}
			return fmt.Errorf("responder exited before accepting connections")
		case state, ok := <-stateCh:
			if !ok {
				return fmt.Errorf("state channel closed before responder was running")
			}
			if state == transitions.StatusError || state == transitions.StatusStopped {
				return fmt.Errorf("responder entered state %q before accepting connections", state)
			}
		}
	}
}

// rootURL converts a bind address into the URL the check request targets.
func rootURL(address string) (string, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", address, err)
	}
	// A wildcard bind is reachable over loopback.
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, port)), nil
}
