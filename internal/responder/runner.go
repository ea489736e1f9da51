package responder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"
)

// Interface guards
var (
	_ supervisor.Runnable  = (*Runner)(nil)
	_ supervisor.Stateable = (*Runner)(nil)
	_ supervisor.Readiness = (*Runner)(nil)
)

// serverImplementation abstracts the underlying HTTP server sub-runnable
type serverImplementation interface {
	Run(ctx context.Context) error
	Stop()
	GetState() string
	IsReady() bool
	GetStateChan(ctx context.Context) <-chan string
}

// Runner wraps go-supervisor's httpserver.Runner around a single App.
// Construction builds the handler and server object without binding a port;
// the bind happens when Run is called.
type Runner struct {
	address string
	app     *App
	server  serverImplementation
	logger  *slog.Logger
}

// NewRunner creates a responder runner for the given address. The listening
// socket is not opened until Run.
func NewRunner(address string, app *App, opts ...Option) (*Runner, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if app == nil {
		return nil, fmt.Errorf("app is required")
	}

	r := &Runner{
		address: address,
		app:     app,
		logger:  slog.Default().WithGroup("responder.Runner"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize responder server: %w", err)
	}

	return r, nil
}

// initializeServer creates the underlying httpserver.Runner. The root route
// matches every path and method.
func (r *Runner) initializeServer() error {
	route, err := httpserver.NewRouteFromHandlerFunc("responder", "/", r.app.ServeHTTP)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	routes := httpserver.Routes{*route}

	configCallback := func() (*httpserver.Config, error) {
		config, err := httpserver.NewConfig(r.address, routes)
		if err != nil {
			return nil, fmt.Errorf("failed to create server config: %w", err)
		}
		return config, nil
	}

	server, err := httpserver.NewRunner(
		httpserver.WithConfigCallback(configCallback),
	)
	if err != nil {
		return fmt.Errorf("failed to create server runner: %w", err)
	}

	r.server = server
	return nil
}

// String returns a unique identifier for this runner
func (r *Runner) String() string {
	return fmt.Sprintf("responder.Runner[%s]", r.address)
}

// Run binds the listening socket and serves until ctx is canceled or Stop is
// called. A bind failure is returned so the process exits nonzero.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Responder listening", "address", r.address, "message", r.app.Message())
	return r.server.Run(ctx)
}

// Stop stops the responder
func (r *Runner) Stop() {
	r.logger.Debug("Stopping responder", "address", r.address)
	r.server.Stop()
}

// GetState returns the current lifecycle state of the server
func (r *Runner) GetState() string {
	if r.server == nil {
		return "unknown"
	}
	return r.server.GetState()
}

// IsReady returns whether the server is accepting connections
func (r *Runner) IsReady() bool {
	if r.server == nil {
		return false
	}
	return r.server.IsReady()
}

// GetStateChan returns a channel that emits lifecycle state changes
func (r *Runner) GetStateChan(ctx context.Context) <-chan string {
	if r.server == nil {
		ch := make(chan string)
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch
	}
	return r.server.GetStateChan(ctx)
}

// GetAddress returns the address this responder listens on
func (r *Runner) GetAddress() string {
	return r.address
}
