// Package responder implements the fixed-message HTTP responder and its
// supervisor runnable.
package responder

import "net/http"

// StageHeader is set on responses when a stage label is configured.
const StageHeader = "X-Stagehand-Stage"

// App serves the configured message for every request, regardless of method
// or path. The message is immutable after construction.
type App struct {
	message string
	stage   string
}

// NewApp creates an App serving the given message. stage may be empty.
func NewApp(message, stage string) *App {
	return &App{
		message: message,
		stage:   stage,
	}
}

// Message returns the configured response body.
func (a *App) Message() string {
	return a.message
}

// ServeHTTP replies to every request with 200 and the configured message.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if a.stage != "" {
		w.Header().Set(StageHeader, a.stage)
	}
	w.WriteHeader(http.StatusOK)

	// The body must be byte-exact; the write error is unrecoverable here and
	// surfaces in the server's connection handling.
	_, _ = w.Write([]byte(a.message))
}
