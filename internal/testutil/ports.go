// Package testutil holds shared test helpers.
package testutil

import (
	"fmt"
	"net"
	"sync"
	"testing"
)

var (
	portMutex = &sync.Mutex{}
	usedPorts = make(map[int]struct{})
)

// GetRandomPort reserves an ephemeral TCP port by binding and releasing it.
// Ports are tracked per-process so parallel tests never share one.
func GetRandomPort(t *testing.T) int {
	t.Helper()
	portMutex.Lock()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		portMutex.Unlock()
		t.Fatalf("Failed to get random port: %v", err)
	}

	if err := listener.Close(); err != nil {
		portMutex.Unlock()
		t.Fatalf("Failed to close listener: %v", err)
	}

	addr := listener.Addr().(*net.TCPAddr)
	p := addr.Port
	if _, ok := usedPorts[p]; ok {
		portMutex.Unlock()
		return GetRandomPort(t)
	}
	usedPorts[p] = struct{}{}
	portMutex.Unlock()
	return p
}

// GetRandomAddr returns a loopback host:port string with a free port.
func GetRandomAddr(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("127.0.0.1:%d", GetRandomPort(t))
}
