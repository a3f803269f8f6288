// Package status is the operator-facing key/value board. The
// scheduler writes one round's worth of state into it and the ops
// endpoint serves it out.
package status

import "sync"

// Well-known board keys. Option echoes use the option names as keys.
const (
	KeyStatus       = "Status"
	KeyHealthStatus = "Health Status"
	KeyEndpoints    = "IPv4 Ping List"
	KeyReachable    = "Reachable"
	KeyUnreachable  = "Unreachable"
)

// Values published under KeyStatus.
const (
	AgentUp   = "Administratively Up"
	AgentDown = "Administratively Down"
)

// HealthInactive is published under KeyHealthStatus while the
// configuration is unusable and monitoring is suspended.
const HealthInactive = "INACTIVE"

// Board is a concurrency-safe key/value map: the scheduler goroutine
// writes while the ops endpoint reads.
type Board struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{entries: make(map[string]string)}
}

// Set publishes or overwrites one entry.
func (b *Board) Set(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
}

// Get reads one entry.
func (b *Board) Get(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.entries[key]
	return v, ok
}

// Snapshot copies the whole board.
func (b *Board) Snapshot() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.entries))
	for k, v := range b.entries {
		out[k] = v
	}
	return out
}
