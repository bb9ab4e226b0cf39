// Package domain contains the core types shared across tapedeck.
package domain

// ConnectionState classifies reachability of the upstream archive.
type ConnectionState int

const (
	StateUnknown      ConnectionState = iota // No probe has completed yet
	StateConnected                           // Last probe succeeded
	StateDisconnected                        // Reachability lost while connected
	StateReconnecting                        // Caller-driven: still trying after an outage
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
