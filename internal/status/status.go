// Package status exposes HTTP endpoints reporting connectivity health
// and Prometheus metrics.
package status

import (
	"time"

	"github.com/vietddude/tapedeck/internal/core/domain"
)

// SystemStatus represents the overall health of the streamer.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Report is the detailed health payload.
type Report struct {
	Status              SystemStatus `json:"status"`
	ConnectionState     string       `json:"connection_state"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	LastCheck           time.Time    `json:"last_check,omitempty"`
	Detail              string       `json:"detail"`
}

// ConnectivitySource is the slice of the connectivity monitor the
// status server reads.
type ConnectivitySource interface {
	State() domain.ConnectionState
	ConsecutiveFailures() int
	LastCheck() time.Time
	StatusString() string
}

// classify maps a connectivity state to an overall system status.
func classify(state domain.ConnectionState) SystemStatus {
	switch state {
	case domain.StateConnected:
		return StatusHealthy
	case domain.StateDisconnected, domain.StateReconnecting:
		return StatusCritical
	default:
		return StatusDegraded
	}
}
