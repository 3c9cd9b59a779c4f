// Package health exposes the engine's status to external observers over HTTP
// and gRPC.
package health

import (
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/monitor"
)

// SystemStatus represents the overall health state of the terminal.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// criticalAttempts is the attempt count past which a persisting failure is
// reported as critical rather than degraded.
const criticalAttempts = 10

// Report is the full status document served on /health/detailed.
type Report struct {
	Status SystemStatus        `json:"status"`
	Cycle  monitor.CycleReport `json:"cycle"`
}

// StatusOf maps a cycle report onto the coarse system status. The engine
// itself never gives up; "critical" only signals that a human may want to
// look at the hardware.
func StatusOf(cycle monitor.CycleReport) SystemStatus {
	t := cycle.State.Type
	if t == domain.RecoveryNone || t == "" {
		return StatusHealthy
	}
	if cycle.State.AttemptCount >= criticalAttempts {
		return StatusCritical
	}
	return StatusDegraded
}
