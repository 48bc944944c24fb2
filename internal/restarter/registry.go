package restarter

import (
	"fmt"
	"log/slog"
)

// Registry maps unit-type strings to their Restarter implementations.
// Registration happens at startup before concurrent access, so no mutex is
// needed — mirroring the reference engine's executor.Registry.
type Registry struct {
	restarters map[string]Restarter
	logger     *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		restarters: make(map[string]Restarter),
		logger:     logger.With("component", "restarter-registry"),
	}
}

// Register adds a Restarter, keyed by its Type().
func (r *Registry) Register(rs Restarter) {
	t := rs.Type()
	r.restarters[t] = rs
	r.logger.Info("restarter registered", "type", t)
}

// Get returns the Restarter for the given unit type, or an error if none
// is registered.
func (r *Registry) Get(unitType string) (Restarter, error) {
	rs, ok := r.restarters[unitType]
	if !ok {
		return nil, fmt.Errorf("no restarter registered for unit type %q", unitType)
	}
	return rs, nil
}
