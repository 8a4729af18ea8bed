package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Key          string `json:"key"`
	BackendType  string `json:"backend_type"`
	Transactions int    `json:"transactions"`
	LastDigest   string `json:"last_digest,omitempty"`
	LastError    string `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	backendType := "unknown"
	if comp, ok := s.store.Backend().(introspection.Component); ok {
		backendType = comp.ComponentType()
	}

	state := ServiceState{
		Key:          s.store.Key(),
		BackendType:  backendType,
		Transactions: s.transactions,
		LastDigest:   string(s.lastDigest),
	}
	if s.lastErr != nil {
		state.LastError = s.lastErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

// SessionState exposes the synchronization state of a session.
type SessionState struct {
	Notes    int    `json:"notes"`
	Current  string `json:"current_digest,omitempty"`
	Pending  int    `json:"pending_writes"`
	Applied  int    `json:"applied_changes"`
	Ignored  int    `json:"ignored_changes"`
	Watching bool   `json:"watching"`
	Closed   bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{
		Notes:    len(s.notes),
		Current:  string(s.current),
		Pending:  len(s.pending),
		Applied:  s.applied,
		Ignored:  s.ignored,
		Watching: s.cancel != nil && !s.closed,
		Closed:   s.closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
