// Package session holds per-browser-session dashboard state behind a
// small store interface with in-memory and redis backends.
package session

import "time"

// State is everything a session carries between stage invocations: the
// dataset snapshot (the sole durable artifact), the axis selections and
// the chart type. Only ingestion outcomes replace or clear Snapshot.
type State struct {
	Snapshot  string `json:"snapshot"`
	X         string `json:"x"`
	Y         string `json:"y"`
	ChartType string `json:"chart_type"`
}

// Store interface for session management
type Store interface {
	// EnsureSession returns the session with the given id, minting a
	// fresh one when id is empty or unknown, and extends its TTL.
	EnsureSession(id string, ttl time.Duration) (Session, error)
	// GetSession returns the session or nil when it does not exist.
	GetSession(id string) (Session, error)
}

// Session interface for session operations
type Session interface {
	ID() string
	Expire(ttl time.Duration)
	Get() (State, error)
	Set(State) error
}
