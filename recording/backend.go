package recording

import (
	"context"
	"time"
)

// Liveness windows: how long a backend has to prove it is producing real
// data before the attempt is abandoned.
const (
	processLiveness  = 2 * time.Second
	rendererLiveness = 3 * time.Second
)

// Outcome is the result of one backend attempt. Mode and Ext are meaningful
// only when Success is true; Ext names the native container extension of the
// payload the backend produces.
type Outcome struct {
	Success bool
	Mode    Mode
	Ext     string
}

// Backend is one concrete strategy for obtaining audio bytes. Attempt must
// not report success until at least one real (non-empty) data chunk has been
// observed, and must fail if no data arrives within the backend's liveness
// window or a fatal diagnostic is classified first. A failed attempt leaves
// no process or timer behind.
//
// After a successful attempt the backend keeps feeding the session until
// Stop, which must be idempotent and safe even if the underlying process
// already exited on its own.
type Backend interface {
	Name() string
	Attempt(ctx context.Context, sess *Session) (Outcome, error)
	Stop(sess *Session) error
}
