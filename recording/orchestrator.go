package recording

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the orchestrator lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRecording
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Orchestrator owns the single active session and the backend cascade. It
// walks the cascade sequentially until one backend proves live data within
// its liveness window; that backend owns the session until Stop. Individual
// backend failures are silent to the caller; because the cascade terminates
// in the synthetic backend, Start cannot observably fail once entered.
type Orchestrator struct {
	cascade   []Backend
	store     *Store
	broadcast *Broadcaster

	mu     sync.Mutex
	state  State
	active *Session
	owner  Backend
}

// NewOrchestrator builds an orchestrator over a cascade and store.
func NewOrchestrator(cascade []Backend, store *Store) *Orchestrator {
	return &Orchestrator{
		cascade:   cascade,
		store:     store,
		broadcast: &Broadcaster{},
	}
}

// Broadcaster exposes the status notifier for observer registration.
func (o *Orchestrator) Broadcaster() *Broadcaster { return o.broadcast }

// Store exposes the session store.
func (o *Orchestrator) Store() *Store { return o.store }

// Start creates a provisional session and walks the cascade. Returns
// ErrAlreadyRecording unless called from idle.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrAlreadyRecording
	}
	sess := NewSession()
	o.state = StateStarting
	o.active = sess
	o.store.SetActive(sess)
	o.mu.Unlock()

	o.notify()

	// Attempts are strictly sequential: a failed attempt tears down its
	// process and timer before the next begins, so at most one external
	// process is alive per session.
	for _, backend := range o.cascade {
		outcome, err := backend.Attempt(ctx, sess)
		if err != nil || !outcome.Success {
			slog.Info("capture backend failed, trying next",
				"backend", backend.Name(), "error", err)
			continue
		}

		// The walk runs unlocked for up to the liveness windows, so a
		// cleanup may have reset the machine underneath it. A backend that
		// succeeds for a session that is no longer active must be stopped,
		// not installed.
		o.mu.Lock()
		if o.state != StateStarting || o.active != sess {
			o.mu.Unlock()
			if err := backend.Stop(sess); err != nil {
				slog.Warn("stop orphaned capture backend",
					"backend", backend.Name(), "error", err)
			}
			slog.Info("start abandoned, session no longer active", "session", sess.ID)
			return ErrStartAborted
		}
		sess.SetMode(outcome.Mode)
		sess.SetExtension(outcome.Ext)
		o.owner = backend
		o.state = StateRecording
		o.mu.Unlock()

		slog.Info("recording started", "backend", backend.Name(), "mode", outcome.Mode, "session", sess.ID)
		o.notify()
		return nil
	}

	// Unreachable with a well-formed cascade (synthetic never fails); kept
	// for malformed configurations.
	o.mu.Lock()
	owned := o.state == StateStarting && o.active == sess
	if owned {
		o.state = StateIdle
		o.active = nil
	}
	o.mu.Unlock()
	if !owned {
		return ErrStartAborted
	}
	o.store.ClearActive()
	o.notify()
	return fmt.Errorf("%w: cascade exhausted", ErrBackendUnavailable)
}

// Stop finalizes the active session: asks the owning backend to terminate
// gracefully, computes end time and duration, and snapshots the session into
// the completed sequence. Returns ErrNotRecording unless recording.
func (o *Orchestrator) Stop() (*Session, error) {
	o.mu.Lock()
	if o.state != StateRecording {
		o.mu.Unlock()
		return nil, ErrNotRecording
	}
	o.state = StateStopping
	sess := o.active
	owner := o.owner
	o.mu.Unlock()

	o.notify()

	if err := owner.Stop(sess); err != nil {
		slog.Error("stop capture backend", "backend", owner.Name(), "error", err)
	}

	o.mu.Lock()
	sess.finalize(time.Now())
	o.active = nil
	o.owner = nil
	o.state = StateIdle
	o.mu.Unlock()

	o.store.Finalize(sess)

	slog.Info("recording stopped", "session", sess.ID,
		"duration_ms", sess.DurationMS, "size", sess.Size())

	// The idle notification carries the just-finalized session so the UI can
	// show what was recorded.
	info := sess.Info()
	o.broadcast.Notify(Status{IsRecording: false, Recording: &info, Mode: info.Mode})
	return sess, nil
}

// Status reports whether a session is recording and a snapshot of it.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := Status{IsRecording: o.state == StateRecording}
	if o.active != nil {
		info := o.active.Info()
		s.Recording = &info
		s.Mode = info.Mode
	}
	return s
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// CleanupAll forcibly terminates any active session's backend, clears the
// completed sequence, and empties the working directory.
func (o *Orchestrator) CleanupAll() {
	o.mu.Lock()
	sess := o.active
	owner := o.owner
	o.active = nil
	o.owner = nil
	o.state = StateIdle
	o.mu.Unlock()

	if owner != nil && sess != nil {
		if err := owner.Stop(sess); err != nil {
			slog.Warn("force stop capture backend", "backend", owner.Name(), "error", err)
		}
	}
	o.store.Clear()
	o.notify()
}

// notify delivers the current status to the registered observer. Called on
// every state transition.
func (o *Orchestrator) notify() {
	o.broadcast.Notify(o.Status())
}
