package recording

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RendererChunk is one inbound binary message from the UI-hosted capture
// surface, correlated to a session and carrying a final-chunk flag.
type RendererChunk struct {
	SessionID string
	Data      []byte
	Final     bool
}

// RendererBridge is the one-way event channel to and from the UI. SignalStart
// asks the UI to begin capturing for a session, Subscribe registers the single
// inbound chunk handler and returns its cancel function.
type RendererBridge interface {
	SignalStart(sessionID string)
	SignalStop(sessionID string)
	Subscribe(fn func(RendererChunk)) (cancel func())
}

// RendererBackend delegates capture to the UI via a message round trip.
type RendererBackend struct {
	bridge RendererBridge

	mu     sync.Mutex
	cancel func()
}

// NewRendererBackend creates a renderer-capture backend over the given
// bridge. A nil bridge makes every attempt fail immediately.
func NewRendererBackend(bridge RendererBridge) *RendererBackend {
	return &RendererBackend{bridge: bridge}
}

func (b *RendererBackend) Name() string { return "renderer-capture" }

// Attempt signals the UI to start capturing and waits for the first
// non-empty chunk for this session. Any listener left over from a previous
// attempt is cleaned up first so chunks cannot leak across sessions.
func (b *RendererBackend) Attempt(ctx context.Context, sess *Session) (Outcome, error) {
	if b.bridge == nil {
		return Outcome{}, fmt.Errorf("%w: no renderer bridge", ErrBackendUnavailable)
	}

	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()

	first := make(chan struct{})
	var once sync.Once

	cancel := b.bridge.Subscribe(func(c RendererChunk) {
		if c.SessionID != sess.ID {
			return
		}
		if len(c.Data) > 0 {
			sess.Append(c.Data)
			once.Do(func() { close(first) })
		}
		// The UI marked the stream complete: no more chunks will come, so
		// the listener can go now instead of lingering until Stop.
		if c.Final {
			b.clearListener()
		}
	})

	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	b.bridge.SignalStart(sess.ID)

	timer := time.NewTimer(rendererLiveness)
	defer timer.Stop()

	select {
	case <-first:
		return Outcome{Success: true, Mode: ModeMicrophone, Ext: ".webm"}, nil

	case <-timer.C:
		b.teardown(sess.ID)
		return Outcome{}, fmt.Errorf("%w: renderer capture", ErrNoData)

	case <-ctx.Done():
		b.teardown(sess.ID)
		return Outcome{}, ctx.Err()
	}
}

// Stop signals the UI to stop capturing and removes the chunk listener.
func (b *RendererBackend) Stop(sess *Session) error {
	b.teardown(sess.ID)
	return nil
}

func (b *RendererBackend) teardown(sessionID string) {
	if b.bridge != nil {
		b.bridge.SignalStop(sessionID)
	}
	b.clearListener()
}

func (b *RendererBackend) clearListener() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
