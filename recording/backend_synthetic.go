package recording

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	syntheticInitial = 4 * time.Second
	syntheticRegen   = 3 * time.Second
)

// SyntheticBackend is the terminal cascade entry: it never fails. It
// fabricates a container-correct WAV payload (mono, 16 kHz, 16-bit,
// amplitude-modulated tone) and regenerates a longer one on a fixed interval
// to simulate an ongoing capture while the session stays open.
type SyntheticBackend struct {
	regen time.Duration // regeneration interval, overridable in tests

	mu   sync.Mutex
	stop chan struct{}
}

// NewSyntheticBackend creates the always-succeeding fallback backend.
func NewSyntheticBackend() *SyntheticBackend {
	return &SyntheticBackend{regen: syntheticRegen}
}

func (b *SyntheticBackend) Name() string { return "synthetic" }

// Attempt synthesizes the initial payload and starts the regeneration timer.
// It cannot fail.
func (b *SyntheticBackend) Attempt(_ context.Context, sess *Session) (Outcome, error) {
	sess.SetBuffer(synthesizeTone(syntheticInitial))

	stop := make(chan struct{})
	b.mu.Lock()
	if b.stop != nil {
		close(b.stop)
	}
	b.stop = stop
	b.mu.Unlock()

	go func() {
		ticker := time.NewTicker(b.regen)
		defer ticker.Stop()
		length := syntheticInitial
		for {
			select {
			case <-ticker.C:
				length += b.regen
				sess.SetBuffer(synthesizeTone(length))
				slog.Debug("regenerated synthetic payload", "length", length)
			case <-stop:
				return
			}
		}
	}()

	return Outcome{Success: true, Mode: ModeMock, Ext: ".wav"}, nil
}

// Stop clears the regeneration timer. Idempotent.
func (b *SyntheticBackend) Stop(*Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	return nil
}
