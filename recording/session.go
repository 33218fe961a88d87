// Package recording implements the capture backend cascade and the recording
// session state machine. The orchestrator tries backends in a fixed,
// platform-specific priority order until one proves it is producing real
// audio data, then owns that backend until stop. The cascade always
// terminates in a synthetic backend, so starting a recording cannot
// observably fail.
package recording

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mode records which backend ultimately owned a session.
type Mode string

const (
	ModeMixed      Mode = "mixed"
	ModeSystem     Mode = "system-only"
	ModeMicrophone Mode = "microphone-only"
	ModeMock       Mode = "mock"
)

// Session is one start-to-stop recording lifecycle. It is created as a
// provisional record the instant start is called; Mode and the container
// extension are set only after the owning backend proves liveness.
type Session struct {
	ID        string
	StartedAt time.Time

	// Set on stop.
	EndedAt    time.Time
	DurationMS int64

	mu       sync.Mutex
	mode     Mode
	ext      string
	buf      bytes.Buffer
	filePath string
}

// NewSession creates a provisional session with no mode.
func NewSession() *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// SetMode freezes the session's mode. Called exactly once, by the
// orchestrator, after the owning backend succeeds.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// Mode returns the owning backend's mode, empty while the cascade is still
// running.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetExtension records the native container extension of the owning
// backend's payload. Mode alone cannot carry this: the ffmpeg microphone
// backend and the renderer backend share a mode but produce raw s16le and
// an opaque media container respectively.
func (s *Session) SetExtension(ext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ext = ext
}

// Extension returns the on-disk container extension for the session's
// payload, defaulting to raw PCM while no backend has claimed it.
func (s *Session) Extension() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ext == "" {
		return ".pcm"
	}
	return s.ext
}

// Append adds a captured chunk to the session buffer.
func (s *Session) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(chunk)
}

// SetBuffer replaces the accumulated payload. Used by backends that produce
// whole containers (helper file read-back, synthetic regeneration).
func (s *Session) SetBuffer(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.buf.Write(b)
}

// Bytes returns a copy of the accumulated payload so far.
func (s *Session) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out
}

// Size returns the accumulated payload length in bytes.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// SetFilePath memoizes the on-disk path of the persisted payload.
func (s *Session) SetFilePath(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filePath = p
}

// FilePath returns the persisted path, empty if the session was never saved.
func (s *Session) FilePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filePath
}

// finalize stamps the end time and duration. Duration is exactly
// end minus start in wall-clock milliseconds.
func (s *Session) finalize(now time.Time) {
	s.EndedAt = now
	s.DurationMS = s.EndedAt.UnixMilli() - s.StartedAt.UnixMilli()
}
