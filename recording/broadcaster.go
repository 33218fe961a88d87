package recording

import "sync"

// SessionInfo is an immutable snapshot of a session for status payloads.
type SessionInfo struct {
	ID         string `json:"id"`
	StartMS    int64  `json:"startTime"`
	EndMS      int64  `json:"endTime,omitempty"`
	DurationMS int64  `json:"duration,omitempty"`
	Mode       Mode   `json:"mode,omitempty"`
	Size       int    `json:"size"`
	FilePath   string `json:"filePath,omitempty"`
}

// Info snapshots the session.
func (s *Session) Info() SessionInfo {
	info := SessionInfo{
		ID:         s.ID,
		StartMS:    s.StartedAt.UnixMilli(),
		DurationMS: s.DurationMS,
		Mode:       s.Mode(),
		Size:       s.Size(),
		FilePath:   s.FilePath(),
	}
	if !s.EndedAt.IsZero() {
		info.EndMS = s.EndedAt.UnixMilli()
	}
	return info
}

// Status is the session-state-changed notification payload.
type Status struct {
	IsRecording bool         `json:"isRecording"`
	Recording   *SessionInfo `json:"recording,omitempty"`
	Mode        Mode         `json:"mode,omitempty"`
}

// Broadcaster delivers status notifications to exactly one registered
// observer (the UI). Registering a new observer replaces the previous one.
type Broadcaster struct {
	mu       sync.Mutex
	observer func(Status)
}

// SetObserver registers the single observer. A nil observer disables
// notifications.
func (b *Broadcaster) SetObserver(fn func(Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = fn
}

// Notify delivers a status snapshot to the observer, if any.
func (b *Broadcaster) Notify(s Status) {
	b.mu.Lock()
	fn := b.observer
	b.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
