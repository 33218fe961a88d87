package recording

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store holds the current session and the insertion-ordered sequence of
// completed sessions, and persists payloads into a dedicated working
// directory. There is no eviction: cleanup is explicit and caller-driven.
type Store struct {
	dir string

	mu        sync.Mutex
	active    *Session
	completed []*Session
}

// NewStore creates a store over the given working directory, defaulting to a
// dedicated directory under the system temp dir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "tapedeck-recordings")
	}
	return &Store{dir: dir}
}

// Dir returns the working directory.
func (st *Store) Dir() string { return st.dir }

// SetActive installs the in-progress session.
func (st *Store) SetActive(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.active = s
}

// ClearActive drops the in-progress session without completing it.
func (st *Store) ClearActive() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.active = nil
}

// Finalize moves the active session into the completed sequence.
func (st *Store) Finalize(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.active == s {
		st.active = nil
	}
	st.completed = append(st.completed, s)
}

// Active returns the in-progress session, nil when idle.
func (st *Store) Active() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active
}

// Latest returns the most recently completed session.
func (st *Store) Latest() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.completed) == 0 {
		return nil
	}
	return st.completed[len(st.completed)-1]
}

// Completed returns a copy of the completed-session sequence.
func (st *Store) Completed() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*Session, len(st.completed))
	copy(out, st.completed)
	return out
}

// SaveForProcessing serializes the active session's buffer to the working
// directory without stopping it, letting callers snapshot mid-flight audio.
// With no active session it serializes the most recent completed session,
// memoizing the path so repeated calls do not re-write the file. Returns ""
// when no buffer exists yet.
func (st *Store) SaveForProcessing() (string, error) {
	st.mu.Lock()
	sess := st.active
	midFlight := sess != nil
	if sess == nil {
		if len(st.completed) > 0 {
			sess = st.completed[len(st.completed)-1]
		}
	}
	st.mu.Unlock()

	if sess == nil || sess.Size() == 0 {
		return "", nil
	}

	// Completed sessions are written once.
	if !midFlight {
		if p := sess.FilePath(); p != "" {
			return p, nil
		}
	}

	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create work dir: %w", ErrIO, err)
	}

	path := filepath.Join(st.dir, sessionFileName(sess, sess.Extension()))
	if err := os.WriteFile(path, sess.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: write session payload: %w", ErrIO, err)
	}

	sess.SetFilePath(path)
	return path, nil
}

// CleanupOne removes one persisted file, best effort.
func (st *Store) CleanupOne(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("cleanup recording file", "path", path, "error", err)
	}
}

// Clear drops the completed sequence and the active pointer, and removes
// every file in the working directory. Files may disappear between the
// listing and the delete; that is tolerated.
func (st *Store) Clear() {
	st.mu.Lock()
	st.active = nil
	st.completed = nil
	st.mu.Unlock()

	entries, err := os.ReadDir(st.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("list work dir", "dir", st.dir, "error", err)
		}
		return
	}
	for _, e := range entries {
		path := filepath.Join(st.dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("cleanup recording file", "path", path, "error", err)
		}
	}
}

// sessionFileName derives the deterministic on-disk name from the session's
// start timestamp.
func sessionFileName(s *Session, ext string) string {
	return fmt.Sprintf("recording-%d%s", s.StartedAt.UnixMilli(), ext)
}
