// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.tapedeck.app/tapedeck/config"
	"go.tapedeck.app/tapedeck/history"
	"go.tapedeck.app/tapedeck/hotkey"
	"go.tapedeck.app/tapedeck/internal/types"
	"go.tapedeck.app/tapedeck/recording"
	"go.tapedeck.app/tapedeck/transcribe"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-components.
type Service struct {
	cfg    *config.Config
	orch   *recording.Orchestrator
	index  *history.Index
	stt    *transcribe.Client
	hotkey *hotkey.Manager

	// UI references - set via Init
	app    *application.App
	window application.Window

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{}
	}
	s.cfg = cfg

	// Build the capture cascade over the session store
	store := recording.NewStore(cfg.WorkDir)
	cascade := recording.DefaultCascade(recording.CascadeConfig{
		FFmpegPath:   cfg.FFmpegPath,
		HelperPath:   cfg.HelperPath,
		WorkDir:      store.Dir(),
		SystemDevice: cfg.SystemDevice,
		MicDevice:    cfg.MicDevice,
		Bridge:       &eventBridge{app: app},
	})
	s.orch = recording.NewOrchestrator(cascade, store)

	// Push every state transition to the frontend
	s.orch.Broadcaster().SetObserver(func(st recording.Status) {
		s.emit(EventRecordingStatus, toStatus(st))
	})

	s.stt = transcribe.New(cfg.OpenAIAPIKey, cfg.TranscribeModel)

	s.setupHistory()
	s.setupHotkey()
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.orch != nil && s.orch.State() == recording.StateRecording {
		if _, err := s.orch.Stop(); err != nil {
			slog.Error("stop recording on shutdown", "error", err)
		}
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			slog.Error("close history index", "error", err)
		}
	}
}

func (s *Service) setupHistory() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for history", "error", err)
		return
	}

	indexPath := filepath.Join(configDir, "tapedeck", "history")
	ix, err := history.Open(indexPath)
	if err != nil {
		slog.Error("open history index", "error", err)
		return
	}
	s.index = ix
	slog.Info("history index opened", "path", indexPath)
}

func (s *Service) setupHotkey() {
	if !s.cfg.HotkeyEnabled() {
		return
	}

	s.hotkey = hotkey.NewManager(func() {
		if _, err := s.ToggleRecording(); err != nil {
			slog.Error("toggle recording via hotkey", "error", err)
		}
	})
	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording
// ─────────────────────────────────────────────────────────────────────────────

// StartRecording begins a new recording session. Returns an error if a
// session is already in flight.
func (s *Service) StartRecording() (types.StartResult, error) {
	if err := s.orch.Start(context.Background()); err != nil {
		return types.StartResult{}, err
	}
	st := s.orch.Status()
	res := types.StartResult{Mode: string(st.Mode)}
	if st.Recording != nil {
		res.ID = st.Recording.ID
	}
	return res, nil
}

// StopRecording finalizes the active session and returns its snapshot.
func (s *Service) StopRecording() (types.RecordingInfo, error) {
	sess, err := s.orch.Stop()
	if err != nil {
		return types.RecordingInfo{}, err
	}

	info := toInfo(sess.Info())
	s.recordHistory(info)
	return info, nil
}

// ToggleRecording starts when idle and stops when recording; any other
// state is a no-op. Returns the post-toggle status.
func (s *Service) ToggleRecording() (types.Status, error) {
	switch s.orch.State() {
	case recording.StateIdle:
		if _, err := s.StartRecording(); err != nil {
			return s.GetRecordingStatus(), err
		}
	case recording.StateRecording:
		if _, err := s.StopRecording(); err != nil {
			return s.GetRecordingStatus(), err
		}
	}
	return s.GetRecordingStatus(), nil
}

// GetRecordingStatus returns the current recording state.
func (s *Service) GetRecordingStatus() types.Status {
	return toStatus(s.orch.Status())
}

// SaveForProcessing writes the current (or latest finished) recording to
// the working directory and returns its path. Empty when nothing has been
// captured yet.
func (s *Service) SaveForProcessing() (string, error) {
	return s.orch.Store().SaveForProcessing()
}

// ReadRecordingAsBase64 returns a saved recording's payload, base64
// encoded for transfer to the frontend. Only files inside the working
// directory are served.
func (s *Service) ReadRecordingAsBase64(path string) (string, error) {
	dir := s.orch.Store().Dir()
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("path outside working directory: %s", path)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("%w: read recording: %w", recording.ErrIO, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// CleanupRecording removes one saved recording file, best effort.
func (s *Service) CleanupRecording(path string) {
	s.orch.Store().CleanupOne(path)
}

// CleanupAllRecordings force-stops any active session and empties the
// working directory.
func (s *Service) CleanupAllRecordings() {
	s.orch.CleanupAll()
}

// ─────────────────────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) recordHistory(info types.RecordingInfo) {
	if s.index == nil {
		return
	}
	err := s.index.Put(history.Entry{
		ID:         info.ID,
		StartTime:  msToTime(info.StartTime),
		EndTime:    msToTime(info.EndTime),
		DurationMS: info.Duration,
		Mode:       info.Mode,
		Size:       info.Size,
		FilePath:   info.FilePath,
	})
	if err != nil {
		slog.Error("record history entry", "session", info.ID, "error", err)
	}
}

// ListHistory returns past recordings, newest first. A limit of zero
// returns everything.
func (s *Service) ListHistory(limit int) ([]types.HistoryEntry, error) {
	if s.index == nil {
		return nil, nil
	}
	entries, err := s.index.List(limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		h := types.HistoryEntry{
			ID:        e.ID,
			StartTime: e.StartTime.UnixMilli(),
			Duration:  e.DurationMS,
			Mode:      e.Mode,
			Size:      e.Size,
			FilePath:  e.FilePath,
		}
		if !e.EndTime.IsZero() {
			h.EndTime = e.EndTime.UnixMilli()
		}
		out = append(out, h)
	}
	return out, nil
}

// RemoveHistoryEntry deletes one past recording from the index.
func (s *Service) RemoveHistoryEntry(id string) error {
	if s.index == nil {
		return nil
	}
	return s.index.Delete(id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Transcription
// ─────────────────────────────────────────────────────────────────────────────

// Transcribe submits a saved recording for transcription. An empty path
// saves and submits the latest recording.
func (s *Service) Transcribe(path string) (types.TranscriptResult, error) {
	if path == "" {
		saved, err := s.SaveForProcessing()
		if err != nil {
			return types.TranscriptResult{}, err
		}
		path = saved
	}
	if path == "" {
		return types.TranscriptResult{}, fmt.Errorf("no recording to transcribe")
	}

	text, err := s.stt.Transcribe(context.Background(), path)
	if err != nil {
		return types.TranscriptResult{}, err
	}
	return types.TranscriptResult{
		Text:     text,
		Model:    s.stt.Model(),
		FilePath: path,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversions
// ─────────────────────────────────────────────────────────────────────────────

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func toInfo(info recording.SessionInfo) types.RecordingInfo {
	return types.RecordingInfo{
		ID:        info.ID,
		StartTime: info.StartMS,
		EndTime:   info.EndMS,
		Duration:  info.DurationMS,
		Mode:      string(info.Mode),
		Size:      info.Size,
		FilePath:  info.FilePath,
	}
}

func toStatus(st recording.Status) types.Status {
	out := types.Status{IsRecording: st.IsRecording, Mode: string(st.Mode)}
	if st.Recording != nil {
		info := toInfo(*st.Recording)
		out.Recording = &info
	}
	return out
}
