package recording

import "errors"

// ErrAlreadyRecording is returned when start is called while a session is
// starting or recording.
var ErrAlreadyRecording = errors.New("already recording")

// ErrNotRecording is returned when stop is called without an active session.
var ErrNotRecording = errors.New("not recording")

// ErrBackendUnavailable indicates a backend cannot run in this environment
// (missing binary, no bridge, unsupported platform). It never surfaces to
// callers; the orchestrator advances the cascade instead.
var ErrBackendUnavailable = errors.New("capture backend unavailable")

// ErrDeviceFailure indicates a backend's process reported a fatal device
// condition on stderr. Internal only, drives cascade advance.
var ErrDeviceFailure = errors.New("capture device failure")

// ErrNoData indicates a backend produced no data within its liveness window.
var ErrNoData = errors.New("no audio data within liveness window")

// ErrStartAborted is returned from a start whose cascade walk was still in
// flight when a cleanup reset the state machine. The late-succeeding backend
// is stopped and the session is discarded.
var ErrStartAborted = errors.New("start aborted by cleanup")

// ErrIO indicates a recording payload could not be persisted or read back.
var ErrIO = errors.New("recording file I/O failure")
