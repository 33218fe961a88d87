// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	// EventRecordingStatus carries a types.Status on every state change.
	EventRecordingStatus = "recording-status"

	// Renderer capture handshake: the backend asks the frontend to start
	// or stop MediaRecorder capture, the frontend streams chunks back.
	EventRendererStart = "renderer-capture-start"
	EventRendererStop  = "renderer-capture-stop"
	EventRendererChunk = "renderer-capture-chunk"
)
