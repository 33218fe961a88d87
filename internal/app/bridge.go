package app

import (
	"encoding/base64"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.tapedeck.app/tapedeck/recording"
)

// eventBridge carries the renderer capture handshake over Wails events.
// It satisfies recording.RendererBridge so the recording package never
// touches the UI runtime directly.
type eventBridge struct {
	app *application.App
}

func (b *eventBridge) SignalStart(sessionID string) {
	b.app.Event.Emit(EventRendererStart, map[string]string{"sessionId": sessionID})
}

func (b *eventBridge) SignalStop(sessionID string) {
	b.app.Event.Emit(EventRendererStop, map[string]string{"sessionId": sessionID})
}

func (b *eventBridge) Subscribe(fn func(recording.RendererChunk)) func() {
	return b.app.Event.On(EventRendererChunk, func(e *application.CustomEvent) {
		chunk, ok := parseRendererChunk(e.Data)
		if !ok {
			slog.Warn("malformed renderer capture chunk")
			return
		}
		fn(chunk)
	})
}

// parseRendererChunk decodes a chunk event payload from the frontend:
// {sessionId, data (base64), final}. Event data from JS may arrive
// wrapped in a single-element slice.
func parseRendererChunk(data any) (recording.RendererChunk, bool) {
	if list, ok := data.([]any); ok && len(list) == 1 {
		data = list[0]
	}
	fields, ok := data.(map[string]any)
	if !ok {
		return recording.RendererChunk{}, false
	}

	id, ok := fields["sessionId"].(string)
	if !ok || id == "" {
		return recording.RendererChunk{}, false
	}

	chunk := recording.RendererChunk{SessionID: id}
	if final, ok := fields["final"].(bool); ok {
		chunk.Final = final
	}
	if encoded, ok := fields["data"].(string); ok && encoded != "" {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			slog.Warn("decode renderer chunk", "session", id, "error", err)
			return recording.RendererChunk{}, false
		}
		chunk.Data = raw
	}
	return chunk, true
}
