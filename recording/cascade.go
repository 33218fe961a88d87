package recording

// CascadeConfig carries the environment-specific knobs the platform cascades
// need: binary path overrides, capture device names, the working directory,
// and the UI bridge for renderer capture.
type CascadeConfig struct {
	FFmpegPath   string
	HelperPath   string
	WorkDir      string
	SystemDevice string
	MicDevice    string
	Bridge       RendererBridge
}
