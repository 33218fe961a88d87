//go:build windows

package recording

// DefaultCascade on Windows has no privileged helper: ffmpeg first, then the
// UI-hosted capture surface, then the synthetic fallback.
func DefaultCascade(cfg CascadeConfig) []Backend {
	return []Backend{
		NewMixedAudioBackend(cfg.FFmpegPath, cfg.SystemDevice, cfg.MicDevice),
		NewMicrophoneBackend(cfg.FFmpegPath, cfg.MicDevice),
		NewRendererBackend(cfg.Bridge),
		NewSyntheticBackend(),
	}
}

// mixedCaptureArgs on Windows points dshow at the default microphone; there
// is no portable loopback device to mix in.
func mixedCaptureArgs(_, micDevice string) []string {
	return microphoneCaptureArgs(micDevice)
}

func microphoneCaptureArgs(micDevice string) []string {
	if micDevice == "" {
		micDevice = "audio=Microphone"
	}
	return []string{
		"-hide_banner", "-loglevel", "warning",
		"-f", "dshow", "-i", micDevice,
		"-f", "s16le", "-ac", "1", "-ar", "16000",
		"pipe:1",
	}
}
