//go:build !darwin && !windows

package recording

// DefaultCascade on Linux and the rest: ffmpeg against PulseAudio, then the
// UI-hosted capture surface, then the synthetic fallback.
func DefaultCascade(cfg CascadeConfig) []Backend {
	return []Backend{
		NewMixedAudioBackend(cfg.FFmpegPath, cfg.SystemDevice, cfg.MicDevice),
		NewMicrophoneBackend(cfg.FFmpegPath, cfg.MicDevice),
		NewRendererBackend(cfg.Bridge),
		NewSyntheticBackend(),
	}
}

// mixedCaptureArgs merges the default sink monitor with the microphone
// through an amix filter.
func mixedCaptureArgs(systemDevice, micDevice string) []string {
	if systemDevice == "" {
		systemDevice = "@DEFAULT_MONITOR@"
	}
	if micDevice == "" {
		micDevice = "default"
	}
	return []string{
		"-hide_banner", "-loglevel", "warning",
		"-f", "pulse", "-i", systemDevice,
		"-f", "pulse", "-i", micDevice,
		"-filter_complex", "amix=inputs=2:duration=longest",
		"-f", "s16le", "-ac", "1", "-ar", "16000",
		"pipe:1",
	}
}

func microphoneCaptureArgs(micDevice string) []string {
	if micDevice == "" {
		micDevice = "default"
	}
	return []string{
		"-hide_banner", "-loglevel", "warning",
		"-f", "pulse", "-i", micDevice,
		"-f", "s16le", "-ac", "1", "-ar", "16000",
		"pipe:1",
	}
}
