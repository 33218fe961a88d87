//go:build darwin

package recording

// DefaultCascade on macOS prefers the privileged system-audio helper, then
// ffmpeg mixing system and microphone audio, then microphone only, and
// finally the synthetic fallback.
func DefaultCascade(cfg CascadeConfig) []Backend {
	return []Backend{
		NewHelperBackend(cfg.HelperPath, cfg.WorkDir),
		NewMixedAudioBackend(cfg.FFmpegPath, cfg.SystemDevice, cfg.MicDevice),
		NewMicrophoneBackend(cfg.FFmpegPath, cfg.MicDevice),
		NewSyntheticBackend(),
	}
}

// mixedCaptureArgs merges the system loopback device and the microphone
// through an amix filter, emitting mono 16 kHz s16le on stdout.
func mixedCaptureArgs(systemDevice, micDevice string) []string {
	if systemDevice == "" {
		systemDevice = ":0"
	}
	if micDevice == "" {
		micDevice = ":1"
	}
	return []string{
		"-hide_banner", "-loglevel", "warning",
		"-f", "avfoundation", "-i", systemDevice,
		"-f", "avfoundation", "-i", micDevice,
		"-filter_complex", "amix=inputs=2:duration=longest",
		"-f", "s16le", "-ac", "1", "-ar", "16000",
		"pipe:1",
	}
}

func microphoneCaptureArgs(micDevice string) []string {
	if micDevice == "" {
		micDevice = ":0"
	}
	return []string{
		"-hide_banner", "-loglevel", "warning",
		"-f", "avfoundation", "-i", micDevice,
		"-f", "s16le", "-ac", "1", "-ar", "16000",
		"pipe:1",
	}
}
