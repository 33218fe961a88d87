package recording

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// FFmpegBackend captures raw PCM from an ffmpeg process's standard output.
// One instance covers one argument shape: mixed (two devices merged through
// an amix filter where the platform supports it) or microphone-only.
type FFmpegBackend struct {
	name    string
	mode    Mode
	binPath string // optional override, otherwise resolved from PATH
	args    []string

	mu   sync.Mutex
	proc *Process
}

// NewMixedAudioBackend captures system and microphone audio merged into one
// stream, using the platform's capture arguments.
func NewMixedAudioBackend(binPath, systemDevice, micDevice string) *FFmpegBackend {
	return &FFmpegBackend{
		name:    "mixed-audio",
		mode:    ModeMixed,
		binPath: binPath,
		args:    mixedCaptureArgs(systemDevice, micDevice),
	}
}

// NewMicrophoneBackend captures the default (or configured) microphone only.
func NewMicrophoneBackend(binPath, micDevice string) *FFmpegBackend {
	return &FFmpegBackend{
		name:    "microphone-only",
		mode:    ModeMicrophone,
		binPath: binPath,
		args:    microphoneCaptureArgs(micDevice),
	}
}

func (b *FFmpegBackend) Name() string { return b.name }

// Attempt spawns ffmpeg and waits for the first non-empty stdout chunk.
// Every chunk is appended to the session buffer immediately, so callers can
// snapshot "audio so far" mid-recording.
func (b *FFmpegBackend) Attempt(ctx context.Context, sess *Session) (Outcome, error) {
	bin := b.binPath
	if bin == "" {
		path, err := exec.LookPath("ffmpeg")
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: ffmpeg not found", ErrBackendUnavailable)
		}
		bin = path
	}

	proc, err := Spawn(bin, b.args...)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	timer := time.NewTimer(processLiveness)
	defer timer.Stop()

	// A closed diagnostics channel must not keep its case ready forever.
	diags := proc.Diagnostics

	for {
		select {
		case chunk, ok := <-proc.Chunks:
			if !ok {
				proc.Kill()
				return Outcome{}, fmt.Errorf("%w: %s output closed", ErrBackendUnavailable, b.name)
			}
			if len(chunk) == 0 {
				continue
			}
			sess.Append(chunk)
			b.mu.Lock()
			b.proc = proc
			b.mu.Unlock()
			go b.pump(proc, sess)
			return Outcome{Success: true, Mode: b.mode, Ext: ".pcm"}, nil

		case d, ok := <-diags:
			if !ok {
				diags = nil
				continue
			}
			if d.Fatal {
				slog.Warn("capture device failure", "backend", b.name, "stderr", d.Line)
				proc.Terminate(defaultKillGrace)
				return Outcome{}, fmt.Errorf("%w: %s", ErrDeviceFailure, d.Line)
			}

		case <-proc.Done:
			return Outcome{}, fmt.Errorf("%w: %s exited with code %d",
				ErrBackendUnavailable, b.name, proc.ExitCode())

		case <-timer.C:
			proc.Terminate(defaultKillGrace)
			return Outcome{}, fmt.Errorf("%w: %s", ErrNoData, b.name)

		case <-ctx.Done():
			proc.Terminate(defaultKillGrace)
			return Outcome{}, ctx.Err()
		}
	}
}

// pump streams the remaining chunks into the session buffer until the
// process exits. Post-liveness diagnostics are advisory and only logged.
func (b *FFmpegBackend) pump(proc *Process, sess *Session) {
	go func() {
		for d := range proc.Diagnostics {
			if d.Fatal {
				slog.Warn("capture process diagnostic", "backend", b.name, "stderr", d.Line)
			}
		}
	}()
	for chunk := range proc.Chunks {
		sess.Append(chunk)
	}
}

// Stop terminates the capture process gracefully, then forcibly after the
// grace period. Safe to call when the process already exited.
func (b *FFmpegBackend) Stop(*Session) error {
	b.mu.Lock()
	proc := b.proc
	b.proc = nil
	b.mu.Unlock()

	if proc == nil {
		return nil
	}
	proc.Terminate(defaultKillGrace)
	return nil
}
