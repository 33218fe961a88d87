package recording

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	helperBinaryName = "tapedeck-helper"

	// helperReadyToken is printed by the helper on stdout before it produces
	// any audio. Failure lines are prefixed with helperErrorPrefix.
	helperReadyToken  = "READY"
	helperErrorPrefix = "ERROR:"
)

// HelperBackend records system audio through a privileged helper binary
// invoked as `<helper> <output-path>`. The helper writes a canonical PCM WAV
// file; on stop the file is read back into the session buffer.
type HelperBackend struct {
	binPath string // optional override
	workDir string

	mu      sync.Mutex
	proc    *Process
	outPath string
}

// NewHelperBackend creates a helper backend writing into workDir.
func NewHelperBackend(binPath, workDir string) *HelperBackend {
	return &HelperBackend{binPath: binPath, workDir: workDir}
}

func (b *HelperBackend) Name() string { return "native-helper" }

// Attempt spawns the helper and waits for its readiness token. A missing
// binary or spawn error is an immediate failure.
func (b *HelperBackend) Attempt(ctx context.Context, sess *Session) (Outcome, error) {
	bin := b.binPath
	if bin == "" {
		bin = findHelperBinary()
	}
	if bin == "" {
		return Outcome{}, fmt.Errorf("%w: helper binary not found", ErrBackendUnavailable)
	}

	if err := os.MkdirAll(b.workDir, 0o755); err != nil {
		return Outcome{}, fmt.Errorf("create work dir: %w", err)
	}
	outPath := filepath.Join(b.workDir, sessionFileName(sess, ".wav"))

	proc, err := Spawn(bin, outPath)
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
				return Outcome{}, fmt.Errorf("%w: helper output closed", ErrBackendUnavailable)
			}
			text := strings.TrimSpace(string(chunk))
			if strings.HasPrefix(text, helperErrorPrefix) {
				proc.Terminate(defaultKillGrace)
				return Outcome{}, fmt.Errorf("%w: %s", ErrDeviceFailure, text)
			}
			if strings.Contains(text, helperReadyToken) {
				b.mu.Lock()
				b.proc = proc
				b.outPath = outPath
				b.mu.Unlock()
				return Outcome{Success: true, Mode: ModeSystem, Ext: ".wav"}, nil
			}

		case d, ok := <-diags:
			if !ok {
				diags = nil
				continue
			}
			if d.Fatal {
				proc.Terminate(defaultKillGrace)
				return Outcome{}, fmt.Errorf("%w: %s", ErrDeviceFailure, d.Line)
			}

		case <-proc.Done:
			return Outcome{}, fmt.Errorf("%w: helper exited with code %d",
				ErrBackendUnavailable, proc.ExitCode())

		case <-timer.C:
			proc.Terminate(defaultKillGrace)
			return Outcome{}, fmt.Errorf("%w: helper readiness", ErrNoData)

		case <-ctx.Done():
			proc.Terminate(defaultKillGrace)
			return Outcome{}, ctx.Err()
		}
	}
}

// Stop terminates the helper, waits for it to flush, and reads the resulting
// file back into the session buffer.
func (b *HelperBackend) Stop(sess *Session) error {
	b.mu.Lock()
	proc := b.proc
	outPath := b.outPath
	b.proc = nil
	b.outPath = ""
	b.mu.Unlock()

	if proc == nil {
		return nil
	}
	proc.Terminate(defaultKillGrace)

	data, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("%w: read helper output: %w", ErrIO, err)
	}
	if !validWAV(data) {
		slog.Warn("helper produced a non-WAV payload", "path", outPath, "size", len(data))
	}
	sess.SetBuffer(data)
	sess.SetFilePath(outPath)
	return nil
}

// findHelperBinary searches the usual install locations, including the app
// bundle's Resources directory.
func findHelperBinary() string {
	locations := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".local", "bin"))
	}
	if execPath, err := os.Executable(); err == nil {
		locations = append(locations, filepath.Join(filepath.Dir(execPath), "..", "Resources"))
	}

	for _, loc := range locations {
		path := filepath.Join(loc, helperBinaryName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
