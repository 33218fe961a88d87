package recording

import (
	"runtime"
	"testing"
	"time"
)

func TestClassifyDiagnostic(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"avfoundation: Permission denied", true},
		{"Device busy", true},
		{"no such device: :1", true},
		{"Invalid device index", true},
		{"Guessed Channel Layout for Input Stream", false},
		{"size=  12kB time=00:00:01", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := classifyDiagnostic(tt.line); got != tt.want {
				t.Errorf("classifyDiagnostic(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSpawnMissingBinary(t *testing.T) {
	if _, err := Spawn("/nonexistent/capture-binary"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestSpawnStreamsChunksAndExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	p, err := Spawn("sh", "-c", "printf audiodata; echo warning >&2")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	var got []byte
	for chunk := range p.Chunks {
		got = append(got, chunk...)
	}
	if string(got) != "audiodata" {
		t.Fatalf("stdout = %q, want %q", got, "audiodata")
	}

	select {
	case <-p.Done:
	case <-time.After(5 * time.Second):
		t.Fatal("process never exited")
	}
	if p.ExitCode() != 0 {
		t.Fatalf("exit code = %d, want 0", p.ExitCode())
	}

	d, ok := <-p.Diagnostics
	if !ok {
		t.Fatal("expected one diagnostic line")
	}
	if d.Fatal {
		t.Fatalf("benign warning classified fatal: %q", d.Line)
	}
}

func TestSpawnDeliversFullOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	// The process writes far more than the channel buffer and exits; every
	// byte must still come through, including the tail written right before
	// exit.
	const want = 1 << 20
	p, err := Spawn("sh", "-c", "head -c 1048576 /dev/zero")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	total := 0
	for chunk := range p.Chunks {
		total += len(chunk)
	}
	if total != want {
		t.Fatalf("received %d bytes, want %d", total, want)
	}
}

func TestKillUndrainedProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	// Nobody drains Chunks; Kill must still complete without deadlocking on
	// the blocked stream goroutine.
	p, err := Spawn("sh", "-c", "while :; do printf xxxxxxxxxxxxxxxx; done")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	killed := make(chan struct{})
	go func() {
		p.Kill()
		close(killed)
	}()

	select {
	case <-killed:
	case <-time.After(10 * time.Second):
		t.Fatal("Kill deadlocked on undrained output")
	}
}

func TestTerminateStopsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}

	p, err := Spawn("sleep", "30")
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	start := time.Now()
	p.Terminate(2 * time.Second)
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("Terminate took %v", elapsed)
	}

	select {
	case <-p.Done:
	default:
		t.Fatal("Done not closed after Terminate")
	}

	// Idempotent on an exited process.
	p.Terminate(time.Second)
	p.Kill()
}
