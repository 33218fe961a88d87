package recording

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// defaultKillGrace is how long a terminated process gets to exit before it
// is killed outright.
const defaultKillGrace = 5 * time.Second

// fatalStderr are the substrings that classify a stderr line as a device
// failure rather than a benign warning. The classification is advisory
// input to the owning backend, not a hard signal by itself.
var fatalStderr = []string{
	"permission denied",
	"device busy",
	"no such device",
	"invalid device",
}

// Diagnostic is one classified stderr line from a capture process.
type Diagnostic struct {
	Line  string
	Fatal bool
}

// classifyDiagnostic reports whether a stderr line matches a known fatal
// device condition. Matching is case-insensitive.
func classifyDiagnostic(line string) bool {
	lower := strings.ToLower(line)
	for _, s := range fatalStderr {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Process is one spawned capture process. Chunks carries stdout as binary
// chunks, Diagnostics carries classified stderr lines, and Done is closed
// once the process has exited. Both channels are closed when their stream
// ends. The caller must call Terminate to avoid leaks.
type Process struct {
	Chunks      <-chan []byte
	Diagnostics <-chan Diagnostic
	Done        <-chan struct{}

	cmd   *exec.Cmd
	done  chan struct{}
	abort chan struct{}
	stop  sync.Once

	exitCode int
}

// Spawn starts one OS process and begins streaming its output. Exactly one
// process is created per call.
func Spawn(name string, args ...string) (*Process, error) {
	cmd := exec.Command(name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	chunks := make(chan []byte, 16)
	diags := make(chan Diagnostic, 16)
	done := make(chan struct{})
	abort := make(chan struct{})

	p := &Process{
		Chunks:      chunks,
		Diagnostics: diags,
		Done:        done,
		cmd:         cmd,
		done:        done,
		abort:       abort,
		exitCode:    -1,
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		streamChunks(stdout, chunks, abort)
	}()
	go func() {
		defer readers.Done()
		streamDiagnostics(stderr, diags, abort)
	}()

	go func() {
		// Wait closes the pipes, so it must not run until both streams have
		// read through to EOF; otherwise a terminating process's final flush
		// is cut off mid-read.
		readers.Wait()
		err := cmd.Wait()
		if err != nil {
			slog.Debug("capture process exited", "command", name, "error", err)
		}
		if cmd.ProcessState != nil {
			p.exitCode = cmd.ProcessState.ExitCode()
		}
		close(done)
	}()

	return p, nil
}

// abortStreams releases stream goroutines blocked on an undrained channel.
// From then on they read the pipes to EOF and discard.
func (p *Process) abortStreams() {
	p.stop.Do(func() { close(p.abort) })
}

// ExitCode returns the process exit code, valid only after Done is closed.
func (p *Process) ExitCode() int {
	return p.exitCode
}

// Terminate asks the process to exit, escalating to a kill after the grace
// period. Safe to call after the process has already exited.
func (p *Process) Terminate(grace time.Duration) {
	p.abortStreams()

	select {
	case <-p.done:
		return
	default:
	}

	if grace <= 0 {
		grace = defaultKillGrace
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery can fail on platforms without SIGTERM support or
		// when the process is already gone.
		_ = p.cmd.Process.Kill()
	}

	select {
	case <-p.done:
	case <-time.After(grace):
		slog.Warn("capture process ignored SIGTERM, killing", "pid", p.cmd.Process.Pid)
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

// Kill terminates the process immediately without a grace period.
func (p *Process) Kill() {
	p.abortStreams()

	select {
	case <-p.done:
		return
	default:
	}
	_ = p.cmd.Process.Kill()
	<-p.done
}

// streamChunks forwards stdout reads as copied chunks. Delivery is
// preferred; once abort fires and the channel is full the rest of the
// stream is read to EOF and discarded, so an abandoned attempt can never
// strand this goroutine or stall the exit path.
func streamChunks(r io.Reader, out chan<- []byte, abort <-chan struct{}) {
	defer close(out)
	buf := make([]byte, 32*1024)
	discard := false
	for {
		n, err := r.Read(buf)
		if n > 0 && !discard {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case out <- chunk:
			default:
				select {
				case out <- chunk:
				case <-abort:
					discard = true
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func streamDiagnostics(r io.Reader, out chan<- Diagnostic, abort <-chan struct{}) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	discard := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || discard {
			continue
		}
		d := Diagnostic{Line: line, Fatal: classifyDiagnostic(line)}
		select {
		case out <- d:
		default:
			select {
			case out <- d:
			case <-abort:
				discard = true
			}
		}
	}
}
