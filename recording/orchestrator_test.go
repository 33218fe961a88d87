package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeBackend scripts one cascade entry and records lifecycle events into a
// shared log so tests can assert ordering.
type fakeBackend struct {
	name string
	mode Mode
	ext  string
	err  error
	data []byte

	mu      sync.Mutex
	log     *eventLog
	stopped int
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Attempt(_ context.Context, sess *Session) (Outcome, error) {
	if f.log != nil {
		f.log.add(f.name + ":attempt")
	}
	if f.err != nil {
		if f.log != nil {
			f.log.add(f.name + ":teardown")
		}
		return Outcome{}, f.err
	}
	sess.Append(f.data)
	return Outcome{Success: true, Mode: f.mode, Ext: f.ext}, nil
}

func (f *fakeBackend) Stop(*Session) error {
	f.mu.Lock()
	f.stopped++
	f.mu.Unlock()
	if f.log != nil {
		f.log.add(f.name + ":stop")
	}
	return nil
}

func (f *fakeBackend) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func newTestOrchestrator(t *testing.T, cascade ...Backend) *Orchestrator {
	t.Helper()
	return NewOrchestrator(cascade, NewStore(t.TempDir()))
}

func TestStartAlwaysSucceeds(t *testing.T) {
	o := newTestOrchestrator(t,
		&fakeBackend{name: "a", err: ErrBackendUnavailable},
		&fakeBackend{name: "b", err: ErrDeviceFailure},
		NewSyntheticBackend(),
	)
	defer o.CleanupAll()

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := o.Status()
	if !st.IsRecording {
		t.Fatal("expected recording after Start")
	}
	if st.Mode != ModeMock {
		t.Fatalf("mode = %q, want %q", st.Mode, ModeMock)
	}
	if !validWAV(o.Store().Active().Bytes()) {
		t.Fatal("synthetic session buffer failed the container validator")
	}
}

func TestDoubleStart(t *testing.T) {
	o := newTestOrchestrator(t, &fakeBackend{name: "a", mode: ModeMixed, data: []byte("x")})

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	first := o.Store().Active()

	if err := o.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second Start = %v, want ErrAlreadyRecording", err)
	}

	// The first session is unaffected.
	if o.Store().Active() != first {
		t.Fatal("active session replaced by failed second Start")
	}
	if !o.Status().IsRecording {
		t.Fatal("first session no longer recording")
	}
}

func TestStopIdle(t *testing.T) {
	o := newTestOrchestrator(t, &fakeBackend{name: "a", mode: ModeMixed})

	if _, err := o.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("Stop on idle = %v, want ErrNotRecording", err)
	}
}

func TestStopFinalizesSession(t *testing.T) {
	backend := &fakeBackend{name: "a", mode: ModeMicrophone, data: []byte("pcmpcm")}
	o := newTestOrchestrator(t, backend)

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess, err := o.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if backend.stopCount() != 1 {
		t.Fatalf("owner stopped %d times, want 1", backend.stopCount())
	}
	if got := sess.EndedAt.UnixMilli() - sess.StartedAt.UnixMilli(); got != sess.DurationMS {
		t.Fatalf("duration = %d, want endTime-startTime = %d", sess.DurationMS, got)
	}
	if sess.Mode() != ModeMicrophone {
		t.Fatalf("mode = %q, want %q", sess.Mode(), ModeMicrophone)
	}

	completed := o.Store().Completed()
	if len(completed) != 1 || completed[0] != sess {
		t.Fatalf("completed = %v, want exactly the stopped session once", completed)
	}
	if o.State() != StateIdle {
		t.Fatalf("state = %v, want idle", o.State())
	}
}

func TestCascadeFailover(t *testing.T) {
	log := &eventLog{}
	mixed := &fakeBackend{name: "mixed", err: fmt.Errorf("%w: device busy", ErrDeviceFailure), log: log}
	mic := &fakeBackend{name: "mic", mode: ModeMicrophone, data: []byte("live"), log: log}
	o := newTestOrchestrator(t, mixed, mic)

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := o.Status().Mode; got != ModeMicrophone {
		t.Fatalf("mode = %q, want %q", got, ModeMicrophone)
	}

	// The failed attempt tears down before the next one begins.
	want := []string{"mixed:attempt", "mixed:teardown", "mic:attempt"}
	got := log.all()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCleanupAllWhileRecording(t *testing.T) {
	backend := &fakeBackend{name: "a", mode: ModeMixed, data: []byte("audio")}
	o := newTestOrchestrator(t, backend)

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := o.Store().SaveForProcessing(); err != nil {
		t.Fatalf("SaveForProcessing: %v", err)
	}

	o.CleanupAll()

	if backend.stopCount() != 1 {
		t.Fatalf("backend stopped %d times, want 1", backend.stopCount())
	}
	if got := len(o.Store().Completed()); got != 0 {
		t.Fatalf("completed = %d, want 0", got)
	}
	if o.Status().IsRecording {
		t.Fatal("still recording after CleanupAll")
	}
	assertDirEmpty(t, o.Store().Dir())
}

func TestStatusTransitionsNotified(t *testing.T) {
	backend := &fakeBackend{name: "a", mode: ModeSystem, data: []byte("x")}
	o := newTestOrchestrator(t, backend)

	var mu sync.Mutex
	var seen []Status
	o.Broadcaster().SetObserver(func(s Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := o.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 4 {
		t.Fatalf("got %d notifications, want at least 4 (starting, recording, stopping, idle)", len(seen))
	}
	if seen[0].IsRecording {
		t.Error("first notification should not be recording yet")
	}
	recording := seen[1]
	if !recording.IsRecording || recording.Mode != ModeSystem {
		t.Errorf("second notification = %+v, want recording in mode %q", recording, ModeSystem)
	}
	stopping := seen[len(seen)-2]
	if stopping.IsRecording {
		t.Error("stopping notification still marked recording")
	}
	if stopping.Recording == nil || stopping.Recording.EndMS != 0 {
		t.Errorf("stopping notification = %+v, want the not-yet-finalized session", stopping)
	}
	final := seen[len(seen)-1]
	if final.IsRecording {
		t.Error("final notification still recording")
	}
	if final.Recording == nil || final.Recording.EndMS == 0 {
		t.Error("final notification missing finalized session")
	}
}

// gateBackend blocks inside Attempt until released, standing in for a
// backend whose liveness window is still running.
type gateBackend struct {
	release chan struct{}

	mu      sync.Mutex
	stopped int
}

func (g *gateBackend) Name() string { return "gated" }

func (g *gateBackend) Attempt(_ context.Context, sess *Session) (Outcome, error) {
	<-g.release
	sess.Append([]byte("late"))
	return Outcome{Success: true, Mode: ModeMixed, Ext: ".pcm"}, nil
}

func (g *gateBackend) Stop(*Session) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped++
	return nil
}

func (g *gateBackend) stopCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stopped
}

func TestCleanupDuringStartAbandonsAttempt(t *testing.T) {
	gate := &gateBackend{release: make(chan struct{})}
	o := newTestOrchestrator(t, gate)

	errCh := make(chan error, 1)
	go func() { errCh <- o.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for o.State() != StateStarting {
		if time.Now().After(deadline) {
			t.Fatal("orchestrator never entered starting")
		}
		time.Sleep(time.Millisecond)
	}

	// Cleanup resets the machine while the attempt is still in flight; the
	// backend then succeeds for a session that is no longer active.
	o.CleanupAll()
	close(gate.release)

	if err := <-errCh; !errors.Is(err, ErrStartAborted) {
		t.Fatalf("Start = %v, want ErrStartAborted", err)
	}

	st := o.Status()
	if st.IsRecording || st.Recording != nil {
		t.Fatalf("status after cleanup = %+v, want idle with no session", st)
	}
	if o.State() != StateIdle {
		t.Fatalf("state = %v, want idle", o.State())
	}
	if gate.stopCount() != 1 {
		t.Fatalf("late backend stopped %d times, want 1", gate.stopCount())
	}

	// The abandoned session must not be stoppable.
	if _, err := o.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("Stop = %v, want ErrNotRecording", err)
	}

	// And a fresh start still works.
	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := o.Stop(); err != nil {
		t.Fatalf("stop restarted session: %v", err)
	}
}

func TestSyntheticRegeneratesWhileOpen(t *testing.T) {
	b := NewSyntheticBackend()
	b.regen = 20 * time.Millisecond
	o := newTestOrchestrator(t, b)

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess := o.Store().Active()
	initial := sess.Size()

	deadline := time.Now().Add(2 * time.Second)
	for sess.Size() <= initial {
		if time.Now().After(deadline) {
			t.Fatal("synthetic payload never regenerated")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := o.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !validWAV(sess.Bytes()) {
		t.Fatal("regenerated payload failed the container validator")
	}
}
