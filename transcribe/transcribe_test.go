package transcribe

import (
	"context"
	"errors"
	"testing"
)

func TestNewWithoutKey(t *testing.T) {
	c := New("", "")
	if c.Ready() {
		t.Fatal("client without key reports ready")
	}
	if _, err := c.Transcribe(context.Background(), "/tmp/recording.wav"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestModelDefaults(t *testing.T) {
	if got := New("", "").Model(); got != string(DefaultModel) {
		t.Fatalf("default model = %q, want %q", got, DefaultModel)
	}
	if got := New("", "gpt-4o-transcribe").Model(); got != "gpt-4o-transcribe" {
		t.Fatalf("model override = %q", got)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	c := New("test-key", "")
	if _, err := c.Transcribe(context.Background(), "/nonexistent/recording.wav"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
