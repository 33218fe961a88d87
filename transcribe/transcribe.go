// Package transcribe hands finished recordings to the OpenAI
// transcription API. It is the downstream consumer boundary: recordings
// are saved to disk first, then submitted from their file path.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultModel is used when the config does not name one.
const DefaultModel = openai.AudioModelWhisper1

// ErrNoAPIKey is returned when transcription is requested without a
// configured API key.
var ErrNoAPIKey = errors.New("transcribe: no API key configured")

// Client submits audio files for transcription.
type Client struct {
	api   openai.Client
	model openai.AudioModel
	ready bool
}

// New builds a client. An empty apiKey yields a client whose calls fail
// with ErrNoAPIKey, so callers can construct it unconditionally and only
// care at submission time.
func New(apiKey string, model string) *Client {
	c := &Client{model: DefaultModel}
	if model != "" {
		c.model = openai.AudioModel(model)
	}
	if apiKey == "" {
		return c
	}
	c.api = openai.NewClient(option.WithAPIKey(apiKey))
	c.ready = true
	return c
}

// Ready reports whether the client has credentials to submit with.
func (c *Client) Ready() bool {
	return c.ready
}

// Model returns the model that submissions will use.
func (c *Client) Model() string {
	return string(c.model)
}

// Transcribe submits the audio file at path and returns the transcript
// text.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if !c.ready {
		return "", ErrNoAPIKey
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return resp.Text, nil
}
