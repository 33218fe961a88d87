// Package types provides shared type definitions for the application.
package types

// RecordingInfo is the frontend-facing snapshot of one recording session.
// Timestamps are Unix milliseconds.
type RecordingInfo struct {
	ID        string `json:"id"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime,omitempty"`
	Duration  int64  `json:"duration,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Size      int    `json:"size"`
	FilePath  string `json:"filePath,omitempty"`
}

// Status is the recording state pushed to the frontend on every
// transition and returned from status queries.
type Status struct {
	IsRecording bool           `json:"isRecording"`
	Recording   *RecordingInfo `json:"recording,omitempty"`
	Mode        string         `json:"mode,omitempty"`
}

// StartResult reports the outcome of starting a recording.
type StartResult struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
}

// HistoryEntry is one past recording as listed to the frontend.
type HistoryEntry struct {
	ID        string `json:"id"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime,omitempty"`
	Duration  int64  `json:"duration"`
	Mode      string `json:"mode"`
	Size      int    `json:"size"`
	FilePath  string `json:"filePath,omitempty"`
}

// TranscriptResult is the outcome of submitting a recording for
// transcription.
type TranscriptResult struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	FilePath string `json:"filePath"`
}
