package recording

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestEncodeWAVHeader(t *testing.T) {
	samples := make([]int16, 16000) // 1s of silence
	b := encodeWAV(samples, 16000)

	if len(b) != wavHeaderSize+len(samples)*2 {
		t.Fatalf("payload length = %d, want %d", len(b), wavHeaderSize+len(samples)*2)
	}

	if got := binary.LittleEndian.Uint16(b[20:22]); got != 1 {
		t.Errorf("format tag = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(b[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(b[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
	if got := binary.LittleEndian.Uint16(b[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(b[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(b[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", got, len(samples)*2)
	}
}

func TestValidWAV(t *testing.T) {
	valid := encodeWAV(make([]int16, 100), 16000)

	corrupt := func(offset int) []byte {
		b := make([]byte, len(valid))
		copy(b, valid)
		b[offset] ^= 0xff
		return b
	}

	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{"valid", valid, true},
		{"empty", nil, false},
		{"truncated", valid[:43], false},
		{"bad_riff", corrupt(0), false},
		{"bad_wave", corrupt(8), false},
		{"bad_fmt", corrupt(12), false},
		{"bad_data", corrupt(36), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validWAV(tt.buf); got != tt.want {
				t.Errorf("validWAV = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSynthesizeTone(t *testing.T) {
	b := synthesizeTone(4 * time.Second)

	if !validWAV(b) {
		t.Fatal("synthesized payload failed the container validator")
	}
	wantLen := wavHeaderSize + 4*wavSampleRate*2
	if len(b) != wantLen {
		t.Fatalf("payload length = %d, want %d", len(b), wantLen)
	}

	// The tone must not be silence.
	var nonZero int
	for i := wavHeaderSize; i+1 < len(b); i += 2 {
		if int16(binary.LittleEndian.Uint16(b[i:i+2])) != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatal("synthesized payload is silent")
	}
}

func TestSynthesizeToneGrows(t *testing.T) {
	short := synthesizeTone(3 * time.Second)
	long := synthesizeTone(6 * time.Second)
	if len(long) <= len(short) {
		t.Fatalf("longer tone not longer: %d <= %d", len(long), len(short))
	}
}
