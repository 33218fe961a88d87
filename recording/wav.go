package recording

import (
	"bytes"
	"math"
	"time"
)

const (
	wavSampleRate = 16000
	wavHeaderSize = 44
)

// encodeWAV wraps mono 16-bit samples in a canonical 44-byte RIFF/WAVE
// header: little-endian size fields, PCM format tag, byte rate
// sampleRate*2, block align 2.
func encodeWAV(samples []int16, sampleRate int) []byte {
	dataSize := len(samples) * 2

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	// RIFF header
	buf.WriteString("RIFF")
	writeUint32LE(buf, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	writeUint32LE(buf, 16)                   // chunk size
	writeUint16LE(buf, 1)                    // PCM format tag
	writeUint16LE(buf, 1)                    // mono
	writeUint32LE(buf, uint32(sampleRate))   // sample rate
	writeUint32LE(buf, uint32(sampleRate*2)) // byte rate
	writeUint16LE(buf, 2)                    // block align
	writeUint16LE(buf, 16)                   // bits per sample

	// data chunk
	buf.WriteString("data")
	writeUint32LE(buf, uint32(dataSize))

	for _, s := range samples {
		writeInt16LE(buf, s)
	}

	return buf.Bytes()
}

// validWAV checks the four fixed-offset container markers before a buffer is
// accepted as canonical PCM WAV.
func validWAV(b []byte) bool {
	if len(b) < wavHeaderSize {
		return false
	}
	return string(b[0:4]) == "RIFF" &&
		string(b[8:12]) == "WAVE" &&
		string(b[12:16]) == "fmt " &&
		string(b[36:40]) == "data"
}

// synthesizeTone fabricates an amplitude-modulated 440 Hz tone of the given
// length as a mono 16 kHz 16-bit WAV payload. Samples are clamped to the
// int16 range.
func synthesizeTone(d time.Duration) []byte {
	n := int(d.Seconds() * wavSampleRate)
	samples := make([]int16, n)

	const (
		toneHz = 440.0
		modHz  = 0.3
	)

	for i := range samples {
		t := float64(i) / wavSampleRate
		envelope := 0.6 + 0.4*math.Sin(2*math.Pi*modHz*t)
		v := math.Sin(2*math.Pi*toneHz*t) * envelope * 0.5 * 32767
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}

	return encodeWAV(samples, wavSampleRate)
}

func writeUint16LE(w *bytes.Buffer, v uint16) {
	w.WriteByte(byte(v))
	w.WriteByte(byte(v >> 8))
}

func writeUint32LE(w *bytes.Buffer, v uint32) {
	w.WriteByte(byte(v))
	w.WriteByte(byte(v >> 8))
	w.WriteByte(byte(v >> 16))
	w.WriteByte(byte(v >> 24))
}

func writeInt16LE(w *bytes.Buffer, v int16) {
	w.WriteByte(byte(v))
	w.WriteByte(byte(v >> 8))
}
