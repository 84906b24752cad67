// Package audio holds the PCM format description and the WAV container
// used for synthesized speech on disk.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Format describes interleaved little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
	Width      int // bytes per sample
}

// Duration returns how long n bytes of PCM in this format play for.
func (f Format) Duration(n int) time.Duration {
	frame := f.Channels * f.Width
	if frame <= 0 || f.SampleRate <= 0 {
		return 0
	}
	frames := n / frame
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// ErrNotWAV is returned by DecodeWAV for input that is not a PCM WAV file.
var ErrNotWAV = errors.New("not a PCM wav file")

// EncodeWAV writes pcm wrapped in a 44-byte RIFF/WAVE header.
func EncodeWAV(w io.Writer, pcm []byte, f Format) error {
	dataLen := len(pcm)

	buf := &bytes.Buffer{}
	buf.Grow(44)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate*f.Channels*f.Width))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels*f.Width))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Width*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	return nil
}

// DecodeWAV reads a PCM WAV stream, skipping unknown chunks.
func DecodeWAV(r io.Reader) (Format, []byte, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Format{}, nil, fmt.Errorf("reading riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Format{}, nil, ErrNotWAV
	}

	var (
		f       Format
		haveFmt bool
	)
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Format{}, nil, fmt.Errorf("reading chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return Format{}, nil, fmt.Errorf("reading fmt chunk: %w", err)
			}
			if size < 16 || binary.LittleEndian.Uint16(body[0:2]) != 1 {
				return Format{}, nil, ErrNotWAV
			}
			f.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			f.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			f.Width = int(binary.LittleEndian.Uint16(body[14:16])) / 8
			haveFmt = true

		case "data":
			if !haveFmt {
				return Format{}, nil, ErrNotWAV
			}
			pcm := make([]byte, size)
			n, err := io.ReadFull(r, pcm)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return Format{}, nil, fmt.Errorf("reading data chunk: %w", err)
			}
			return f, pcm[:n], nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return Format{}, nil, fmt.Errorf("skipping %q chunk: %w", id, err)
			}
		}
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return Format{}, nil, fmt.Errorf("skipping pad byte: %w", err)
			}
		}
	}
}
