package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"github.com/nadzzz/parley/internal/audio"
)

// PulsePlayer plays 16-bit PCM through a PulseAudio (or PipeWire-pulse) server.
type PulsePlayer struct {
	mu     sync.Mutex
	client *pulse.Client
}

var _ Player = (*PulsePlayer)(nil)

// NewPulsePlayer connects to the session's PulseAudio server.
func NewPulsePlayer(appName string) (*PulsePlayer, error) {
	if appName == "" {
		appName = "parley"
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName(appName))
	if err != nil {
		return nil, fmt.Errorf("connecting to pulseaudio: %w", err)
	}
	return &PulsePlayer{client: c}, nil
}

// Play streams pcm and blocks until it has drained or ctx is cancelled.
func (p *PulsePlayer) Play(ctx context.Context, pcm []byte, f audio.Format) error {
	if f.Width != 2 {
		return fmt.Errorf("unsupported sample width %d", f.Width)
	}
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if ctx.Err() != nil || pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})

	layout := pulse.PlaybackMono
	if f.Channels == 2 {
		layout = pulse.PlaybackStereo
	}

	p.mu.Lock()
	c := p.client
	p.mu.Unlock()
	if c == nil {
		return fmt.Errorf("pulse player closed")
	}

	stream, err := c.NewPlayback(reader,
		layout,
		pulse.PlaybackSampleRate(f.SampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(s *proto.CreatePlaybackStream) {
			s.ChannelVolumes = make(proto.ChannelVolumes, f.Channels)
			for i := range s.ChannelVolumes {
				s.ChannelVolumes[i] = uint32(proto.VolumeNorm)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("creating playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	stream.Stop()

	if err := stream.Error(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("playback: %w", err)
	}
	return ctx.Err()
}

// Close disconnects from the server.
func (p *PulsePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
	return nil
}
