package speech

import (
	"context"
	"time"

	"github.com/nadzzz/parley/internal/audio"
)

// SilentPlayer discards audio but takes as long as it would have played.
// It backs playback.backend "none" for headless servers.
type SilentPlayer struct {
	// Scale shortens the wait; 0 means real time.
	Scale float64
}

var _ Player = SilentPlayer{}

// Play waits for the clip's duration or until ctx is cancelled.
func (p SilentPlayer) Play(ctx context.Context, pcm []byte, f audio.Format) error {
	d := f.Duration(len(pcm))
	if p.Scale > 0 {
		d = time.Duration(float64(d) * p.Scale)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is a no-op.
func (SilentPlayer) Close() error { return nil }
