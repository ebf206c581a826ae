package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays fetched voice notes on the default output device. Payloads
// that are not already canonical WAV are normalized first, so the single
// oto context can stay at the voice rate for the life of the process.
type Player struct {
	norm *Normalizer
}

var (
	otoCtx     *oto.Context
	otoCtxErr  error
	otoCtxOnce sync.Once
)

// NewPlayer creates a player that renders through the given normalizer.
func NewPlayer(norm *Normalizer) *Player {
	return &Player{norm: norm}
}

func (p *Player) context() (*oto.Context, error) {
	otoCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   p.norm.targetRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoCtxErr = fmt.Errorf("failed to initialize audio output: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoCtxErr
}

// Play renders a payload and blocks until playback finishes.
func (p *Player) Play(payload []byte, mimeType string) error {
	encoded := p.norm.Normalize(payload, mimeType)
	if !encoded.Normalized {
		return fmt.Errorf("cannot play %s payload locally: not decodable as PCM WAV", mimeType)
	}

	ctx, err := p.context()
	if err != nil {
		return err
	}

	// Feed only the data chunk; the header is not audio.
	player := ctx.NewPlayer(bytes.NewReader(encoded.Payload[44:]))
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
