// Package playback plays mp3 and wav files on the default output device.
package playback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bz888/vox/internal/convert"
	"github.com/bz888/vox/internal/logger"
	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Player writes decoded audio to a portaudio output stream. Calls are
// serialised since there is a single output device.
type Player struct {
	mu  sync.Mutex
	log *logger.Logger
}

func NewPlayer() *Player {
	return &Player{log: logger.NewLogger("playback")}
}

// Play blocks until the file has been played or ctx is done.
func (p *Player) Play(ctx context.Context, path string) error {
	buf, err := load(ctx, path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	channels := buf.Format.NumChannels
	out := make([]int16, framesPerBuffer*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(buf.Format.SampleRate), framesPerBuffer, &out)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	p.log.Info("Playing ", path, " at ", buf.Format.SampleRate, "Hz, ", channels, " channels")

	samples := to16(buf)
	for i := 0; i < len(samples); i += len(out) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(out, samples[i:])
		for j := n; j < len(out); j++ {
			out[j] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to stream: %w", err)
		}
	}
	return nil
}

func load(ctx context.Context, path string) (*audio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return convert.DecodeMP3(ctx, f)
	case ".wav":
		return convert.DecodeWAV(f)
	default:
		return nil, fmt.Errorf("cannot play %s", filepath.Ext(path))
	}
}

// to16 rescales samples of any bit depth to signed 16 bit.
func to16(buf *audio.IntBuffer) []int16 {
	shift := buf.SourceBitDepth - 16
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case buf.SourceBitDepth == 8:
			v = (v - 128) << 8
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		out[i] = int16(v)
	}
	return out
}
