package convert

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/orcaman/writerseeker"
)

// go-mp3 always decodes to interleaved signed 16 bit little endian stereo.
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

// Native decodes in process.
type Native struct{}

func (Native) MP3ToWAV(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	buf, err := DecodeMP3(ctx, in)
	if err != nil {
		return err
	}
	return writeWAV(dst, buf)
}

// DecodeMP3 decodes a whole mp3 stream into a 16 bit stereo buffer.
func DecodeMP3(ctx context.Context, r io.Reader) (*audio.IntBuffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	pcm := make([]byte, 0, max64(dec.Length(), 0))
	chunk := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := dec.Read(chunk)
		pcm = append(pcm, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding mp3: %w", err)
		}
	}

	if len(pcm) == 0 {
		return nil, errors.New("mp3 contains no audio")
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: mp3Channels, SampleRate: dec.SampleRate()},
		Data:           samples,
		SourceBitDepth: mp3BitDepth,
	}, nil
}

// writeWAV encodes buf in memory first so a failed conversion never leaves a
// truncated file at dst.
func writeWAV(dst string, buf *audio.IntBuffer) error {
	file := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(file, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoder close: %w", err)
	}

	data, err := io.ReadAll(file.Reader())
	if err != nil {
		return fmt.Errorf("reading wav into memory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// FFmpeg shells out to the ffmpeg executable.
type FFmpeg struct {
	// Path to ffmpeg; looked up on PATH when empty.
	Path string
}

func (f FFmpeg) MP3ToWAV(ctx context.Context, src, dst string) error {
	bin := f.Path
	if bin == "" {
		var err error
		bin, err = exec.LookPath("ffmpeg")
		if err != nil {
			return errors.New("ffmpeg not available - install it or use the native converter")
		}
	}

	cmd := exec.CommandContext(ctx, bin, "-y", "-loglevel", "error", "-i", src, dst)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	return nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
