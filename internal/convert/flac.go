package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/orcaman/writerseeker"
)

const (
	flacBlockSize = 4096
	flacBitDepth  = 16
)

// WAVToFLAC turns a wav file into mono 16 bit FLAC, the format the Google
// recognizer wants, and reports the sample rate. When the native encoder
// fails the flac executable is tried.
func WAVToFLAC(wavData []byte) ([]byte, int, error) {
	buf, err := DecodeWAV(bytes.NewReader(wavData))
	if err != nil {
		return nil, 0, err
	}
	samples := toMono16(buf)
	rate := buf.Format.SampleRate

	flacData, err := EncodeFLAC(samples, rate)
	if err == nil {
		return flacData, rate, nil
	}

	flacData, execErr := EncodeFLACExecutable(wavData)
	if execErr != nil {
		return nil, 0, errors.Join(err, execErr)
	}
	return flacData, rate, nil
}

// DecodeWAV reads a complete PCM wav stream.
func DecodeWAV(r io.ReadSeeker) (*audio.IntBuffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 || buf.Format.SampleRate == 0 {
		return nil, errors.New("wav file has no format")
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(dec.BitDepth)
	}
	return buf, nil
}

// toMono16 averages the channels and rescales the samples to 16 bits.
func toMono16(buf *audio.IntBuffer) []int32 {
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	shift := buf.SourceBitDepth - flacBitDepth

	out := make([]int32, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		v := sum / channels
		switch {
		case buf.SourceBitDepth == 8:
			// 8 bit wav is unsigned
			v = (v - 128) << 8
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		out[i] = int32(v)
	}
	return out
}

// EncodeFLAC writes verbatim (uncompressed) mono FLAC frames.
func EncodeFLAC(samples []int32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to encode")
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: flacBitDepth,
		NSamples:      uint64(len(samples)),
	}

	file := &writerseeker.WriterSeeker{}
	enc, err := flac.NewEncoder(file, info)
	if err != nil {
		return nil, fmt.Errorf("creating FLAC encoder: %w", err)
	}

	for i, num := 0, uint64(0); i < len(samples); i, num = i+flacBlockSize, num+1 {
		end := i + flacBlockSize
		if end > len(samples) {
			end = len(samples)
		}
		block := samples[i:end]
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(len(block)),
				SampleRate:        uint32(sampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     flacBitDepth,
				Num:               num,
			},
			Subframes: []*frame.Subframe{
				{
					SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
					Samples:   block,
					NSamples:  len(block),
				},
			},
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("writing FLAC frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing FLAC encoder: %w", err)
	}
	return io.ReadAll(file.Reader())
}

// EncodeFLACExecutable pipes wav data through the flac command line encoder.
func EncodeFLACExecutable(wavData []byte) ([]byte, error) {
	flacConverter, err := getExecutableFLAC()
	if err != nil {
		return nil, fmt.Errorf("failed to get FLAC converter: %w", err)
	}

	cmd := exec.Command(flacConverter, "--stdout", "--totally-silent", "--best", "-")
	cmd.Stdin = bytes.NewReader(wavData)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run FLAC converter: %w", err)
	}
	return out.Bytes(), nil
}

func getExecutableFLAC() (string, error) {
	flacConverter, err := exec.LookPath("flac")
	if err == nil {
		return flacConverter, nil
	}

	// fall back to a binary shipped next to the executable
	basePath, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return "", err
	}
	system, machine := runtime.GOOS, runtime.GOARCH
	// TODO: bundle a windows build of flac
	if system != "darwin" || (machine != "amd64" && machine != "arm64") {
		return "", errors.New("FLAC conversion utility not available - consider installing the FLAC command line application")
	}
	flacConverter = filepath.Join(basePath, "flac-mac")
	if err := ensureExecutable(flacConverter); err != nil {
		return "", err
	}
	return flacConverter, nil
}

// ensureExecutable ensures that the file at the given path is executable.
func ensureExecutable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return os.Chmod(path, 0o755)
}
