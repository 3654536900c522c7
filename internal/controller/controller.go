// Package controller drives the text to voice and voice to text workflow:
// which screen is active, validating input, calling the speech backends and
// turning their results into state for the UI.
package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bz888/vox/internal/logger"
	"github.com/bz888/vox/internal/sentiment"
	"github.com/bz888/vox/internal/speech"
	"github.com/google/uuid"
)

// Synthesis runs at normal speed, in English unless SetLanguage says otherwise.
const defaultLang = "en"

const instructions = `This converter provides two options:

1. Text to Voice:
   - Convert entered text to voice.
   - Enter text and click "Convert".

2. Voice to Text:
   - Convert an uploaded voice file (MP3/WAV) to text.
   - Select a file and click "Convert".`

var prompts = map[Mode]string{
	Home:        instructions,
	TextToVoice: "Enter text to convert into speech:",
	VoiceToText: "Select an MP3 or WAV file to convert into text:",
}

var messages = map[ErrorKind]string{
	EmptyInput:         "Please enter some text.",
	Unintelligible:     "Sorry, could not understand the audio.",
	ServiceUnavailable: "API service unavailable.",
	UnsupportedFormat:  "Only MP3 and WAV files are supported.",
	InvalidMode:        "That action is not available on this screen.",
	FileNotFound:       "The selected file does not exist.",
	ConversionFailed:   "Could not convert the MP3 file to WAV.",
	WriteFailed:        "Could not save the audio file.",
	Busy:               "A conversion is already running, please wait.",
}

type Converter interface {
	MP3ToWAV(ctx context.Context, src, dst string) error
}

type Analyzer interface {
	Analyze(text string) sentiment.Result
}

type Player interface {
	Play(ctx context.Context, path string) error
}

type Backends struct {
	Synthesizer speech.Synthesizer
	Recognizer  speech.Recognizer
	Converter   Converter
	Analyzer    Analyzer
	Player      Player
}

// Paths are overwritten on every conversion.
type Paths struct {
	// Output receives synthesized speech.
	Output string
	// Intermediate receives the wav rendition of an mp3 upload.
	Intermediate string
}

type Controller struct {
	backends Backends
	paths    Paths
	lang     string
	log      *logger.Logger

	// busy serialises conversions; the output paths have a single writer.
	busy sync.Mutex

	mu        sync.RWMutex
	state     State
	observers []Observer
	// gen changes on every SetMode; a conversion that started under an
	// older generation does not touch state.
	gen uint64
}

// New returns a controller on the Home screen.
func New(backends Backends, paths Paths) *Controller {
	return &Controller{
		backends: backends,
		paths:    paths,
		lang:     defaultLang,
		log:      logger.NewLogger("controller"),
		state:    State{Mode: Home, Prompt: prompts[Home]},
	}
}

// SetLanguage changes the synthesis language. Call it before the first
// conversion.
func (c *Controller) SetLanguage(lang string) {
	if lang != "" {
		c.lang = lang
	}
}

// Subscribe registers o and immediately sends it the current state.
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	s := c.state
	c.mu.Unlock()
	o.StateChanged(s)
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetMode switches screens and clears every result of the previous one.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	c.gen++
	c.state = State{Mode: m, Prompt: prompts[m]}
	c.mu.Unlock()
	c.notify()
	c.log.Info("Mode set to ", m)
}

// HandleAction runs a menu action.
func (c *Controller) HandleAction(a Action) {
	actions := map[Action]func(){
		ActionHome:        func() { c.SetMode(Home) },
		ActionTextToVoice: func() { c.SetMode(TextToVoice) },
		ActionVoiceToText: func() { c.SetMode(VoiceToText) },
	}
	run, ok := actions[a]
	if !ok {
		c.log.Warn("Ignoring unknown action ", int(a))
		return
	}
	run()
}

// SubmitText speaks text and reports its sentiment.
func (c *Controller) SubmitText(ctx context.Context, text string) Outcome {
	mode, gen := c.snapshot()
	if !c.busy.TryLock() {
		return c.fail(gen, Busy, nil)
	}
	defer c.busy.Unlock()

	reqID := uuid.NewString()
	if mode != TextToVoice {
		return c.fail(gen, InvalidMode, errors.New("text submitted in mode "+mode.String()))
	}
	if strings.TrimSpace(text) == "" {
		return c.fail(gen, EmptyInput, nil)
	}

	c.log.Info("[", reqID, "] text to voice, ", len(text), " chars")
	result := c.backends.Analyzer.Analyze(text)

	audio, err := c.backends.Synthesizer.Synthesize(ctx, text, c.lang)
	if err != nil {
		return c.fail(gen, ServiceUnavailable, err)
	}

	if err := writeFile(c.paths.Output, audio); err != nil {
		return c.fail(gen, WriteFailed, err)
	}
	c.log.Info("[", reqID, "] wrote ", len(audio), " bytes to ", c.paths.Output)

	// the conversion deadline does not cut playback short
	if err := c.backends.Player.Play(context.WithoutCancel(ctx), c.paths.Output); err != nil {
		c.log.Warn("[", reqID, "] playback failed: ", err)
	}

	return c.succeed(gen, Success{AudioPath: c.paths.Output, Sentiment: result})
}

// SubmitFile transcribes an mp3 or wav file and reports the sentiment of the
// transcript. An empty path means the selection was cancelled: nothing
// happens and nil is returned.
func (c *Controller) SubmitFile(ctx context.Context, path string) Outcome {
	if path == "" {
		return nil
	}
	mode, gen := c.snapshot()
	if !c.busy.TryLock() {
		return c.fail(gen, Busy, nil)
	}
	defer c.busy.Unlock()

	reqID := uuid.NewString()
	if mode != VoiceToText {
		return c.fail(gen, InvalidMode, errors.New("file submitted in mode "+mode.String()))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" && ext != ".wav" {
		return c.fail(gen, UnsupportedFormat, errors.New("extension "+ext))
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return c.fail(gen, FileNotFound, err)
	}

	c.log.Info("[", reqID, "] voice to text ", path)
	wavPath := path
	if ext == ".mp3" {
		if err := c.backends.Converter.MP3ToWAV(ctx, path, c.paths.Intermediate); err != nil {
			return c.fail(gen, ConversionFailed, err)
		}
		wavPath = c.paths.Intermediate
		c.log.Info("[", reqID, "] converted to ", wavPath)
	}

	text, err := c.backends.Recognizer.Recognize(ctx, wavPath)
	if err != nil {
		if errors.Is(err, speech.ErrUnintelligible) {
			return c.fail(gen, Unintelligible, err)
		}
		return c.fail(gen, ServiceUnavailable, err)
	}

	result := c.backends.Analyzer.Analyze(text)
	return c.succeed(gen, Success{RecognizedText: text, Sentiment: result})
}

// snapshot returns the current mode and its generation.
func (c *Controller) snapshot() (Mode, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Mode, c.gen
}

// succeed records s. When the mode changed while the conversion ran, the
// result belongs to a screen that is gone: state is left alone and nil is
// returned.
func (c *Controller) succeed(gen uint64, s Success) Outcome {
	if !c.update(gen, func(st *State) {
		res := s.Sentiment
		st.Sentiment = &res
		st.AudioPath = s.AudioPath
		st.RecognizedText = s.RecognizedText
		st.Err = nil
	}) {
		c.log.Info("Discarding result, mode changed during conversion")
		return nil
	}
	return s
}

// fail records a failure. Mode and any earlier result stay as they were so
// the user can retry.
func (c *Controller) fail(gen uint64, kind ErrorKind, cause error) Outcome {
	f := Failure{Kind: kind, Message: messages[kind]}
	if cause != nil {
		c.log.Error(kind, ": ", cause)
	} else {
		c.log.Warn(kind)
	}
	if !c.update(gen, func(st *State) {
		st.Err = &f
	}) {
		return nil
	}
	return f
}

// update applies fn if the mode generation is still gen and notifies
// observers. It reports whether fn ran.
func (c *Controller) update(gen uint64, fn func(*State)) bool {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	c.mu.Unlock()
	c.notify()
	return true
}

// notify sends the current state to every observer, outside the lock.
func (c *Controller) notify() {
	c.mu.RLock()
	s := c.state
	observers := append([]Observer(nil), c.observers...)
	c.mu.RUnlock()

	for _, o := range observers {
		o.StateChanged(s)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
