package cmd

import (
	"errors"
	"fmt"

	"github.com/bz888/vox/internal/config"
	"github.com/bz888/vox/internal/controller"
	"github.com/bz888/vox/internal/convert"
	"github.com/bz888/vox/internal/logger"
	"github.com/bz888/vox/internal/playback"
	"github.com/bz888/vox/internal/sentiment"
	"github.com/bz888/vox/internal/speech"
	"github.com/bz888/vox/internal/ui"
)

// Execute loads the configuration, wires the backends into a controller and
// runs the terminal UI until the user quits.
func Execute(version string) error {
	cfg, err := config.Load(version)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return nil
		}
		return err
	}

	u := ui.New(cfg.Dev, cfg.Timeout)
	if err := logger.InitLogger(cfg.Dev, cfg.LogPath, u.DebugConsole()); err != nil {
		return err
	}
	defer logger.Close()

	log := logger.NewLogger("main")
	log.Info("Starting with config:\n", cfg.String())

	backends, err := newBackends(cfg, log)
	if err != nil {
		return err
	}

	ctrl := controller.New(backends, controller.Paths{
		Output:       cfg.OutputPath,
		Intermediate: cfg.IntermediatePath,
	})
	ctrl.SetLanguage(cfg.Lang)

	u.Attach(ctrl)
	return u.Run()
}

func newBackends(cfg config.Config, log *logger.Logger) (controller.Backends, error) {
	analyzer, err := sentiment.New()
	if err != nil {
		return controller.Backends{}, fmt.Errorf("loading sentiment lexicon: %w", err)
	}

	b := controller.Backends{
		Analyzer: analyzer,
		Player:   playback.NewPlayer(),
	}

	switch cfg.Backend {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Warn("OPENAI_API_KEY not set, requests will fail")
		}
		openai := speech.NewOpenAIBackend(cfg.OpenAIKey, "")
		b.Synthesizer, b.Recognizer = openai, openai
	default:
		if cfg.GoogleKey == "" {
			log.Warn("API_KEY not set, voice to text will fail")
		}
		b.Synthesizer = speech.NewGoogleTTS()
		b.Recognizer = speech.NewGoogleRecognizer(cfg.GoogleKey)
	}

	switch cfg.Converter {
	case "ffmpeg":
		b.Converter = convert.FFmpeg{}
	default:
		b.Converter = convert.Native{}
	}
	return b, nil
}
