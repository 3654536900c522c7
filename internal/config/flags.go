package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

const prefix = "VOX"

// Config is everything the application reads at startup. Values come from
// .env, VOX_* environment variables and command line flags, in that order.
type Config struct {
	conf.Version
	Dev              bool          `conf:"default:false,help:Development mode (shows the debug console)"`
	LogPath          string        `conf:"help:Directory to save the log file in"`
	OutputPath       string        `conf:"default:output.mp3,help:Where synthesized speech is written"`
	IntermediatePath string        `conf:"default:converted.wav,help:Where mp3 uploads are converted to wav"`
	Backend          string        `conf:"default:google,help:Speech backend (google or openai)"`
	Converter        string        `conf:"default:native,help:mp3 to wav converter (native or ffmpeg)"`
	Lang             string        `conf:"default:en,help:Synthesis language"`
	Timeout          time.Duration `conf:"default:60s,help:Timeout for a single conversion"`

	// Keys keep their conventional names so an existing .env works as is.
	GoogleKey string `conf:"-"`
	OpenAIKey string `conf:"-"`
}

var ErrHelp = errors.New("help requested")

// Load reads the configuration. It returns ErrHelp after printing usage when
// --help or --version was passed.
func Load(build string) (Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := Config{
		Version: conf.Version{
			Build: build,
			Desc:  "text to voice and voice to text converter",
		},
	}

	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return Config{}, ErrHelp
		}
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	cfg.GoogleKey = os.Getenv("API_KEY")
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case "google", "openai":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Converter {
	case "native", "ffmpeg":
	default:
		return fmt.Errorf("unknown converter %q", c.Converter)
	}
	if c.OutputPath == "" || c.IntermediatePath == "" {
		return errors.New("output and intermediate paths are required")
	}
	if c.OutputPath == c.IntermediatePath {
		return errors.New("output and intermediate paths must differ")
	}
	return nil
}

// String renders the configuration for the log, without secrets.
func (c Config) String() string {
	out, err := conf.String(&c)
	if err != nil {
		return err.Error()
	}
	return out
}
