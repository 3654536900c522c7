package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bz888/vox/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIBackend does both directions through the OpenAI audio endpoints.
type OpenAIBackend struct {
	client   *openai.Client
	voice    openai.SpeechVoice
	language string
	log      *logger.Logger
}

// NewOpenAIBackend builds a backend for key. baseURL may be empty for the
// public API.
func NewOpenAIBackend(key, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{
		client:   openai.NewClientWithConfig(cfg),
		voice:    openai.VoiceAlloy,
		language: "en",
		log:      logger.NewLogger("openai"),
	}
}

func (o *OpenAIBackend) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	// the voice model detects the language from the input
	o.log.Info("Synthesizing ", len(text), " chars, lang ", lang)

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          1.0,
	})
	if err != nil {
		return nil, o.wrap(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: reading speech: %v", ErrServiceUnavailable, err)
	}
	return audio, nil
}

func (o *OpenAIBackend) Recognize(ctx context.Context, wavPath string) (string, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: wavPath,
		Language: o.language,
	})
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusBadRequest {
		// whisper answers 400 for files it cannot decode
		return "", fmt.Errorf("%w: %v", ErrUnintelligible, err)
	}
	if err != nil {
		return "", o.wrap(err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

func (o *OpenAIBackend) wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		o.log.Error("OpenAI API error ", apiErr.HTTPStatusCode, ": ", apiErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}
