// Package speech holds the text-to-speech and speech-to-text backends.
package speech

import (
	"context"
	"errors"
)

var (
	// ErrUnintelligible means the backend answered but could not produce text.
	ErrUnintelligible = errors.New("speech could not be understood")
	// ErrServiceUnavailable means the backend could not be reached or refused
	// the request.
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// Synthesizer turns text into encoded audio (mp3 for every backend here).
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Recognizer transcribes a whole wav file as a single utterance.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}
