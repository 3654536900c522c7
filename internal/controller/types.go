package controller

import (
	"fmt"

	"github.com/bz888/vox/internal/sentiment"
)

// Mode is the active screen. Exactly one is active at a time.
type Mode int

const (
	Home Mode = iota
	TextToVoice
	VoiceToText
)

func (m Mode) String() string {
	switch m {
	case Home:
		return "Home"
	case TextToVoice:
		return "Text To Voice"
	case VoiceToText:
		return "Voice To Text"
	default:
		return "Unknown"
	}
}

// Action is a menu entry.
type Action int

const (
	ActionHome Action = iota
	ActionTextToVoice
	ActionVoiceToText
)

// ErrorKind classifies a handled failure; each kind has one user message.
type ErrorKind int

const (
	EmptyInput ErrorKind = iota + 1
	Unintelligible
	ServiceUnavailable
	UnsupportedFormat
	InvalidMode
	FileNotFound
	ConversionFailed
	WriteFailed
	Busy
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyInput:
		return "EmptyInput"
	case Unintelligible:
		return "Unintelligible"
	case ServiceUnavailable:
		return "ServiceUnavailable"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case InvalidMode:
		return "InvalidMode"
	case FileNotFound:
		return "FileNotFound"
	case ConversionFailed:
		return "ConversionFailed"
	case WriteFailed:
		return "WriteFailed"
	case Busy:
		return "Busy"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Outcome is the result of a conversion: Success or Failure.
type Outcome interface {
	outcome()
}

// Success is a completed conversion and the sentiment of its text.
type Success struct {
	// AudioPath is set for text to voice.
	AudioPath string
	// RecognizedText is set for voice to text.
	RecognizedText string
	Sentiment      sentiment.Result
}

// Failure is a handled conversion error. Message is meant for the user.
type Failure struct {
	Kind    ErrorKind
	Message string
}

func (Success) outcome() {}
func (Failure) outcome() {}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// State is what the presentation layer renders.
type State struct {
	Mode   Mode
	Prompt string

	// Sentiment is nil until a conversion succeeds in the current mode.
	Sentiment      *sentiment.Result
	AudioPath      string
	RecognizedText string

	// Err is the most recent failure, cleared by the next success or mode
	// switch.
	Err *Failure
}

// Observer is notified with a copy of the state after every change.
type Observer interface {
	StateChanged(State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(State)

func (f ObserverFunc) StateChanged(s State) { f(s) }
