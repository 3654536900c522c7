package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/bz888/vox/internal/convert"
	"github.com/bz888/vox/internal/logger"
)

const googleRecognizeURL = "http://www.google.com/speech-api/v2/recognize"

type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type Result struct {
	Alternative []Alternative `json:"alternative"`
	Final       bool          `json:"final"`
}

type Response struct {
	Result []Result `json:"result"`
}

// GoogleRecognizer sends FLAC encoded audio to the Google speech API v2.
type GoogleRecognizer struct {
	Endpoint string
	Key      string
	Language string
	HTTP     *http.Client

	encode func(wav []byte) ([]byte, int, error)
	log    *logger.Logger
}

// NewGoogleRecognizer needs an API key; without one every request is
// rejected and surfaces as ErrServiceUnavailable.
func NewGoogleRecognizer(key string) *GoogleRecognizer {
	return &GoogleRecognizer{
		Endpoint: googleRecognizeURL,
		Key:      key,
		Language: "en-US",
		HTTP:     &http.Client{},
		encode:   convert.WAVToFLAC,
		log:      logger.NewLogger("google stt"),
	}
}

func (g *GoogleRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	// audio that cannot be read or encoded never reaches the service
	wavData, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrUnintelligible, wavPath, err)
	}

	flacData, rate, err := g.encode(wavData)
	if err != nil {
		return "", fmt.Errorf("%w: encoding flac: %v", ErrUnintelligible, err)
	}
	g.log.Info("Encoded ", len(flacData), " bytes of flac at ", rate, "Hz")

	req, err := g.buildRequest(ctx, flacData, rate)
	if err != nil {
		return "", err
	}

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s", ErrServiceUnavailable, resp.Status, strings.TrimSpace(string(body)))
	}
	g.log.Info("Response body: ", string(body))

	best, err := parseResponse(string(body))
	if err != nil {
		return "", err
	}
	g.log.Info("Recognized with confidence ", best.Confidence)
	return best.Transcript, nil
}

func (g *GoogleRecognizer) buildRequest(ctx context.Context, flacData []byte, rate int) (*http.Request, error) {
	data := url.Values{}
	data.Set("client", "chromium")
	data.Set("lang", g.Language)
	data.Set("key", g.Key)
	data.Set("pFilter", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint+"?"+data.Encode(), bytes.NewReader(flacData))
	if err != nil {
		return nil, fmt.Errorf("building recognize request: %w", err)
	}
	req.Header.Set("Content-Type", fmt.Sprintf("audio/x-flac; rate=%d", rate))
	return req, nil
}

// parseResponse picks the best hypothesis out of the line delimited JSON the
// API returns. The first line is usually an empty result.
func parseResponse(responseText string) (Alternative, error) {
	for _, line := range strings.Split(responseText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var response Response
		if err := json.Unmarshal([]byte(line), &response); err != nil {
			return Alternative{}, fmt.Errorf("%w: malformed response: %v", ErrServiceUnavailable, err)
		}
		if len(response.Result) == 0 {
			continue
		}
		return findBestHypothesis(response.Result[0].Alternative)
	}
	return Alternative{}, ErrUnintelligible
}

func findBestHypothesis(alternatives []Alternative) (Alternative, error) {
	if len(alternatives) == 0 {
		return Alternative{}, ErrUnintelligible
	}

	var bestHypothesis Alternative
	highestConfidence := -1.0
	for _, alternative := range alternatives {
		if alternative.Confidence > highestConfidence {
			highestConfidence = alternative.Confidence
			bestHypothesis = alternative
		}
	}

	if strings.TrimSpace(bestHypothesis.Transcript) == "" {
		return Alternative{}, errors.Join(ErrUnintelligible, errors.New("best hypothesis has no transcript"))
	}
	// the API leaves confidence out for anything but the top hypothesis
	if bestHypothesis.Confidence == 0 {
		bestHypothesis.Confidence = 0.5
	}
	return bestHypothesis, nil
}
