package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bz888/vox/internal/logger"
)

const (
	googleTTSURL = "https://translate.google.com/translate_tts"

	// the endpoint rejects longer queries
	maxChunkLen = 100
)

// GoogleTTS uses the Google Translate speech endpoint. It needs no key and
// returns mp3.
type GoogleTTS struct {
	Endpoint string
	HTTP     *http.Client

	log *logger.Logger
}

func NewGoogleTTS() *GoogleTTS {
	return &GoogleTTS{
		Endpoint: googleTTSURL,
		HTTP:     &http.Client{},
		log:      logger.NewLogger("google tts"),
	}
}

// Synthesize speaks text at normal speed. Long text is requested in chunks
// and the mp3 frames are concatenated.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := splitText(text, maxChunkLen)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		g.log.Info("Requesting chunk ", i+1, "/", len(chunks), " (", len(chunk), " chars)")
		if err := g.fetch(ctx, &out, chunk, lang, i, len(chunks)); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

func (g *GoogleTTS) fetch(ctx context.Context, w io.Writer, chunk, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", "1")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: tts %s: %s", ErrServiceUnavailable, resp.Status, strings.TrimSpace(string(b)))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("%w: reading audio: %v", ErrServiceUnavailable, err)
	}
	return nil
}

// splitText breaks text into pieces of at most max runes, preferring to cut
// after punctuation, then at whitespace, and only then mid word.
func splitText(text string, max int) []string {
	var chunks []string
	rest := []rune(strings.TrimSpace(text))
	for len(rest) > 0 {
		if len(rest) <= max {
			chunks = appendChunk(chunks, string(rest))
			break
		}

		// keep the punctuation with the chunk it ends
		cut := lastIndex(rest[:max], isPunct) + 1
		if cut <= 1 {
			cut = lastIndex(rest[:max+1], unicode.IsSpace)
		}
		if cut <= 0 {
			cut = max
		}

		chunks = appendChunk(chunks, string(rest[:cut]))
		rest = []rune(strings.TrimSpace(string(rest[cut:])))
	}
	return chunks
}

func appendChunk(chunks []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return !isPunct(r) && !unicode.IsSpace(r) }) < 0 {
		return chunks
	}
	return append(chunks, s)
}

func lastIndex(rs []rune, f func(rune) bool) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if f(rs[i]) {
			return i
		}
	}
	return -1
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '\n':
		return true
	}
	return false
}
