// Package sentiment scores English text for polarity and subjectivity using a
// word lexicon with intensifiers and negation handling.
package sentiment

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Result is the sentiment of a piece of text. Polarity is in [-1, 1],
// Subjectivity in [0, 1].
type Result struct {
	Polarity     float64
	Subjectivity float64
}

type entry struct {
	polarity     float64
	subjectivity float64
	intensity    float64
	modifier     bool
}

//go:embed lexicon.csv
var lexiconCSV string

var negations = map[string]bool{
	"not":   true,
	"n't":   true,
	"never": true,
}

// Analyzer scores text against a lexicon. The zero value is not usable, use
// New.
type Analyzer struct {
	lexicon   map[string]entry
	emoticons map[string]bool
}

// New returns an analyzer over the built in English lexicon.
func New() (*Analyzer, error) {
	return parseLexicon(lexiconCSV)
}

func parseLexicon(data string) (*Analyzer, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.Comment = '#'
	r.FieldsPerRecord = 5

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}

	a := &Analyzer{
		lexicon:   make(map[string]entry, len(records)),
		emoticons: make(map[string]bool),
	}
	for _, rec := range records {
		var e entry
		vals := make([]float64, 3)
		for i := range vals {
			vals[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("lexicon entry %q: %w", rec[0], err)
			}
		}
		e.polarity, e.subjectivity, e.intensity = vals[0], vals[1], vals[2]
		e.modifier = rec[4] == "RB"

		word := strings.ToLower(rec[0])
		a.lexicon[word] = e
		if rec[4] == "UH" {
			a.emoticons[word] = true
		}
	}
	return a, nil
}

type assessment struct {
	polarity     float64
	subjectivity float64
	intensity    float64
	negated      bool
}

// Analyze returns the mean polarity and subjectivity of the known words in
// text. Text without known words scores zero on both.
func (a *Analyzer) Analyze(text string) Result {
	var (
		scores   []assessment
		modifier string
		negation string
	)

	for _, w := range a.tokenize(text) {
		if e, ok := a.lexicon[w]; ok {
			if modifier == "" {
				scores = append(scores, assessment{
					polarity:     e.polarity,
					subjectivity: e.subjectivity,
					intensity:    e.intensity,
				})
			} else {
				// "really good": the adverb scales this word
				last := &scores[len(scores)-1]
				last.polarity = clamp(e.polarity*last.intensity, -1, 1)
				last.subjectivity = clamp(e.subjectivity*last.intensity, -1, 1)
				last.intensity = e.intensity
			}
			if negation != "" {
				last := &scores[len(scores)-1]
				last.intensity = 1 / last.intensity
				last.negated = true
			}
			modifier, negation = "", ""
			if e.modifier {
				modifier = w
			}
			if negations[w] {
				negation = w
			}
			continue
		}

		if negations[w] {
			negation = w
		} else if negation != "" && len(strings.Trim(w, "'")) > 1 {
			// negation survives short words: "not a good"
			negation = ""
		}

		if negation != "" && modifier != "" {
			// "really not good"
			scores[len(scores)-1].negated = true
			negation = ""
		} else if modifier != "" && len(w) > 2 {
			modifier = ""
		}

		if w == "!" && len(scores) > 0 {
			last := &scores[len(scores)-1]
			last.polarity = clamp(last.polarity*1.25, -1, 1)
		}
	}

	if len(scores) == 0 {
		return Result{}
	}

	var p, s float64
	for _, sc := range scores {
		if sc.negated {
			p += sc.polarity * -0.5
		} else {
			p += sc.polarity
		}
		s += sc.subjectivity
	}
	n := float64(len(scores))
	return Result{
		Polarity:     clamp(p/n, -1, 1),
		Subjectivity: clamp(s/n, 0, 1),
	}
}

// tokenize lowercases text and splits it into words, "n't" contractions,
// exclamation marks and emoticons. Other punctuation is dropped.
func (a *Analyzer) tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		if a.emoticons[field] {
			tokens = append(tokens, field)
			continue
		}

		var word strings.Builder
		flush := func() {
			if word.Len() == 0 {
				return
			}
			w := word.String()
			word.Reset()
			if strings.HasSuffix(w, "n't") && len(w) > 3 {
				tokens = append(tokens, w[:len(w)-3], "n't")
				return
			}
			tokens = append(tokens, w)
		}

		for _, r := range field {
			switch {
			case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’':
				if r == '’' {
					r = '\''
				}
				word.WriteRune(r)
			case r == '!':
				flush()
				tokens = append(tokens, "!")
			default:
				flush()
			}
		}
		flush()
	}
	return tokens
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
