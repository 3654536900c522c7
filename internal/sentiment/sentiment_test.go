package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New()
	require.NoError(t, err)
	return a
}

func TestAnalyzePositive(t *testing.T) {
	a := newAnalyzer(t)

	r := a.Analyze("I love this product")
	assert.Greater(t, r.Polarity, 0.0)
	assert.InDelta(t, 0.5, r.Polarity, 1e-9)
	assert.InDelta(t, 0.6, r.Subjectivity, 1e-9)
}

func TestAnalyzeNegation(t *testing.T) {
	a := newAnalyzer(t)

	assert.Less(t, a.Analyze("this is not good").Polarity, 0.0)
	assert.Less(t, a.Analyze("This isn't good").Polarity, 0.0)
	assert.Greater(t, a.Analyze("not bad at all").Polarity, 0.0)
	// negation is kept across short words
	assert.Less(t, a.Analyze("not a good idea").Polarity, 0.0)
}

func TestAnalyzeIntensifier(t *testing.T) {
	a := newAnalyzer(t)

	good := a.Analyze("good")
	veryGood := a.Analyze("very good")
	assert.InDelta(t, 0.91, veryGood.Polarity, 1e-9)
	assert.GreaterOrEqual(t, veryGood.Polarity, good.Polarity)

	notVeryGood := a.Analyze("not very good")
	assert.Less(t, notVeryGood.Polarity, 0.0)
	assert.Greater(t, notVeryGood.Polarity, -0.35)
}

func TestAnalyzeExclamation(t *testing.T) {
	a := newAnalyzer(t)

	assert.InDelta(t, 0.875, a.Analyze("Good!").Polarity, 1e-9)
	assert.InDelta(t, 1.0, a.Analyze("Perfect!!!").Polarity, 1e-9)
}

func TestAnalyzeEmoticons(t *testing.T) {
	a := newAnalyzer(t)

	assert.Greater(t, a.Analyze("see you :)").Polarity, 0.0)
	assert.Less(t, a.Analyze("missed the bus :(").Polarity, 0.0)
}

func TestAnalyzeUnknownText(t *testing.T) {
	a := newAnalyzer(t)

	for _, text := range []string{"", "   ", "hello world", "sample.mp3"} {
		assert.Equal(t, Result{}, a.Analyze(text), text)
	}
}

func TestAnalyzeBounds(t *testing.T) {
	a := newAnalyzer(t)

	texts := []string{
		"absolutely perfect!!!",
		"extremely terrible, horrible and awful!!",
		"super super super good",
		"never ever really not bad",
		"I don't hate it :(",
	}
	for _, text := range texts {
		r := a.Analyze(text)
		assert.GreaterOrEqual(t, r.Polarity, -1.0, text)
		assert.LessOrEqual(t, r.Polarity, 1.0, text)
		assert.GreaterOrEqual(t, r.Subjectivity, 0.0, text)
		assert.LessOrEqual(t, r.Subjectivity, 1.0, text)
	}
}

func TestTokenize(t *testing.T) {
	a := newAnalyzer(t)

	assert.Equal(t,
		[]string{"i", "don", "n't", "like", "it", "!", ":)"},
		a.tokenize("I don't like it! :)"),
	)
}

func TestParseLexiconErrors(t *testing.T) {
	_, err := parseLexicon("good,0.7,0.6\n")
	assert.Error(t, err)

	_, err = parseLexicon("good,high,0.6,1.0,JJ\n")
	assert.Error(t, err)
}

func TestAnalyzeEverydaySentences(t *testing.T) {
	a := newAnalyzer(t)

	positive := []string{
		"The hotel staff were friendly and helpful",
		"What a charming little town",
		"She gave a thoughtful and generous answer",
		"The update made everything smooth and reliable",
	}
	for _, text := range positive {
		assert.Greater(t, a.Analyze(text).Polarity, 0.0, text)
	}

	negative := []string{
		"The food was cold and the service was slow",
		"What a disgusting, filthy room",
		"The meeting was tedious and pointless",
		"I feel tired and lonely today",
	}
	for _, text := range negative {
		assert.Less(t, a.Analyze(text).Polarity, 0.0, text)
	}

	assert.InDelta(t, -0.9, a.Analyze("What a disgusting, filthy room").Polarity, 1e-9)
}

func TestAnalyzeModifierFromLexicon(t *testing.T) {
	a := newAnalyzer(t)

	r := a.Analyze("an absolutely stunning view")
	assert.InDelta(t, 0.75, r.Polarity, 1e-9)
	assert.InDelta(t, 1.0, r.Subjectivity, 1e-9)
}

func TestLexiconSize(t *testing.T) {
	a := newAnalyzer(t)
	assert.Greater(t, len(a.lexicon), 600)
}
