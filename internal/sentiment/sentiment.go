// Package sentiment scores message polarity in [-1, 1].
//
// Text is scored with VADER's compound score. Messages that contain words
// from the overlay lexicon (romanized Hindi plus any user file) are scored
// by those words instead: the mean of their scores, where a negation within
// the two preceding words flips and halves a score and an intensifier
// directly before a word scales it by 1.3.
package sentiment

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/jonreiter/govader"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Label is the polarity class of a message.
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

// Labels lists the classes in the order reports show them.
var Labels = []Label{Positive, Negative, Neutral}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "nahi": true, "nhi": true,
	"dont": true, "don't": true, "isnt": true, "isn't": true, "wasnt": true,
	"wasn't": true, "cant": true, "can't": true, "didnt": true, "didn't": true,
}

var intensifiers = map[string]bool{
	"very": true, "really": true, "so": true, "too": true, "extremely": true,
	"super": true, "bahut": true, "bohot": true,
}

// Scorer pairs a VADER analyzer with an overlay lexicon. It is safe for
// concurrent reads.
type Scorer struct {
	vader *govader.SentimentIntensityAnalyzer
	words map[string]float64
}

// New returns a Scorer over the embedded overlay lexicon.
func New() *Scorer {
	s := &Scorer{
		vader: govader.NewSentimentIntensityAnalyzer(),
		words: make(map[string]float64),
	}
	if err := s.merge(defaultLexicon); err != nil {
		panic(fmt.Sprintf("sentiment: embedded lexicon: %v", err))
	}
	return s
}

// Load returns the embedded lexicon overlaid with the YAML map at path.
// An empty path returns New().
func Load(path string) (*Scorer, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	if err := s.merge(data); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return s, nil
}

func (s *Scorer) merge(data []byte) error {
	var m map[string]float64
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}
	for w, v := range m {
		if v < -1 || v > 1 {
			return fmt.Errorf("word %q: score %v outside [-1, 1]", w, v)
		}
		s.words[strings.ToLower(w)] = v
	}
	return nil
}

// Polarity scores text in [-1, 1].
func (s *Scorer) Polarity(text string) float64 {
	if p, ok := s.overlay(text); ok {
		return p
	}
	return s.vader.PolarityScores(text).Compound
}

// overlay scores text by its overlay words; ok is false when it has none.
func (s *Scorer) overlay(text string) (float64, bool) {
	var sum float64
	var n int

	tokens := tokenize(text)
	for i, tok := range tokens {
		v, ok := s.words[tok]
		if !ok {
			continue
		}
		if i > 0 && intensifiers[tokens[i-1]] {
			v *= 1.3
		}
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if negations[tokens[j]] {
				v *= -0.5
				break
			}
		}
		sum += v
		n++
	}

	if n == 0 {
		return 0, false
	}
	p := sum / float64(n)
	switch {
	case p > 1:
		return 1, true
	case p < -1:
		return -1, true
	}
	return p, true
}

// Classify maps text to Positive, Negative or Neutral by polarity sign.
func (s *Scorer) Classify(text string) Label {
	p := s.Polarity(text)
	switch {
	case p > 0:
		return Positive
	case p < 0:
		return Negative
	default:
		return Neutral
	}
}

// Len returns the overlay lexicon size.
func (s *Scorer) Len() int {
	return len(s.words)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
