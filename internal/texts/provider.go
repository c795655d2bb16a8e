// Package texts supplies target text for typing sessions.
package texts

import (
	"errors"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// ErrContentUnavailable is returned when no corpus matches the requested
// parameters. Callers propagate it; the provider never retries or falls
// back silently.
var ErrContentUnavailable = errors.New("no content available for the requested parameters")

// Request describes the text wanted for a session.
type Request struct {
	Language   string
	Difficulty string // "easy", "medium", "hard"
	TextType   string // "words", "sentences", "quotes"
	Length     int    // approximate character count
	// WeakChars biases word selection toward characters the user has been
	// mistyping. Optional.
	WeakChars map[rune]struct{}
}

// Provider generates randomized target texts from built-in corpora.
type Provider struct {
	rnd *rand.Rand
}

// NewProvider returns a Provider seeded with the current time.
func NewProvider() *Provider {
	return &Provider{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// weakBiasFactor is the extra selection weight per weak character in a word.
const weakBiasFactor = 0.5

// Generate builds a target text of roughly the requested length. It returns
// ErrContentUnavailable when the language or text type has no corpus.
func (p *Provider) Generate(req Request) (string, error) {
	if req.Length <= 0 {
		req.Length = 200
	}

	switch req.TextType {
	case "", "words":
		return p.generateWords(req)
	case "sentences":
		return p.fromCorpus(sentenceCorpora, req)
	case "quotes":
		return p.fromCorpus(quoteCorpora, req)
	default:
		return "", ErrContentUnavailable
	}
}

func (p *Provider) generateWords(req Request) (string, error) {
	words := filterByDifficulty(wordCorpora[req.Language], req.Difficulty)
	if len(words) == 0 {
		return "", ErrContentUnavailable
	}

	var b strings.Builder
	for b.Len() < req.Length {
		word := p.pickWeighted(words, req.WeakChars)
		if req.Difficulty == "hard" {
			word = p.decorate(word)
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	return b.String(), nil
}

func (p *Provider) fromCorpus(corpora map[string][]string, req Request) (string, error) {
	items := corpora[req.Language]
	if len(items) == 0 {
		return "", ErrContentUnavailable
	}

	var b strings.Builder
	for b.Len() < req.Length {
		item := items[p.rnd.Intn(len(items))]
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(item)
	}
	return b.String(), nil
}

// pickWeighted selects a word with extra weight for each weak character it
// contains, so recently mistyped characters come up more often.
func (p *Provider) pickWeighted(words []string, weak map[rune]struct{}) string {
	if len(weak) == 0 {
		return words[p.rnd.Intn(len(words))]
	}

	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weak[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*weakBiasFactor
		weights[i] = w
		total += w
	}

	r := p.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return words[i]
		}
	}
	return words[len(words)-1]
}

// decorate occasionally capitalizes a word or appends punctuation, used for
// hard difficulty.
func (p *Provider) decorate(word string) string {
	if p.rnd.Float64() < 0.3 {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		word = string(runes)
	}
	if p.rnd.Float64() < 0.2 {
		punct := []rune{'.', ',', '!', '?', ';'}
		word += string(punct[p.rnd.Intn(len(punct))])
	}
	return word
}

func filterByDifficulty(words []string, difficulty string) []string {
	if difficulty == "" || difficulty == "medium" || difficulty == "hard" {
		return words
	}
	if difficulty != "easy" {
		return nil
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 4 {
			out = append(out, w)
		}
	}
	return out
}
