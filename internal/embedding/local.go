package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// LocalModelName identifies vectors produced by Local.
const LocalModelName = "hashing-ngram-v1"

// Local is an in-process embedding model based on feature hashing.
// Every lower-cased word and every character trigram of a word is hashed
// into one of dim signed buckets; the result is L2-normalised so cosine
// similarity reflects shared vocabulary. It is deterministic and needs no network.
type Local struct {
	dim int
}

// NewLocal creates a hashing model producing vectors of length dim.
func NewLocal(dim int) *Local {
	if dim <= 0 {
		dim = 384
	}
	return &Local{dim: dim}
}

// Model returns the model identifier.
func (l *Local) Model() string { return LocalModelName }

// Dimension returns the vector length.
func (l *Local) Dimension() int { return l.dim }

// Embed vectorises all texts in one in-process pass.
func (l *Local) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
		}
		vec, err := l.embedOne(text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = vec
	}
	if err := validateVectors(out, len(texts)); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Local) embedOne(text string) ([]float32, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty text", ErrEmbedding)
	}

	vec := make([]float32, l.dim)
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) == 0 {
		// Punctuation-only input still gets a stable, non-zero vector.
		words = []string{normalized}
	}

	for _, w := range words {
		l.add(vec, "w:"+w, 1.0)
		for _, gram := range trigrams(w) {
			l.add(vec, "g:"+gram, 0.5)
		}
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return nil, fmt.Errorf("%w: all features cancelled out", ErrEmbedding)
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= norm
	}
	return vec, nil
}

// add hashes feature into a bucket; the top hash bit picks the sign so
// collisions tend to cancel instead of accumulate.
func (l *Local) add(vec []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(l.dim))
	if h>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// trigrams returns the character trigrams of a word padded with boundary markers.
func trigrams(word string) []string {
	runes := []rune("^" + word + "$")
	if len(runes) < 3 {
		return nil
	}
	grams := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+3]))
	}
	return grams
}
