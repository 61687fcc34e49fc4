// Package similarity provides a TF-IDF vectorizer and a precomputed
// cosine-similarity model over product descriptions. Models are trained
// offline and persisted as gob artifacts, then loaded read-only at runtime.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Vectorizer converts documents to L2-normalized TF-IDF vectors over a
// vocabulary learned from a training corpus.
type Vectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
}

// NewVectorizer returns an empty vectorizer. Call Fit before Transform.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{Vocabulary: make(map[string]int)}
}

// Tokenize lowercases the text, splits on non-alphanumeric runes and
// drops English stop words and single-character tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Fit learns the vocabulary and inverse document frequencies from docs.
// IDF uses smoothed counts: ln((1+n)/(1+df)) + 1.
func (v *Vectorizer) Fit(docs []string) {
	v.Vocabulary = make(map[string]int)
	docFreq := []int{}

	for _, doc := range docs {
		seen := map[int]bool{}
		for _, tok := range Tokenize(doc) {
			idx, ok := v.Vocabulary[tok]
			if !ok {
				idx = len(v.Vocabulary)
				v.Vocabulary[tok] = idx
				docFreq = append(docFreq, 0)
			}
			if !seen[idx] {
				seen[idx] = true
				docFreq[idx]++
			}
		}
	}

	n := float64(len(docs))
	v.IDF = make([]float64, len(docFreq))
	for i, df := range docFreq {
		v.IDF[i] = math.Log((1+n)/(1+float64(df))) + 1
	}
}

// Transform converts a single document to an L2-normalized TF-IDF vector.
// Tokens outside the learned vocabulary are ignored.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.Vocabulary))
	for _, tok := range Tokenize(doc) {
		if idx, ok := v.Vocabulary[tok]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= v.IDF[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// FitTransform fits the vectorizer on docs and returns their vectors.
func (v *Vectorizer) FitTransform(docs []string) [][]float64 {
	v.Fit(docs)
	vectors := make([][]float64, len(docs))
	for i, doc := range docs {
		vectors[i] = v.Transform(doc)
	}
	return vectors
}

// Cosine returns the cosine similarity of two vectors of equal length.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
