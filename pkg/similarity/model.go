package similarity

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Entry identifies one product row of the similarity matrix.
type Entry struct {
	ProductID   uint
	ProductName string
}

// Model is a dense pairwise cosine-similarity matrix over a fixed set of
// products. Matrix[i][j] is the similarity between Entries[i] and Entries[j].
type Model struct {
	Entries []Entry
	Matrix  [][]float64

	index map[string]int
}

// Scored pairs an entry with its similarity score.
type Scored struct {
	Entry Entry
	Score float64
}

// Train fits a vectorizer on docs and builds the full similarity matrix.
// entries[i] must describe docs[i].
func Train(entries []Entry, docs []string) (*Vectorizer, *Model, error) {
	if len(entries) != len(docs) {
		return nil, nil, fmt.Errorf("entries and docs length mismatch: %d != %d", len(entries), len(docs))
	}

	vectorizer := NewVectorizer()
	vectors := vectorizer.FitTransform(docs)

	matrix := make([][]float64, len(vectors))
	for i := range vectors {
		matrix[i] = make([]float64, len(vectors))
	}
	for i := range vectors {
		matrix[i][i] = 1
		for j := i + 1; j < len(vectors); j++ {
			s := Cosine(vectors[i], vectors[j])
			matrix[i][j] = s
			matrix[j][i] = s
		}
	}

	m := &Model{Entries: entries, Matrix: matrix}
	m.buildIndex()
	return vectorizer, m, nil
}

func (m *Model) buildIndex() {
	m.index = make(map[string]int, len(m.Entries))
	for i, e := range m.Entries {
		m.index[strings.ToLower(e.ProductName)] = i
	}
}

// TopN returns the n entries most similar to the named product, in
// descending similarity order. The product itself is excluded. An unknown
// name yields an empty slice.
func (m *Model) TopN(name string, n int) []Scored {
	row, ok := m.index[strings.ToLower(name)]
	if !ok {
		return nil
	}

	scored := make([]Scored, 0, len(m.Entries)-1)
	for i, score := range m.Matrix[row] {
		if i == row {
			continue
		}
		scored = append(scored, Scored{Entry: m.Entries[i], Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if n < len(scored) {
		scored = scored[:n]
	}
	return scored
}

// Contains reports whether the model has a row for the named product.
func (m *Model) Contains(name string) bool {
	_, ok := m.index[strings.ToLower(name)]
	return ok
}

// SaveVectorizer writes the vectorizer to path as a gob artifact.
func SaveVectorizer(v *Vectorizer, path string) error {
	return saveGob(path, v)
}

// LoadVectorizer reads a vectorizer gob artifact from path.
func LoadVectorizer(path string) (*Vectorizer, error) {
	var v Vectorizer
	if err := loadGob(path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveModel writes the model to path as a gob artifact.
func SaveModel(m *Model, path string) error {
	return saveGob(path, m)
}

// LoadModel reads a model gob artifact from path and rebuilds its name index.
func LoadModel(path string) (*Model, error) {
	var m Model
	if err := loadGob(path, &m); err != nil {
		return nil, err
	}
	m.buildIndex()
	return &m, nil
}

func saveGob(path string, value interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(value); err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", path, err)
	}
	return nil
}

func loadGob(path string, value interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(value); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return nil
}
