package features

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/sparse"
)

// Weighting selects how term counts become feature values
type Weighting string

const (
	WeightCount Weighting = "count" // Raw term counts
	WeightTFIDF Weighting = "tfidf" // Counts times smoothed idf, rows L2-normalized
)

// Vectorizer maps documents to a fixed vocabulary. It is fit once on
// training text; Transform never changes the vocabulary or idf weights.
// Fields are exported for gob persistence.
type Vectorizer struct {
	Weighting   Weighting
	NGramMin    int
	NGramMax    int
	MaxFeatures int // 0 keeps every term

	Terms      []string       // Column index -> term, lexicographic
	Vocabulary map[string]int // Term -> column index
	IDF        []float64      // Per column, TF-IDF only
	Fitted     bool

	tokenizer *Tokenizer
}

// NewVectorizer creates an unfitted vectorizer
func NewVectorizer(w Weighting, cfg model.VectorizerConfig) *Vectorizer {
	return &Vectorizer{
		Weighting:   w,
		NGramMin:    cfg.NGramMin,
		NGramMax:    cfg.NGramMax,
		MaxFeatures: cfg.MaxFeatures,
	}
}

// VocabularySize returns the number of columns produced by Transform
func (v *Vectorizer) VocabularySize() int {
	return len(v.Terms)
}

func (v *Vectorizer) terms(text string) []string {
	if v.tokenizer == nil {
		v.tokenizer = NewTokenizer()
	}
	return NGrams(v.tokenizer.Tokens(text), v.NGramMin, v.NGramMax)
}

type termStats struct {
	term string
	tf   int // Occurrences across all documents
	df   int // Documents containing the term
}

// Fit learns the vocabulary (and idf weights) from texts.
//
// When more distinct terms than MaxFeatures are seen, terms are ranked by
// total frequency, highest first, with equal frequencies ordered
// lexicographically; the top MaxFeatures are kept. Kept terms are then
// numbered in lexicographic order.
func (v *Vectorizer) Fit(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: cannot fit vectorizer on zero documents", model.ErrFeature)
	}

	stats := make(map[string]*termStats)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range v.terms(text) {
			st, ok := stats[term]
			if !ok {
				st = &termStats{term: term}
				stats[term] = st
			}
			st.tf++
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				st.df++
			}
		}
	}
	if len(stats) == 0 {
		return fmt.Errorf("%w: empty vocabulary (no tokens in %d training documents)", model.ErrFeature, len(texts))
	}

	ranked := make([]*termStats, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	if v.MaxFeatures > 0 && len(ranked) > v.MaxFeatures {
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].tf != ranked[j].tf {
				return ranked[i].tf > ranked[j].tf
			}
			return ranked[i].term < ranked[j].term
		})
		ranked = ranked[:v.MaxFeatures]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].term < ranked[j].term })

	v.Terms = make([]string, len(ranked))
	v.Vocabulary = make(map[string]int, len(ranked))
	v.IDF = nil
	if v.Weighting == WeightTFIDF {
		v.IDF = make([]float64, len(ranked))
	}
	n := float64(len(texts))
	for i, st := range ranked {
		v.Terms[i] = st.term
		v.Vocabulary[st.term] = i
		if v.IDF != nil {
			v.IDF[i] = math.Log((1+n)/(1+float64(st.df))) + 1
		}
	}
	v.Fitted = true

	return nil
}

// Transform maps texts to a len(texts) x VocabularySize() matrix using the
// fitted vocabulary. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(texts []string) (*sparse.Matrix, error) {
	if !v.Fitted {
		return nil, fmt.Errorf("vectorizer is not fitted")
	}

	b := sparse.NewBuilder(len(v.Terms))
	for _, text := range texts {
		counts := make(map[int]float64)
		for _, term := range v.terms(text) {
			if j, ok := v.Vocabulary[term]; ok {
				counts[j]++
			}
		}

		row := make([]sparse.Entry, 0, len(counts))
		for j, c := range counts {
			val := c
			if v.Weighting == WeightTFIDF {
				val *= v.IDF[j]
			}
			row = append(row, sparse.Entry{Index: j, Value: val})
		}
		// column order keeps the norm bit-identical across calls
		sort.Slice(row, func(a, b int) bool { return row[a].Index < row[b].Index })

		norm := 0.0
		if v.Weighting == WeightTFIDF {
			for _, e := range row {
				norm += e.Value * e.Value
			}
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range row {
				row[k].Value /= norm
			}
		}

		if err := b.AddRow(row); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// FitTransform fits on texts and transforms them
func (v *Vectorizer) FitTransform(texts []string) (*sparse.Matrix, error) {
	if err := v.Fit(texts); err != nil {
		return nil, err
	}
	return v.Transform(texts)
}
