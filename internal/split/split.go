// Package split partitions a labeled corpus into a stratified, seeded
// train/test split. Every feature representation must be built from the
// same split, so the seed is explicit configuration rather than a
// package-level default.
package split

import (
	"math"
	"math/rand"
	"sort"

	"github.com/ppiankov/textbench/internal/model"
)

// Provider produces train/test splits for a fixed seed
type Provider struct {
	Seed int64
}

// NewProvider creates a split provider for the given seed
func NewProvider(seed int64) *Provider {
	return &Provider{Seed: seed}
}

// LoadAndSplit reads the corpus at path and splits it
func (p *Provider) LoadAndSplit(path string, testFraction float64) (*model.Split, error) {
	docs, err := ReadCorpus(path)
	if err != nil {
		return nil, err
	}
	return p.Split(docs, testFraction)
}

// Split partitions docs so that each label keeps (approximately) its corpus
// proportion on both sides. The same docs, fraction and seed always give the
// same rows in the same order.
func (p *Provider) Split(docs []model.Document, testFraction float64) (*model.Split, error) {
	if !(testFraction > 0 && testFraction < 1) {
		return nil, model.DataErrorf("test fraction %v not in (0,1)", testFraction)
	}
	n := len(docs)
	if n == 0 {
		return nil, model.DataErrorf("corpus has no documents")
	}

	groups := make(map[string][]int)
	for i, d := range docs {
		groups[d.Label] = append(groups[d.Label], i)
	}
	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	if len(labels) < 2 {
		return nil, model.DataErrorf("stratified split needs at least 2 labels, corpus has %d", len(labels))
	}
	for _, l := range labels {
		if len(groups[l]) < 2 {
			return nil, model.DataErrorf("label %q has only %d document; every label needs at least 2", l, len(groups[l]))
		}
	}

	nTest := int(math.Ceil(testFraction*float64(n) - 1e-9))
	nTrain := n - nTest
	if nTest < len(labels) || nTrain < len(labels) {
		return nil, model.DataErrorf("test fraction %v over %d documents leaves %d test / %d train rows for %d labels",
			testFraction, n, nTest, nTrain, len(labels))
	}

	counts := make([]int, len(labels))
	for i, l := range labels {
		counts[i] = len(groups[l])
	}
	testPerLabel := allocate(nTest, counts)

	rng := rand.New(rand.NewSource(p.Seed))
	var trainIdx, testIdx []int
	for i, l := range labels {
		idx := append([]int(nil), groups[l]...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		testIdx = append(testIdx, idx[:testPerLabel[i]]...)
		trainIdx = append(trainIdx, idx[testPerLabel[i]:]...)
	}
	rng.Shuffle(len(trainIdx), func(a, b int) { trainIdx[a], trainIdx[b] = trainIdx[b], trainIdx[a] })
	rng.Shuffle(len(testIdx), func(a, b int) { testIdx[a], testIdx[b] = testIdx[b], testIdx[a] })

	s := &model.Split{
		TrainText:  make([]string, len(trainIdx)),
		TrainLabel: make([]string, len(trainIdx)),
		TestText:   make([]string, len(testIdx)),
		TestLabel:  make([]string, len(testIdx)),
	}
	for k, i := range trainIdx {
		s.TrainText[k] = docs[i].Text
		s.TrainLabel[k] = docs[i].Label
	}
	for k, i := range testIdx {
		s.TestText[k] = docs[i].Text
		s.TestLabel[k] = docs[i].Label
	}
	return s, nil
}

// allocate distributes total across classes proportionally to counts using
// largest remainders. Equal remainders go to the earlier class.
func allocate(total int, counts []int) []int {
	n := 0
	for _, c := range counts {
		n += c
	}

	out := make([]int, len(counts))
	rem := make([]float64, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(total) * float64(c) / float64(n)
		out[i] = int(math.Floor(exact + 1e-9))
		rem[i] = exact - float64(out[i])
		assigned += out[i]
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for k := 0; assigned < total; k++ {
		i := order[k%len(order)]
		if out[i] < counts[i] {
			out[i]++
			assigned++
		}
	}

	return out
}
