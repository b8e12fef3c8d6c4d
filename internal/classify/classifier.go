// Package classify implements the learning algorithms compared by the
// pipeline. Every algorithm is reached through the registry in this file;
// the training loop only ever sees the Classifier and Trainable interfaces.
package classify

import (
	"fmt"
	"sort"

	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/sparse"
)

// Classifier is a fitted model that labels the rows of a feature matrix
type Classifier interface {
	Algorithm() model.Algorithm
	Classes() []string
	Predict(x *sparse.Matrix) ([]string, error)
}

// Trainable is a Classifier that can be fit
type Trainable interface {
	Classifier
	Fit(x *sparse.Matrix, y []string) error
}

// Options carries the fixed solver settings of the linear algorithms
type Options struct {
	MaxIter int
	C       float64
	Tol     float64
	Seed    int64 // Coordinate visiting order
}

// DefaultOptions mirrors model.DefaultConfig
func DefaultOptions() Options {
	return Options{MaxIter: 1000, C: 1.0, Tol: 1e-4, Seed: 42}
}

// OptionsFromConfig extracts solver settings from the run configuration
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		MaxIter: cfg.Train.MaxIter,
		C:       cfg.Train.C,
		Tol:     cfg.Train.Tol,
		Seed:    cfg.Data.Seed,
	}
}

type algorithmEntry struct {
	make   func(opts Options) Trainable
	decode func(body []byte) (Classifier, error)
}

var registry = map[model.Algorithm]algorithmEntry{
	model.AlgoNaiveBayes: {
		make:   func(Options) Trainable { return NewNaiveBayes() },
		decode: func(b []byte) (Classifier, error) { return decodeBody[NaiveBayes](b) },
	},
	model.AlgoLogReg: {
		make:   func(o Options) Trainable { return NewLinear(LossLogistic, o) },
		decode: func(b []byte) (Classifier, error) { return decodeBody[Linear](b) },
	},
	model.AlgoSVM: {
		make:   func(o Options) Trainable { return NewLinear(LossSquaredHinge, o) },
		decode: func(b []byte) (Classifier, error) { return decodeBody[Linear](b) },
	},
}

// New returns an unfitted model for alg
func New(alg model.Algorithm, opts Options) (Trainable, error) {
	entry, ok := registry[alg]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q", alg)
	}
	return entry.make(opts), nil
}

// Supported lists the registered algorithms in sorted order
func Supported() []model.Algorithm {
	out := make([]model.Algorithm, 0, len(registry))
	for alg := range registry {
		out = append(out, alg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// labelIndex returns the sorted distinct labels of y and y encoded as indices
func labelIndex(y []string) ([]string, []int) {
	classes := append([]string(nil), model.Labels(y)...)
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded := make([]int, len(y))
	for i, l := range y {
		encoded[i] = index[l]
	}
	return classes, encoded
}

// checkFit validates training input shared by every algorithm
func checkFit(x *sparse.Matrix, y []string) error {
	if x == nil || x.Rows == 0 {
		return fmt.Errorf("%w: no training rows", model.ErrModelFit)
	}
	if x.Rows != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", model.ErrModelFit, x.Rows, len(y))
	}
	if err := x.Validate(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrModelFit, err)
	}
	if n := len(model.Labels(y)); n < 2 {
		return fmt.Errorf("%w: training labels contain %d class(es), need at least 2", model.ErrModelFit, n)
	}
	return nil
}

// checkPredict validates a matrix against the fitted column count
func checkPredict(x *sparse.Matrix, cols int, fitted bool) error {
	if !fitted {
		return fmt.Errorf("model is not fitted")
	}
	if x == nil {
		return fmt.Errorf("nil feature matrix")
	}
	if x.Cols != cols {
		return fmt.Errorf("matrix has %d columns, model was fit on %d", x.Cols, cols)
	}
	return nil
}
