package classify

import (
	"fmt"
	"math"

	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/sparse"
)

// laplaceAlpha is the additive smoothing of feature counts
const laplaceAlpha = 1.0

// NaiveBayes is a multinomial naive Bayes model over non-negative features
type NaiveBayes struct {
	Labels         []string
	Cols           int
	ClassLogPrior  []float64
	FeatureLogProb [][]float64 // [class][column]
	Fitted         bool
}

// NewNaiveBayes creates an unfitted model
func NewNaiveBayes() *NaiveBayes {
	return &NaiveBayes{}
}

func (nb *NaiveBayes) Algorithm() model.Algorithm { return model.AlgoNaiveBayes }

func (nb *NaiveBayes) Classes() []string { return nb.Labels }

// Fit estimates class priors and smoothed per-class feature distributions
func (nb *NaiveBayes) Fit(x *sparse.Matrix, y []string) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	for k, v := range x.Data {
		if v < 0 {
			return fmt.Errorf("%w: negative feature value %v at position %d", model.ErrModelFit, v, k)
		}
	}

	classes, encoded := labelIndex(y)
	k := len(classes)

	classCount := make([]float64, k)
	featureCount := make([][]float64, k)
	for c := range featureCount {
		featureCount[c] = make([]float64, x.Cols)
	}
	for i := 0; i < x.Rows; i++ {
		c := encoded[i]
		classCount[c]++
		x.AddScaled(i, 1, featureCount[c])
	}

	nb.Labels = classes
	nb.Cols = x.Cols
	nb.ClassLogPrior = make([]float64, k)
	nb.FeatureLogProb = make([][]float64, k)
	for c := 0; c < k; c++ {
		nb.ClassLogPrior[c] = math.Log(classCount[c] / float64(x.Rows))

		total := 0.0
		for _, v := range featureCount[c] {
			total += v
		}
		denom := math.Log(total + laplaceAlpha*float64(x.Cols))
		probs := make([]float64, x.Cols)
		for j, v := range featureCount[c] {
			probs[j] = math.Log(v+laplaceAlpha) - denom
		}
		nb.FeatureLogProb[c] = probs
	}
	nb.Fitted = true

	return nil
}

// JointLogLikelihood returns the unnormalized log posterior of each class for row i
func (nb *NaiveBayes) JointLogLikelihood(x *sparse.Matrix, i int) []float64 {
	out := make([]float64, len(nb.Labels))
	for c := range nb.Labels {
		out[c] = nb.ClassLogPrior[c] + x.Dot(i, nb.FeatureLogProb[c])
	}
	return out
}

// Predict returns the most probable label of each row
func (nb *NaiveBayes) Predict(x *sparse.Matrix) ([]string, error) {
	if err := checkPredict(x, nb.Cols, nb.Fitted); err != nil {
		return nil, err
	}
	out := make([]string, x.Rows)
	for i := 0; i < x.Rows; i++ {
		out[i] = nb.Labels[argmax(nb.JointLogLikelihood(x, i))]
	}
	return out, nil
}

// argmax returns the first index of the largest value
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
