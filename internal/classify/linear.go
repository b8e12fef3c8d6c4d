package classify

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/sparse"
)

// Loss selects the linear model's objective
type Loss string

const (
	LossLogistic     Loss = "logistic"      // L2-regularized logistic regression
	LossSquaredHinge Loss = "squared_hinge" // L2-regularized L2-loss SVM
)

// Linear is an L2-regularized linear classifier trained by dual coordinate
// descent. The bias is learned as the weight of an implicit constant
// feature with value 1, so it is regularized like any other weight.
//
// Two classes share one weight vector whose positive side is Labels[1].
// More classes are trained one-vs-rest, one weight vector per label.
type Linear struct {
	Loss    Loss
	Options Options

	Labels     []string
	Cols       int
	Weights    [][]float64 // Cols+1 values each, bias last
	Iterations []int       // Outer iterations used per weight vector
	Fitted     bool
}

// NewLinear creates an unfitted linear model
func NewLinear(loss Loss, opts Options) *Linear {
	return &Linear{Loss: loss, Options: opts}
}

func (l *Linear) Algorithm() model.Algorithm {
	if l.Loss == LossLogistic {
		return model.AlgoLogReg
	}
	return model.AlgoSVM
}

func (l *Linear) Classes() []string { return l.Labels }

// Fit trains the weight vector(s)
func (l *Linear) Fit(x *sparse.Matrix, y []string) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	if l.Options.C <= 0 {
		return fmt.Errorf("%w: C must be positive, got %v", model.ErrModelFit, l.Options.C)
	}
	if l.Options.MaxIter <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", model.ErrModelFit, l.Options.MaxIter)
	}

	classes, encoded := labelIndex(y)
	positives := []int{1}
	if len(classes) > 2 {
		positives = make([]int, len(classes))
		for c := range positives {
			positives[c] = c
		}
	}

	l.Labels = classes
	l.Cols = x.Cols
	l.Weights = make([][]float64, len(positives))
	l.Iterations = make([]int, len(positives))

	for k, pos := range positives {
		signs := make([]float64, len(encoded))
		for i, c := range encoded {
			if c == pos {
				signs[i] = 1
			} else {
				signs[i] = -1
			}
		}

		rng := rand.New(rand.NewSource(l.Options.Seed))
		var w []float64
		var iters int
		switch l.Loss {
		case LossLogistic:
			w, iters = solveLogisticDual(x, signs, l.Options, rng)
		case LossSquaredHinge:
			w, iters = solveSVMDual(x, signs, l.Options, rng)
		default:
			return fmt.Errorf("%w: unknown loss %q", model.ErrModelFit, l.Loss)
		}

		for _, v := range w {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: solver diverged for class %q", model.ErrModelFit, classes[pos])
			}
		}
		l.Weights[k] = w
		l.Iterations[k] = iters
	}
	l.Fitted = true

	return nil
}

// Decision returns the signed distance of row i to each hyperplane
func (l *Linear) Decision(x *sparse.Matrix, i int) []float64 {
	out := make([]float64, len(l.Weights))
	for k, w := range l.Weights {
		out[k] = x.Dot(i, w[:l.Cols]) + w[l.Cols]
	}
	return out
}

// Predict returns the label of each row
func (l *Linear) Predict(x *sparse.Matrix) ([]string, error) {
	if err := checkPredict(x, l.Cols, l.Fitted); err != nil {
		return nil, err
	}
	out := make([]string, x.Rows)
	for i := 0; i < x.Rows; i++ {
		d := l.Decision(x, i)
		if len(d) == 1 {
			if d[0] > 0 {
				out[i] = l.Labels[1]
			} else {
				out[i] = l.Labels[0]
			}
			continue
		}
		out[i] = l.Labels[argmax(d)]
	}
	return out, nil
}

// augmented helpers treat the bias as column x.Cols with value 1

func dotBias(x *sparse.Matrix, i int, w []float64) float64 {
	return x.Dot(i, w[:x.Cols]) + w[x.Cols]
}

func addBias(x *sparse.Matrix, i int, scale float64, w []float64) {
	x.AddScaled(i, scale, w[:x.Cols])
	w[x.Cols] += scale
}

func shuffledIndex(n int, rng *rand.Rand) []int {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	rng.Shuffle(n, func(a, b int) { index[a], index[b] = index[b], index[a] })
	return index
}

// solveSVMDual minimizes the dual of the L2-loss SVM
//
//	min_a 0.5 a'(Q + D)a - e'a,  a >= 0,  D_ii = 1/(2C)
//
// one coordinate at a time, keeping w = sum a_i y_i x_i. It stops when the
// spread of projected gradients drops below Tol or after MaxIter passes.
func solveSVMDual(x *sparse.Matrix, y []float64, opts Options, rng *rand.Rand) ([]float64, int) {
	n := x.Rows
	w := make([]float64, x.Cols+1)
	alpha := make([]float64, n)

	diag := 0.5 / opts.C
	qd := make([]float64, n)
	for i := 0; i < n; i++ {
		qd[i] = x.NormSq(i) + 1 + diag
	}

	iter := 0
	for iter < opts.MaxIter {
		pgMax, pgMin := math.Inf(-1), math.Inf(1)

		for _, i := range shuffledIndex(n, rng) {
			g := y[i]*dotBias(x, i, w) - 1 + diag*alpha[i]

			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)

			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				alpha[i] = math.Max(alpha[i]-g/qd[i], 0)
				addBias(x, i, (alpha[i]-old)*y[i], w)
			}
		}
		iter++

		if pgMax-pgMin <= opts.Tol {
			break
		}
	}

	return w, iter
}

const (
	maxInnerIter   = 100
	innerEpsStart  = 1e-2
	innerEpsFactor = 0.1
)

// solveLogisticDual minimizes the dual of L2-regularized logistic regression
//
//	min_a 0.5 a'Qa + sum a_i log a_i + (C - a_i) log(C - a_i),  0 < a_i < C
//
// Each coordinate keeps the pair (a_i, C - a_i) and is solved by a bounded
// Newton iteration on whichever member of the pair is smaller. The outer
// loop stops when the largest gradient falls below Tol or after MaxIter passes.
func solveLogisticDual(x *sparse.Matrix, y []float64, opts Options, rng *rand.Rand) ([]float64, int) {
	n := x.Rows
	c := opts.C
	w := make([]float64, x.Cols+1)

	// alpha[2i] is a_i, alpha[2i+1] is C - a_i
	alpha := make([]float64, 2*n)
	xx := make([]float64, n)
	for i := 0; i < n; i++ {
		alpha[2*i] = math.Min(0.001*c, 1e-8)
		alpha[2*i+1] = c - alpha[2*i]
		xx[i] = x.NormSq(i) + 1
		addBias(x, i, y[i]*alpha[2*i], w)
	}

	innerEps := innerEpsStart
	innerEpsMin := math.Min(1e-8, opts.Tol)

	iter := 0
	for iter < opts.MaxIter {
		gMax := 0.0
		newtonIter := 0

		for _, i := range shuffledIndex(n, rng) {
			a := xx[i]
			b := y[i] * dotBias(x, i, w)

			ind1, ind2, sign := 2*i, 2*i+1, 1.0
			if 0.5*a*(alpha[ind2]-alpha[ind1])+b < 0 {
				ind1, ind2, sign = 2*i+1, 2*i, -1.0
			}

			old := alpha[ind1]
			z := old
			if c-z < 0.5*c {
				z *= 0.1
			}
			gp := a*(z-old) + sign*b + math.Log(z/(c-z))
			gMax = math.Max(gMax, math.Abs(gp))

			inner := 0
			for inner <= maxInnerIter {
				if math.Abs(gp) < innerEps {
					break
				}
				gpp := a + c/(c-z)/z
				next := z - gp/gpp
				switch {
				case next <= 0:
					z *= innerEpsFactor
				case next >= c:
					z = 0.5 * (z + c)
				default:
					z = next
				}
				gp = a*(z-old) + sign*b + math.Log(z/(c-z))
				newtonIter++
				inner++
			}

			if inner > 0 {
				alpha[ind1] = z
				alpha[ind2] = c - z
				addBias(x, i, sign*(z-old)*y[i], w)
			}
		}
		iter++

		if gMax < opts.Tol {
			break
		}
		if newtonIter <= n/10 {
			innerEps = math.Max(innerEpsMin, innerEpsFactor*innerEps)
		}
	}

	return w, iter
}
