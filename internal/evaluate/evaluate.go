// Package evaluate computes the metric bundle reported for every trained
// model. Labels are always ordered lexicographically so reports from
// different models line up.
package evaluate

import (
	"fmt"
	"sort"

	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/sparse"
)

// Predictor is anything that labels the rows of a feature matrix
type Predictor interface {
	Predict(x *sparse.Matrix) ([]string, error)
}

// Evaluate predicts x once and scores the predictions against y
func Evaluate(name string, p Predictor, x *sparse.Matrix, y []string) (*model.EvaluationReport, error) {
	if x == nil {
		return nil, fmt.Errorf("evaluate %s: nil test matrix", name)
	}
	if x.Rows != len(y) {
		return nil, fmt.Errorf("evaluate %s: %d test rows but %d labels", name, x.Rows, len(y))
	}
	pred, err := p.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: predict: %w", name, err)
	}
	return FromPredictions(name, y, pred)
}

// FromPredictions scores predicted labels against expected labels
func FromPredictions(name string, expected, predicted []string) (*model.EvaluationReport, error) {
	if len(expected) != len(predicted) {
		return nil, fmt.Errorf("evaluate %s: %d expected labels but %d predictions", name, len(expected), len(predicted))
	}
	if len(expected) == 0 {
		return nil, fmt.Errorf("evaluate %s: no test rows", name)
	}

	labels := unionLabels(expected, predicted)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	cm := make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	for i := range expected {
		cm[index[expected[i]]][index[predicted[i]]]++
	}

	report := &model.EvaluationReport{
		Name:            name,
		Labels:          labels,
		PerClass:        make(map[string]model.ClassMetrics, len(labels)),
		ConfusionMatrix: cm,
	}

	total := len(expected)
	var macro, weighted model.ClassMetrics
	for i, l := range labels {
		tp := cm[i][i]
		support, predictedCount := 0, 0
		for j := range labels {
			support += cm[i][j]
			predictedCount += cm[j][i]
		}

		p := Precision(tp, predictedCount)
		r := Recall(tp, support)
		m := model.ClassMetrics{Precision: p, Recall: r, F1: F1(p, r), Support: support}
		report.PerClass[l] = m

		macro.Precision += m.Precision
		macro.Recall += m.Recall
		macro.F1 += m.F1
		w := float64(support) / float64(total)
		weighted.Precision += w * m.Precision
		weighted.Recall += w * m.Recall
		weighted.F1 += w * m.F1
	}

	k := float64(len(labels))
	macro.Precision /= k
	macro.Recall /= k
	macro.F1 /= k
	macro.Support = total
	weighted.Support = total

	report.MacroAvg = macro
	report.WeightedAvg = weighted
	report.Accuracy = float64(report.Correct()) / float64(total)

	return report, nil
}

// Precision is tp / (tp + fp); 0 when nothing was predicted positive
func Precision(truePositives, testPositives int) float64 {
	if testPositives == 0 {
		return 0
	}
	return float64(truePositives) / float64(testPositives)
}

// Recall is tp / (tp + fn); 0 when the class has no support
func Recall(truePositives, conditionPositives int) float64 {
	if conditionPositives == 0 {
		return 0
	}
	return float64(truePositives) / float64(conditionPositives)
}

// F1 is the harmonic mean of precision and recall
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2.0 * (precision * recall) / (precision + recall)
}

func unionLabels(a, b []string) []string {
	seen := make(map[string]struct{})
	for _, l := range a {
		seen[l] = struct{}{}
	}
	for _, l := range b {
		seen[l] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
