package model

// EvaluationReport is the uniform metric bundle produced for every
// (algorithm, representation) pair
type EvaluationReport struct {
	Name           string         `json:"name"` // e.g. "NaiveBayes + BoW"
	Algorithm      Algorithm      `json:"algorithm,omitempty"`
	Representation Representation `json:"representation,omitempty"`
	Accuracy       float64        `json:"accuracy"` // In [0,1]

	Labels      []string                `json:"labels"` // Row/column order of ConfusionMatrix
	PerClass    map[string]ClassMetrics `json:"per_class"`
	MacroAvg    ClassMetrics            `json:"macro_avg"`
	WeightedAvg ClassMetrics            `json:"weighted_avg"`

	// ConfusionMatrix[i][j] counts rows whose expected label is Labels[i]
	// and predicted label is Labels[j]
	ConfusionMatrix [][]int `json:"confusion_matrix"`
}

// ClassMetrics holds precision, recall and F1 for one label (or an average)
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Total returns the number of evaluated rows
func (r *EvaluationReport) Total() int {
	total := 0
	for _, row := range r.ConfusionMatrix {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Correct returns the trace of the confusion matrix
func (r *EvaluationReport) Correct() int {
	correct := 0
	for i, row := range r.ConfusionMatrix {
		if i < len(row) {
			correct += row[i]
		}
	}
	return correct
}
