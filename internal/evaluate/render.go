package evaluate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/textbench/internal/model"
)

// WriteText renders a report as a banner, accuracy line, per-class table
// and confusion matrix
func WriteText(w io.Writer, r *model.EvaluationReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n===== %s =====\n", r.Name)
	fmt.Fprintf(&b, "Accuracy: %.4f\n\n", r.Accuracy)

	width := len("weighted avg")
	for _, l := range r.Labels {
		if len(l) > width {
			width = len(l)
		}
	}

	b.WriteString("Classification Report:\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, l := range r.Labels {
		m := r.PerClass[l]
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, l, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total())
	writeAvg(&b, width, "macro avg", r.MacroAvg)
	writeAvg(&b, width, "weighted avg", r.WeightedAvg)

	b.WriteString("\nConfusion Matrix:\n")
	b.WriteString(FormatMatrix(r.ConfusionMatrix))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAvg(b *strings.Builder, width int, name string, m model.ClassMetrics) {
	fmt.Fprintf(b, "%*s %9.2f %9.2f %9.2f %9d\n", width, name, m.Precision, m.Recall, m.F1, m.Support)
}

// FormatMatrix renders an integer matrix in nested-bracket form, e.g.
//
//	[[10  0]
//	 [ 1  9]]
func FormatMatrix(cm [][]int) string {
	cell := 1
	for _, row := range cm {
		for _, v := range row {
			if n := len(fmt.Sprint(v)); n > cell {
				cell = n
			}
		}
	}

	var b strings.Builder
	b.WriteString("[")
	for i, row := range cm {
		if i > 0 {
			b.WriteString("\n ")
		}
		b.WriteString("[")
		for j, v := range row {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%*d", cell, v)
		}
		b.WriteString("]")
	}
	b.WriteString("]\n")
	return b.String()
}

// WriteJSON renders a report as indented JSON
func WriteJSON(w io.Writer, r *model.EvaluationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteComparison renders one accuracy / macro-F1 line per report
func WriteComparison(w io.Writer, reports []*model.EvaluationReport) error {
	width := len("model")
	for _, r := range reports {
		if len(r.Name) > width {
			width = len(r.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %8s  %8s\n", width, "model", "accuracy", "macro f1")
	for _, r := range reports {
		fmt.Fprintf(&b, "%-*s  %8.4f  %8.4f\n", width, r.Name, r.Accuracy, r.MacroAvg.F1)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
