package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/textbench/internal/cache"
	"github.com/ppiankov/textbench/internal/evaluate"
	"github.com/ppiankov/textbench/internal/model"
)

// Summary describes one complete run and is written as summary.json
type Summary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Corpus     string    `json:"corpus"`
	Seed       int64     `json:"seed"`
	Results    []Result  `json:"results"`
}

// Result is the headline score of one (algorithm, representation) pair
type Result struct {
	Name           string               `json:"name"`
	Algorithm      model.Algorithm      `json:"algorithm"`
	Representation model.Representation `json:"representation"`
	Accuracy       float64              `json:"accuracy"`
	MacroF1        float64              `json:"macro_f1"`
	WeightedF1     float64              `json:"weighted_f1"`
}

func resultOf(r *model.EvaluationReport) Result {
	return Result{
		Name:           r.Name,
		Algorithm:      r.Algorithm,
		Representation: r.Representation,
		Accuracy:       r.Accuracy,
		MacroF1:        r.MacroAvg.F1,
		WeightedF1:     r.WeightedAvg.F1,
	}
}

// ReportStem is the file name (without extension) of a report, e.g. "nb_bow"
func ReportStem(r *model.EvaluationReport) string {
	if r.Algorithm == "" || r.Representation == "" {
		return cache.Key(r.Name)
	}
	return cache.Key(string(r.Algorithm), string(r.Representation))
}

// WriteReports writes <stem>.txt and <stem>.json per report and
// summary.json into dir
func WriteReports(dir string, summary *Summary, reports []*model.EvaluationReport) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	for _, r := range reports {
		stem := filepath.Join(dir, ReportStem(r))

		var text bytes.Buffer
		if err := evaluate.WriteText(&text, r); err != nil {
			return fmt.Errorf("render %s: %w", r.Name, err)
		}
		if err := os.WriteFile(stem+".txt", text.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", stem+".txt", err)
		}

		var js bytes.Buffer
		if err := evaluate.WriteJSON(&js, r); err != nil {
			return fmt.Errorf("render %s: %w", r.Name, err)
		}
		if err := os.WriteFile(stem+".json", js.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", stem+".json", err)
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
