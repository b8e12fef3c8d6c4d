// Package pipeline wires the split, feature, training and evaluation
// stages into the experiment run. Stages communicate only through the
// artifact store.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/textbench/internal/cache"
	"github.com/ppiankov/textbench/internal/classify"
	"github.com/ppiankov/textbench/internal/evaluate"
	"github.com/ppiankov/textbench/internal/features"
	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/split"
)

const banner = "═══════════════════════════════════════════════════════════"

// Runner orchestrates the complete experiment
type Runner struct {
	config   *model.Config
	store    *cache.Store
	splitter features.Splitter
	out      io.Writer
}

// NewRunner creates a runner over store. Progress and reports go to out
// (nil discards them).
func NewRunner(cfg *model.Config, store *cache.Store, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		config:   cfg,
		store:    store,
		splitter: split.NewProvider(cfg.Data.Seed),
		out:      out,
	}
}

// BuildFeatures builds and persists each representation in order
func (r *Runner) BuildFeatures(ctx context.Context, reps []model.Representation) ([]*features.Artifact, error) {
	artifacts := make([]*features.Artifact, 0, len(reps))
	for _, rep := range reps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build features: %w", err)
		}
		b, err := features.NewBuilder(rep, r.config, r.splitter, r.store, r.out)
		if err != nil {
			return nil, &model.StageError{Stage: model.StageFeatures, Representation: rep, Err: err}
		}
		a, err := b.BuildAndSave()
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// Train fits every algorithm against the persisted representations and
// returns the reports in (algorithm, representation) order
func (r *Runner) Train(ctx context.Context, algs []model.Algorithm, reps []model.Representation) ([]*model.EvaluationReport, error) {
	opts := classify.OptionsFromConfig(r.config)

	var reports []*model.EvaluationReport
	for _, alg := range algs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
		t, err := NewTrainer(alg, opts, r.store, r.out)
		if err != nil {
			return nil, err
		}
		t.SetRepresentations(reps)
		t.SetVerbose(r.config.Output.Verbose)

		results, err := t.TrainAndSave()
		if err != nil {
			return nil, err
		}
		for _, rep := range reps {
			report := results[rep].Report
			if err := evaluate.WriteText(r.out, report); err != nil {
				return nil, fmt.Errorf("write report: %w", err)
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// Evaluate reloads a persisted model and its features and re-scores the
// held-out partition without refitting
func (r *Runner) Evaluate(alg model.Algorithm, rep model.Representation) (*model.EvaluationReport, error) {
	fs, err := features.Load(r.store, model.StageEvaluate, rep)
	if err != nil {
		return nil, withAlgorithm(err, alg)
	}
	clf, err := LoadModel(r.store, alg, rep)
	if err != nil {
		return nil, err
	}

	report, err := evaluate.Evaluate(model.RunName(alg, rep), clf, fs.Test, fs.TestLabel)
	if err != nil {
		return nil, &model.StageError{Stage: model.StageEvaluate, Algorithm: alg, Representation: rep, Err: err}
	}
	report.Algorithm = alg
	report.Representation = rep

	if err := evaluate.WriteText(r.out, report); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}

// Run executes features then training for everything configured, writes
// the optional report directory and prints a comparison table
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Corpus:    r.config.Data.CorpusPath,
		Seed:      r.config.Data.Seed,
	}

	fmt.Fprintln(r.out, banner)
	fmt.Fprintf(r.out, "  textbench run %s\n", summary.RunID)
	fmt.Fprintln(r.out, banner)
	fmt.Fprintf(r.out, "Corpus: %s (test fraction %.2f, seed %d)\n\n",
		r.config.Data.CorpusPath, r.config.Data.TestFraction, r.config.Data.Seed)

	reps := model.Representations()
	if _, err := r.BuildFeatures(ctx, reps); err != nil {
		return nil, err
	}
	fmt.Fprintln(r.out)

	algs := r.config.Train.Algorithms
	if len(algs) == 0 {
		algs = model.Algorithms()
	}
	reports, err := r.Train(ctx, algs, reps)
	if err != nil {
		return nil, err
	}

	summary.FinishedAt = time.Now().UTC()
	for _, report := range reports {
		summary.Results = append(summary.Results, resultOf(report))
	}

	if dir := r.config.Output.ReportDir; dir != "" {
		if err := WriteReports(dir, summary, reports); err != nil {
			return nil, err
		}
		fmt.Fprintf(r.out, "✓ Wrote reports: %s\n", dir)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, banner)
	fmt.Fprintln(r.out, "  Comparison")
	fmt.Fprintln(r.out, banner)
	if err := evaluate.WriteComparison(r.out, reports); err != nil {
		return nil, fmt.Errorf("write comparison: %w", err)
	}
	fmt.Fprintf(r.out, "\n✓ Run %s finished in %v\n", summary.RunID,
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	return summary, nil
}
