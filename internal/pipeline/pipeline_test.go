package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ppiankov/textbench/internal/cache"
	"github.com/ppiankov/textbench/internal/classify"
	"github.com/ppiankov/textbench/internal/features"
	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/sparse"
	"github.com/ppiankov/textbench/internal/testutil"
)

func newTestConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Data.CorpusPath = testutil.WriteCorpusCSV(t, testutil.ToyCorpus(50))
	return cfg
}

func TestRunner_EndToEnd_NaiveBayesBoW(t *testing.T) {
	cfg := newTestConfig(t)
	store := cache.NewMemoryStore()
	r := NewRunner(cfg, store, nil)
	ctx := context.Background()

	reps := []model.Representation{model.RepBoW}
	if _, err := r.BuildFeatures(ctx, reps); err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}
	reports, err := r.Train(ctx, []model.Algorithm{model.AlgoNaiveBayes}, reps)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	rep := reports[0]
	if rep.Name != "NaiveBayes + BoW" {
		t.Errorf("Name = %q", rep.Name)
	}
	if rep.Accuracy < 0 || rep.Accuracy > 1 {
		t.Errorf("accuracy %v outside [0,1]", rep.Accuracy)
	}
	if rep.Accuracy < 0.8 {
		t.Errorf("accuracy %v too low for a separable corpus", rep.Accuracy)
	}
	if len(rep.ConfusionMatrix) != 2 || len(rep.ConfusionMatrix[0]) != 2 {
		t.Fatalf("confusion matrix is not 2x2: %v", rep.ConfusionMatrix)
	}
	if rep.Total() != 20 {
		t.Errorf("confusion matrix sums to %d, want 20", rep.Total())
	}
	if !store.Has(ModelKey(model.AlgoNaiveBayes, model.RepBoW)) {
		t.Error("model was not persisted")
	}
}

func TestRunner_Run(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Train.Algorithms = []model.Algorithm{model.AlgoNaiveBayes, model.AlgoSVM}
	cfg.Output.ReportDir = filepath.Join(t.TempDir(), "reports")

	var out bytes.Buffer
	summary, err := NewRunner(cfg, cache.NewMemoryStore(), &out).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := uuid.Parse(summary.RunID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", summary.RunID, err)
	}
	wantNames := []string{"NaiveBayes + BoW", "NaiveBayes + TFIDF", "SVM + BoW", "SVM + TFIDF"}
	var gotNames []string
	for _, res := range summary.Results {
		gotNames = append(gotNames, res.Name)
	}
	if !reflect.DeepEqual(gotNames, wantNames) {
		t.Errorf("results = %v, want %v", gotNames, wantNames)
	}

	for _, stem := range []string{"nb_bow", "nb_tfidf", "svm_bow", "svm_tfidf"} {
		for _, ext := range []string{".txt", ".json"} {
			if _, err := os.Stat(filepath.Join(cfg.Output.ReportDir, stem+ext)); err != nil {
				t.Errorf("missing report %s%s: %v", stem, ext, err)
			}
		}
	}

	data, err := os.ReadFile(filepath.Join(cfg.Output.ReportDir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid summary JSON: %v", err)
	}
	if decoded.RunID != summary.RunID || len(decoded.Results) != 4 {
		t.Errorf("decoded summary = %+v", decoded)
	}

	log := out.String()
	for _, want := range []string{summary.RunID, "BoW vocab size:", "===== SVM + TFIDF =====", "Comparison"} {
		if !strings.Contains(log, want) {
			t.Errorf("run output missing %q", want)
		}
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	cfg := newTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(cfg, cache.NewMemoryStore(), nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunner_Run_MissingCorpus(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Data.CorpusPath = filepath.Join(t.TempDir(), "nope.csv")

	_, err := NewRunner(cfg, cache.NewMemoryStore(), nil).Run(context.Background())
	if !errors.Is(err, model.ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
	if !strings.Contains(err.Error(), "representation=bow") {
		t.Errorf("error should name the representation: %v", err)
	}
}

func TestTrainer_ArtifactMissing(t *testing.T) {
	tr, err := NewTrainer(model.AlgoLogReg, classify.DefaultOptions(), cache.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}

	_, err = tr.TrainAndSave()
	if !errors.Is(err, model.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
	var se *model.StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *model.StageError, got %T", err)
	}
	if se.Algorithm != model.AlgoLogReg || se.Representation != model.RepBoW {
		t.Errorf("error names algorithm=%q representation=%q", se.Algorithm, se.Representation)
	}
}

func TestTrainer_LoadsAllFeaturesBeforeFitting(t *testing.T) {
	cfg := newTestConfig(t)
	store := cache.NewMemoryStore()
	if _, err := NewRunner(cfg, store, nil).BuildFeatures(context.Background(), []model.Representation{model.RepBoW}); err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}

	tr, err := NewTrainer(model.AlgoNaiveBayes, classify.DefaultOptions(), store, nil)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	_, err = tr.TrainAndSave()
	if !errors.Is(err, model.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "representation=tfidf") {
		t.Errorf("error should name the missing representation: %v", err)
	}
	if store.Has(ModelKey(model.AlgoNaiveBayes, model.RepBoW)) {
		t.Error("bow model persisted although tfidf features were missing")
	}
}

func TestTrainer_VerboseOutput(t *testing.T) {
	cfg := newTestConfig(t)
	store := cache.NewMemoryStore()
	reps := []model.Representation{model.RepBoW}
	if _, err := NewRunner(cfg, store, nil).BuildFeatures(context.Background(), reps); err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}

	var out bytes.Buffer
	tr, err := NewTrainer(model.AlgoSVM, classify.OptionsFromConfig(cfg), store, &out)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	tr.SetRepresentations(reps)
	tr.SetVerbose(true)
	if _, err := tr.TrainAndSave(); err != nil {
		t.Fatalf("TrainAndSave: %v", err)
	}

	for _, want := range []string{"classes: politics, sports", "solver iterations:", "✓ SVM + BoW saved"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunner_Evaluate_MissingFeatures(t *testing.T) {
	_, err := NewRunner(model.DefaultConfig(), cache.NewMemoryStore(), nil).Evaluate(model.AlgoNaiveBayes, model.RepBoW)
	if !errors.Is(err, model.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
	var se *model.StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *model.StageError, got %T", err)
	}
	if se.Stage != model.StageEvaluate || se.Algorithm != model.AlgoNaiveBayes {
		t.Errorf("error reports stage=%q algorithm=%q", se.Stage, se.Algorithm)
	}
}

func TestTrainer_ModelFitError(t *testing.T) {
	store := cache.NewMemoryStore()
	x, err := sparse.FromDense([][]float64{{1, 0}, {0, 1}}, 2)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	single := &model.FeatureSet{
		Representation: model.RepBoW,
		Train:          x,
		Test:           x,
		TrainLabel:     []string{"sports", "sports"},
		TestLabel:      []string{"sports", "politics"},
	}
	if err := store.Put(features.FeaturesKey(model.RepBoW), single); err != nil {
		t.Fatalf("Put: %v", err)
	}

	tr, err := NewTrainer(model.AlgoNaiveBayes, classify.DefaultOptions(), store, nil)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	tr.SetRepresentations([]model.Representation{model.RepBoW})

	_, err = tr.TrainAndSave()
	if !errors.Is(err, model.ErrModelFit) {
		t.Fatalf("expected ErrModelFit, got %v", err)
	}
	if !strings.Contains(err.Error(), "algorithm=nb") {
		t.Errorf("error should name the algorithm: %v", err)
	}
	if store.Has(ModelKey(model.AlgoNaiveBayes, model.RepBoW)) {
		t.Error("failed fit must not persist a model")
	}
}

func TestTrainer_AllAlgorithms(t *testing.T) {
	cfg := newTestConfig(t)
	store := cache.NewMemoryStore()
	r := NewRunner(cfg, store, nil)
	if _, err := r.BuildFeatures(context.Background(), model.Representations()); err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}

	for _, alg := range model.Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			tr, err := NewTrainer(alg, classify.OptionsFromConfig(cfg), store, nil)
			if err != nil {
				t.Fatalf("NewTrainer: %v", err)
			}
			results, err := tr.TrainAndSave()
			if err != nil {
				t.Fatalf("TrainAndSave: %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("expected results for 2 representations, got %d", len(results))
			}

			for rep, res := range results {
				if res.Report.Algorithm != alg || res.Report.Representation != rep {
					t.Errorf("report tagged %s/%s, want %s/%s",
						res.Report.Algorithm, res.Report.Representation, alg, rep)
				}
				if res.Report.Total() != 20 {
					t.Errorf("%s: confusion matrix sums to %d, want 20", rep, res.Report.Total())
				}

				// reloaded model reproduces the training-time report
				again, err := r.Evaluate(alg, rep)
				if err != nil {
					t.Fatalf("Evaluate: %v", err)
				}
				if again.Accuracy != res.Report.Accuracy ||
					!reflect.DeepEqual(again.ConfusionMatrix, res.Report.ConfusionMatrix) {
					t.Errorf("%s: reloaded model scored differently", rep)
				}
			}
		})
	}
}

func TestRunner_DiskStoreAcrossRuns(t *testing.T) {
	cfg := newTestConfig(t)
	dir := t.TempDir()
	ctx := context.Background()
	reps := []model.Representation{model.RepTFIDF}

	first := NewRunner(cfg, cache.NewStore(cache.NewDiskCache(dir, 0)), nil)
	if _, err := first.BuildFeatures(ctx, reps); err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}

	// a fresh store over the same directory sees the persisted features
	second := NewRunner(cfg, cache.NewStore(cache.NewLayeredCache(0, dir, 0)), nil)
	reports, err := second.Train(ctx, []model.Algorithm{model.AlgoLogReg}, reps)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if reports[0].Name != "LogReg + TFIDF" {
		t.Errorf("Name = %q", reports[0].Name)
	}
	if _, err := os.Stat(filepath.Join(dir, "model_logreg_tfidf.bin")); err != nil {
		t.Errorf("model file missing: %v", err)
	}
}

func TestLoadModel_Missing(t *testing.T) {
	_, err := LoadModel(cache.NewMemoryStore(), model.AlgoSVM, model.RepTFIDF)
	if !errors.Is(err, model.ErrArtifactMissing) {
		t.Errorf("expected ErrArtifactMissing, got %v", err)
	}
}

func TestNewTrainer_UnknownAlgorithm(t *testing.T) {
	if _, err := NewTrainer("knn", classify.DefaultOptions(), cache.NewMemoryStore(), nil); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestOpenLog(t *testing.T) {
	var console bytes.Buffer

	w, closeLog, err := OpenLog("", &console)
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	if w != &console {
		t.Error("empty path should return the writer unchanged")
	}
	if err := closeLog(); err != nil {
		t.Errorf("close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "logs", "pipeline.log")
	w, closeLog, err = OpenLog(path, &console)
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	if _, err := w.Write([]byte("✓ BoW features saved\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "✓ BoW features saved\n" || console.String() != string(data) {
		t.Errorf("log = %q, console = %q", data, console.String())
	}
}
