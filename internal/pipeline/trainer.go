package pipeline

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/textbench/internal/cache"
	"github.com/ppiankov/textbench/internal/classify"
	"github.com/ppiankov/textbench/internal/evaluate"
	"github.com/ppiankov/textbench/internal/features"
	"github.com/ppiankov/textbench/internal/model"
)

// TrainResult is the fitted model and its evaluation for one representation
type TrainResult struct {
	Model  classify.Classifier
	Report *model.EvaluationReport
}

// Trainer fits one algorithm against every persisted representation
type Trainer struct {
	alg     model.Algorithm
	opts    classify.Options
	reps    []model.Representation
	store   *cache.Store
	out     io.Writer
	verbose bool
}

// ModelKey is the store key of a fitted model
func ModelKey(alg model.Algorithm, rep model.Representation) string {
	return cache.Key("model", string(alg), string(rep))
}

// NewTrainer creates a trainer for alg over the stock representations.
// Progress lines go to out (nil discards them).
func NewTrainer(alg model.Algorithm, opts classify.Options, store *cache.Store, out io.Writer) (*Trainer, error) {
	if _, err := classify.New(alg, opts); err != nil {
		return nil, &model.StageError{Stage: model.StageTrain, Algorithm: alg, Err: err}
	}
	if out == nil {
		out = io.Discard
	}
	return &Trainer{
		alg:   alg,
		opts:  opts,
		reps:  model.Representations(),
		store: store,
		out:   out,
	}, nil
}

// SetRepresentations restricts training to reps, in the given order
func (t *Trainer) SetRepresentations(reps []model.Representation) {
	t.reps = append([]model.Representation(nil), reps...)
}

// SetVerbose enables timing and solver detail lines
func (t *Trainer) SetVerbose(v bool) {
	t.verbose = v
}

// TrainAndSave fits, evaluates and persists a model per representation.
// Every feature set is loaded before anything is fit, so a missing build
// leaves no models behind. The first failure aborts the remaining
// representations.
func (t *Trainer) TrainAndSave() (map[model.Representation]*TrainResult, error) {
	sets := make([]*model.FeatureSet, len(t.reps))
	for i, rep := range t.reps {
		fs, err := features.Load(t.store, model.StageTrain, rep)
		if err != nil {
			return nil, withAlgorithm(err, t.alg)
		}
		sets[i] = fs
	}

	results := make(map[model.Representation]*TrainResult, len(t.reps))
	for i, rep := range t.reps {
		res, err := t.trainOne(rep, sets[i])
		if err != nil {
			return nil, err
		}
		results[rep] = res
	}
	return results, nil
}

func (t *Trainer) trainOne(rep model.Representation, fs *model.FeatureSet) (*TrainResult, error) {
	name := model.RunName(t.alg, rep)
	fmt.Fprintf(t.out, "⚙️  Training %s...\n", name)

	clf, err := classify.New(t.alg, t.opts)
	if err != nil {
		return nil, t.stageError(model.StageTrain, rep, err)
	}

	start := time.Now()
	if err := clf.Fit(fs.Train, fs.TrainLabel); err != nil {
		return nil, t.stageError(model.StageTrain, rep, err)
	}
	if t.verbose {
		fmt.Fprintf(t.out, "  fit took %v on %d rows x %d columns\n",
			time.Since(start).Round(time.Millisecond), fs.Train.Rows, fs.Train.Cols)
		fmt.Fprintf(t.out, "  classes: %s\n", strings.Join(clf.Classes(), ", "))
		if lin, ok := clf.(*classify.Linear); ok {
			fmt.Fprintf(t.out, "  solver iterations: %v\n", lin.Iterations)
		}
	}

	report, err := evaluate.Evaluate(name, clf, fs.Test, fs.TestLabel)
	if err != nil {
		return nil, t.stageError(model.StageEvaluate, rep, err)
	}
	report.Algorithm = t.alg
	report.Representation = rep

	if err := SaveModel(t.store, clf, rep); err != nil {
		return nil, err
	}
	fmt.Fprintf(t.out, "✓ %s saved (accuracy %.4f)\n", name, report.Accuracy)

	return &TrainResult{Model: clf, Report: report}, nil
}

func (t *Trainer) stageError(stage model.Stage, rep model.Representation, err error) error {
	return &model.StageError{Stage: stage, Algorithm: t.alg, Representation: rep, Err: err}
}

// SaveModel persists a fitted model under its (algorithm, representation) key
func SaveModel(store *cache.Store, clf classify.Classifier, rep model.Representation) error {
	payload, err := classify.Encode(clf)
	if err != nil {
		return &model.StageError{Stage: model.StagePersist, Algorithm: clf.Algorithm(), Representation: rep, Err: err}
	}
	artifact := model.ModelArtifact{
		Algorithm:      clf.Algorithm(),
		Representation: rep,
		Payload:        payload,
	}
	if err := store.Put(ModelKey(clf.Algorithm(), rep), artifact); err != nil {
		return &model.StageError{Stage: model.StagePersist, Algorithm: clf.Algorithm(), Representation: rep, Err: err}
	}
	return nil
}

// LoadModel restores a persisted model. A pair that has not been trained
// yields an error matching model.ErrArtifactMissing.
func LoadModel(store *cache.Store, alg model.Algorithm, rep model.Representation) (classify.Classifier, error) {
	var artifact model.ModelArtifact
	if err := store.Get(ModelKey(alg, rep), &artifact); err != nil {
		se := &model.StageError{Stage: model.StageEvaluate, Algorithm: alg, Representation: rep, Err: err}
		if errors.Is(err, cache.ErrNotFound) {
			se.Kind = model.ErrArtifactMissing
			se.Err = fmt.Errorf("run the train step first: %w", err)
		}
		return nil, se
	}

	clf, err := classify.Decode(artifact.Payload)
	if err != nil {
		return nil, &model.StageError{Stage: model.StageEvaluate, Algorithm: alg, Representation: rep, Err: err}
	}
	if clf.Algorithm() != alg {
		return nil, &model.StageError{
			Stage:          model.StageEvaluate,
			Algorithm:      alg,
			Representation: rep,
			Err:            fmt.Errorf("stored model is %s", clf.Algorithm()),
		}
	}
	return clf, nil
}

// withAlgorithm fills in the algorithm of a StageError
func withAlgorithm(err error, alg model.Algorithm) error {
	var se *model.StageError
	if errors.As(err, &se) {
		cp := *se
		if cp.Algorithm == "" {
			cp.Algorithm = alg
		}
		return &cp
	}
	return &model.StageError{Stage: model.StageTrain, Algorithm: alg, Err: err}
}
