// Package features turns a train/test split into persisted document-term
// matrices. The vectorizer only ever sees training text.
package features

import (
	"errors"
	"fmt"
	"io"

	"github.com/ppiankov/textbench/internal/cache"
	"github.com/ppiankov/textbench/internal/model"
)

// Splitter produces the shared train/test partition
type Splitter interface {
	LoadAndSplit(path string, testFraction float64) (*model.Split, error)
}

// Artifact is what a build produces and persists
type Artifact struct {
	Vectorizer *Vectorizer
	Features   *model.FeatureSet
	Split      *model.Split // Not persisted; kept for inspection
}

// VectorizerKey is the store key of a representation's fitted vectorizer
func VectorizerKey(rep model.Representation) string {
	return cache.Key("vectorizer", string(rep))
}

// FeaturesKey is the store key of a representation's matrices and labels
func FeaturesKey(rep model.Representation) string {
	return cache.Key("features", string(rep))
}

// WeightingFor returns the weighting policy of a representation
func WeightingFor(rep model.Representation) (Weighting, error) {
	switch rep {
	case model.RepBoW:
		return WeightCount, nil
	case model.RepTFIDF:
		return WeightTFIDF, nil
	default:
		return "", fmt.Errorf("unknown representation %q", rep)
	}
}

// Builder builds and persists one feature representation
type Builder struct {
	rep          model.Representation
	weighting    Weighting
	vecConfig    model.VectorizerConfig
	corpusPath   string
	testFraction float64
	splitter     Splitter
	store        *cache.Store
	out          io.Writer
}

// NewBuilder creates a builder for rep using the corpus, split and
// vectorizer settings of cfg. Progress lines go to out (nil discards them).
func NewBuilder(rep model.Representation, cfg *model.Config, splitter Splitter, store *cache.Store, out io.Writer) (*Builder, error) {
	weighting, err := WeightingFor(rep)
	if err != nil {
		return nil, err
	}
	vecConfig, _ := cfg.Features.For(rep)
	if out == nil {
		out = io.Discard
	}

	return &Builder{
		rep:          rep,
		weighting:    weighting,
		vecConfig:    vecConfig,
		corpusPath:   cfg.Data.CorpusPath,
		testFraction: cfg.Data.TestFraction,
		splitter:     splitter,
		store:        store,
		out:          out,
	}, nil
}

// BuildAndSave splits the corpus, fits the vectorizer on the training text,
// transforms both partitions and persists vectorizer and features
func (b *Builder) BuildAndSave() (*Artifact, error) {
	s, err := b.splitter.LoadAndSplit(b.corpusPath, b.testFraction)
	if err != nil {
		return nil, model.WithRepresentation(err, model.StageSplit, b.rep)
	}

	artifact, err := b.Build(s)
	if err != nil {
		return nil, err
	}

	if err := b.save(artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

// Build vectorizes an existing split without persisting anything
func (b *Builder) Build(s *model.Split) (*Artifact, error) {
	name := b.rep.DisplayName()

	if len(s.TrainText) == 0 || len(s.TestText) == 0 {
		return nil, b.featureError(fmt.Errorf("empty partition after split (train=%d, test=%d)", len(s.TrainText), len(s.TestText)))
	}

	fmt.Fprintf(b.out, "⚙️  Building %s features (ngram %d-%d, max %d)...\n",
		name, b.vecConfig.NGramMin, b.vecConfig.NGramMax, b.vecConfig.MaxFeatures)

	vec := NewVectorizer(b.weighting, b.vecConfig)
	train, err := vec.FitTransform(s.TrainText)
	if err != nil {
		return nil, b.featureError(err)
	}
	test, err := vec.Transform(s.TestText)
	if err != nil {
		return nil, b.featureError(err)
	}

	fmt.Fprintf(b.out, "  %s vocab size: %d\n", name, vec.VocabularySize())
	fmt.Fprintf(b.out, "  %s train shape: (%d, %d)\n", name, train.Rows, train.Cols)
	fmt.Fprintf(b.out, "  %s test shape:  (%d, %d)\n", name, test.Rows, test.Cols)

	return &Artifact{
		Vectorizer: vec,
		Features: &model.FeatureSet{
			Representation: b.rep,
			Train:          train,
			Test:           test,
			TrainLabel:     append([]string(nil), s.TrainLabel...),
			TestLabel:      append([]string(nil), s.TestLabel...),
		},
		Split: s,
	}, nil
}

func (b *Builder) save(a *Artifact) error {
	if err := b.store.Put(VectorizerKey(b.rep), a.Vectorizer); err != nil {
		return &model.StageError{Stage: model.StagePersist, Representation: b.rep, Err: err}
	}
	if err := b.store.Put(FeaturesKey(b.rep), a.Features); err != nil {
		return &model.StageError{Stage: model.StagePersist, Representation: b.rep, Err: err}
	}
	fmt.Fprintf(b.out, "✓ %s features saved\n", b.rep.DisplayName())
	return nil
}

func (b *Builder) featureError(err error) error {
	return &model.StageError{Stage: model.StageFeatures, Representation: b.rep, Kind: model.ErrFeature, Err: err}
}

// Load reads a persisted feature set on behalf of stage. A representation
// that has not been built yet yields an error matching
// model.ErrArtifactMissing.
func Load(store *cache.Store, stage model.Stage, rep model.Representation) (*model.FeatureSet, error) {
	var fs model.FeatureSet
	if err := store.Get(FeaturesKey(rep), &fs); err != nil {
		return nil, loadError(stage, rep, err)
	}
	if err := checkShapes(&fs); err != nil {
		return nil, &model.StageError{Stage: model.StageFeatures, Representation: rep, Kind: model.ErrFeature, Err: err}
	}
	return &fs, nil
}

// LoadVectorizer reads a persisted vectorizer
func LoadVectorizer(store *cache.Store, stage model.Stage, rep model.Representation) (*Vectorizer, error) {
	var v Vectorizer
	if err := store.Get(VectorizerKey(rep), &v); err != nil {
		return nil, loadError(stage, rep, err)
	}
	return &v, nil
}

func loadError(stage model.Stage, rep model.Representation, err error) error {
	if errors.Is(err, cache.ErrNotFound) {
		return &model.StageError{
			Stage:          stage,
			Representation: rep,
			Kind:           model.ErrArtifactMissing,
			Err:            fmt.Errorf("run the features step first: %w", err),
		}
	}
	return &model.StageError{Stage: stage, Representation: rep, Err: err}
}

func checkShapes(fs *model.FeatureSet) error {
	if fs.Train == nil || fs.Test == nil {
		return fmt.Errorf("feature set is missing a matrix")
	}
	if fs.Train.Rows != len(fs.TrainLabel) {
		return fmt.Errorf("train matrix has %d rows for %d labels", fs.Train.Rows, len(fs.TrainLabel))
	}
	if fs.Test.Rows != len(fs.TestLabel) {
		return fmt.Errorf("test matrix has %d rows for %d labels", fs.Test.Rows, len(fs.TestLabel))
	}
	if fs.Train.Cols != fs.Test.Cols {
		return fmt.Errorf("train has %d columns, test has %d", fs.Train.Cols, fs.Test.Cols)
	}
	return nil
}
