package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/textbench/internal/model"
	"github.com/spf13/cobra"
)

var featuresRep string

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Split the corpus and build feature matrices",
	Long: `Features splits the corpus into train and test partitions and builds
one or both feature representations:
- bow:   raw term counts, unigrams, vocabulary capped at 40,000
- tfidf: TF-IDF weights, unigrams and bigrams, vocabulary capped at 50,000

Vectorizers are fit on training text only. Vectorizers, matrices and labels
are persisted in the artifact store for the train step.

Example:
  textbench features
  textbench features --rep tfidf --corpus data/dataset_clean.csv`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVar(&featuresRep, "rep", "all", "representation to build (bow, tfidf, all)")
}

func runFeatures(cmd *cobra.Command, args []string) (err error) {
	reps, err := parseRepresentations(featuresRep)
	if err != nil {
		return err
	}

	runner, _, closeLog, err := newRunner()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeLog(); closeErr != nil && err == nil {
			err = fmt.Errorf("close log file: %w", closeErr)
		}
	}()

	if _, err := runner.BuildFeatures(context.Background(), reps); err != nil {
		return fmt.Errorf("features failed: %w", err)
	}
	return nil
}

// parseRepresentations expands a --rep value
func parseRepresentations(s string) ([]model.Representation, error) {
	if s == "" || s == "all" {
		return model.Representations(), nil
	}
	for _, rep := range model.Representations() {
		if string(rep) == s {
			return []model.Representation{rep}, nil
		}
	}
	return nil, fmt.Errorf("unknown representation %q (want bow, tfidf or all)", s)
}

// parseAlgorithms expands an --algo value; "all" means the configured list
func parseAlgorithms(s string, cfg *model.Config) ([]model.Algorithm, error) {
	if s == "" || s == "all" {
		if len(cfg.Train.Algorithms) > 0 {
			return cfg.Train.Algorithms, nil
		}
		return model.Algorithms(), nil
	}
	for _, alg := range model.Algorithms() {
		if string(alg) == s {
			return []model.Algorithm{alg}, nil
		}
	}
	return nil, fmt.Errorf("unknown algorithm %q (want nb, logreg, svm or all)", s)
}
