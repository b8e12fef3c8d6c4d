package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	trainAlgo string
	trainRep  string
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and evaluate classifiers on persisted features",
	Long: `Train fits each selected algorithm on each persisted representation,
evaluates it on the held-out partition and persists the fitted model.

Algorithms:
- nb:     multinomial Naive Bayes
- logreg: L2-regularized logistic regression
- svm:    linear SVM (squared hinge)

Run 'textbench features' first.

Example:
  textbench train
  textbench train --algo svm --rep tfidf`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainAlgo, "algo", "all", "algorithm to train (nb, logreg, svm, all)")
	trainCmd.Flags().StringVar(&trainRep, "rep", "all", "representation to train on (bow, tfidf, all)")
}

func runTrain(cmd *cobra.Command, args []string) (err error) {
	reps, err := parseRepresentations(trainRep)
	if err != nil {
		return err
	}

	runner, cfg, closeLog, err := newRunner()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeLog(); closeErr != nil && err == nil {
			err = fmt.Errorf("close log file: %w", closeErr)
		}
	}()

	algs, err := parseAlgorithms(trainAlgo, cfg)
	if err != nil {
		return err
	}

	if _, err := runner.Train(context.Background(), algs, reps); err != nil {
		return fmt.Errorf("train failed: %w", err)
	}
	return nil
}
