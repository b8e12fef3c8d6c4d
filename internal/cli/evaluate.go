package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/textbench/internal/evaluate"
	"github.com/ppiankov/textbench/internal/model"
	"github.com/spf13/cobra"
)

var (
	evalAlgo string
	evalRep  string
	evalJSON bool
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Re-evaluate a persisted model without refitting",
	Long: `Evaluate reloads a trained model and its features from the artifact
store and reports its scores on the held-out partition again.

Example:
  textbench evaluate --algo nb --rep bow
  textbench evaluate --algo svm --rep tfidf --json`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalAlgo, "algo", "", "algorithm of the model (nb, logreg, svm)")
	evaluateCmd.Flags().StringVar(&evalRep, "rep", "", "representation of the model (bow, tfidf)")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "also print the report as JSON")
	_ = evaluateCmd.MarkFlagRequired("algo")
	_ = evaluateCmd.MarkFlagRequired("rep")
}

func runEvaluate(cmd *cobra.Command, args []string) (err error) {
	if evalAlgo == "all" || evalRep == "all" {
		return fmt.Errorf("evaluate takes a single --algo and --rep")
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

	algs, err := parseAlgorithms(evalAlgo, cfg)
	if err != nil {
		return err
	}
	reps, err := parseRepresentations(evalRep)
	if err != nil {
		return err
	}

	report, err := runner.Evaluate(algs[0], reps[0])
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}

	if evalJSON {
		if err := evaluate.WriteJSON(os.Stdout, report); err != nil {
			return err
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %s: %d/%d correct\n", model.RunName(algs[0], reps[0]), report.Correct(), report.Total())
	}
	return nil
}
