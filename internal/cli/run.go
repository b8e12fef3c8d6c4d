package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var runTimeout time.Duration

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build all features, then train and evaluate every configured model",
	Long: `Run executes the whole experiment:
- Split the corpus once (stratified, seeded)
- Build BoW and TF-IDF features
- Train and evaluate every configured algorithm on both representations
- Print a comparison table, and write reports when --report-dir is set

Example:
  textbench run
  textbench run --log-file logs/pipeline.log --report-dir ./reports
  textbench run --seed 7 --test-size 0.25`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "stop the run at the next stage boundary after this long (0 = no limit)")
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
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

	if _, err := runner.Run(ctx); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}
