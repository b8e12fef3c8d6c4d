package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/textbench/internal/cache"
	"github.com/ppiankov/textbench/internal/model"
	"github.com/ppiankov/textbench/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "textbench",
	Short: "Textbench - text classification experiment pipeline",
	Long: `Textbench compares text classifiers on a labeled corpus.

It splits the corpus once (stratified, seeded), builds bag-of-words and
TF-IDF features from the training text only, fits Naive Bayes, logistic
regression and a linear SVM on each representation, and reports accuracy,
per-class precision/recall/F1 and a confusion matrix for every pair.

Each stage persists its artifacts, so stages can be re-run independently.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Textbench.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("textbench v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.textbench/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("corpus", defaults.Data.CorpusPath, "cleaned corpus CSV (text,label)")
	flags.String("store-dir", defaults.Store.Dir, "artifact store directory")
	flags.Float64("test-size", defaults.Data.TestFraction, "fraction of documents held out for testing")
	flags.Int64("seed", defaults.Data.Seed, "random seed for the split and the solvers")
	flags.String("log-file", defaults.Output.LogFile, "also write all run output to this file")
	flags.String("report-dir", defaults.Output.ReportDir, "write per-model reports and summary.json here")

	// Bind flags to viper
	for flag, key := range map[string]string{
		"verbose":    "output.verbose",
		"corpus":     "data.corpus_path",
		"store-dir":  "store.dir",
		"test-size":  "data.test_fraction",
		"seed":       "data.seed",
		"log-file":   "output.log_file",
		"report-dir": "output.report_dir",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.textbench")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TEXTBENCH_*, e.g.
	// TEXTBENCH_DATA_SEED for data.seed
	viper.SetEnvPrefix("TEXTBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so that env
// variables and the config file can override keys without a flag
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig returns the effective configuration: flags, then env, then
// config file, then defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Data.TestFraction <= 0 || cfg.Data.TestFraction >= 1 {
		return nil, fmt.Errorf("test size must be in (0,1), got %v", cfg.Data.TestFraction)
	}
	return cfg, nil
}

// openStore opens the layered memory+disk artifact store
func openStore(cfg *model.Config) *cache.Store {
	return cache.NewStore(cache.NewLayeredCache(cfg.Store.MemoryTTL, cfg.Store.Dir, 0))
}

// openOutput returns the run output writer, tee'd into the log file when
// one is configured
func openOutput(cfg *model.Config) (io.Writer, func() error, error) {
	return pipeline.OpenLog(cfg.Output.LogFile, os.Stdout)
}

// newRunner builds a runner from the effective configuration. The returned
// close function flushes the log file.
func newRunner() (*pipeline.Runner, *model.Config, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	out, closeLog, err := openOutput(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Corpus: %s\n", cfg.Data.CorpusPath)
		fmt.Fprintf(os.Stderr, "Store: %s\n", cfg.Store.Dir)
		fmt.Fprintf(os.Stderr, "Seed: %d\n", cfg.Data.Seed)
		fmt.Fprintln(os.Stderr)
	}
	return pipeline.NewRunner(cfg, openStore(cfg), out), cfg, closeLog, nil
}
