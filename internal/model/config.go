package model

import "time"

// Config holds the complete textbench configuration.
// Field tags serve both yaml.v3 (config show/init) and viper's decoder.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Features FeaturesConfig `yaml:"features" mapstructure:"features"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Train    TrainConfig    `yaml:"train" mapstructure:"train"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the cleaned corpus and controls the split
type DataConfig struct {
	CorpusPath   string  `yaml:"corpus_path" mapstructure:"corpus_path"`
	TestFraction float64 `yaml:"test_fraction" mapstructure:"test_fraction"`
	Seed         int64   `yaml:"seed" mapstructure:"seed"` // Shared by every split call and solver
}

// FeaturesConfig holds one vectorizer policy per representation
type FeaturesConfig struct {
	BoW   VectorizerConfig `yaml:"bow" mapstructure:"bow"`
	TFIDF VectorizerConfig `yaml:"tfidf" mapstructure:"tfidf"`
}

// For returns the vectorizer policy of a representation
func (f FeaturesConfig) For(rep Representation) (VectorizerConfig, bool) {
	switch rep {
	case RepBoW:
		return f.BoW, true
	case RepTFIDF:
		return f.TFIDF, true
	default:
		return VectorizerConfig{}, false
	}
}

// VectorizerConfig is the vocabulary policy of a feature representation
type VectorizerConfig struct {
	MaxFeatures int `yaml:"max_features" mapstructure:"max_features"`
	NGramMin    int `yaml:"ngram_min" mapstructure:"ngram_min"`
	NGramMax    int `yaml:"ngram_max" mapstructure:"ngram_max"`
}

// StoreConfig configures the artifact store
type StoreConfig struct {
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"` // 0 keeps entries for the whole run
}

// TrainConfig configures which algorithms run and the linear solvers
type TrainConfig struct {
	Algorithms []Algorithm `yaml:"algorithms" mapstructure:"algorithms"`
	MaxIter    int         `yaml:"max_iter" mapstructure:"max_iter"`
	C          float64     `yaml:"c" mapstructure:"c"`
	Tol        float64     `yaml:"tol" mapstructure:"tol"`
}

// OutputConfig configures progress output and report files
type OutputConfig struct {
	Verbose   bool   `yaml:"verbose" mapstructure:"verbose"`
	LogFile   string `yaml:"log_file" mapstructure:"log_file"`     // Tee of the run output (optional)
	ReportDir string `yaml:"report_dir" mapstructure:"report_dir"` // Per-model reports (optional)
}

// DefaultConfig returns the reference experiment configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			CorpusPath:   "data/dataset_clean.csv",
			TestFraction: 0.2,
			Seed:         42,
		},
		Features: FeaturesConfig{
			BoW: VectorizerConfig{
				MaxFeatures: 40000,
				NGramMin:    1,
				NGramMax:    1,
			},
			TFIDF: VectorizerConfig{
				MaxFeatures: 50000,
				NGramMin:    1,
				NGramMax:    2,
			},
		},
		Store: StoreConfig{
			Dir:       "./textbench-artifacts",
			MemoryTTL: 0,
		},
		Train: TrainConfig{
			Algorithms: Algorithms(),
			MaxIter:    1000,
			C:          1.0,
			Tol:        1e-4,
		},
		Output: OutputConfig{
			Verbose:   false,
			LogFile:   "",
			ReportDir: "",
		},
	}
}
