package model

// Document is a single labeled row of the cleaned corpus
type Document struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Split is a stratified train/test partition of raw text and labels.
// TrainText[i] is labeled TrainLabel[i]; the same holds for the test side.
type Split struct {
	TrainText  []string `json:"train_text"`
	TestText   []string `json:"test_text"`
	TrainLabel []string `json:"train_label"`
	TestLabel  []string `json:"test_label"`
}

// Labels returns the distinct labels of a label column in first-seen order
func Labels(column []string) []string {
	seen := make(map[string]struct{}, 2)
	var out []string
	for _, l := range column {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Representation names a feature representation
type Representation string

const (
	RepBoW   Representation = "bow"   // Raw term counts, unigrams
	RepTFIDF Representation = "tfidf" // TF-IDF weighted unigrams + bigrams
)

// Representations lists every representation in pipeline order
func Representations() []Representation {
	return []Representation{RepBoW, RepTFIDF}
}

// DisplayName is the label used in report titles
func (r Representation) DisplayName() string {
	switch r {
	case RepBoW:
		return "BoW"
	case RepTFIDF:
		return "TFIDF"
	default:
		return string(r)
	}
}

// Algorithm names a learning algorithm
type Algorithm string

const (
	AlgoNaiveBayes Algorithm = "nb"     // Multinomial naive Bayes
	AlgoLogReg     Algorithm = "logreg" // L2 logistic regression, dual coordinate descent
	AlgoSVM        Algorithm = "svm"    // Linear SVM, squared hinge loss
)

// Algorithms lists every algorithm in pipeline order
func Algorithms() []Algorithm {
	return []Algorithm{AlgoNaiveBayes, AlgoLogReg, AlgoSVM}
}

// DisplayName is the label used in report titles
func (a Algorithm) DisplayName() string {
	switch a {
	case AlgoNaiveBayes:
		return "NaiveBayes"
	case AlgoLogReg:
		return "LogReg"
	case AlgoSVM:
		return "SVM"
	default:
		return string(a)
	}
}

// RunName is the report name for an (algorithm, representation) pair
func RunName(a Algorithm, r Representation) string {
	return a.DisplayName() + " + " + r.DisplayName()
}
