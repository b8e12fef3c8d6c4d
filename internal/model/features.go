package model

import "github.com/ppiankov/textbench/internal/sparse"

// FeatureSet is the persisted 4-tuple of a feature representation.
// Train and Test share the column space of the vectorizer that produced them.
type FeatureSet struct {
	Representation Representation `json:"representation"`
	Train          *sparse.Matrix `json:"train"`
	Test           *sparse.Matrix `json:"test"`
	TrainLabel     []string       `json:"train_label"`
	TestLabel      []string       `json:"test_label"`
}

// ModelArtifact is the persisted form of a fitted model
type ModelArtifact struct {
	Algorithm      Algorithm      `json:"algorithm"`
	Representation Representation `json:"representation"`
	Payload        []byte         `json:"payload"` // Type-tagged model encoding
}
