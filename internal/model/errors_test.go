package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestStageError(t *testing.T) {
	cause := errors.New("no rows")
	err := &StageError{Stage: StageTrain, Algorithm: AlgoSVM, Representation: RepTFIDF, Kind: ErrModelFit, Err: cause}

	want := "train algorithm=svm representation=tfidf: model fit error: no rows"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("train failed: %w", err)
	if !errors.Is(wrapped, ErrModelFit) {
		t.Error("errors.Is should match the kind")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should match the cause")
	}
	if errors.Is(wrapped, ErrData) {
		t.Error("errors.Is matched an unrelated kind")
	}
}

func TestWithRepresentation(t *testing.T) {
	err := WithRepresentation(DataErrorf("corpus has no documents"), StageFeatures, RepBoW)

	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StageError, got %T", err)
	}
	if se.Stage != StageSplit || se.Representation != RepBoW {
		t.Errorf("stage=%q representation=%q", se.Stage, se.Representation)
	}
	if !errors.Is(err, ErrData) {
		t.Error("kind lost")
	}

	plain := WithRepresentation(errors.New("boom"), StageFeatures, RepTFIDF)
	if !errors.As(plain, &se) || se.Stage != StageFeatures || se.Representation != RepTFIDF {
		t.Errorf("plain error not wrapped: %v", plain)
	}

	if WithRepresentation(nil, StageFeatures, RepBoW) != nil {
		t.Error("nil should stay nil")
	}
}

func TestRunName(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		rep  Representation
		want string
	}{
		{AlgoNaiveBayes, RepBoW, "NaiveBayes + BoW"},
		{AlgoLogReg, RepTFIDF, "LogReg + TFIDF"},
		{AlgoSVM, RepBoW, "SVM + BoW"},
	}
	for _, tt := range tests {
		if got := RunName(tt.alg, tt.rep); got != tt.want {
			t.Errorf("RunName(%s, %s) = %q, want %q", tt.alg, tt.rep, got, tt.want)
		}
	}
}
