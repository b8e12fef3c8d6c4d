package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrData            = errors.New("data error")
	ErrFeature         = errors.New("feature error")
	ErrArtifactMissing = errors.New("artifact missing")
	ErrModelFit        = errors.New("model fit error")
)

// Stage identifies the pipeline stage that failed
type Stage string

const (
	StageSplit    Stage = "split"
	StageFeatures Stage = "features"
	StageTrain    Stage = "train"
	StageEvaluate Stage = "evaluate"
	StagePersist  Stage = "persist"
)

// StageError reports which stage, representation and algorithm failed and why.
// Kind is one of the Err* sentinels and is what errors.Is matches against.
type StageError struct {
	Stage          Stage
	Representation Representation
	Algorithm      Algorithm
	Kind           error
	Err            error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{string(e.Stage)}
	if e.Algorithm != "" {
		parts = append(parts, "algorithm="+string(e.Algorithm))
	}
	if e.Representation != "" {
		parts = append(parts, "representation="+string(e.Representation))
	}
	msg := strings.Join(parts, " ")
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel kind and the underlying cause
func (e *StageError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// DataErrorf returns a StageError of kind ErrData for the split stage
func DataErrorf(format string, args ...any) error {
	return &StageError{Stage: StageSplit, Kind: ErrData, Err: fmt.Errorf(format, args...)}
}

// WithRepresentation fills in the representation of a StageError (or wraps
// a plain error) without losing its kind
func WithRepresentation(err error, stage Stage, rep Representation) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		cp := *se
		if cp.Representation == "" {
			cp.Representation = rep
		}
		return &cp
	}
	return &StageError{Stage: stage, Representation: rep, Err: err}
}
