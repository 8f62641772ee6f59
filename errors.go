package genemod

import (
	"errors"
	"fmt"

	"github.com/hupe1980/genemod/dedup"
	"github.com/hupe1980/genemod/detect"
	"github.com/hupe1980/genemod/embed"
	"github.com/hupe1980/genemod/partition"
	"github.com/hupe1980/genemod/reduce"
	"github.com/hupe1980/genemod/score"
)

// EmptyInputError indicates that a stage received zero genes or cells,
// either because the input matrix is empty or because filtering removed
// every candidate.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type EmptyInputError struct {
	Stage string
	Genes int
	Cells int
	cause error
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: empty input (%d genes, %d cells)", e.Stage, e.Genes, e.Cells)
}

func (e *EmptyInputError) Unwrap() error { return e.cause }

// InsufficientDiversityError indicates fewer than two distinct reduced
// vectors after deduplication; the embedding is undefined.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InsufficientDiversityError struct {
	Distinct int
	cause    error
}

func (e *InsufficientDiversityError) Error() string {
	return fmt.Sprintf("dedup: only %d distinct reduced vector(s); embedding requires at least 2", e.Distinct)
}

func (e *InsufficientDiversityError) Unwrap() error { return e.cause }

// DuplicateInputError indicates that duplicate rows reached the embedder.
// The deduplication stage makes this unreachable in a correct pipeline;
// it is asserted anyway at the embedder boundary.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DuplicateInputError struct {
	ID    string
	cause error
}

func (e *DuplicateInputError) Error() string {
	return fmt.Sprintf("embed: duplicate input row %q", e.ID)
}

func (e *DuplicateInputError) Unwrap() error { return e.cause }

// ConfigurationError indicates an invalid parameter or parameter
// combination, reported before the offending stage does any work.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigurationError struct {
	Param  string
	Detail string
	cause  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Param, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

// translateError maps stage-package errors onto the pipeline taxonomy.
// Unrecognized errors are wrapped with the stage name only.
func translateError(stage string, err error) error {
	if err == nil {
		return nil
	}

	var (
		threshold   *detect.ErrInvalidThreshold
		components  *reduce.ErrInvalidComponents
		diversity   *dedup.ErrInsufficientDiversity
		duplicate   *embed.ErrDuplicateInput
		moduleCount *partition.ErrInvalidModuleCount
		bins        *score.ErrInvalidBins
		controls    *score.ErrInvalidControls
	)

	switch {
	case errors.Is(err, reduce.ErrEmptyMatrix):
		return &EmptyInputError{Stage: stage, cause: err}
	case errors.As(err, &threshold):
		return &ConfigurationError{Param: threshold.Name, Detail: err.Error(), cause: err}
	case errors.As(err, &components):
		return &ConfigurationError{Param: "n_dim", Detail: err.Error(), cause: err}
	case errors.As(err, &diversity):
		return &InsufficientDiversityError{Distinct: diversity.Distinct, cause: err}
	case errors.As(err, &duplicate):
		return &DuplicateInputError{ID: duplicate.ID, cause: err}
	case errors.As(err, &moduleCount):
		return &ConfigurationError{Param: "module_count", Detail: err.Error(), cause: err}
	case errors.As(err, &bins):
		return &ConfigurationError{Param: "nbin", Detail: err.Error(), cause: err}
	case errors.As(err, &controls):
		return &ConfigurationError{Param: "nctrl", Detail: err.Error(), cause: err}
	default:
		return fmt.Errorf("%s: %w", stage, err)
	}
}
