package models

import "errors"

// Domain-specific errors shared across backends and the board.
var (
	// ErrPipelineNotFound indicates the requested pipeline does not exist
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrDealNotFound indicates the referenced deal does not exist
	ErrDealNotFound = errors.New("deal not found")

	// ErrStageNotFound indicates the referenced stage does not exist
	ErrStageNotFound = errors.New("stage not found")

	// ErrStageWrongPipeline indicates the target stage belongs to a different pipeline
	ErrStageWrongPipeline = errors.New("stage belongs to a different pipeline")
)
