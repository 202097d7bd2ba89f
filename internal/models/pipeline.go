package models

// Pipeline represents one sales process: a named, ordered set of stages.
// Pipelines are created by server-side configuration and are read-only here.
type Pipeline struct {
	ID   string
	Name string
	// StageIDs lists the pipeline's stages in display order, left to right.
	StageIDs []string
}

// Stage is a single column on the pipeline board holding zero or more deals.
type Stage struct {
	ID         string
	PipelineID string
	Name       string
	// Order defines the column's left-to-right position within the pipeline.
	Order int
}
