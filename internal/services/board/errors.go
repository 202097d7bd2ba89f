package board

import "errors"

// Transition-related errors
var (
	// ErrNoBoard indicates no board has been loaded yet
	ErrNoBoard = errors.New("no board loaded")

	// ErrStaleDeal indicates a drop event named a deal no longer on the board
	ErrStaleDeal = errors.New("deal no longer exists on the board")

	// ErrStaleStage indicates a drop event named a stage no longer on the board
	ErrStaleStage = errors.New("stage no longer exists on the board")
)
