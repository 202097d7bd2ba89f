package board

import (
	"errors"
	"fmt"

	"github.com/veldrane/dealdeck/internal/drag"
	"github.com/veldrane/dealdeck/internal/models"
)

// Controller consumes semantic drop events from the gesture interpreter and
// decides the concrete model transform. It owns the no-op check and fails
// closed on stale references; only real cross-stage moves reach the
// reconciler.
type Controller struct {
	rec *Reconciler
}

// NewController creates a controller bound to a reconciler.
func NewController(rec *Reconciler) *Controller {
	return &Controller{rec: rec}
}

// HandleDrop turns a drop event into an optimistic move. It returns
// (nil, nil) when the deal was released over its own stage: the event is
// discarded with no network call and no model change. A drop naming a deal
// or stage no longer on the board returns ErrStaleDeal or ErrStaleStage so
// the caller can surface a recoverable error instead of corrupting the
// model.
func (c *Controller) HandleDrop(drop drag.Drop) (*Dispatch, error) {
	visible := c.rec.Visible()
	if visible == nil {
		return nil, ErrNoBoard
	}

	current, ok := visible.StageOf(drop.DealID)
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrStaleDeal, drop.DealID)
	}
	if !visible.HasStage(drop.TargetStageID) {
		return nil, fmt.Errorf("%w (%s)", ErrStaleStage, drop.TargetStageID)
	}
	if current == drop.TargetStageID {
		return nil, nil
	}

	dispatch, err := c.rec.Begin(drop.DealID, drop.TargetStageID)
	if err != nil {
		// Begin re-validates; map its referential errors to the stale
		// taxonomy for a uniform caller surface.
		if errors.Is(err, models.ErrDealNotFound) {
			return nil, ErrStaleDeal
		}
		if errors.Is(err, models.ErrStageNotFound) {
			return nil, ErrStaleStage
		}
		return nil, err
	}
	return dispatch, nil
}
