package board

import (
	"errors"
	"testing"

	"github.com/veldrane/dealdeck/internal/drag"
)

func TestHandleDropNoOpDiscarded(t *testing.T) {
	r := newTestReconciler(t)
	c := NewController(r)
	before := r.Visible()

	dispatch, err := c.HandleDrop(drag.Drop{DealID: "d1", TargetStageID: "a"})
	if err != nil {
		t.Fatalf("HandleDrop failed: %v", err)
	}
	if dispatch != nil {
		t.Fatal("same-stage drop must not dispatch a persist request")
	}
	if r.Visible() != before {
		t.Fatal("same-stage drop must not touch the visible model")
	}
	if r.PendingCount() != 0 {
		t.Fatal("same-stage drop must not register a pending move")
	}
}

func TestHandleDropCrossStageDispatches(t *testing.T) {
	r := newTestReconciler(t)
	c := NewController(r)

	dispatch, err := c.HandleDrop(drag.Drop{DealID: "d1", TargetStageID: "c"})
	if err != nil {
		t.Fatalf("HandleDrop failed: %v", err)
	}
	if dispatch == nil {
		t.Fatal("cross-stage drop must dispatch")
	}
	if dispatch.DealID != "d1" || dispatch.StageID != "c" {
		t.Errorf("dispatch = %+v, want d1 to c", dispatch)
	}
	if got, _ := r.Visible().StageOf("d1"); got != "c" {
		t.Errorf("visible stage = %s, want c", got)
	}
}

func TestHandleDropFailsClosedOnStaleReferences(t *testing.T) {
	r := newTestReconciler(t)
	c := NewController(r)

	if _, err := c.HandleDrop(drag.Drop{DealID: "ghost", TargetStageID: "b"}); !errors.Is(err, ErrStaleDeal) {
		t.Errorf("expected ErrStaleDeal, got %v", err)
	}
	if _, err := c.HandleDrop(drag.Drop{DealID: "d1", TargetStageID: "ghost"}); !errors.Is(err, ErrStaleStage) {
		t.Errorf("expected ErrStaleStage, got %v", err)
	}
	if r.PendingCount() != 0 {
		t.Error("stale drops must not register moves")
	}
}

func TestHandleDropWithoutBoard(t *testing.T) {
	c := NewController(NewReconciler())
	if _, err := c.HandleDrop(drag.Drop{DealID: "d1", TargetStageID: "b"}); !errors.Is(err, ErrNoBoard) {
		t.Errorf("expected ErrNoBoard, got %v", err)
	}
}
