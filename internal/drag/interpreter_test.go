package drag

import "testing"

// boardRegions lays out a two-column board:
//
//	x 0..19   stage "a" with cards d1 (y 1..5) and d2 (y 6..10)
//	x 21..40  stage "b" with card d3 (y 1..5)
func boardRegions() []Region {
	return []Region{
		{Kind: RegionStage, StageID: "a", Bounds: Rect{X: 0, Y: 0, Width: 20, Height: 30}},
		{Kind: RegionCard, StageID: "a", DealID: "d1", Bounds: Rect{X: 1, Y: 1, Width: 18, Height: 5}},
		{Kind: RegionCard, StageID: "a", DealID: "d2", Bounds: Rect{X: 1, Y: 6, Width: 18, Height: 5}},
		{Kind: RegionStage, StageID: "b", Bounds: Rect{X: 21, Y: 0, Width: 20, Height: 30}},
		{Kind: RegionCard, StageID: "b", DealID: "d3", Bounds: Rect{X: 22, Y: 1, Width: 18, Height: 5}},
	}
}

func newTestInterpreter() *Interpreter {
	in := NewInterpreter(DefaultThreshold)
	in.SetRegions(boardRegions())
	return in
}

func TestReleaseBelowThresholdIsClick(t *testing.T) {
	in := newTestInterpreter()

	in.PointerDown("d1", Rect{X: 1, Y: 1, Width: 18, Height: 5}, Point{X: 5, Y: 3})
	in.PointerMove(Point{X: 7, Y: 3}) // 2 cells, below threshold
	out := in.PointerUp(Point{X: 7, Y: 3})

	if out.Kind != OutcomeClick {
		t.Fatalf("expected click, got kind %d", out.Kind)
	}
	if out.DealID != "d1" {
		t.Errorf("click deal = %q, want d1", out.DealID)
	}
}

func TestDragOntoEmptyColumnResolvesStage(t *testing.T) {
	in := newTestInterpreter()

	in.PointerDown("d1", Rect{X: 1, Y: 1, Width: 18, Height: 5}, Point{X: 5, Y: 3})
	// Drag well past the threshold into column b, below its card.
	if stage, ok := in.PointerMove(Point{X: 30, Y: 20}); !ok || stage != "b" {
		t.Fatalf("hover target = %q ok=%v, want b", stage, ok)
	}
	out := in.PointerUp(Point{X: 30, Y: 20})

	if out.Kind != OutcomeDrop {
		t.Fatalf("expected drop, got kind %d", out.Kind)
	}
	if out.DealID != "d1" || out.TargetStageID != "b" {
		t.Errorf("drop = %+v, want d1 over b", out)
	}
}

func TestDropOnCardResolvesParentStage(t *testing.T) {
	in := newTestInterpreter()

	// Drag d2 directly over card d3 in column b: the resolved target is the
	// card's parent stage, never a position between cards.
	in.PointerDown("d2", Rect{X: 1, Y: 6, Width: 18, Height: 5}, Point{X: 10, Y: 8})
	in.PointerMove(Point{X: 31, Y: 3})
	out := in.PointerUp(Point{X: 31, Y: 3})

	if out.Kind != OutcomeDrop || out.TargetStageID != "b" {
		t.Fatalf("drop = %+v, want d2 over b", out)
	}
}

func TestReleaseOutsideBoardCancels(t *testing.T) {
	in := newTestInterpreter()

	in.PointerDown("d1", Rect{X: 1, Y: 1, Width: 18, Height: 5}, Point{X: 5, Y: 3})
	in.PointerMove(Point{X: 100, Y: 50})
	out := in.PointerUp(Point{X: 100, Y: 50})

	if out.Kind != OutcomeCancel {
		t.Fatalf("expected cancel, got kind %d", out.Kind)
	}
}

func TestReleaseWithoutPressIsNone(t *testing.T) {
	in := newTestInterpreter()
	if out := in.PointerUp(Point{X: 5, Y: 5}); out.Kind != OutcomeNone {
		t.Fatalf("expected none, got kind %d", out.Kind)
	}
}

func TestGestureEmitsExactlyOneEvent(t *testing.T) {
	in := newTestInterpreter()

	in.PointerDown("d1", Rect{X: 1, Y: 1, Width: 18, Height: 5}, Point{X: 5, Y: 3})
	in.PointerMove(Point{X: 30, Y: 20})
	if out := in.PointerUp(Point{X: 30, Y: 20}); out.Kind != OutcomeDrop {
		t.Fatalf("expected drop, got kind %d", out.Kind)
	}
	// A second release with no press must produce nothing.
	if out := in.PointerUp(Point{X: 30, Y: 20}); out.Kind != OutcomeNone {
		t.Fatalf("expected none after gesture completed, got kind %d", out.Kind)
	}
}

func TestExactTiePrefersEarlierStage(t *testing.T) {
	in := NewInterpreter(1)
	// Two overlapping stage columns whose centers are equidistant from the
	// drop point.
	in.SetRegions([]Region{
		{Kind: RegionStage, StageID: "a", Bounds: Rect{X: 0, Y: 0, Width: 21, Height: 11}},
		{Kind: RegionStage, StageID: "b", Bounds: Rect{X: 4, Y: 0, Width: 21, Height: 11}},
	})

	// Card center ends at x=12: distance 2 to both centers (x=10 and x=14).
	in.PointerDown("d1", Rect{X: 12, Y: 5, Width: 1, Height: 1}, Point{X: 12, Y: 5})
	in.PointerMove(Point{X: 12, Y: 10})
	out := in.PointerUp(Point{X: 12, Y: 5})

	if out.Kind != OutcomeDrop || out.TargetStageID != "a" {
		t.Fatalf("tie should resolve to first stage in order, got %+v", out)
	}
}

func TestCardBeatsColumnWhenCloser(t *testing.T) {
	in := newTestInterpreter()

	// Card d3's center (x=31, y=3) is much closer than column b's (x=31,
	// y=15) when hovering over the card, so the card wins the collision and
	// resolves to its parent stage.
	in.PointerDown("d1", Rect{X: 1, Y: 1, Width: 18, Height: 5}, Point{X: 10, Y: 3})
	if stage, ok := in.PointerMove(Point{X: 31, Y: 3}); !ok || stage != "b" {
		t.Fatalf("hover over card d3 resolved %q ok=%v, want b", stage, ok)
	}
}

func TestKeyboardMoveMatchesPointerEventShape(t *testing.T) {
	in := newTestInterpreter()

	in.Grab("d1", []string{"a", "b", "c"}, 0)
	if got := in.Retarget(1); got != "b" {
		t.Fatalf("Retarget(1) = %q, want b", got)
	}
	if got := in.Retarget(5); got != "c" {
		t.Fatalf("Retarget clamps to last stage, got %q", got)
	}
	if got := in.Retarget(-1); got != "b" {
		t.Fatalf("Retarget(-1) = %q, want b", got)
	}
	out := in.Release()
	if out.Kind != OutcomeDrop || out.DealID != "d1" || out.TargetStageID != "b" {
		t.Fatalf("keyboard drop = %+v, want d1 over b", out)
	}
	if _, _, ok := in.Grabbed(); ok {
		t.Error("keyboard state should clear after release")
	}
}

func TestKeyboardCancelEmitsNothing(t *testing.T) {
	in := newTestInterpreter()

	in.Grab("d1", []string{"a", "b"}, 0)
	in.Retarget(1)
	in.Cancel()
	if out := in.Release(); out.Kind != OutcomeNone {
		t.Fatalf("release after cancel should be none, got kind %d", out.Kind)
	}
}
