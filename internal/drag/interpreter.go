// Package drag translates continuous pointer or keyboard gestures over the
// board into discrete drop events. A completed gesture yields exactly one
// Drop naming the dragged deal and the resolved target stage; everything else
// (clicks, releases outside the board, cancelled keyboard moves) yields none.
package drag

// DefaultThreshold is the activation distance in cells a pointer must travel
// from its press point before the gesture counts as a drag. Below it, a
// release is a plain click so selecting a card never moves it.
const DefaultThreshold = 5

// RegionKind distinguishes the two droppable region shapes on the board.
type RegionKind int

const (
	// RegionStage is a whole stage column.
	RegionStage RegionKind = iota
	// RegionCard is a single deal card. Dropping on a card reassigns the
	// dragged deal to the card's parent stage, never to a position between
	// cards.
	RegionCard
)

// Region is a droppable area reported by the view after layout. Regions must
// be registered in stage order (column first, then its cards top to bottom)
// so that exact distance ties resolve to the earlier stage.
type Region struct {
	Kind    RegionKind
	StageID string
	// DealID is set for card regions only.
	DealID string
	Bounds Rect
}

// Drop is the single semantic outcome of a completed drag: the dragged deal
// was released over the resolved target stage.
type Drop struct {
	DealID        string
	TargetStageID string
}

// OutcomeKind classifies what a pointer release amounted to.
type OutcomeKind int

const (
	// OutcomeNone means no gesture was in progress.
	OutcomeNone OutcomeKind = iota
	// OutcomeClick means the pointer never crossed the activation threshold.
	OutcomeClick
	// OutcomeDrop means the drag resolved over a droppable region.
	OutcomeDrop
	// OutcomeCancel means the drag was released outside every droppable
	// region.
	OutcomeCancel
)

// Outcome is the result of releasing a gesture.
type Outcome struct {
	Kind OutcomeKind
	// DealID is set for click, drop and cancel outcomes.
	DealID string
	// TargetStageID is set for drop outcomes only.
	TargetStageID string
}

// Interpreter consumes raw pointer and keyboard events and produces drop
// outcomes. It is driven from the single UI event loop and needs no locking.
type Interpreter struct {
	threshold int
	regions   []Region

	// pointer gesture state
	pressed    bool
	dragging   bool
	dealID     string
	pressAt    Point
	cardBounds Rect
	pointer    Point

	// keyboard gesture state
	kbActive bool
	kbDealID string
	kbStages []string
	kbIndex  int
}

// NewInterpreter creates an interpreter with the given activation threshold
// in cells. A threshold below 1 falls back to DefaultThreshold.
func NewInterpreter(threshold int) *Interpreter {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Interpreter{threshold: threshold}
}

// SetRegions replaces the droppable regions. Called by the view after every
// layout pass, before the next pointer event is interpreted.
func (in *Interpreter) SetRegions(regions []Region) {
	in.regions = regions
}

// PointerDown starts a potential drag on a deal card. cardBounds is the
// card's rectangle at press time; the dragged card's center tracks the
// pointer delta from here.
func (in *Interpreter) PointerDown(dealID string, cardBounds Rect, at Point) {
	in.pressed = true
	in.dragging = false
	in.dealID = dealID
	in.pressAt = at
	in.cardBounds = cardBounds
	in.pointer = at
}

// PointerMove updates the gesture with the current pointer position and
// returns the stage currently resolved as the drop target, for highlight.
// ok is false while the gesture has not crossed the activation threshold or
// while the card center is outside every droppable region.
func (in *Interpreter) PointerMove(at Point) (stageID string, ok bool) {
	if !in.pressed {
		return "", false
	}
	in.pointer = at
	if !in.dragging && distSq(at, in.pressAt) >= in.threshold*in.threshold {
		in.dragging = true
	}
	if !in.dragging {
		return "", false
	}
	return in.resolveTarget()
}

// PointerUp completes the gesture at the release position and returns its
// outcome. Exactly one Drop is emitted per completed drag.
func (in *Interpreter) PointerUp(at Point) Outcome {
	if !in.pressed {
		return Outcome{Kind: OutcomeNone}
	}
	in.pointer = at
	dealID := in.dealID
	dragging := in.dragging || distSq(at, in.pressAt) >= in.threshold*in.threshold
	defer in.resetPointer()

	if !dragging {
		return Outcome{Kind: OutcomeClick, DealID: dealID}
	}
	stageID, ok := in.resolveTarget()
	if !ok {
		return Outcome{Kind: OutcomeCancel, DealID: dealID}
	}
	return Outcome{Kind: OutcomeDrop, DealID: dealID, TargetStageID: stageID}
}

// Dragging reports whether a pointer drag is past the activation threshold,
// and for which deal. The view uses this to float the dragged card.
func (in *Interpreter) Dragging() (dealID string, ok bool) {
	if in.pressed && in.dragging {
		return in.dealID, true
	}
	return "", false
}

// DragPosition returns the dragged card's current bounds, translated by the
// pointer delta since the press.
func (in *Interpreter) DragPosition() Rect {
	return in.cardBounds.Translate(in.pointer.X-in.pressAt.X, in.pointer.Y-in.pressAt.Y)
}

// resolveTarget finds the droppable region closest to the dragged card's
// current center, considering only regions that contain that point. A card
// region resolves to its parent stage. Ties break toward the numerically
// closer center; an exact tie keeps the region encountered first, which is
// the earlier stage in display order.
func (in *Interpreter) resolveTarget() (stageID string, ok bool) {
	center := in.DragPosition().Center()
	best := -1
	bestDist := 0
	for i, r := range in.regions {
		if !r.Bounds.Contains(center) {
			continue
		}
		d := distSq(center, r.Bounds.Center())
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		return "", false
	}
	return in.regions[best].StageID, true
}

func (in *Interpreter) resetPointer() {
	in.pressed = false
	in.dragging = false
	in.dealID = ""
}

// Grab starts a keyboard move for the accessibility-equivalent path. stages
// are the pipeline's stage ids in display order and currentIdx the index of
// the deal's current stage; Retarget steps through them.
func (in *Interpreter) Grab(dealID string, stages []string, currentIdx int) {
	if len(stages) == 0 || currentIdx < 0 || currentIdx >= len(stages) {
		return
	}
	in.kbActive = true
	in.kbDealID = dealID
	in.kbStages = stages
	in.kbIndex = currentIdx
}

// Grabbed reports whether a keyboard move is in progress and its current
// target stage.
func (in *Interpreter) Grabbed() (dealID, targetStageID string, ok bool) {
	if !in.kbActive {
		return "", "", false
	}
	return in.kbDealID, in.kbStages[in.kbIndex], true
}

// Retarget moves the keyboard target by delta stages, clamped to the board
// edges, and returns the new target stage id.
func (in *Interpreter) Retarget(delta int) string {
	if !in.kbActive {
		return ""
	}
	in.kbIndex += delta
	if in.kbIndex < 0 {
		in.kbIndex = 0
	}
	if in.kbIndex > len(in.kbStages)-1 {
		in.kbIndex = len(in.kbStages) - 1
	}
	return in.kbStages[in.kbIndex]
}

// Release completes a keyboard move, producing the same event shape as a
// pointer drop.
func (in *Interpreter) Release() Outcome {
	if !in.kbActive {
		return Outcome{Kind: OutcomeNone}
	}
	out := Outcome{Kind: OutcomeDrop, DealID: in.kbDealID, TargetStageID: in.kbStages[in.kbIndex]}
	in.resetKeyboard()
	return out
}

// Cancel abandons a keyboard move with no event.
func (in *Interpreter) Cancel() {
	in.resetKeyboard()
}

func (in *Interpreter) resetKeyboard() {
	in.kbActive = false
	in.kbDealID = ""
	in.kbStages = nil
	in.kbIndex = 0
}
