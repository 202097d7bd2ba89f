package tui

import (
	"github.com/veldrane/dealdeck/internal/drag"
)

// Board layout constants. The view renders with exactly these dimensions so
// the droppable regions handed to the gesture interpreter line up with what
// is on screen.
const (
	// headerHeight is the pipeline title line plus a blank spacer.
	headerHeight = 2
	// footerHeight is the status bar.
	footerHeight = 1
	// columnWidth is the total column box width including its border.
	columnWidth = 28
	// columnGap separates adjacent columns.
	columnGap = 1
	// cardHeight is the total card box height including its border.
	cardHeight = 5
	// columnChrome is the column's top border plus the stage header line;
	// cards start below it.
	columnChrome = 2
)

// layout computes the droppable regions for the currently visible portion of
// the board: one stage region per visible column, then that column's visible
// card regions, in stage order. Called after every change that can move
// something on screen, before the next pointer event is interpreted.
func (m *Model) layout() []drag.Region {
	if m.visible == nil {
		return nil
	}

	stages := m.visible.Stages()
	colHeight := m.columnHeight()
	maxCards := m.maxVisibleCards()

	var regions []drag.Region
	for i := m.stageOffset; i < len(stages) && i-m.stageOffset < m.visibleStageCount(); i++ {
		colX := (i - m.stageOffset) * (columnWidth + columnGap)
		colRect := drag.Rect{X: colX, Y: headerHeight, Width: columnWidth, Height: colHeight}
		regions = append(regions, drag.Region{
			Kind:    drag.RegionStage,
			StageID: stages[i].ID,
			Bounds:  colRect,
		})

		ids := m.visible.DealIDs(stages[i].ID)
		scroll := m.cardScroll[stages[i].ID]
		for j := scroll; j < len(ids) && j-scroll < maxCards; j++ {
			regions = append(regions, drag.Region{
				Kind:    drag.RegionCard,
				StageID: stages[i].ID,
				DealID:  ids[j],
				Bounds: drag.Rect{
					X:      colX + 1,
					Y:      headerHeight + columnChrome + (j-scroll)*cardHeight,
					Width:  columnWidth - 2,
					Height: cardHeight,
				},
			})
		}
	}
	return regions
}

// visibleStageCount returns how many columns fit in the current width.
func (m *Model) visibleStageCount() int {
	n := (m.width + columnGap) / (columnWidth + columnGap)
	if n < 1 {
		n = 1
	}
	return n
}

// columnHeight returns the column box height for the current window.
func (m *Model) columnHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < cardHeight+columnChrome+1 {
		h = cardHeight + columnChrome + 1
	}
	return h
}

// maxVisibleCards returns how many cards fit in one column.
func (m *Model) maxVisibleCards() int {
	// Column interior: total height minus top chrome and bottom border.
	n := (m.columnHeight() - columnChrome - 1) / cardHeight
	if n < 1 {
		n = 1
	}
	return n
}

// syncRegions recomputes the droppable regions and hands them to the
// interpreter.
func (m *Model) syncRegions() {
	m.interp.SetRegions(m.layout())
}

// cardRegionAt returns the visible card region containing the point, if any.
func (m *Model) cardRegionAt(p drag.Point) (drag.Region, bool) {
	for _, r := range m.layout() {
		if r.Kind == drag.RegionCard && r.Bounds.Contains(p) {
			return r, true
		}
	}
	return drag.Region{}, false
}
