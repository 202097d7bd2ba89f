package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/veldrane/dealdeck/internal/drag"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// Update is the single event loop. Pointer and keyboard gestures feed the
// interpreter; semantic drops feed the controller; persist results feed the
// reconciler. The view is re-rendered from m.visible after every change.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncRegions()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.rec.PendingCount() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case pipelinesLoadedMsg:
		return m.handlePipelinesLoaded(msg)

	case boardLoadedMsg:
		return m.handleBoardLoaded(msg)

	case moveResolvedMsg:
		return m.handleMoveResolved(msg)

	case dealSavedMsg:
		return m.handleDealSaved(msg)

	case dealDeletedMsg:
		return m.handleDealDeleted(msg)

	case referenceDataMsg:
		if msg.err != nil {
			m.notify(svcboard.SeverityError, "Could not load companies and contacts: "+msg.err.Error())
			return m, expireNotificationCmd()
		}
		m.companies = msg.companies
		m.contacts = msg.contacts
		return m, nil

	case activitiesLoadedMsg:
		if m.detailDeal == nil || msg.dealID != m.detailDeal.ID {
			return m, nil
		}
		if msg.err == nil {
			m.detailActivities = msg.activities
		}
		return m, nil

	case notificationExpiredMsg:
		if len(m.notifications) > 0 {
			m.notifications = m.notifications[1:]
		}
		return m, nil
	}

	if m.mode == modeForm && m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// handleMouse drives the pointer half of the gesture interpreter.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal || m.visible == nil {
		return m, nil
	}
	pt := drag.Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if r, ok := m.cardRegionAt(pt); ok {
			m.interp.PointerDown(r.DealID, r.Bounds, pt)
			m.selectCard(r.StageID, r.DealID)
		}
		return m, nil

	case tea.MouseActionMotion:
		stageID, ok := m.interp.PointerMove(pt)
		if ok {
			m.hoverStage = stageID
		} else {
			m.hoverStage = ""
		}
		return m, nil

	case tea.MouseActionRelease:
		m.hoverStage = ""
		out := m.interp.PointerUp(pt)
		switch out.Kind {
		case drag.OutcomeClick:
			// Selection already happened on press.
			return m, nil
		case drag.OutcomeDrop:
			return m.applyDrop(drag.Drop{DealID: out.DealID, TargetStageID: out.TargetStageID})
		}
		return m, nil
	}
	return m, nil
}

// handleKey dispatches key input per mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeHelp:
		m.mode = modeNormal
		return m, nil
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	case modeGrabbed:
		return m.handleGrabbedKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.cfg.KeyMappings
	switch msg.String() {
	case keys.Quit, "ctrl+c":
		return m, tea.Quit

	case keys.ShowHelp:
		m.mode = modeHelp
		return m, nil

	case keys.Refresh:
		if p, ok := m.currentPipeline(); ok {
			return m, m.loadBoardCmd(p.ID)
		}
		return m, m.loadPipelinesCmd()

	case keys.NextPipeline:
		return m.cyclePipeline(1)
	case keys.PrevPipeline:
		return m.cyclePipeline(-1)

	case keys.PrevStage:
		m.moveSelection(-1, 0)
		return m, nil
	case keys.NextStage:
		m.moveSelection(1, 0)
		return m, nil
	case keys.PrevDeal:
		m.moveSelection(0, -1)
		return m, nil
	case keys.NextDeal:
		m.moveSelection(0, 1)
		return m, nil

	case keys.GrabDeal:
		deal, ok := m.selectedDeal()
		if !ok {
			return m, nil
		}
		m.interp.Grab(deal.ID, m.stageIDs(), m.selStage)
		if _, _, grabbed := m.interp.Grabbed(); grabbed {
			m.mode = modeGrabbed
		}
		return m, nil

	case keys.AddDeal:
		if m.visible == nil || len(m.visible.Stages()) == 0 {
			return m, nil
		}
		m.editID = ""
		m.formDeal = newDealFormValues(nil)
		m.form = newDealForm(m.formDeal, false, m.companies, m.contacts)
		m.mode = modeForm
		return m, m.form.Init()

	case keys.EditDeal:
		deal, ok := m.selectedDeal()
		if !ok {
			return m, nil
		}
		m.editID = deal.ID
		m.formDeal = newDealFormValues(&deal)
		m.form = newDealForm(m.formDeal, true, m.companies, m.contacts)
		m.mode = modeForm
		return m, m.form.Init()

	case keys.DeleteDeal:
		if _, ok := m.selectedDeal(); ok {
			m.mode = modeConfirmDelete
		}
		return m, nil

	case keys.ViewDeal:
		deal, ok := m.selectedDeal()
		if !ok {
			return m, nil
		}
		m.detailDeal = &deal
		m.detailActivities = nil
		m.detailRendered = renderDealNotes(deal)
		m.mode = modeDetail
		return m, m.loadActivitiesCmd(deal.ID)
	}
	return m, nil
}

// handleGrabbedKey is the keyboard path of the drag interaction: h/l retarget
// the destination stage, enter drops, esc cancels with no event.
func (m Model) handleGrabbedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.cfg.KeyMappings
	switch msg.String() {
	case keys.PrevStage:
		m.interp.Retarget(-1)
		return m, nil
	case keys.NextStage:
		m.interp.Retarget(1)
		return m, nil
	case keys.DropDeal:
		out := m.interp.Release()
		m.mode = modeNormal
		if out.Kind != drag.OutcomeDrop {
			return m, nil
		}
		return m.applyDrop(drag.Drop{DealID: out.DealID, TargetStageID: out.TargetStageID})
	case keys.CancelGrab, "ctrl+c":
		m.interp.Cancel()
		m.mode = modeNormal
		return m, nil
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", m.cfg.KeyMappings.ViewDeal:
		m.mode = modeNormal
		m.detailDeal = nil
		m.detailActivities = nil
		m.detailRendered = ""
	}
	return m, nil
}

func (m Model) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = modeNormal
		if deal, ok := m.selectedDeal(); ok {
			return m, m.deleteDealCmd(deal.ID)
		}
		return m, nil
	default:
		m.mode = modeNormal
		return m, nil
	}
}

// updateForm forwards input to the huh form and, on completion, converts the
// values into a create or update request.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	values := m.formDeal
	editID := m.editID
	m.closeForm()
	if !values.Confirm {
		return m, nil
	}
	if editID != "" {
		return m, m.updateDealCmd(values.toUpdateRequest(editID))
	}
	stages := m.visible.Stages()
	if m.selStage >= len(stages) {
		return m, nil
	}
	return m, m.createDealCmd(values.toCreateRequest(stages[m.selStage].ID))
}

func (m *Model) closeForm() {
	m.mode = modeNormal
	m.form = nil
	m.formDeal = nil
	m.editID = ""
}

// applyDrop routes a semantic drop through the controller and dispatches the
// resulting persist request, if any. Stale references surface as error
// banners; a same-stage drop is silently discarded.
func (m Model) applyDrop(drop drag.Drop) (tea.Model, tea.Cmd) {
	dispatch, err := m.controller.HandleDrop(drop)
	if err != nil {
		switch {
		case errors.Is(err, svcboard.ErrStaleDeal):
			m.notify(svcboard.SeverityError, "That deal is no longer on the board")
		case errors.Is(err, svcboard.ErrStaleStage):
			m.notify(svcboard.SeverityError, "That stage is no longer on the board")
		default:
			m.notify(svcboard.SeverityError, "Could not move deal: "+err.Error())
		}
		return m, expireNotificationCmd()
	}

	m.visible = m.rec.Visible()
	m.clampSelection()
	m.syncRegions()
	if dispatch == nil {
		// No-op drop, or the move queued behind an in-flight one.
		return m, nil
	}
	return m, tea.Batch(m.persistCmd(*dispatch), m.spin.Tick)
}

func (m Model) handlePipelinesLoaded(msg pipelinesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loadErr = msg.err
		return m, nil
	}
	m.loadErr = nil
	m.pipelines = msg.pipelines
	if len(m.pipelines) == 0 {
		return m, nil
	}
	m.pipelineIdx = 0
	if m.cfg.Pipeline != "" {
		for i, p := range m.pipelines {
			if p.Name == m.cfg.Pipeline || p.ID == m.cfg.Pipeline {
				m.pipelineIdx = i
				break
			}
		}
	}
	return m, m.loadBoardCmd(m.pipelines[m.pipelineIdx].ID)
}

// handleBoardLoaded installs a fresh confirmed model. Every pending
// optimistic transition is discarded; late responses for them are ignored.
func (m Model) handleBoardLoaded(msg boardLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loadErr = msg.err
		m.notify(svcboard.SeverityError, "Could not load board: "+msg.err.Error())
		return m, expireNotificationCmd()
	}
	m.loadErr = nil
	m.rec.Reset(msg.model)
	m.visible = m.rec.Visible()
	m.stageOffset = 0
	m.cardScroll = map[string]int{}
	m.clampSelection()
	m.syncRegions()
	return m, nil
}

func (m Model) handleMoveResolved(msg moveResolvedMsg) (tea.Model, tea.Cmd) {
	res := m.rec.Complete(msg.token, msg.deal, msg.err)
	m.visible = res.Visible
	m.clampSelection()
	m.syncRegions()

	var cmds []tea.Cmd
	if res.Notice != nil {
		m.notify(res.Notice.Severity, res.Notice.Message)
		cmds = append(cmds, expireNotificationCmd())
	}
	if res.Dispatch != nil {
		cmds = append(cmds, m.persistCmd(*res.Dispatch), m.spin.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleDealSaved(msg dealSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notify(svcboard.SeverityError, "Could not save deal: "+msg.err.Error())
		return m, expireNotificationCmd()
	}
	if msg.deal == nil {
		return m, nil
	}
	if err := m.rec.FoldDeal(*msg.deal); err != nil {
		m.notify(svcboard.SeverityError, "Could not apply saved deal: "+err.Error())
		return m, expireNotificationCmd()
	}
	m.visible = m.rec.Visible()
	m.clampSelection()
	m.syncRegions()
	return m, nil
}

func (m Model) handleDealDeleted(msg dealDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notify(svcboard.SeverityError, "Could not delete deal: "+msg.err.Error())
		return m, expireNotificationCmd()
	}
	m.rec.FoldRemoval(msg.dealID)
	m.visible = m.rec.Visible()
	m.clampSelection()
	m.syncRegions()
	return m, nil
}

// cyclePipeline switches to the adjacent pipeline and reloads its board.
func (m Model) cyclePipeline(delta int) (tea.Model, tea.Cmd) {
	if len(m.pipelines) < 2 {
		return m, nil
	}
	m.pipelineIdx = (m.pipelineIdx + delta + len(m.pipelines)) % len(m.pipelines)
	return m, m.loadBoardCmd(m.pipelines[m.pipelineIdx].ID)
}

// selectCard moves the selection cursor to a specific card, identified by its
// stage and deal ids.
func (m *Model) selectCard(stageID, dealID string) {
	if m.visible == nil {
		return
	}
	for i, s := range m.visible.Stages() {
		if s.ID != stageID {
			continue
		}
		for j, id := range m.visible.DealIDs(stageID) {
			if id == dealID {
				m.selStage, m.selDeal = i, j
				return
			}
		}
	}
}

// moveSelection shifts the cursor by column/row deltas, scrolling columns and
// cards to keep it on screen.
func (m *Model) moveSelection(dStage, dDeal int) {
	if m.visible == nil {
		return
	}
	stages := m.visible.Stages()
	if len(stages) == 0 {
		return
	}

	m.selStage += dStage
	if m.selStage < 0 {
		m.selStage = 0
	}
	if m.selStage > len(stages)-1 {
		m.selStage = len(stages) - 1
	}
	if dStage != 0 {
		m.selDeal = 0
	}

	ids := m.visible.DealIDs(stages[m.selStage].ID)
	m.selDeal += dDeal
	if m.selDeal < 0 {
		m.selDeal = 0
	}
	if m.selDeal > len(ids)-1 {
		m.selDeal = len(ids) - 1
	}
	if m.selDeal < 0 {
		m.selDeal = 0
	}

	m.ensureVisible(stages[m.selStage].ID, len(ids))
	m.syncRegions()
}

// ensureVisible scrolls the column window and the selected stage's card
// window so the cursor stays rendered.
func (m *Model) ensureVisible(stageID string, cardCount int) {
	if m.selStage < m.stageOffset {
		m.stageOffset = m.selStage
	}
	if vis := m.visibleStageCount(); m.selStage >= m.stageOffset+vis {
		m.stageOffset = m.selStage - vis + 1
	}

	scroll := m.cardScroll[stageID]
	maxCards := m.maxVisibleCards()
	if m.selDeal < scroll {
		scroll = m.selDeal
	}
	if m.selDeal >= scroll+maxCards {
		scroll = m.selDeal - maxCards + 1
	}
	if scroll > cardCount-1 {
		scroll = cardCount - 1
	}
	if scroll < 0 {
		scroll = 0
	}
	m.cardScroll[stageID] = scroll
}
