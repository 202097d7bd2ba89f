package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/config"
	"github.com/veldrane/dealdeck/internal/drag"
	"github.com/veldrane/dealdeck/internal/models"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// fakeBackend is a synchronous in-memory Backend for driving the update loop
// in tests.
type fakeBackend struct {
	model     *boardmodel.Model
	moveErr   error
	moveCalls int
}

func (f *fakeBackend) ListPipelines(context.Context) ([]models.Pipeline, error) {
	return []models.Pipeline{f.model.Pipeline()}, nil
}

func (f *fakeBackend) FetchPipeline(_ context.Context, pipelineID string) (*boardmodel.Model, error) {
	if pipelineID != f.model.Pipeline().ID {
		return nil, models.ErrPipelineNotFound
	}
	return f.model, nil
}

func (f *fakeBackend) MoveDealStage(_ context.Context, dealID, stageID string) (*models.Deal, error) {
	f.moveCalls++
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	d, ok := f.model.Deal(dealID)
	if !ok {
		return nil, models.ErrDealNotFound
	}
	d.StageID = stageID
	return &d, nil
}

func (f *fakeBackend) CreateDeal(context.Context, svcboard.CreateDealRequest) (*models.Deal, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) UpdateDeal(context.Context, svcboard.UpdateDealRequest) (*models.Deal, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) DeleteDeal(context.Context, string) error { return nil }

func (f *fakeBackend) ListCompanies(context.Context) ([]models.Company, error) { return nil, nil }

func (f *fakeBackend) ListContacts(context.Context) ([]models.Contact, error) { return nil, nil }

func (f *fakeBackend) ListDealActivities(context.Context, string) ([]models.Activity, error) {
	return nil, nil
}

func newTestBoard(t *testing.T) *boardmodel.Model {
	t.Helper()

	pipeline := models.Pipeline{ID: "p1", Name: "Sales", StageIDs: []string{"a", "b", "c"}}
	stages := []models.Stage{
		{ID: "a", PipelineID: "p1", Name: "Qualification", Order: 0},
		{ID: "b", PipelineID: "p1", Name: "Proposal", Order: 1},
		{ID: "c", PipelineID: "p1", Name: "Closed", Order: 2},
	}
	deals := []models.Deal{
		{ID: "d1", Name: "Acme renewal", Amount: 120000, Probability: 50, Status: models.DealOpen, StageID: "a"},
		{ID: "d2", Name: "Globex pilot", Amount: 45000, Probability: 20, Status: models.DealOpen, StageID: "b"},
	}
	m, err := boardmodel.New(pipeline, stages, deals)
	if err != nil {
		t.Fatalf("building board: %v", err)
	}
	return m
}

// newTestTUI returns a model with a loaded board and a 120x30 window, so
// layout regions are in place for gesture tests.
func newTestTUI(t *testing.T, backend *fakeBackend) Model {
	t.Helper()

	m := New(config.Default(), backend)
	m = applyMsg(t, m, pipelinesLoadedMsg{pipelines: []models.Pipeline{backend.model.Pipeline()}})
	m = applyMsg(t, m, boardLoadedMsg{model: backend.model})
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out
}

// applyAndRun applies a message, executes the returned command tree and
// collects the resulting messages without feeding them back, so tests control
// the delivery order.
func applyAndRun(t *testing.T, m Model, msg tea.Msg) (Model, []tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, runCmd(cmd)
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMoveResolved(t *testing.T, msgs []tea.Msg) moveResolvedMsg {
	t.Helper()
	for _, msg := range msgs {
		if mv, ok := msg.(moveResolvedMsg); ok {
			return mv
		}
	}
	t.Fatal("no moveResolvedMsg among returned messages")
	return moveResolvedMsg{}
}

func TestLayoutRegionsMatchRenderGeometry(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	regions := m.layout()

	// Column first, then its cards, per stage in display order.
	if regions[0].Kind != drag.RegionStage || regions[0].StageID != "a" {
		t.Fatalf("first region should be stage a column, got %+v", regions[0])
	}
	wantCol := drag.Rect{X: 0, Y: headerHeight, Width: columnWidth, Height: m.columnHeight()}
	if regions[0].Bounds != wantCol {
		t.Errorf("stage a bounds = %+v, want %+v", regions[0].Bounds, wantCol)
	}

	if regions[1].Kind != drag.RegionCard || regions[1].DealID != "d1" {
		t.Fatalf("second region should be card d1, got %+v", regions[1])
	}
	wantCard := drag.Rect{X: 1, Y: headerHeight + columnChrome, Width: columnWidth - 2, Height: cardHeight}
	if regions[1].Bounds != wantCard {
		t.Errorf("card d1 bounds = %+v, want %+v", regions[1].Bounds, wantCard)
	}

	// Second column starts one gap after the first.
	if regions[2].Kind != drag.RegionStage || regions[2].StageID != "b" {
		t.Fatalf("third region should be stage b column, got %+v", regions[2])
	}
	if got, want := regions[2].Bounds.X, columnWidth+columnGap; got != want {
		t.Errorf("stage b X = %d, want %d", got, want)
	}
}

func TestClickSelectsCardWithoutMoving(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	at := tea.MouseMsg{X: 34, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = applyMsg(t, m, at)
	m = applyMsg(t, m, tea.MouseMsg{X: 35, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if backend.moveCalls != 0 {
		t.Errorf("a click must not persist anything, got %d calls", backend.moveCalls)
	}
	deal, ok := m.selectedDeal()
	if !ok || deal.ID != "d2" {
		t.Errorf("click should select d2, got %+v ok=%v", deal, ok)
	}
	if stage, _ := m.visible.StageOf("d2"); stage != "b" {
		t.Errorf("d2 moved to %s by a click", stage)
	}
}

func TestMouseDragMovesDealAcrossStages(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	// Press on d1 in stage a, drag right into stage b's column, release.
	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = applyMsg(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionMotion})
	if m.hoverStage != "b" {
		t.Errorf("hover target = %q, want b", m.hoverStage)
	}

	m2, msgs := applyAndRun(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = m2

	// Optimistic: visible moves before the persist resolves.
	if stage, _ := m.visible.StageOf("d1"); stage != "b" {
		t.Fatalf("visible stage of d1 = %s, want b before persistence", stage)
	}
	if stage, _ := m.rec.Confirmed().StageOf("d1"); stage != "a" {
		t.Fatalf("confirmed stage of d1 = %s, want a before persistence", stage)
	}

	m = applyMsg(t, m, findMoveResolved(t, msgs))
	if stage, _ := m.rec.Confirmed().StageOf("d1"); stage != "b" {
		t.Errorf("confirmed stage of d1 = %s, want b after persistence", stage)
	}
	if backend.moveCalls != 1 {
		t.Errorf("move persisted %d times, want 1", backend.moveCalls)
	}
}

func TestFailedMoveRevertsAndNotifies(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t), moveErr: errors.New("stage capacity exceeded")}
	m := newTestTUI(t, backend)

	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = applyMsg(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionMotion})
	m2, msgs := applyAndRun(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = applyMsg(t, m2, findMoveResolved(t, msgs))

	if stage, _ := m.visible.StageOf("d1"); stage != "a" {
		t.Errorf("d1 should revert to stage a after a rejected move, got %s", stage)
	}
	if len(m.notifications) != 1 {
		t.Fatalf("want exactly one notification, got %d", len(m.notifications))
	}
	n := m.notifications[0]
	if n.severity != svcboard.SeverityError || !strings.Contains(n.message, "stage capacity exceeded") {
		t.Errorf("notification = %+v, want error mentioning the server reason", n)
	}
}

func TestReleaseOutsideBoardCancelsDrag(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = applyMsg(t, m, tea.MouseMsg{X: 110, Y: 29, Action: tea.MouseActionMotion})
	m = applyMsg(t, m, tea.MouseMsg{X: 110, Y: 29, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if stage, _ := m.visible.StageOf("d1"); stage != "a" {
		t.Errorf("cancelled drag moved d1 to %s", stage)
	}
	if backend.moveCalls != 0 {
		t.Errorf("cancelled drag persisted %d times", backend.moveCalls)
	}
}

func TestDropOnOwnStageIsDiscarded(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	// Drag d1 far enough to activate but release inside its own column.
	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 12, Action: tea.MouseActionMotion})
	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if backend.moveCalls != 0 {
		t.Errorf("same-stage drop persisted %d times, want 0", backend.moveCalls)
	}
	if m.rec.PendingCount() != 0 {
		t.Errorf("same-stage drop left %d pending moves", m.rec.PendingCount())
	}
}

func TestKeyboardGrabMovesDeal(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)
	keys := m.cfg.KeyMappings

	// Cursor starts on d1 in stage a. Grab, retarget right, drop.
	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys.GrabDeal)})
	if m.mode != modeGrabbed {
		t.Fatal("grab key should enter grabbed mode")
	}
	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys.NextStage)})
	if _, target, _ := m.interp.Grabbed(); target != "b" {
		t.Fatalf("retarget moved to %q, want b", target)
	}

	m2, msgs := applyAndRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = m2
	if m.mode != modeNormal {
		t.Error("drop should leave grabbed mode")
	}
	if stage, _ := m.visible.StageOf("d1"); stage != "b" {
		t.Fatalf("visible stage of d1 = %s, want b", stage)
	}

	m = applyMsg(t, m, findMoveResolved(t, msgs))
	if stage, _ := m.rec.Confirmed().StageOf("d1"); stage != "b" {
		t.Errorf("confirmed stage of d1 = %s, want b", stage)
	}
}

func TestKeyboardCancelEmitsNothing(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)
	keys := m.cfg.KeyMappings

	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys.GrabDeal)})
	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys.NextStage)})
	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeNormal {
		t.Error("cancel should return to normal mode")
	}
	if stage, _ := m.visible.StageOf("d1"); stage != "a" {
		t.Errorf("cancelled grab moved d1 to %s", stage)
	}
	if backend.moveCalls != 0 {
		t.Errorf("cancelled grab persisted %d times", backend.moveCalls)
	}
}

func TestBoardReloadDiscardsLateResponses(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	m = applyMsg(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = applyMsg(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionMotion})
	m2, msgs := applyAndRun(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	resolved := findMoveResolved(t, msgs)

	// Reload lands before the persist response.
	m = applyMsg(t, m2, boardLoadedMsg{model: newTestBoard(t)})
	m = applyMsg(t, m, resolved)

	if stage, _ := m.rec.Confirmed().StageOf("d1"); stage != "a" {
		t.Errorf("stale response mutated the reloaded board: d1 in %s", stage)
	}
	if len(m.notifications) != 0 {
		t.Errorf("stale response produced %d notifications, want 0", len(m.notifications))
	}
}

func TestViewRendersStageHeadersFromConfirmedStats(t *testing.T) {
	backend := &fakeBackend{model: newTestBoard(t)}
	m := newTestTUI(t, backend)

	out := m.View()
	for _, want := range []string{"Qualification", "Proposal", "Closed", "$1,200", "Acme renewal"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
