// Package tui renders the pipeline board and forwards gesture events into
// the stage-transition engine. It holds only a read reference to the visible
// board model; every mutation flows through the reconciler.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/config"
	"github.com/veldrane/dealdeck/internal/drag"
	"github.com/veldrane/dealdeck/internal/models"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// mode is the TUI's top-level input mode.
type mode int

const (
	modeNormal mode = iota
	// modeGrabbed is the keyboard move: a card is held and h/l retargets the
	// destination stage.
	modeGrabbed
	modeForm
	modeDetail
	modeConfirmDelete
	modeHelp
)

// Model is the bubbletea model for the board view.
type Model struct {
	cfg     *config.Config
	backend svcboard.Backend

	rec        *svcboard.Reconciler
	controller *svcboard.Controller
	interp     *drag.Interpreter

	// visible is the read reference to the model the reconciler says to
	// render, replaced wholesale on every change.
	visible *boardmodel.Model

	pipelines   []models.Pipeline
	pipelineIdx int

	width  int
	height int
	mode   mode

	// selection and scrolling
	selStage    int
	selDeal     int
	stageOffset int
	cardScroll  map[string]int

	// hoverStage highlights the currently resolved drop target during a
	// pointer drag; grabbed moves highlight via the interpreter instead.
	hoverStage string

	notifications []notification
	spin          spinner.Model

	// form state
	form     *huh.Form
	formDeal *dealFormValues
	editID   string

	// detail state
	detailDeal       *models.Deal
	detailActivities []models.Activity
	detailRendered   string

	companies []models.Company
	contacts  []models.Contact

	persistTimeout time.Duration

	loadErr error
}

// New creates the board TUI bound to a backend.
func New(cfg *config.Config, backend svcboard.Backend) Model {
	rec := svcboard.NewReconciler()
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{
		cfg:            cfg,
		backend:        backend,
		rec:            rec,
		controller:     svcboard.NewController(rec),
		interp:         drag.NewInterpreter(cfg.Board.DragThreshold),
		cardScroll:     map[string]int{},
		spin:           sp,
		persistTimeout: cfg.Board.PersistTimeout(),
	}
}

// Init loads the pipeline list and reference data.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadPipelinesCmd(), m.loadReferenceDataCmd())
}

// currentPipeline returns the selected pipeline, if any are loaded.
func (m Model) currentPipeline() (models.Pipeline, bool) {
	if len(m.pipelines) == 0 {
		return models.Pipeline{}, false
	}
	return m.pipelines[m.pipelineIdx], true
}

// selectedDeal returns the deal under the selection cursor.
func (m Model) selectedDeal() (models.Deal, bool) {
	if m.visible == nil {
		return models.Deal{}, false
	}
	stages := m.visible.Stages()
	if m.selStage >= len(stages) {
		return models.Deal{}, false
	}
	ids := m.visible.DealIDs(stages[m.selStage].ID)
	if m.selDeal >= len(ids) {
		return models.Deal{}, false
	}
	return m.visible.Deal(ids[m.selDeal])
}

// stageIDs returns the visible board's stage ids in display order.
func (m Model) stageIDs() []string {
	if m.visible == nil {
		return nil
	}
	stages := m.visible.Stages()
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.ID
	}
	return out
}

// clampSelection keeps the cursor on a real card after the board changed
// underneath it.
func (m *Model) clampSelection() {
	if m.visible == nil {
		m.selStage, m.selDeal = 0, 0
		return
	}
	stages := m.visible.Stages()
	if len(stages) == 0 {
		m.selStage, m.selDeal = 0, 0
		return
	}
	if m.selStage >= len(stages) {
		m.selStage = len(stages) - 1
	}
	ids := m.visible.DealIDs(stages[m.selStage].ID)
	if m.selDeal >= len(ids) {
		m.selDeal = len(ids) - 1
	}
	if m.selDeal < 0 {
		m.selDeal = 0
	}
}

// notify queues a user-facing banner.
func (m *Model) notify(severity svcboard.Severity, message string) {
	m.notifications = append(m.notifications, notification{severity: severity, message: message})
}
