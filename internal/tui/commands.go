package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/models"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// Messages produced by asynchronous commands. Every backend call runs in a
// tea.Cmd; its completion re-enters the single update loop as one of these.

type pipelinesLoadedMsg struct {
	pipelines []models.Pipeline
	err       error
}

type boardLoadedMsg struct {
	model *boardmodel.Model
	err   error
}

// moveResolvedMsg carries the result of one dispatched persist request back
// to the reconciler, keyed by the dispatch token.
type moveResolvedMsg struct {
	token uint64
	deal  *models.Deal
	err   error
}

type dealSavedMsg struct {
	deal *models.Deal
	err  error
}

type dealDeletedMsg struct {
	dealID string
	err    error
}

type referenceDataMsg struct {
	companies []models.Company
	contacts  []models.Contact
	err       error
}

type activitiesLoadedMsg struct {
	dealID     string
	activities []models.Activity
	err        error
}

type notificationExpiredMsg struct{}

const notificationTTL = 4 * time.Second

func (m Model) loadPipelinesCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		pipelines, err := backend.ListPipelines(context.Background())
		return pipelinesLoadedMsg{pipelines: pipelines, err: err}
	}
}

func (m Model) loadBoardCmd(pipelineID string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		model, err := backend.FetchPipeline(context.Background(), pipelineID)
		return boardLoadedMsg{model: model, err: err}
	}
}

// persistCmd executes one reconciler dispatch. The context deadline turns a
// hung server into a Reconciled-failure instead of a stuck optimistic state;
// once started the request always runs to completion and reports back.
func (m Model) persistCmd(d svcboard.Dispatch) tea.Cmd {
	backend := m.backend
	timeout := m.persistTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		deal, err := backend.MoveDealStage(ctx, d.DealID, d.StageID)
		return moveResolvedMsg{token: d.Token, deal: deal, err: err}
	}
}

func (m Model) createDealCmd(req svcboard.CreateDealRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		deal, err := backend.CreateDeal(context.Background(), req)
		return dealSavedMsg{deal: deal, err: err}
	}
}

func (m Model) updateDealCmd(req svcboard.UpdateDealRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		deal, err := backend.UpdateDeal(context.Background(), req)
		return dealSavedMsg{deal: deal, err: err}
	}
}

func (m Model) deleteDealCmd(dealID string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		err := backend.DeleteDeal(context.Background(), dealID)
		return dealDeletedMsg{dealID: dealID, err: err}
	}
}

func (m Model) loadReferenceDataCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		companies, err := backend.ListCompanies(context.Background())
		if err != nil {
			return referenceDataMsg{err: err}
		}
		contacts, err := backend.ListContacts(context.Background())
		return referenceDataMsg{companies: companies, contacts: contacts, err: err}
	}
}

func (m Model) loadActivitiesCmd(dealID string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		activities, err := backend.ListDealActivities(context.Background(), dealID)
		return activitiesLoadedMsg{dealID: dealID, activities: activities, err: err}
	}
}

func expireNotificationCmd() tea.Cmd {
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return notificationExpiredMsg{}
	})
}
