package api

import (
	"time"

	"github.com/veldrane/dealdeck/internal/models"
)

// Raw wire shapes for the CRM REST API, converted to domain models at the
// boundary.

type pipelinePayload struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Stages []string `json:"stage_ids"`
}

func (p pipelinePayload) toPipeline() models.Pipeline {
	return models.Pipeline{ID: p.ID, Name: p.Name, StageIDs: p.Stages}
}

type stagePayload struct {
	ID         string `json:"id"`
	PipelineID string `json:"pipeline_id"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
}

func (s stagePayload) toStage() models.Stage {
	return models.Stage{ID: s.ID, PipelineID: s.PipelineID, Name: s.Name, Order: s.Order}
}

type dealPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	CompanyID   string `json:"company_id,omitempty"`
	ContactID   string `json:"contact_id,omitempty"`
	CloseDate   string `json:"close_date,omitempty"`
	Probability int    `json:"probability"`
	Status      string `json:"status"`
	StageID     string `json:"stage_id"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func (d dealPayload) toDeal() models.Deal {
	return models.Deal{
		ID:          d.ID,
		Name:        d.Name,
		Amount:      d.Amount,
		CompanyID:   d.CompanyID,
		ContactID:   d.ContactID,
		CloseDate:   parseTime(d.CloseDate),
		Probability: d.Probability,
		Status:      models.DealStatus(d.Status),
		StageID:     d.StageID,
		Notes:       d.Notes,
		CreatedAt:   parseTime(d.CreatedAt),
		UpdatedAt:   parseTime(d.UpdatedAt),
	}
}

type boardPayload struct {
	Pipeline pipelinePayload `json:"pipeline"`
	Stages   []stagePayload  `json:"stages"`
	Deals    []dealPayload   `json:"deals"`
}

type companyPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	City    string `json:"city,omitempty"`
}

func (c companyPayload) toCompany() models.Company {
	return models.Company{ID: c.ID, Name: c.Name, Website: c.Website, City: c.City}
}

type contactPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
}

func (c contactPayload) toContact() models.Contact {
	return models.Contact{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		CompanyID: c.CompanyID,
	}
}

type activityPayload struct {
	ID      string `json:"id"`
	DealID  string `json:"deal_id"`
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
	DueDate string `json:"due_date,omitempty"`
	Done    bool   `json:"done"`
}

func (a activityPayload) toActivity() models.Activity {
	return models.Activity{
		ID:      a.ID,
		DealID:  a.DealID,
		Kind:    models.ActivityKind(a.Kind),
		Summary: a.Summary,
		DueDate: parseTime(a.DueDate),
		Done:    a.Done,
	}
}

// errorPayload is the server's structured failure body.
type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
