// Package board wires the pipeline board's stage-transition engine: the
// controller that turns drop events into model transforms and the reconciler
// that applies them optimistically and folds server responses back in.
package board

import (
	"context"
	"time"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/models"
)

// DefaultPersistTimeout bounds a stage-move persist request so a slow server
// cannot leave the board stuck in an optimistic state indefinitely.
const DefaultPersistTimeout = 10 * time.Second

// Backend is the boundary to the CRM record store. Implementations exist for
// the external REST API and for the embedded local store.
type Backend interface {
	// ListPipelines returns the pipelines available for display.
	ListPipelines(ctx context.Context) ([]models.Pipeline, error)

	// FetchPipeline returns the full board for one pipeline, or
	// models.ErrPipelineNotFound.
	FetchPipeline(ctx context.Context, pipelineID string) (*boardmodel.Model, error)

	// MoveDealStage persists a stage reassignment and returns the canonical
	// deal record, which may include server-computed fields.
	MoveDealStage(ctx context.Context, dealID, stageID string) (*models.Deal, error)

	// Deal CRUD, owned by the record dialogs.
	CreateDeal(ctx context.Context, req CreateDealRequest) (*models.Deal, error)
	UpdateDeal(ctx context.Context, req UpdateDealRequest) (*models.Deal, error)
	DeleteDeal(ctx context.Context, dealID string) error

	// Reference data for the deal form pickers and the detail pane.
	ListCompanies(ctx context.Context) ([]models.Company, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	ListDealActivities(ctx context.Context, dealID string) ([]models.Activity, error)
}

// CreateDealRequest encapsulates all data needed to create a deal.
type CreateDealRequest struct {
	Name        string
	Amount      int64
	StageID     string
	CompanyID   string
	ContactID   string
	CloseDate   time.Time
	Probability int
	Notes       string
}

// UpdateDealRequest encapsulates a deal edit. Pointer fields are optional;
// nil means leave unchanged. Stage reassignment is not an edit: it always
// flows through MoveDealStage so the reconciler stays the sole writer.
type UpdateDealRequest struct {
	DealID      string
	Name        *string
	Amount      *int64
	CompanyID   *string
	ContactID   *string
	CloseDate   *time.Time
	Probability *int
	Status      *models.DealStatus
	Notes       *string
}
