package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/models"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// Store implements svcboard.Backend on the embedded database.
type Store struct {
	db *sql.DB
}

var _ svcboard.Backend = (*Store)(nil)

// New wraps an opened database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListPipelines returns all pipelines, by name.
func (s *Store) ListPipelines(ctx context.Context) ([]models.Pipeline, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM pipelines ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing pipelines: %w", err)
	}
	defer rows.Close()

	var out []models.Pipeline
	for rows.Next() {
		var p models.Pipeline
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		stages, err := s.stagesFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		for _, st := range stages {
			out[i].StageIDs = append(out[i].StageIDs, st.ID)
		}
	}
	return out, nil
}

// FetchPipeline loads one pipeline's stages and deals into a board model.
// Deals come back in insertion order within each stage.
func (s *Store) FetchPipeline(ctx context.Context, pipelineID string) (*boardmodel.Model, error) {
	var pipeline models.Pipeline
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM pipelines WHERE id = ?", pipelineID).
		Scan(&pipeline.ID, &pipeline.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", models.ErrPipelineNotFound, pipelineID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching pipeline: %w", err)
	}

	stages, err := s.stagesFor(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	for _, st := range stages {
		pipeline.StageIDs = append(pipeline.StageIDs, st.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.amount, d.company_id, d.contact_id, d.close_date,
		       d.probability, d.status, d.stage_id, d.notes, d.created_at, d.updated_at
		FROM deals d
		JOIN stages s ON s.id = d.stage_id
		WHERE s.pipeline_id = ?
		ORDER BY d.created_at, d.id`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("fetching deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return boardmodel.New(pipeline, stages, deals)
}

// MoveDealStage reassigns a deal to a stage of the same pipeline and returns
// the canonical record. The probability is clamped to 0-100 on the way
// through, standing in for the server-side validation a real CRM applies.
func (s *Store) MoveDealStage(ctx context.Context, dealID, stageID string) (*models.Deal, error) {
	current, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	var targetPipeline, currentPipeline string
	err = s.db.QueryRowContext(ctx,
		"SELECT pipeline_id FROM stages WHERE id = ?", stageID).Scan(&targetPipeline)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", models.ErrStageNotFound, stageID)
	}
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx,
		"SELECT pipeline_id FROM stages WHERE id = ?", current.StageID).Scan(&currentPipeline)
	if err != nil {
		return nil, err
	}
	if targetPipeline != currentPipeline {
		return nil, models.ErrStageWrongPipeline
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE deals SET stage_id = ?, probability = MIN(100, MAX(0, probability)), updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		stageID, dealID); err != nil {
		return nil, fmt.Errorf("moving deal: %w", err)
	}
	return s.getDeal(ctx, dealID)
}

// CreateDeal inserts a deal with a fresh id and returns the stored record.
func (s *Store) CreateDeal(ctx context.Context, req svcboard.CreateDealRequest) (*models.Deal, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stages WHERE id = ?", req.StageID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w (%s)", models.ErrStageNotFound, req.StageID)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deals (id, name, amount, company_id, contact_id, close_date, probability, status, stage_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'open', ?, ?)`,
		id, req.Name, req.Amount, nullable(req.CompanyID), nullable(req.ContactID),
		nullableTime(req.CloseDate), clampProbability(req.Probability), req.StageID, req.Notes)
	if err != nil {
		return nil, fmt.Errorf("creating deal: %w", err)
	}
	return s.getDeal(ctx, id)
}

// UpdateDeal applies the non-nil fields of the request and returns the
// stored record.
func (s *Store) UpdateDeal(ctx context.Context, req svcboard.UpdateDealRequest) (*models.Deal, error) {
	d, err := s.getDeal(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Amount != nil {
		d.Amount = *req.Amount
	}
	if req.CompanyID != nil {
		d.CompanyID = *req.CompanyID
	}
	if req.ContactID != nil {
		d.ContactID = *req.ContactID
	}
	if req.CloseDate != nil {
		d.CloseDate = *req.CloseDate
	}
	if req.Probability != nil {
		d.Probability = clampProbability(*req.Probability)
	}
	if req.Status != nil && req.Status.Valid() {
		d.Status = *req.Status
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE deals SET name = ?, amount = ?, company_id = ?, contact_id = ?,
		       close_date = ?, probability = ?, status = ?, notes = ?,
		       updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		d.Name, d.Amount, nullable(d.CompanyID), nullable(d.ContactID),
		nullableTime(d.CloseDate), d.Probability, string(d.Status), d.Notes, d.ID)
	if err != nil {
		return nil, fmt.Errorf("updating deal: %w", err)
	}
	return s.getDeal(ctx, d.ID)
}

// DeleteDeal removes a deal and, via cascade, its activities.
func (s *Store) DeleteDeal(ctx context.Context, dealID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM deals WHERE id = ?", dealID)
	if err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w (%s)", models.ErrDealNotFound, dealID)
	}
	return nil
}

// ListCompanies returns all companies, by name.
func (s *Store) ListCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, website, city FROM companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var out []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.City); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListContacts returns all contacts, by last name.
func (s *Store) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, first_name, last_name, email, company_id FROM contacts ORDER BY last_name, first_name")
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		var c models.Contact
		var companyID sql.NullString
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &companyID); err != nil {
			return nil, err
		}
		c.CompanyID = companyID.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListDealActivities returns a deal's activities, due-date first.
func (s *Store) ListDealActivities(ctx context.Context, dealID string) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, deal_id, kind, summary, due_date, done FROM activities WHERE deal_id = ? ORDER BY due_date",
		dealID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		var kind string
		var due sql.NullTime
		if err := rows.Scan(&a.ID, &a.DealID, &kind, &a.Summary, &due, &a.Done); err != nil {
			return nil, err
		}
		a.Kind = models.ActivityKind(kind)
		a.DueDate = due.Time
		out = append(out, a)
	}
	return out, rows.Err()
}

// stagesFor returns a pipeline's stages in position order.
func (s *Store) stagesFor(ctx context.Context, pipelineID string) ([]models.Stage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, pipeline_id, name, position FROM stages WHERE pipeline_id = ? ORDER BY position",
		pipelineID)
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}
	defer rows.Close()

	var out []models.Stage
	for rows.Next() {
		var st models.Stage
		if err := rows.Scan(&st.ID, &st.PipelineID, &st.Name, &st.Order); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) getDeal(ctx context.Context, dealID string) (*models.Deal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, amount, company_id, contact_id, close_date,
		       probability, status, stage_id, notes, created_at, updated_at
		FROM deals WHERE id = ?`, dealID)
	d, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", models.ErrDealNotFound, dealID)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(row scanner) (models.Deal, error) {
	var d models.Deal
	var companyID, contactID sql.NullString
	var closeDate, createdAt, updatedAt sql.NullTime
	var status string
	err := row.Scan(&d.ID, &d.Name, &d.Amount, &companyID, &contactID, &closeDate,
		&d.Probability, &status, &d.StageID, &d.Notes, &createdAt, &updatedAt)
	if err != nil {
		return models.Deal{}, err
	}
	d.CompanyID = companyID.String
	d.ContactID = contactID.String
	d.CloseDate = closeDate.Time
	d.Status = models.DealStatus(status)
	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time
	return d, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func clampProbability(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
