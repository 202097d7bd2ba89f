// Package api implements the board.Backend boundary against the external CRM
// REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/models"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
)

// Client talks to the CRM REST API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ svcboard.Backend = (*Client)(nil)

// NewClient creates an API client. The HTTP client carries its own transport
// timeout; per-request deadlines come from the caller's context.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ListPipelines returns the pipelines configured on the server.
func (c *Client) ListPipelines(ctx context.Context) ([]models.Pipeline, error) {
	var payload []pipelinePayload
	if err := c.do(ctx, http.MethodGet, "/api/pipelines", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]models.Pipeline, len(payload))
	for i, p := range payload {
		out[i] = p.toPipeline()
	}
	return out, nil
}

// FetchPipeline returns the full board for one pipeline: stages with their
// ordered deal lists.
func (c *Client) FetchPipeline(ctx context.Context, pipelineID string) (*boardmodel.Model, error) {
	var payload boardPayload
	path := fmt.Sprintf("/api/pipelines/%s/board", pipelineID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.NotFound() {
			return nil, fmt.Errorf("%w (%s)", models.ErrPipelineNotFound, pipelineID)
		}
		return nil, err
	}

	stages := make([]models.Stage, len(payload.Stages))
	for i, s := range payload.Stages {
		stages[i] = s.toStage()
	}
	deals := make([]models.Deal, len(payload.Deals))
	for i, d := range payload.Deals {
		deals[i] = d.toDeal()
	}
	return boardmodel.New(payload.Pipeline.toPipeline(), stages, deals)
}

// MoveDealStage persists a stage reassignment and returns the canonical deal
// record from the server.
func (c *Client) MoveDealStage(ctx context.Context, dealID, stageID string) (*models.Deal, error) {
	body := map[string]string{"stage_id": stageID}
	var payload dealPayload
	path := fmt.Sprintf("/api/deals/%s/stage", dealID)
	if err := c.do(ctx, http.MethodPatch, path, body, &payload); err != nil {
		return nil, err
	}
	deal := payload.toDeal()
	return &deal, nil
}

// CreateDeal creates a deal and returns the server record.
func (c *Client) CreateDeal(ctx context.Context, req svcboard.CreateDealRequest) (*models.Deal, error) {
	body := dealPayload{
		Name:        req.Name,
		Amount:      req.Amount,
		StageID:     req.StageID,
		CompanyID:   req.CompanyID,
		ContactID:   req.ContactID,
		CloseDate:   formatTime(req.CloseDate),
		Probability: req.Probability,
		Status:      string(models.DealOpen),
		Notes:       req.Notes,
	}
	var payload dealPayload
	if err := c.do(ctx, http.MethodPost, "/api/deals", body, &payload); err != nil {
		return nil, err
	}
	deal := payload.toDeal()
	return &deal, nil
}

// UpdateDeal applies a partial edit and returns the server record.
func (c *Client) UpdateDeal(ctx context.Context, req svcboard.UpdateDealRequest) (*models.Deal, error) {
	body := map[string]any{}
	if req.Name != nil {
		body["name"] = *req.Name
	}
	if req.Amount != nil {
		body["amount"] = *req.Amount
	}
	if req.CompanyID != nil {
		body["company_id"] = *req.CompanyID
	}
	if req.ContactID != nil {
		body["contact_id"] = *req.ContactID
	}
	if req.CloseDate != nil {
		body["close_date"] = formatTime(*req.CloseDate)
	}
	if req.Probability != nil {
		body["probability"] = *req.Probability
	}
	if req.Status != nil {
		body["status"] = string(*req.Status)
	}
	if req.Notes != nil {
		body["notes"] = *req.Notes
	}

	var payload dealPayload
	path := fmt.Sprintf("/api/deals/%s", req.DealID)
	if err := c.do(ctx, http.MethodPatch, path, body, &payload); err != nil {
		return nil, err
	}
	deal := payload.toDeal()
	return &deal, nil
}

// DeleteDeal removes a deal.
func (c *Client) DeleteDeal(ctx context.Context, dealID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/deals/%s", dealID), nil, nil)
}

// ListCompanies returns the company records for form pickers.
func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var payload []companyPayload
	if err := c.do(ctx, http.MethodGet, "/api/companies", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]models.Company, len(payload))
	for i, p := range payload {
		out[i] = p.toCompany()
	}
	return out, nil
}

// ListContacts returns the contact records for form pickers.
func (c *Client) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var payload []contactPayload
	if err := c.do(ctx, http.MethodGet, "/api/contacts", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]models.Contact, len(payload))
	for i, p := range payload {
		out[i] = p.toContact()
	}
	return out, nil
}

// ListDealActivities returns the activities tracked against a deal, newest
// first.
func (c *Client) ListDealActivities(ctx context.Context, dealID string) ([]models.Activity, error) {
	var payload []activityPayload
	path := fmt.Sprintf("/api/deals/%s/activities", dealID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]models.Activity, len(payload))
	for i, p := range payload {
		out[i] = p.toActivity()
	}
	return out, nil
}

// do executes one request. Non-2xx responses decode into *APIError, keeping
// the server's rejection reason when the body carries one.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload errorPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil {
			apiErr.Code = payload.Error.Code
			apiErr.Reason = payload.Error.Message
		}
		return apiErr
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
