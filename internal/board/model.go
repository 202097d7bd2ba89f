// Package board holds the in-memory projection of one pipeline's stages and
// deals as currently displayed. The Model is an immutable snapshot: every
// transform returns a new Model and callers replace their reference, which
// keeps before/after comparison trivial for optimistic rollback.
package board

import (
	"fmt"
	"sort"

	"github.com/veldrane/dealdeck/internal/models"
)

// Model is an immutable snapshot of a pipeline board: the pipeline's stages
// in display order, each holding an ordered list of deal ids.
//
// Invariant: every deal id appears in exactly one stage's list, and that
// deal's StageID matches the containing stage.
type Model struct {
	pipeline models.Pipeline
	stages   []models.Stage
	// order holds stage ids in display order; members maps stage id to its
	// ordered deal id list.
	order   []string
	members map[string][]string
	deals   map[string]models.Deal
}

// StageStats holds the derived per-stage header statistics.
type StageStats struct {
	StageID   string
	StageName string
	// Deals is the number of deals currently in the stage.
	Deals int
	// Amount is the summed deal amount in cents.
	Amount int64
}

// New builds a Model from a pipeline, its stages and the deals assigned to
// them. Stages are ordered by their Order field. Every deal must reference a
// stage of the pipeline; a duplicate deal id or a dangling stage reference is
// rejected so the single-ownership invariant holds from construction.
func New(pipeline models.Pipeline, stages []models.Stage, deals []models.Deal) (*Model, error) {
	sorted := make([]models.Stage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	m := &Model{
		pipeline: pipeline,
		stages:   sorted,
		order:    make([]string, 0, len(sorted)),
		members:  make(map[string][]string, len(sorted)),
		deals:    make(map[string]models.Deal, len(deals)),
	}
	for _, s := range sorted {
		if _, dup := m.members[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stage %q", s.ID)
		}
		m.order = append(m.order, s.ID)
		m.members[s.ID] = nil
	}
	for _, d := range deals {
		if _, dup := m.deals[d.ID]; dup {
			return nil, fmt.Errorf("duplicate deal %q", d.ID)
		}
		if _, ok := m.members[d.StageID]; !ok {
			return nil, fmt.Errorf("deal %q: %w (%q)", d.ID, models.ErrStageNotFound, d.StageID)
		}
		m.deals[d.ID] = d
		m.members[d.StageID] = append(m.members[d.StageID], d.ID)
	}
	return m, nil
}

// Pipeline returns the pipeline this board displays.
func (m *Model) Pipeline() models.Pipeline { return m.pipeline }

// Stages returns the stages in display order. The returned slice must not be
// mutated.
func (m *Model) Stages() []models.Stage { return m.stages }

// HasStage reports whether the stage belongs to this board.
func (m *Model) HasStage(stageID string) bool {
	_, ok := m.members[stageID]
	return ok
}

// Deal returns the deal with the given id, if present.
func (m *Model) Deal(dealID string) (models.Deal, bool) {
	d, ok := m.deals[dealID]
	return d, ok
}

// StageOf returns the id of the stage currently holding the deal.
func (m *Model) StageOf(dealID string) (string, bool) {
	d, ok := m.deals[dealID]
	if !ok {
		return "", false
	}
	return d.StageID, true
}

// DealIDs returns the ordered deal ids in a stage. The returned slice must
// not be mutated.
func (m *Model) DealIDs(stageID string) []string {
	return m.members[stageID]
}

// DealsIn returns the deals in a stage, in display order.
func (m *Model) DealsIn(stageID string) []models.Deal {
	ids := m.members[stageID]
	out := make([]models.Deal, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.deals[id])
	}
	return out
}

// Len returns the total number of deals on the board.
func (m *Model) Len() int { return len(m.deals) }

// MoveDeal returns a new Model with the deal removed from its current stage
// and appended to the end of the target stage, StageID updated. Moving a deal
// onto its own stage is a no-op and returns the receiver unchanged, so
// callers can detect it by pointer identity. The receiver is never mutated.
func (m *Model) MoveDeal(dealID, targetStageID string) (*Model, error) {
	d, ok := m.deals[dealID]
	if !ok {
		return nil, fmt.Errorf("move deal %q: %w", dealID, models.ErrDealNotFound)
	}
	if _, ok := m.members[targetStageID]; !ok {
		return nil, fmt.Errorf("move deal %q: %w (%q)", dealID, models.ErrStageNotFound, targetStageID)
	}
	if d.StageID == targetStageID {
		return m, nil
	}

	next := m.clone()
	next.members[d.StageID] = removeID(next.members[d.StageID], dealID)
	next.members[targetStageID] = appendID(next.members[targetStageID], dealID)
	d.StageID = targetStageID
	next.deals[dealID] = d
	return next, nil
}

// UpsertDeal folds an externally created or edited deal into the board, the
// same way a successful reconciliation merges a canonical server record. A
// new deal is appended to its stage; an existing deal is updated in place and
// relocated when its StageID changed. The deal's stage must exist.
func (m *Model) UpsertDeal(d models.Deal) (*Model, error) {
	if _, ok := m.members[d.StageID]; !ok {
		return nil, fmt.Errorf("upsert deal %q: %w (%q)", d.ID, models.ErrStageNotFound, d.StageID)
	}
	next := m.clone()
	if prev, ok := next.deals[d.ID]; ok {
		if prev.StageID != d.StageID {
			next.members[prev.StageID] = removeID(next.members[prev.StageID], d.ID)
			next.members[d.StageID] = appendID(next.members[d.StageID], d.ID)
		}
	} else {
		next.members[d.StageID] = appendID(next.members[d.StageID], d.ID)
	}
	next.deals[d.ID] = d
	return next, nil
}

// RemoveDeal returns a new Model without the deal. Removing an unknown deal
// returns the receiver unchanged.
func (m *Model) RemoveDeal(dealID string) *Model {
	d, ok := m.deals[dealID]
	if !ok {
		return m
	}
	next := m.clone()
	next.members[d.StageID] = removeID(next.members[d.StageID], dealID)
	delete(next.deals, dealID)
	return next
}

// Stats recomputes the per-stage deal count and summed amount, in stage
// order. Stats are derived from the model on every call, never maintained
// separately.
func (m *Model) Stats() []StageStats {
	out := make([]StageStats, 0, len(m.stages))
	for _, s := range m.stages {
		st := StageStats{StageID: s.ID, StageName: s.Name}
		for _, id := range m.members[s.ID] {
			st.Deals++
			st.Amount += m.deals[id].Amount
		}
		out = append(out, st)
	}
	return out
}

// clone makes a shallow structural copy: stage order is shared (read-only),
// membership lists and the deal map are copied so the clone can diverge.
func (m *Model) clone() *Model {
	next := &Model{
		pipeline: m.pipeline,
		stages:   m.stages,
		order:    m.order,
		members:  make(map[string][]string, len(m.members)),
		deals:    make(map[string]models.Deal, len(m.deals)),
	}
	for id, ids := range m.members {
		next.members[id] = ids
	}
	for id, d := range m.deals {
		next.deals[id] = d
	}
	return next
}

// removeID returns a copy of ids without the given id.
func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// appendID returns a new slice with id appended, never aliasing ids' backing
// array with the original model.
func appendID(ids []string, id string) []string {
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}
