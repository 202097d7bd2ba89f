package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/veldrane/dealdeck/internal/models"
)

// newTestBoard builds a three-stage board with deals spread across the first
// two stages.
func newTestBoard(t *testing.T) *Model {
	t.Helper()

	pipeline := models.Pipeline{
		ID:       "p1",
		Name:     "Sales",
		StageIDs: []string{"qualification", "proposal", "closed"},
	}
	stages := []models.Stage{
		{ID: "qualification", PipelineID: "p1", Name: "Qualification", Order: 0},
		{ID: "proposal", PipelineID: "p1", Name: "Proposal", Order: 1},
		{ID: "closed", PipelineID: "p1", Name: "Closed", Order: 2},
	}
	deals := []models.Deal{
		{ID: "d1", Name: "Acme renewal", Amount: 120000, StageID: "qualification", Status: models.DealOpen},
		{ID: "d2", Name: "Globex pilot", Amount: 45000, StageID: "qualification", Status: models.DealOpen},
		{ID: "d3", Name: "Initech upsell", Amount: 300000, StageID: "proposal", Status: models.DealOpen},
	}

	m, err := New(pipeline, stages, deals)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return m
}

// assertSingleOwnership verifies that every deal appears in exactly one
// stage's list and that its StageID matches the containing stage.
func assertSingleOwnership(t *testing.T, m *Model) {
	t.Helper()

	seen := map[string]string{}
	for _, s := range m.Stages() {
		for _, id := range m.DealIDs(s.ID) {
			if prev, dup := seen[id]; dup {
				t.Fatalf("deal %s appears in stages %s and %s", id, prev, s.ID)
			}
			seen[id] = s.ID
			d, ok := m.Deal(id)
			if !ok {
				t.Fatalf("deal %s listed in stage %s but not in deal map", id, s.ID)
			}
			if d.StageID != s.ID {
				t.Fatalf("deal %s in stage %s but StageID=%s", id, s.ID, d.StageID)
			}
		}
	}
	if len(seen) != m.Len() {
		t.Fatalf("board lists %d deals, deal map holds %d", len(seen), m.Len())
	}
}

func TestNewRejectsDanglingStage(t *testing.T) {
	pipeline := models.Pipeline{ID: "p1", Name: "Sales"}
	stages := []models.Stage{{ID: "a", PipelineID: "p1", Name: "A", Order: 0}}
	deals := []models.Deal{{ID: "d1", StageID: "nope"}}

	if _, err := New(pipeline, stages, deals); !errors.Is(err, models.ErrStageNotFound) {
		t.Fatalf("expected ErrStageNotFound, got %v", err)
	}
}

func TestNewRejectsDuplicateDeal(t *testing.T) {
	pipeline := models.Pipeline{ID: "p1", Name: "Sales"}
	stages := []models.Stage{{ID: "a", PipelineID: "p1", Name: "A", Order: 0}}
	deals := []models.Deal{
		{ID: "d1", StageID: "a"},
		{ID: "d1", StageID: "a"},
	}

	if _, err := New(pipeline, stages, deals); err == nil {
		t.Fatal("expected error for duplicate deal id")
	}
}

func TestNewSortsStagesByOrder(t *testing.T) {
	pipeline := models.Pipeline{ID: "p1", Name: "Sales"}
	stages := []models.Stage{
		{ID: "b", PipelineID: "p1", Name: "B", Order: 2},
		{ID: "a", PipelineID: "p1", Name: "A", Order: 1},
	}

	m, err := New(pipeline, stages, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	got := []string{m.Stages()[0].ID, m.Stages()[1].ID}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveDealAppendsToTarget(t *testing.T) {
	m := newTestBoard(t)

	next, err := m.MoveDeal("d1", "proposal")
	if err != nil {
		t.Fatalf("MoveDeal failed: %v", err)
	}
	if next == m {
		t.Fatal("cross-stage move returned the identical model")
	}

	if diff := cmp.Diff([]string{"d3", "d1"}, next.DealIDs("proposal")); diff != "" {
		t.Errorf("target stage order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d2"}, next.DealIDs("qualification")); diff != "" {
		t.Errorf("source stage mismatch (-want +got):\n%s", diff)
	}
	if got, _ := next.StageOf("d1"); got != "proposal" {
		t.Errorf("StageOf(d1) = %s, want proposal", got)
	}
	assertSingleOwnership(t, next)
}

func TestMoveDealDoesNotMutateInput(t *testing.T) {
	m := newTestBoard(t)

	if _, err := m.MoveDeal("d1", "closed"); err != nil {
		t.Fatalf("MoveDeal failed: %v", err)
	}

	// The original snapshot must be untouched.
	if got, _ := m.StageOf("d1"); got != "qualification" {
		t.Errorf("input model mutated: StageOf(d1) = %s", got)
	}
	if diff := cmp.Diff([]string{"d1", "d2"}, m.DealIDs("qualification")); diff != "" {
		t.Errorf("input membership mutated (-want +got):\n%s", diff)
	}
}

func TestMoveDealNoOpReturnsSameModel(t *testing.T) {
	m := newTestBoard(t)

	next, err := m.MoveDeal("d1", "qualification")
	if err != nil {
		t.Fatalf("MoveDeal failed: %v", err)
	}
	if next != m {
		t.Fatal("same-stage move should return the identical model")
	}
}

func TestMoveDealUnknownReferences(t *testing.T) {
	m := newTestBoard(t)

	if _, err := m.MoveDeal("ghost", "proposal"); !errors.Is(err, models.ErrDealNotFound) {
		t.Errorf("expected ErrDealNotFound, got %v", err)
	}
	if _, err := m.MoveDeal("d1", "ghost"); !errors.Is(err, models.ErrStageNotFound) {
		t.Errorf("expected ErrStageNotFound, got %v", err)
	}
}

func TestUpsertDealNewAndExisting(t *testing.T) {
	m := newTestBoard(t)

	// New deal lands at the end of its stage.
	next, err := m.UpsertDeal(models.Deal{ID: "d4", Name: "Hooli intro", Amount: 9900, StageID: "closed"})
	if err != nil {
		t.Fatalf("UpsertDeal failed: %v", err)
	}
	if diff := cmp.Diff([]string{"d4"}, next.DealIDs("closed")); diff != "" {
		t.Errorf("closed stage mismatch (-want +got):\n%s", diff)
	}

	// Editing an existing deal with a changed stage relocates it.
	edited, _ := next.Deal("d2")
	edited.StageID = "proposal"
	edited.Amount = 50000
	next, err = next.UpsertDeal(edited)
	if err != nil {
		t.Fatalf("UpsertDeal failed: %v", err)
	}
	if diff := cmp.Diff([]string{"d3", "d2"}, next.DealIDs("proposal")); diff != "" {
		t.Errorf("proposal stage mismatch (-want +got):\n%s", diff)
	}
	got, _ := next.Deal("d2")
	if got.Amount != 50000 {
		t.Errorf("amount not merged: %d", got.Amount)
	}
	assertSingleOwnership(t, next)
}

func TestRemoveDeal(t *testing.T) {
	m := newTestBoard(t)

	next := m.RemoveDeal("d1")
	if _, ok := next.Deal("d1"); ok {
		t.Fatal("deal still present after removal")
	}
	if diff := cmp.Diff([]string{"d2"}, next.DealIDs("qualification")); diff != "" {
		t.Errorf("stage mismatch after removal (-want +got):\n%s", diff)
	}
	if next.RemoveDeal("ghost") != next {
		t.Error("removing an unknown deal should return the identical model")
	}
	assertSingleOwnership(t, next)
}

func TestStatsDerivedFromModel(t *testing.T) {
	m := newTestBoard(t)

	want := []StageStats{
		{StageID: "qualification", StageName: "Qualification", Deals: 2, Amount: 165000},
		{StageID: "proposal", StageName: "Proposal", Deals: 1, Amount: 300000},
		{StageID: "closed", StageName: "Closed", Deals: 0, Amount: 0},
	}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	// After a move the stats must follow the new membership.
	next, err := m.MoveDeal("d3", "closed")
	if err != nil {
		t.Fatalf("MoveDeal failed: %v", err)
	}
	want = []StageStats{
		{StageID: "qualification", StageName: "Qualification", Deals: 2, Amount: 165000},
		{StageID: "proposal", StageName: "Proposal", Deals: 0, Amount: 0},
		{StageID: "closed", StageName: "Closed", Deals: 1, Amount: 300000},
	}
	if diff := cmp.Diff(want, next.Stats()); diff != "" {
		t.Errorf("stats after move mismatch (-want +got):\n%s", diff)
	}
}
