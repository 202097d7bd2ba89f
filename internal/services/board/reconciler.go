package board

import (
	"fmt"
	"log/slog"
	"sort"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/models"
)

// Severity classifies a user-facing notice produced by reconciliation.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

// Notice is a user-visible notification. Every reconciliation failure
// produces exactly one; a success produces one only when the server record
// differs materially from the optimistic guess.
type Notice struct {
	Severity Severity
	Message  string
}

// Dispatch instructs the caller to execute one persist request
// asynchronously and feed the result back through Complete with the same
// token. The reconciler never performs I/O itself; deciding stays here,
// executing stays in the event loop's command layer.
type Dispatch struct {
	Token   uint64
	DealID  string
	StageID string
}

// Result is what a completed persist resolves to: the new visible model, an
// optional follow-up dispatch (the next queued move for the same deal) and
// an optional notice.
type Result struct {
	Visible  *boardmodel.Model
	Dispatch *Dispatch
	Notice   *Notice
}

// pendingMove is one optimistic transition. The head of a deal's queue is
// in-flight; the rest wait for it to resolve before being dispatched.
type pendingMove struct {
	token   uint64
	dealID  string
	stageID string
}

// Reconciler owns the board models. The confirmed model is the last state
// acknowledged by the server; the visible model is the confirmed model with
// all pending optimistic moves replayed on top. All mutations flow through
// here; the view only ever holds a read reference to Visible().
//
// The reconciler is driven from a single event loop (bubbletea's update
// cycle) and is not safe for concurrent use.
type Reconciler struct {
	confirmed *boardmodel.Model
	visible   *boardmodel.Model

	// pending holds per-deal FIFO queues of optimistic moves; byToken
	// indexes every queued move for Complete lookups. Per-deal serialization
	// means responses for one deal always resolve in dispatch order, while
	// moves on different deals proceed independently.
	pending   map[string][]*pendingMove
	byToken   map[uint64]*pendingMove
	nextToken uint64
}

// NewReconciler creates a reconciler with no board loaded.
func NewReconciler() *Reconciler {
	return &Reconciler{
		pending: make(map[string][]*pendingMove),
		byToken: make(map[uint64]*pendingMove),
	}
}

// Reset installs a freshly fetched confirmed model, discarding every pending
// transition. Called on pipeline selection and full-model invalidation; a
// late response for a discarded transition is ignored by Complete.
func (r *Reconciler) Reset(m *boardmodel.Model) {
	r.confirmed = m
	r.visible = m
	r.pending = make(map[string][]*pendingMove)
	r.byToken = make(map[uint64]*pendingMove)
}

// Confirmed returns the last server-acknowledged model.
func (r *Reconciler) Confirmed() *boardmodel.Model { return r.confirmed }

// Visible returns the model the view should render: confirmed plus pending
// optimistic moves.
func (r *Reconciler) Visible() *boardmodel.Model { return r.visible }

// Stats returns the per-stage header statistics derived from the confirmed
// model.
func (r *Reconciler) Stats() []boardmodel.StageStats {
	if r.confirmed == nil {
		return nil
	}
	return r.confirmed.Stats()
}

// PendingFor reports whether the deal has an unresolved optimistic move.
func (r *Reconciler) PendingFor(dealID string) bool {
	return len(r.pending[dealID]) > 0
}

// PendingCount returns the number of unresolved optimistic moves.
func (r *Reconciler) PendingCount() int { return len(r.byToken) }

// Begin registers an optimistic move of a deal to a stage. The visible model
// reflects the move immediately. When the deal has no in-flight move the
// returned Dispatch must be executed; when a move is already in flight the
// new one queues behind it and dispatches from that move's Complete.
func (r *Reconciler) Begin(dealID, targetStageID string) (*Dispatch, error) {
	if r.visible == nil {
		return nil, ErrNoBoard
	}
	// Validate against the visible model so a queued move targets what the
	// user actually saw.
	if _, ok := r.visible.StageOf(dealID); !ok {
		return nil, fmt.Errorf("begin move: %w", models.ErrDealNotFound)
	}
	if !r.visible.HasStage(targetStageID) {
		return nil, fmt.Errorf("begin move: %w", models.ErrStageNotFound)
	}

	r.nextToken++
	mv := &pendingMove{token: r.nextToken, dealID: dealID, stageID: targetStageID}
	r.pending[dealID] = append(r.pending[dealID], mv)
	r.byToken[mv.token] = mv
	r.recomputeVisible()

	if len(r.pending[dealID]) > 1 {
		slog.Debug("move queued behind in-flight transition", "deal", dealID, "stage", targetStageID)
		return nil, nil
	}
	return &Dispatch{Token: mv.token, DealID: dealID, StageID: targetStageID}, nil
}

// Complete resolves a dispatched persist request.
//
// Success merges the canonical server deal into the confirmed model and
// releases the deal's next queued move, if any. Failure reverts the deal to
// its confirmed stage, drops that deal's queue and produces exactly one
// error notice. A token the reconciler no longer knows (discarded by Reset)
// is a stale response and is ignored silently.
func (r *Reconciler) Complete(token uint64, serverDeal *models.Deal, persistErr error) Result {
	mv, ok := r.byToken[token]
	if !ok {
		slog.Debug("discarding stale persist response", "token", token)
		return Result{Visible: r.visible}
	}

	queue := r.pending[mv.dealID]
	if len(queue) == 0 || queue[0] != mv {
		// Only the head of a deal's queue is ever dispatched; anything else
		// is a response we no longer govern.
		slog.Debug("discarding superseded persist response", "deal", mv.dealID, "token", token)
		delete(r.byToken, token)
		return Result{Visible: r.visible}
	}

	if persistErr != nil {
		return r.completeFailure(mv, persistErr)
	}
	return r.completeSuccess(mv, serverDeal)
}

func (r *Reconciler) completeSuccess(mv *pendingMove, serverDeal *models.Deal) Result {
	res := Result{}

	// The optimistic guess: the confirmed deal with only the stage changed.
	guess, _ := r.confirmed.Deal(mv.dealID)
	guess.StageID = mv.stageID

	if serverDeal != nil {
		merged, err := r.confirmed.UpsertDeal(*serverDeal)
		if err != nil {
			// The server acknowledged a stage this board no longer has; a
			// full refetch governs, keep the confirmed model unchanged.
			slog.Warn("cannot merge canonical deal", "deal", mv.dealID, "error", err)
		} else {
			r.confirmed = merged
		}
		if d := materialDiff(guess, *serverDeal); d != "" {
			res.Notice = &Notice{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("Server adjusted %q: %s", serverDeal.Name, d),
			}
		}
	} else {
		// No body returned; trust the optimistic guess.
		if merged, err := r.confirmed.UpsertDeal(guess); err == nil {
			r.confirmed = merged
		}
	}

	r.pop(mv)
	r.recomputeVisible()
	res.Visible = r.visible

	if next := r.head(mv.dealID); next != nil {
		res.Dispatch = &Dispatch{Token: next.token, DealID: next.dealID, StageID: next.stageID}
	}
	return res
}

func (r *Reconciler) completeFailure(mv *pendingMove, persistErr error) Result {
	// Drop the failed move and everything queued behind it: the queued moves
	// were staged against an optimistic state that never materialized.
	for _, q := range r.pending[mv.dealID] {
		delete(r.byToken, q.token)
	}
	delete(r.pending, mv.dealID)
	r.recomputeVisible()

	d, _ := r.confirmed.Deal(mv.dealID)
	slog.Warn("stage move rejected, reverting", "deal", mv.dealID, "stage", mv.stageID, "error", persistErr)
	return Result{
		Visible: r.visible,
		Notice: &Notice{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Could not move %q: %v", d.Name, persistErr),
		},
	}
}

// FoldDeal folds an externally created or edited deal into the confirmed
// model, the same way a successful reconciliation would, so edits from
// record dialogs keep the board correct.
func (r *Reconciler) FoldDeal(d models.Deal) error {
	if r.confirmed == nil {
		return ErrNoBoard
	}
	merged, err := r.confirmed.UpsertDeal(d)
	if err != nil {
		return err
	}
	r.confirmed = merged
	r.recomputeVisible()
	return nil
}

// FoldRemoval folds an external deal deletion into the confirmed model and
// drops any pending moves for the deal; their late responses will be
// discarded as stale.
func (r *Reconciler) FoldRemoval(dealID string) {
	if r.confirmed == nil {
		return
	}
	r.confirmed = r.confirmed.RemoveDeal(dealID)
	for _, q := range r.pending[dealID] {
		delete(r.byToken, q.token)
	}
	delete(r.pending, dealID)
	r.recomputeVisible()
}

// recomputeVisible replays every pending move, in FIFO order per deal, on
// top of the confirmed model. Deal queues are applied in sorted key order so
// the result is deterministic; queues for different deals are independent.
func (r *Reconciler) recomputeVisible() {
	v := r.confirmed
	ids := make([]string, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, mv := range r.pending[id] {
			next, err := v.MoveDeal(mv.dealID, mv.stageID)
			if err != nil {
				// The deal or stage vanished under the overlay (external
				// deletion); skip it, the confirmed model governs.
				continue
			}
			v = next
		}
	}
	r.visible = v
}

// head returns the deal's in-flight move, if any.
func (r *Reconciler) head(dealID string) *pendingMove {
	q := r.pending[dealID]
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// pop removes the head move for a deal.
func (r *Reconciler) pop(mv *pendingMove) {
	delete(r.byToken, mv.token)
	q := r.pending[mv.dealID]
	if len(q) <= 1 {
		delete(r.pending, mv.dealID)
		return
	}
	r.pending[mv.dealID] = q[1:]
}

// materialDiff describes how the canonical server record differs from the
// optimistic guess in fields the user can see on the card. An empty string
// means the guess held.
func materialDiff(guess, server models.Deal) string {
	switch {
	case server.StageID != guess.StageID:
		return fmt.Sprintf("placed in stage %s", server.StageID)
	case server.Amount != guess.Amount:
		return fmt.Sprintf("amount set to %d", server.Amount)
	case server.Probability != guess.Probability:
		return fmt.Sprintf("probability set to %d%%", server.Probability)
	case server.Status != guess.Status:
		return fmt.Sprintf("status set to %s", server.Status)
	}
	return ""
}
