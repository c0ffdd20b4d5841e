package integrity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"beo-inventory-backend/internal/lending"
	"beo-inventory-backend/internal/metrics"
	"beo-inventory-backend/internal/model"
)

// Transitions is the subset of the lending engine the repairer drives.
type Transitions interface {
	ForceLoaned(ctx context.Context, itemID int64, operator string) error
	ForceAvailableOrphan(ctx context.Context, itemID int64, operator string) error
	ReconcileHistory(ctx context.Context, itemID int64, operator string) error
	ReconcileLocationCount(ctx context.Context, locationID int64, operator string) (*lending.CountChange, error)
}

// Outcome is what happened to one divergence during a repair run.
type Outcome string

const (
	OutcomeRepaired     Outcome = "repaired"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeUnresolvable Outcome = "unresolvable"
	OutcomeFailed       Outcome = "failed"
)

// Action records the handling of one divergence.
type Action struct {
	Divergence Divergence `json:"divergence"`
	Outcome    Outcome    `json:"outcome"`
	Detail     string     `json:"detail,omitempty"`
}

// Unresolvable is a divergence left for an operator.
type Unresolvable struct {
	Divergence Divergence `json:"divergence"`
	Err        error      `json:"-"`
	Message    string     `json:"message"`
}

// RepairLog is the result of one repair run.
type RepairLog struct {
	RunID        string         `json:"runId"`
	StartedAt    time.Time      `json:"startedAt"`
	Operator     string         `json:"operator"`
	Actions      []Action       `json:"actions"`
	Unresolvable []Unresolvable `json:"unresolvable"`
}

// Count returns the number of actions with the given outcome.
func (l *RepairLog) Count(o Outcome) int {
	n := 0
	for _, a := range l.Actions {
		if a.Outcome == o {
			n++
		}
	}
	return n
}

// Repairer turns a report into engine calls.
type Repairer struct {
	engine Transitions
	now    func() time.Time
}

// NewRepairer creates a new repairer.
func NewRepairer(engine Transitions) *Repairer {
	return &Repairer{engine: engine, now: time.Now}
}

// Repair handles every divergence of the report in order. Divergences that
// disappeared since the check are skipped. Duplicate active loans are never
// touched. The returned error is only set when ctx ends the run early.
func (r *Repairer) Repair(ctx context.Context, report *Report, operator string) (*RepairLog, error) {
	if operator == "" {
		return nil, fmt.Errorf("%w: operator is required", model.ErrInvalidInput)
	}

	repairLog := &RepairLog{
		RunID:        uuid.NewString(),
		StartedAt:    r.now(),
		Operator:     operator,
		Actions:      []Action{},
		Unresolvable: []Unresolvable{},
	}

	for _, d := range report.Divergences {
		if err := ctx.Err(); err != nil {
			return repairLog, err
		}

		action := Action{Divergence: d}
		err := r.apply(ctx, d, operator, &action)
		switch {
		case errors.Is(err, model.ErrIntegrityViolation):
			action.Outcome = OutcomeUnresolvable
			action.Detail = err.Error()
			repairLog.Unresolvable = append(repairLog.Unresolvable, Unresolvable{Divergence: d, Err: err, Message: err.Error()})
		case errors.Is(err, model.ErrNoop):
			action.Outcome = OutcomeSkipped
			action.Detail = "divergence no longer present"
		case err != nil:
			action.Outcome = OutcomeFailed
			action.Detail = err.Error()
		default:
			action.Outcome = OutcomeRepaired
		}

		log.Printf("Repair %s: %s item=%d location=%d -> %s %s",
			repairLog.RunID, d.Category, d.ItemID, d.LocationID, action.Outcome, action.Detail)
		metrics.RepairActions.WithLabelValues(string(d.Category), string(action.Outcome)).Inc()
		repairLog.Actions = append(repairLog.Actions, action)
	}
	return repairLog, nil
}

func (r *Repairer) apply(ctx context.Context, d Divergence, operator string, action *Action) error {
	switch d.Category {
	case MissingLoanedFlag:
		return r.engine.ForceLoaned(ctx, d.ItemID, operator)
	case OrphanedLoaned:
		return r.engine.ForceAvailableOrphan(ctx, d.ItemID, operator)
	case HistoryMismatch:
		return r.engine.ReconcileHistory(ctx, d.ItemID, operator)
	case LocationCountDrift:
		change, err := r.engine.ReconcileLocationCount(ctx, d.LocationID, operator)
		if err != nil {
			return err
		}
		action.Detail = fmt.Sprintf("item count %d -> %d", change.From, change.To)
		return nil
	case DuplicateActiveLoan:
		return fmt.Errorf("%w: item %d has %d active loans %v; choose the loan to keep manually",
			model.ErrIntegrityViolation, d.ItemID, len(d.ActiveLoanIDs), d.ActiveLoanIDs)
	}
	return fmt.Errorf("unknown divergence category %q", d.Category)
}
