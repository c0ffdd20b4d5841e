// Package metrics exposes Prometheus collectors for the lending engine and the
// integrity pipeline. Collectors are registered once on the default registry.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"beo-inventory-backend/internal/model"
)

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beo",
		Name:      "item_status_transitions_total",
		Help:      "Item status transitions committed by the lending engine.",
	}, []string{"from", "to", "reason"})

	OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beo",
		Name:      "lending_operation_failures_total",
		Help:      "Lending operations that were rolled back, by operation and error kind.",
	}, []string{"operation", "kind"})

	Divergences = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "beo",
		Name:      "integrity_divergences",
		Help:      "Divergences found by the last integrity check, by category.",
	}, []string{"category"})

	RepairActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "beo",
		Name:      "integrity_repair_actions_total",
		Help:      "Repair actions taken, by category and outcome.",
	}, []string{"category", "outcome"})
)

// ErrorKind maps an engine error to a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, model.ErrAlreadyReturned):
		return "already_returned"
	case errors.Is(err, model.ErrNoop):
		return "noop"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, model.ErrIntegrityViolation):
		return "integrity_violation"
	}
	return "other"
}
