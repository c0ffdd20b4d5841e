package lending

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beo-inventory-backend/internal/metrics"
	"beo-inventory-backend/internal/model"
)

func TestEngineMetrics_TransitionsAndFailures(t *testing.T) {
	e, _, f := newTestEngine(t)
	ctx := context.Background()
	item := registerItem(t, e, f, "SR-0040")

	toMaintenance := metrics.Transitions.WithLabelValues("available", "maintenance", "manual")
	rejected := metrics.OperationFailures.WithLabelValues("manual_status_change", "invalid_transition")
	beforeMove, beforeRejected := testutil.ToFloat64(toMaintenance), testutil.ToFloat64(rejected)

	require.NoError(t, e.ManualStatusChange(ctx, ManualChange{
		ItemID: item.ID, NewStatus: model.ItemMaintenance, Reason: "broken brake", Operator: "ana",
	}))
	err := e.ManualStatusChange(ctx, ManualChange{
		ItemID: item.ID, NewStatus: model.ItemLoaned, Reason: "broken brake", Operator: "ana",
	})
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	assert.Equal(t, beforeMove+1, testutil.ToFloat64(toMaintenance))
	assert.Equal(t, beforeRejected+1, testutil.ToFloat64(rejected))
}

func TestEngineMetrics_StaleRepairIsNotAFailure(t *testing.T) {
	e, _, f := newTestEngine(t)
	ctx := context.Background()
	item := registerItem(t, e, f, "SR-0041")

	noop := metrics.OperationFailures.WithLabelValues("force_available_orphan", "noop")
	manualNoop := metrics.OperationFailures.WithLabelValues("manual_status_change", "noop")
	beforeRepair, beforeManual := testutil.ToFloat64(noop), testutil.ToFloat64(manualNoop)

	// nothing to repair: the item is available with no loan
	assert.ErrorIs(t, e.ForceAvailableOrphan(ctx, item.ID, "repair"), model.ErrNoop)
	assert.Equal(t, beforeRepair, testutil.ToFloat64(noop))

	// a no-op requested by an operator still counts
	err := e.ManualStatusChange(ctx, ManualChange{
		ItemID: item.ID, NewStatus: model.ItemAvailable, Reason: "recheck", Operator: "ana",
	})
	require.ErrorIs(t, err, model.ErrNoop)
	assert.Equal(t, beforeManual+1, testutil.ToFloat64(manualNoop))
}
