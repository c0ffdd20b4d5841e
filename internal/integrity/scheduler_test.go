package integrity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/notification"
)

type fakeLease struct {
	granted bool
	err     error
	keys    []string
}

func (l *fakeLease) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.granted, l.err
}

type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []notification.Alert
}

func (d *recordingDispatcher) Dispatch(alert notification.Alert) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, alert)
}

func schedulerConfig(autoRepair bool) config.IntegrityConfig {
	return config.IntegrityConfig{
		Enabled:         true,
		Interval:        time.Hour,
		AutoRepair:      autoRepair,
		Operator:        "integrity-scheduler",
		LeaseTTLSeconds: 60,
	}
}

func TestScheduler_RunOnce_RepairsAndAlertsOnlyUnresolved(t *testing.T) {
	e := newEnv(t)
	item := e.item(t, "CR-0030")
	e.setStatus(t, item.ID, model.ItemLoaned)

	dispatcher := &recordingDispatcher{}
	lease := &fakeLease{granted: true}
	s := NewScheduler(schedulerConfig(true), e.checker, e.repairer, lease, dispatcher)

	report, repairLog, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(OrphanedLoaned))
	require.NotNil(t, repairLog)
	assert.Equal(t, "integrity-scheduler", repairLog.Operator)
	assert.Equal(t, []string{leaseKey}, lease.keys)
	assert.Empty(t, dispatcher.alerts, "everything was repaired")

	report, repairLog, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Nil(t, repairLog)
}

func TestScheduler_RunOnce_AlertsWithoutAutoRepair(t *testing.T) {
	e := newEnv(t)
	item := e.item(t, "CR-0031")
	e.setStatus(t, item.ID, model.ItemLoaned)

	dispatcher := &recordingDispatcher{}
	s := NewScheduler(schedulerConfig(false), e.checker, e.repairer, nil, dispatcher)

	report, repairLog, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, repairLog)
	require.Len(t, dispatcher.alerts, 1)
	assert.Contains(t, dispatcher.alerts[0].Body, "2 divergence(s)")
	assert.Len(t, report.Divergences, 2)

	// nothing was changed
	var after model.Item
	require.NoError(t, e.db.First(&after, item.ID).Error)
	assert.Equal(t, model.ItemLoaned, after.Status)
}

func TestScheduler_RunOnce_Lease(t *testing.T) {
	e := newEnv(t)

	s := NewScheduler(schedulerConfig(true), e.checker, e.repairer, &fakeLease{granted: false}, nil)
	_, _, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrLeaseHeld)

	leaseErr := errors.New("connection refused")
	s = NewScheduler(schedulerConfig(true), e.checker, e.repairer, &fakeLease{err: leaseErr}, nil)
	_, _, err = s.RunOnce(context.Background())
	assert.ErrorIs(t, err, leaseErr)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	s := NewScheduler(schedulerConfig(true), e.checker, e.repairer, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	e := newEnv(t)
	cfg := schedulerConfig(true)
	cfg.Enabled = false
	NewScheduler(cfg, e.checker, e.repairer, nil, nil).Run(context.Background())
}

func TestRedisLease_UnreachableServer(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	ok, err := NewRedisLease(rdb).Acquire(context.Background(), leaseKey, time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLocalLease(t *testing.T) {
	ok, err := LocalLease{}.Acquire(context.Background(), leaseKey, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
