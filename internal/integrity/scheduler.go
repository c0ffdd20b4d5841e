package integrity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/notification"
)

const leaseKey = "beo:integrity:lease"

// ErrLeaseHeld is returned by RunOnce when another instance holds the lease.
var ErrLeaseHeld = errors.New("integrity lease held by another instance")

// Dispatcher queues an alert for delivery.
type Dispatcher interface {
	Dispatch(alert notification.Alert)
}

// Scheduler runs the check, and optionally the repair, periodically.
type Scheduler struct {
	cfg      config.IntegrityConfig
	checker  *Checker
	repairer *Repairer
	lease    Lease
	alerts   Dispatcher
}

// NewScheduler creates a scheduler. lease defaults to LocalLease; alerts may be nil.
func NewScheduler(cfg config.IntegrityConfig, checker *Checker, repairer *Repairer, lease Lease, alerts Dispatcher) *Scheduler {
	if lease == nil {
		lease = LocalLease{}
	}
	return &Scheduler{
		cfg:      cfg,
		checker:  checker,
		repairer: repairer,
		lease:    lease,
		alerts:   alerts,
	}
}

// Run starts the integrity loop.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Integrity scheduler is disabled. Not starting.")
		return
	}
	log.Printf("Starting integrity scheduler (every %s, auto repair %t)...", s.cfg.Interval, s.cfg.AutoRepair)

	s.runLogged(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Integrity scheduler shutting down.")
			return
		case <-timer.C:
			s.runLogged(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	report, repairLog, err := s.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrLeaseHeld):
		log.Println("Integrity check skipped: lease held elsewhere.")
	case err != nil:
		log.Printf("Integrity check failed: %v", err)
	case repairLog != nil:
		log.Printf("Integrity check found %d divergences; repair run %s: %d repaired, %d skipped, %d unresolvable, %d failed",
			len(report.Divergences), repairLog.RunID,
			repairLog.Count(OutcomeRepaired), repairLog.Count(OutcomeSkipped),
			repairLog.Count(OutcomeUnresolvable), repairLog.Count(OutcomeFailed))
	default:
		log.Printf("Integrity check found %d divergences.", len(report.Divergences))
	}
}

// RunOnce performs one check and, if configured, one repair. Divergences
// still open afterwards are sent as an alert.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, *RepairLog, error) {
	ttl := time.Duration(s.cfg.LeaseTTLSeconds) * time.Second
	ok, err := s.lease.Acquire(ctx, leaseKey, ttl)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrLeaseHeld
	}

	report, err := s.checker.CheckIntegrity(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("check failed: %w", err)
	}
	if report.Empty() {
		return report, nil, nil
	}

	open := len(report.Divergences)
	var repairLog *RepairLog
	if s.cfg.AutoRepair {
		repairLog, err = s.repairer.Repair(ctx, report, s.cfg.Operator)
		if err != nil {
			return report, repairLog, fmt.Errorf("repair interrupted: %w", err)
		}
		open = repairLog.Count(OutcomeUnresolvable) + repairLog.Count(OutcomeFailed)
	}

	if open > 0 && s.alerts != nil {
		s.alerts.Dispatch(notification.Alert{
			Title: "Inventory integrity",
			Body:  fmt.Sprintf("%d divergence(s) need an operator", open),
		})
	}
	return report, repairLog, nil
}
