package visits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/careconnect/guardian-api/internal/observability/metrics"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// SweepResult reports the aggregate outcome of one sweep pass. The counts are
// best-effort: individual update failures do not abort the rest of the pass.
type SweepResult struct {
	Flagged int `json:"flagged"`
	Failed  int `json:"failed"`
}

// Service implements the visit lifecycle on top of a Store.
type Service struct {
	store   Store
	logger  *logging.Logger
	metrics *metrics.VisitMetrics
	tracer  trace.Tracer
}

// NewService creates a visit service. metrics may be nil.
func NewService(store Store, logger *logging.Logger, m *metrics.VisitMetrics) *Service {
	if store == nil {
		panic("visits: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("guardian.internal.visits"),
	}
}

// Create schedules a new visit for the guardian. The status always starts as
// scheduled; id and creation instant are assigned by the store.
func (s *Service) Create(ctx context.Context, userID string, req *CreateVisitRequest) (*Visit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	v := &Visit{
		UserID:        userID,
		CaregiverName: req.CaregiverName,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Notes:         req.Notes,
		Status:        StatusScheduled,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns the visit if it exists and belongs to the guardian. Visits
// owned by other guardians are reported as not found.
func (s *Service) Get(ctx context.Context, userID, visitID string) (*Visit, error) {
	v, err := s.store.Get(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, ErrVisitNotFound
	}
	return v, nil
}

// List returns all visits owned by the guardian.
func (s *Service) List(ctx context.Context, userID string) ([]Visit, error) {
	return s.store.ListByUser(ctx, userID)
}

// Update applies a partial update to one of the guardian's visits.
func (s *Service) Update(ctx context.Context, userID, visitID string, upd Update) error {
	if err := upd.Validate(); err != nil {
		return err
	}
	if _, err := s.Get(ctx, userID, visitID); err != nil {
		return err
	}
	return s.store.Update(ctx, visitID, upd)
}

// UpdateStatus transitions one of the guardian's visits to the given status.
// actualArrival is recorded when provided, typically alongside completed.
func (s *Service) UpdateStatus(ctx context.Context, userID, visitID string, status Status, actualArrival string) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if actualArrival != "" && !ValidTime(actualArrival) {
		return ErrInvalidTime
	}
	upd := Update{Status: &status}
	if actualArrival != "" {
		upd.ActualArrival = &actualArrival
	}
	if _, err := s.Get(ctx, userID, visitID); err != nil {
		return err
	}
	return s.store.Update(ctx, visitID, upd)
}

// Delete removes one of the guardian's visits.
func (s *Service) Delete(ctx context.Context, userID, visitID string) error {
	if _, err := s.Get(ctx, userID, visitID); err != nil {
		return err
	}
	return s.store.Delete(ctx, visitID)
}

// Sweep flags the guardian's overdue scheduled visits as missed. Updates fan
// out concurrently; the pass waits for all of them and reports aggregate
// counts. trigger labels the metrics ("api" for the screen-focus trigger,
// "worker" for the background loop).
func (s *Service) Sweep(ctx context.Context, userID string, now time.Time, trigger string) (SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "visits.sweep")
	defer span.End()
	start := time.Now()

	scheduled, err := s.store.ListByUserAndStatus(ctx, userID, StatusScheduled)
	if err != nil {
		span.RecordError(err)
		return SweepResult{}, fmt.Errorf("visits: failed to list scheduled visits: %w", err)
	}

	overdue := Overdue(scheduled, now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	res := SweepResult{}
	for _, v := range overdue {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.store.MarkMissed(ctx, id); err != nil {
				s.logger.Error("failed to flag missed visit", "visit_id", id, "error", err)
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			res.Flagged++
			mu.Unlock()
		}(v.ID)
	}
	wg.Wait()

	if res.Flagged > 0 || res.Failed > 0 {
		s.logger.Info("missed-visit sweep finished",
			"user_id", userID,
			"flagged", res.Flagged,
			"failed", res.Failed,
		)
	}
	s.metrics.ObserveSweep(trigger, res.Flagged, res.Failed, time.Since(start).Seconds())
	return res, nil
}

// Alerts returns the guardian's unacknowledged alert-worthy visits, newest
// scheduled date first.
func (s *Service) Alerts(ctx context.Context, userID string) ([]Visit, error) {
	all, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return UnacknowledgedAlerts(all), nil
}

// Acknowledge marks an alert as seen without altering the visit status.
// Acknowledging an already-acknowledged visit succeeds with the same state.
func (s *Service) Acknowledge(ctx context.Context, userID, visitID string) error {
	if _, err := s.Get(ctx, userID, visitID); err != nil {
		return err
	}
	if err := s.store.SetAcknowledged(ctx, visitID, true); err != nil {
		return err
	}
	s.metrics.ObserveAcknowledged()
	return nil
}

// Today returns the guardian's visits scheduled for now's calendar date,
// ascending by time.
func (s *Service) Today(ctx context.Context, userID string, now time.Time) ([]Visit, error) {
	from := DateOf(now)
	to := DateOf(now.AddDate(0, 0, 1))
	all, err := s.store.ListByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return VisitsOn(all, from), nil
}
