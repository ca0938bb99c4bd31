package scheduler

import (
	"context"

	"github.com/felicity/backend/internal/domain/event"
	"go.uber.org/zap"
)

// sweepPageSize bounds how many events one page of a sweep loads
const sweepPageSize = 100

// LifecycleExecutor advances event statuses from their schedule: published
// events whose start time has passed become ongoing, ongoing events whose
// end time has passed become completed. Organizers can still close or
// complete events by hand; the executor only picks up what they left.
type LifecycleExecutor struct {
	eventRepo event.EventRepository
	logger    *zap.Logger
}

// NewLifecycleExecutor creates a new lifecycle executor
func NewLifecycleExecutor(eventRepo event.EventRepository, logger *zap.Logger) *LifecycleExecutor {
	return &LifecycleExecutor{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// Execute runs one lifecycle sweep
func (e *LifecycleExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Task {
	case TaskStartDueEvents:
		return e.sweep(ctx, job, event.EventFilter{
			Statuses:    []event.EventStatus{event.EventStatusPublished},
			StartBefore: &job.DueAt,
		}, event.EventStatusOngoing)
	case TaskCompleteEndedEvents:
		return e.sweep(ctx, job, event.EventFilter{
			Statuses:  []event.EventStatus{event.EventStatusOngoing},
			EndBefore: &job.DueAt,
		}, event.EventStatusCompleted)
	default:
		return ErrInvalidTaskType
	}
}

// sweep pages through due events and transitions each one. A single event
// failing does not abort the sweep; the page loop stops once a pass finds
// nothing left to move.
func (e *LifecycleExecutor) sweep(ctx context.Context, job *Job, filter event.EventFilter, target event.EventStatus) error {
	filter.Sort = event.SortModeRecent
	filter.Page = 1
	filter.PageSize = sweepPageSize

	moved, failed := 0, 0
	for {
		events, _, err := e.eventRepo.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			break
		}

		progressed := false
		for _, ev := range events {
			if err := ev.TransitionTo(target); err != nil {
				failed++
				e.logger.Warn("Skipping event in lifecycle sweep",
					zap.String("event_id", ev.ID.String()),
					zap.String("target_status", target.String()),
					zap.Error(err))
				continue
			}
			if err := e.eventRepo.Update(ctx, ev); err != nil {
				failed++
				e.logger.Error("Failed to persist lifecycle transition",
					zap.String("event_id", ev.ID.String()),
					zap.String("target_status", target.String()),
					zap.Error(err))
				continue
			}
			moved++
			progressed = true
		}

		// Transitioned events drop out of the filter, so the sweep stays
		// on page one. Without progress another pass would loop forever.
		if !progressed {
			break
		}
	}

	if moved > 0 || failed > 0 {
		e.logger.Info("Lifecycle sweep finished",
			zap.String("task", string(job.Task)),
			zap.String("target_status", target.String()),
			zap.Int("moved", moved),
			zap.Int("failed", failed))
	}
	return nil
}

var _ JobExecutor = (*LifecycleExecutor)(nil)
