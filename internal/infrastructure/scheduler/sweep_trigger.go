package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweepTriggerConfig holds configuration for the sweep trigger
type SweepTriggerConfig struct {
	// Interval is how often lifecycle sweeps run
	Interval time.Duration
}

// DefaultSweepTriggerConfig returns default sweep trigger configuration
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		Interval: time.Minute,
	}
}

// SweepTrigger submits lifecycle sweeps to the scheduler on a fixed
// interval. Event start and end times have minute granularity, so a
// one-minute interval keeps statuses close to the schedule.
type SweepTrigger struct {
	config    SweepTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepTrigger creates a new sweep trigger
func NewSweepTrigger(config SweepTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *SweepTrigger {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &SweepTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts the sweep trigger
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.Duration("interval", t.config.Interval),
	)

	return nil
}

// Stop stops the sweep trigger
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop submits a sweep every interval. The first sweep runs
// immediately so a restart catches transitions missed while down.
func (t *SweepTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	t.trigger()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.trigger()
		}
	}
}

func (t *SweepTrigger) trigger() {
	if err := t.scheduler.ScheduleSweep(time.Now()); err != nil {
		t.logger.Error("Failed to schedule lifecycle sweep", zap.Error(err))
	}
}

// TriggerManualSweep submits one lifecycle sweep outside the interval
func (t *SweepTrigger) TriggerManualSweep() error {
	t.mu.Lock()
	running := t.isRunning
	t.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	return t.scheduler.ScheduleSweep(time.Now())
}
