package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingExecutor counts executions per task and can be told to fail
type recordingExecutor struct {
	mu       sync.Mutex
	executed []TaskType
	failures int
	done     chan struct{}
	want     int
}

func newRecordingExecutor(want int) *recordingExecutor {
	return &recordingExecutor{done: make(chan struct{}), want: want}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, job.Task)
	if e.failures > 0 {
		e.failures--
		if len(e.executed) == e.want {
			close(e.done)
		}
		return errors.New("sweep failed")
	}
	if len(e.executed) == e.want {
		close(e.done)
	}
	return nil
}

func (e *recordingExecutor) tasks() []TaskType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]TaskType, len(e.executed))
	copy(out, e.executed)
	return out
}

func waitFor(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for jobs to execute")
	}
}

func TestScheduler_ScheduleSweep(t *testing.T) {
	exec := newRecordingExecutor(len(AllTaskTypes()))
	s := NewScheduler(DefaultSchedulerConfig(), exec, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.ScheduleSweep(time.Now()))
	waitFor(t, exec.done)

	tasks := exec.tasks()
	assert.Contains(t, tasks, TaskStartDueEvents)
	assert.Contains(t, tasks, TaskCompleteEndedEvents)
}

func TestScheduler_SubmitWhenStopped(t *testing.T) {
	exec := newRecordingExecutor(1)
	s := NewScheduler(DefaultSchedulerConfig(), exec, zap.NewNop())

	err := s.SubmitJob(NewJob(TaskStartDueEvents, time.Now(), 0))

	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	// One failure then success, so the job executes twice.
	exec := newRecordingExecutor(2)
	exec.failures = 1

	cfg := DefaultSchedulerConfig()
	cfg.RetryDelay = 10 * time.Millisecond
	s := NewScheduler(cfg, exec, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.ScheduleTask(TaskCompleteEndedEvents, time.Now()))
	waitFor(t, exec.done)

	assert.Equal(t, []TaskType{TaskCompleteEndedEvents, TaskCompleteEndedEvents}, exec.tasks())
}

func TestJob_RetryBookkeeping(t *testing.T) {
	job := NewJob(TaskStartDueEvents, time.Now(), 2)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	require.NotNil(t, job.NextRetryAt)

	job.Fail("boom again")
	job.ScheduleRetry(time.Minute)
	job.Fail("boom once more")
	assert.False(t, job.ShouldRetry())
}

func TestSweepTrigger_ManualSweepRequiresStart(t *testing.T) {
	exec := newRecordingExecutor(1)
	s := NewScheduler(DefaultSchedulerConfig(), exec, zap.NewNop())
	trigger := NewSweepTrigger(DefaultSweepTriggerConfig(), s, zap.NewNop())

	assert.ErrorIs(t, trigger.TriggerManualSweep(), ErrSchedulerNotRunning)
}

func TestSweepTrigger_RunsImmediately(t *testing.T) {
	exec := newRecordingExecutor(len(AllTaskTypes()))
	s := NewScheduler(DefaultSchedulerConfig(), exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	trigger := NewSweepTrigger(SweepTriggerConfig{Interval: time.Hour}, s, zap.NewNop())
	require.NoError(t, trigger.Start(context.Background()))
	defer func() { _ = trigger.Stop(context.Background()) }()

	waitFor(t, exec.done)
	assert.Len(t, exec.tasks(), len(AllTaskTypes()))
}
