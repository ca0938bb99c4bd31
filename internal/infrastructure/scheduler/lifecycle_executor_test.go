package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventRepository is a mock implementation of event.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Update(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) FindAll(ctx context.Context, filter event.EventFilter) ([]*event.Event, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*event.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) FindByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*event.Event, error) {
	args := m.Called(ctx, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) FindTrending(ctx context.Context, cutoff time.Time, limit int) ([]*event.Event, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) SaveVariant(ctx context.Context, v *event.Variant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockEventRepository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) Count(ctx context.Context, filter event.EventFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func dueEvent(t *testing.T, status event.EventStatus) *event.Event {
	t.Helper()
	ev, err := event.NewEvent(uuid.New(), "Night Quiz", "General quiz", event.EventTypeNormal, event.EligibilityAll)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, ev.SetSchedule(now.Add(-3*time.Hour), now.Add(-2*time.Hour), now.Add(-time.Hour)))
	require.NoError(t, ev.Publish())
	if status == event.EventStatusOngoing {
		require.NoError(t, ev.TransitionTo(event.EventStatusOngoing))
	}
	ev.ClearDomainEvents()
	return ev
}

func TestLifecycleExecutor_StartsDueEvents(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEventRepository)
	exec := NewLifecycleExecutor(repo, zap.NewNop())

	ev := dueEvent(t, event.EventStatusPublished)

	repo.On("FindAll", ctx, mock.MatchedBy(func(f event.EventFilter) bool {
		return len(f.Statuses) == 1 && f.Statuses[0] == event.EventStatusPublished && f.StartBefore != nil
	})).Return([]*event.Event{ev}, int64(1), nil).Once()
	repo.On("FindAll", ctx, mock.Anything).Return([]*event.Event{}, int64(0), nil)
	repo.On("Update", ctx, ev).Return(nil)

	err := exec.Execute(ctx, NewJob(TaskStartDueEvents, time.Now(), 0))

	require.NoError(t, err)
	assert.Equal(t, event.EventStatusOngoing, ev.Status)
	repo.AssertCalled(t, "Update", ctx, ev)
}

func TestLifecycleExecutor_CompletesEndedEvents(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEventRepository)
	exec := NewLifecycleExecutor(repo, zap.NewNop())

	ev := dueEvent(t, event.EventStatusOngoing)

	repo.On("FindAll", ctx, mock.MatchedBy(func(f event.EventFilter) bool {
		return len(f.Statuses) == 1 && f.Statuses[0] == event.EventStatusOngoing && f.EndBefore != nil
	})).Return([]*event.Event{ev}, int64(1), nil).Once()
	repo.On("FindAll", ctx, mock.Anything).Return([]*event.Event{}, int64(0), nil)
	repo.On("Update", ctx, ev).Return(nil)

	err := exec.Execute(ctx, NewJob(TaskCompleteEndedEvents, time.Now(), 0))

	require.NoError(t, err)
	assert.Equal(t, event.EventStatusCompleted, ev.Status)
}

func TestLifecycleExecutor_PersistFailureDoesNotAbortSweep(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEventRepository)
	exec := NewLifecycleExecutor(repo, zap.NewNop())

	broken := dueEvent(t, event.EventStatusPublished)
	healthy := dueEvent(t, event.EventStatusPublished)

	repo.On("FindAll", ctx, mock.Anything).Return([]*event.Event{broken, healthy}, int64(2), nil).Once()
	repo.On("FindAll", ctx, mock.Anything).Return([]*event.Event{}, int64(0), nil)
	repo.On("Update", ctx, broken).Return(assert.AnError)
	repo.On("Update", ctx, healthy).Return(nil)

	err := exec.Execute(ctx, NewJob(TaskStartDueEvents, time.Now(), 0))

	require.NoError(t, err)
	assert.Equal(t, event.EventStatusOngoing, healthy.Status)
	repo.AssertCalled(t, "Update", ctx, healthy)
}

func TestLifecycleExecutor_UnknownTask(t *testing.T) {
	exec := NewLifecycleExecutor(new(MockEventRepository), zap.NewNop())

	err := exec.Execute(context.Background(), NewJob(TaskType("REINDEX"), time.Now(), 0))

	assert.ErrorIs(t, err, ErrInvalidTaskType)
}
