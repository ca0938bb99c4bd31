package feedback

import (
	"context"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/feedback"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockFeedbackRepository is a mock implementation of feedback.Repository
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFeedbackRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, page, pageSize int) ([]*feedback.Feedback, int64, error) {
	args := m.Called(ctx, eventID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*feedback.Feedback), args.Get(1).(int64), args.Error(2)
}

func (m *MockFeedbackRepository) FindByEventAndParticipant(ctx context.Context, eventID, participantID uuid.UUID) (*feedback.Feedback, error) {
	args := m.Called(ctx, eventID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feedback.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) Summarize(ctx context.Context, eventID uuid.UUID) (*feedback.Summary, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feedback.Summary), args.Error(1)
}

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

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindOrganizers(ctx context.Context) ([]*identity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

// MockRegistrationRepository is a mock implementation of registration.Repository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, r *registration.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) Update(ctx context.Context, r *registration.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) SaveWithLock(ctx context.Context, r *registration.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*registration.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByTicketID(ctx context.Context, ticketID string) (*registration.Registration, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindActive(ctx context.Context, eventID, participantID uuid.UUID) (*registration.Registration, error) {
	args := m.Called(ctx, eventID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, filter registration.Filter) ([]*registration.Registration, int64, error) {
	args := m.Called(ctx, eventID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*registration.Registration), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegistrationRepository) FindByParticipant(ctx context.Context, participantID uuid.UUID) ([]*registration.Registration, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) CountActiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationRepository) SumQuantityByParticipant(ctx context.Context, eventID, participantID uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID, participantID)
	return args.Int(0), args.Error(1)
}

func (m *MockRegistrationRepository) CountAttendedByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}
