package registration

import (
	"context"
	"testing"

	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type approvalFixture struct {
	svc       *ApprovalService
	regRepo   *MockRegistrationRepository
	eventRepo *MockEventRepository
	userRepo  *MockUserRepository
	ledger    *MockCapacityLedger
	qr        *MockQRRenderer
	notifier  *MockNotifier
	publisher *MockEventPublisher
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		regRepo:   new(MockRegistrationRepository),
		eventRepo: new(MockEventRepository),
		userRepo:  new(MockUserRepository),
		ledger:    new(MockCapacityLedger),
		qr:        new(MockQRRenderer),
		notifier:  new(MockNotifier),
		publisher: NewMockEventPublisher(),
	}
	scope := NewNoOpTransactionScope(f.regRepo, f.eventRepo, f.ledger)
	f.svc = NewApprovalService(scope, f.regRepo, f.eventRepo, f.userRepo, f.qr, f.notifier, zap.NewNop())
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func pendingOrder(t *testing.T, eventID, participantID uuid.UUID) *registration.Registration {
	t.Helper()
	reg, err := registration.NewMerchandiseOrder(eventID, participantID, registration.NewTicketID(), "M", "Black", 2, decimal.NewFromInt(700), "upi-ref-831")
	require.NoError(t, err)
	return reg
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	organizerID := uuid.New()

	t.Run("approval commits the stock sale and issues the pass", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)
		f.ledger.On("CommitStockSale", ctx, ev.ID, "M", "Black", 2, reg.TotalPrice).Return(nil)
		f.qr.On("Render", mock.AnythingOfType("registration.QRPayload")).Return("qr-png", nil)
		f.regRepo.On("SaveWithLock", ctx, reg).Return(nil)
		f.notifier.On("SendTicket", ctx, mock.AnythingOfType("registration.TicketEmail")).Return(nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		resp, err := f.svc.Approve(ctx, organizerID, reg.ID)

		require.NoError(t, err)
		assert.Equal(t, registration.ApprovalStatusApproved, resp.ApprovalStatus)
		assert.Equal(t, registration.PaymentStatusCompleted, resp.PaymentStatus)
		assert.NotNil(t, resp.PaymentDate)
		assert.Equal(t, "qr-png", resp.QRCode)
		f.ledger.AssertExpectations(t)
	})

	t.Run("insufficient stock fails the approval and leaves the order pending", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)
		f.ledger.On("CommitStockSale", ctx, ev.ID, "M", "Black", 2, reg.TotalPrice).Return(shared.ErrInsufficientStock)

		_, err := f.svc.Approve(ctx, organizerID, reg.ID)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.regRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("a vanished variant still counts the sale", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)
		f.ledger.On("CommitStockSale", ctx, ev.ID, "M", "Black", 2, reg.TotalPrice).Return(shared.ErrNotFound)
		f.ledger.On("ReserveSlot", ctx, ev.ID, reg.TotalPrice).Return(nil)
		f.qr.On("Render", mock.Anything).Return("qr-png", nil)
		f.regRepo.On("SaveWithLock", ctx, reg).Return(nil)
		f.notifier.On("SendTicket", ctx, mock.Anything).Return(nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		resp, err := f.svc.Approve(ctx, organizerID, reg.ID)

		require.NoError(t, err)
		assert.Equal(t, registration.ApprovalStatusApproved, resp.ApprovalStatus)
		f.ledger.AssertExpectations(t)
	})

	t.Run("only the owning organizer or an admin may approve", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)
		stranger, err := identity.NewOrganizer("other@clubs.org", "changeme123", "Other Club", "cultural", "", "other@clubs.org")
		require.NoError(t, err)

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, stranger.ID).Return(stranger, nil)

		_, err = f.svc.Approve(ctx, stranger.ID, reg.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("an admin may approve on behalf of the organizer", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)
		admin, err := identity.NewAdmin("admin@felicity.live", "changeme123")
		require.NoError(t, err)

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, admin.ID).Return(admin, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)
		f.ledger.On("CommitStockSale", ctx, ev.ID, "M", "Black", 2, reg.TotalPrice).Return(nil)
		f.qr.On("Render", mock.Anything).Return("qr-png", nil)
		f.regRepo.On("SaveWithLock", ctx, reg).Return(nil)
		f.notifier.On("SendTicket", ctx, mock.Anything).Return(nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		_, err = f.svc.Approve(ctx, admin.ID, reg.ID)

		require.NoError(t, err)
	})

	t.Run("a processed order cannot be approved again", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)
		require.NoError(t, reg.Approve())

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)

		_, err := f.svc.Approve(ctx, organizerID, reg.ID)

		assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
		f.ledger.AssertNotCalled(t, "CommitStockSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	organizerID := uuid.New()

	t.Run("rejection records the reason and never touches stock", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)
		f.regRepo.On("SaveWithLock", ctx, reg).Return(nil)
		f.notifier.On("SendRejection", ctx, mock.AnythingOfType("registration.RejectionEmail")).Return(nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		resp, err := f.svc.Reject(ctx, organizerID, reg.ID, "payment reference not found")

		require.NoError(t, err)
		assert.Equal(t, registration.ApprovalStatusRejected, resp.ApprovalStatus)
		assert.Equal(t, registration.PaymentStatusFailed, resp.PaymentStatus)
		assert.Equal(t, registration.StatusRejected, resp.Status)
		assert.Empty(t, resp.QRCode)
		f.ledger.AssertNotCalled(t, "CommitStockSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a rejected order cannot be approved afterwards", func(t *testing.T) {
		f := newApprovalFixture()
		participant := testParticipant(t)
		ev := testMerchEvent(t, organizerID)
		reg := pendingOrder(t, ev.ID, participant.ID)
		require.NoError(t, reg.Reject("out of stock")) // terminal

		f.regRepo.On("FindByID", ctx, reg.ID).Return(reg, nil)
		f.eventRepo.On("FindByID", ctx, ev.ID).Return(ev, nil)
		f.userRepo.On("FindByID", ctx, participant.ID).Return(participant, nil)

		_, err := f.svc.Approve(ctx, organizerID, reg.ID)

		assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
	})
}
